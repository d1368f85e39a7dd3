// Package identity derives signing key pairs and their principals from
// recovery phrases. Derivation is pure: nothing is persisted and the same
// phrase always yields the same identity.
package identity

import (
	"errors"
	"fmt"

	"github.com/icidkit/icid/principal"
	"github.com/icidkit/icid/util/crypto"
	"github.com/icidkit/icid/util/errcode"
)

var (
	errGroup = errcode.ErrGroup(300)

	ErrMissingPhrase = errGroup.Register(errors.New("recovery phrase is required"), 1)
)

// KeyPair is a derived key pair. It lives in memory only.
type KeyPair struct {
	Algorithm crypto.Algorithm
	PrivKey   crypto.PrivKey
	PubKey    crypto.PubKey
}

// Data is the exported form of a derived identity.
type Data struct {
	PublicKey     string `json:"public_key_b64"`
	PrivateKey    string `json:"private_key_b64"`
	PrincipalText string `json:"principal_text"`
}

// Derive returns the identity of phrase for alg using the default paths.
func Derive(alg crypto.Algorithm, phrase crypto.Mnemonic) (Data, error) {
	kp, err := DeriveKeyPair(alg, phrase)
	if err != nil {
		return Data{}, err
	}
	return kp.Data()
}

// DeriveKeyPair derives the key pair of phrase for alg.
//
// Ed25519 takes the first 32 bytes of the BIP-39 seed as the private key,
// without any hierarchical derivation. Secp256k1 walks m/44'/223'/0'/0/0.
func DeriveKeyPair(alg crypto.Algorithm, phrase crypto.Mnemonic) (KeyPair, error) {
	return deriveKeyPair(alg, phrase, crypto.DefaultSecp256k1Path)
}

func deriveKeyPair(alg crypto.Algorithm, phrase crypto.Mnemonic, path crypto.DerivationPath) (kp KeyPair, err error) {
	if !alg.Valid() {
		return kp, fmt.Errorf("%w: %s", crypto.ErrUnsupportedAlgorithm, alg)
	}
	if phrase.WordCount() == 0 {
		return kp, ErrMissingPhrase
	}
	seed, err := phrase.Seed()
	if err != nil {
		return kp, err
	}

	var priv crypto.PrivKey
	switch alg {
	case crypto.Ed25519:
		priv, err = crypto.NewEd25519PrivKeyFromSeed(seed[:32])
	case crypto.Secp256k1:
		priv, err = crypto.DeriveSecp256k1(seed, path)
	}
	if err != nil {
		return kp, err
	}
	return KeyPair{
		Algorithm: alg,
		PrivKey:   priv,
		PubKey:    priv.GetPublic(),
	}, nil
}

// Principal returns the self-authenticating principal of the public key.
func (kp KeyPair) Principal() (principal.Principal, error) {
	return principal.FromPubKey(kp.PubKey)
}

func (kp KeyPair) Data() (Data, error) {
	p, err := kp.Principal()
	if err != nil {
		return Data{}, err
	}
	pub, err := crypto.EncodeKeyToString(kp.PubKey)
	if err != nil {
		return Data{}, fmt.Errorf("%w: public key: %v", crypto.ErrEncodingFailure, err)
	}
	priv, err := crypto.EncodeKeyToString(kp.PrivKey)
	if err != nil {
		return Data{}, fmt.Errorf("%w: private key: %v", crypto.ErrEncodingFailure, err)
	}
	return Data{
		PublicKey:     pub,
		PrivateKey:    priv,
		PrincipalText: p.String(),
	}, nil
}

// PrincipalFromPublicKey returns the principal text of a raw public key.
func PrincipalFromPublicKey(alg crypto.Algorithm, raw []byte) (string, error) {
	p, err := principal.FromPublicKey(alg, raw)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
