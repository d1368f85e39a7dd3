package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	Secp256k1PrivateKeySize = 32
	Secp256k1SignatureSize  = 64
)

// Secp256k1PrivKey is a secp256k1 private scalar.
type Secp256k1PrivKey struct {
	privKey *btcec.PrivateKey
}

// Secp256k1PubKey is a secp256k1 curve point.
type Secp256k1PubKey struct {
	pubKey *btcec.PublicKey
}

func NewSecp256k1PrivKey(privKey *btcec.PrivateKey) PrivKey {
	return &Secp256k1PrivKey{privKey: privKey}
}

func NewSecp256k1PubKey(pubKey *btcec.PublicKey) PubKey {
	return &Secp256k1PubKey{pubKey: pubKey}
}

// Raw returns the 32-byte big-endian scalar.
func (k *Secp256k1PrivKey) Raw() ([]byte, error) {
	return k.privKey.Serialize(), nil
}

func (k *Secp256k1PrivKey) Algorithm() Algorithm {
	return Secp256k1
}

func (k *Secp256k1PrivKey) Equals(o Key) bool {
	sk, ok := o.(*Secp256k1PrivKey)
	if !ok {
		return KeyEquals(k, o)
	}
	return subtle.ConstantTimeCompare(k.privKey.Serialize(), sk.privKey.Serialize()) == 1
}

func (k *Secp256k1PrivKey) GetPublic() PubKey {
	return &Secp256k1PubKey{pubKey: k.privKey.PubKey()}
}

// Sign hashes msg with SHA-256 and returns the 64-byte R‖S signature with low S.
func (k *Secp256k1PrivKey) Sign(msg []byte) ([]byte, error) {
	hash := sha256.Sum256(msg)
	// header byte carries the recovery id, the rest is R‖S
	compact := ecdsa.SignCompact(k.privKey, hash[:], false)
	if len(compact) != Secp256k1SignatureSize+1 {
		return nil, fmt.Errorf("%w: compact signature has %d bytes", ErrEncodingFailure, len(compact))
	}
	return compact[1:], nil
}

// Raw returns the 65-byte uncompressed point 0x04‖X‖Y.
func (k *Secp256k1PubKey) Raw() ([]byte, error) {
	return k.pubKey.SerializeUncompressed(), nil
}

func (k *Secp256k1PubKey) Algorithm() Algorithm {
	return Secp256k1
}

func (k *Secp256k1PubKey) DER() ([]byte, error) {
	return EncodePublicKey(Secp256k1, k.pubKey.SerializeUncompressed())
}

func (k *Secp256k1PubKey) Equals(o Key) bool {
	sk, ok := o.(*Secp256k1PubKey)
	if !ok {
		return KeyEquals(k, o)
	}
	return k.pubKey.IsEqual(sk.pubKey)
}

// Verify checks a 64-byte R‖S signature over the SHA-256 of data.
func (k *Secp256k1PubKey) Verify(data []byte, sig []byte) (bool, error) {
	if len(sig) != Secp256k1SignatureSize {
		return false, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidKeyLength, Secp256k1SignatureSize, len(sig))
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false, nil
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return false, nil
	}
	if r.IsZero() || s.IsZero() {
		return false, nil
	}
	hash := sha256.Sum256(data)
	return ecdsa.NewSignature(&r, &s).Verify(hash[:], k.pubKey), nil
}

// UnmarshalSecp256k1PublicKey accepts 64-byte X‖Y or 65-byte uncompressed keys.
// Unlike EncodePublicKey it requires the point to be on the curve.
func UnmarshalSecp256k1PublicKey(data []byte) (PubKey, error) {
	key, err := NormalizeSecp256k1PublicKey(data)
	if err != nil {
		return nil, err
	}
	pub, err := btcec.ParsePubKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return NewSecp256k1PubKey(pub), nil
}

// UnmarshalSecp256k1PrivateKey returns a private key from a 32-byte scalar.
func UnmarshalSecp256k1PrivateKey(data []byte) (PrivKey, error) {
	if len(data) != Secp256k1PrivateKeySize {
		return nil, fmt.Errorf("%w: secp256k1 private key must be %d bytes, got %d", ErrInvalidKeyLength, Secp256k1PrivateKeySize, len(data))
	}
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(data); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: secp256k1 scalar out of range", ErrInvalidKey)
	}
	priv, _ := btcec.PrivKeyFromBytes(data)
	return NewSecp256k1PrivKey(priv), nil
}
