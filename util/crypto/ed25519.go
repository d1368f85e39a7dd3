package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/subtle"
	"fmt"
	"io"
)

// Ed25519PrivKey is an ed25519 private key.
type Ed25519PrivKey struct {
	privKey ed25519.PrivateKey
}

// Ed25519PubKey is an ed25519 public key.
type Ed25519PubKey struct {
	pubKey ed25519.PublicKey
}

func NewEd25519PrivKey(privKey ed25519.PrivateKey) PrivKey {
	return &Ed25519PrivKey{privKey: privKey}
}

func NewEd25519PubKey(pubKey ed25519.PublicKey) PubKey {
	return &Ed25519PubKey{pubKey: pubKey}
}

// NewEd25519PrivKeyFromSeed expands a 32-byte seed into a key pair.
func NewEd25519PrivKeyFromSeed(seed []byte) (PrivKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: ed25519 seed must be %d bytes, got %d", ErrInvalidKeyLength, ed25519.SeedSize, len(seed))
	}
	return NewEd25519PrivKey(ed25519.NewKeyFromSeed(seed)), nil
}

// GenerateEd25519Key generates a new ed25519 private and public key pair.
func GenerateEd25519Key(src io.Reader) (PrivKey, PubKey, error) {
	pub, priv, err := ed25519.GenerateKey(src)
	if err != nil {
		return nil, nil, err
	}

	return NewEd25519PrivKey(priv),
		NewEd25519PubKey(pub),
		nil
}

// Raw returns the 32-byte seed the key was expanded from.
func (k *Ed25519PrivKey) Raw() ([]byte, error) {
	return bytes.Clone(k.privKey.Seed()), nil
}

func (k *Ed25519PrivKey) Algorithm() Algorithm {
	return Ed25519
}

func (k *Ed25519PrivKey) pubKeyBytes() []byte {
	return k.privKey[ed25519.PrivateKeySize-ed25519.PublicKeySize:]
}

// Equals compares two ed25519 private keys.
func (k *Ed25519PrivKey) Equals(o Key) bool {
	edk, ok := o.(*Ed25519PrivKey)
	if !ok {
		return KeyEquals(k, o)
	}

	return subtle.ConstantTimeCompare(k.privKey, edk.privKey) == 1
}

// GetPublic returns an ed25519 public key from a private key.
func (k *Ed25519PrivKey) GetPublic() PubKey {
	return &Ed25519PubKey{pubKey: k.pubKeyBytes()}
}

// Sign returns a signature from an input message.
func (k *Ed25519PrivKey) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(k.privKey, msg), nil
}

// Raw public key bytes.
func (k *Ed25519PubKey) Raw() ([]byte, error) {
	return bytes.Clone(k.pubKey), nil
}

func (k *Ed25519PubKey) Algorithm() Algorithm {
	return Ed25519
}

func (k *Ed25519PubKey) DER() ([]byte, error) {
	return EncodePublicKey(Ed25519, k.pubKey)
}

// Equals compares two ed25519 public keys.
func (k *Ed25519PubKey) Equals(o Key) bool {
	edk, ok := o.(*Ed25519PubKey)
	if !ok {
		return KeyEquals(k, o)
	}

	return bytes.Equal(k.pubKey, edk.pubKey)
}

// Verify checks a signature against the input data.
func (k *Ed25519PubKey) Verify(data []byte, sig []byte) (bool, error) {
	return ed25519.Verify(k.pubKey, data, sig), nil
}

// UnmarshalEd25519PublicKey returns a public key from input bytes.
func UnmarshalEd25519PublicKey(data []byte) (PubKey, error) {
	if len(data) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: expect ed25519 public key data size to be %d, got %d", ErrInvalidKeyLength, ed25519.PublicKeySize, len(data))
	}

	return NewEd25519PubKey(bytes.Clone(data)), nil
}

// UnmarshalEd25519PrivateKey returns a private key from either a 32-byte seed
// or the 64-byte seed‖public form.
func UnmarshalEd25519PrivateKey(data []byte) (PrivKey, error) {
	switch len(data) {
	case ed25519.SeedSize:
		return NewEd25519PrivKeyFromSeed(data)
	case ed25519.PrivateKeySize:
		key := ed25519.NewKeyFromSeed(data[:ed25519.SeedSize])
		if subtle.ConstantTimeCompare(key, data) == 0 {
			return nil, fmt.Errorf("%w: ed25519 public half does not match the seed", ErrInvalidKey)
		}
		return NewEd25519PrivKey(key), nil
	default:
		return nil, fmt.Errorf(
			"%w: expected ed25519 data size to be %d or %d, got %d",
			ErrInvalidKeyLength,
			ed25519.SeedSize,
			ed25519.PrivateKeySize,
			len(data),
		)
	}
}
