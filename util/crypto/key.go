package crypto

import (
	"crypto/subtle"
)

// Key is an abstract interface for all types of keys
type Key interface {
	// Equals returns if the keys are equal
	Equals(Key) bool

	// Raw returns raw key
	Raw() ([]byte, error)

	// Algorithm returns the signature scheme of the key
	Algorithm() Algorithm
}

// PrivKey is an interface for keys that should be used for signing
type PrivKey interface {
	Key

	// Sign signs the raw bytes and returns the signature
	Sign([]byte) ([]byte, error)
	// GetPublic returns the associated public key
	GetPublic() PubKey
}

// PubKey is the public key used to verify the signatures
type PubKey interface {
	Key

	// Verify verifies the signed message and the signature
	Verify(data []byte, sig []byte) (bool, error)
	// DER returns the key wrapped in its SubjectPublicKeyInfo envelope
	DER() ([]byte, error)
}

func KeyEquals(k1, k2 Key) bool {
	if k1.Algorithm() != k2.Algorithm() {
		return false
	}
	a, err := k1.Raw()
	if err != nil {
		return false
	}
	b, err := k2.Raw()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// UnmarshalPublicKey returns a public key of the given algorithm from its raw bytes.
func UnmarshalPublicKey(alg Algorithm, raw []byte) (PubKey, error) {
	switch alg {
	case Ed25519:
		return UnmarshalEd25519PublicKey(raw)
	case Secp256k1:
		return UnmarshalSecp256k1PublicKey(raw)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// UnmarshalPrivateKey returns a private key of the given algorithm from its raw bytes.
func UnmarshalPrivateKey(alg Algorithm, raw []byte) (PrivKey, error) {
	switch alg {
	case Ed25519:
		return UnmarshalEd25519PrivateKey(raw)
	case Secp256k1:
		return UnmarshalSecp256k1PrivateKey(raw)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
