package crypto

import (
	"fmt"
)

const (
	Ed25519PublicKeySize = 32

	// Secp256k1RawPublicKeySize is X‖Y without the uncompressed point prefix.
	Secp256k1RawPublicKeySize          = 64
	Secp256k1UncompressedPublicKeySize = 65

	uncompressedPointPrefix = 0x04
)

// SubjectPublicKeyInfo headers. Both are fixed byte strings: the key length is
// part of the header, so there is nothing to compute per key.
var (
	// SEQUENCE { SEQUENCE { OID 1.3.101.112 } BIT STRING (32 bytes) }
	ed25519DERPrefix = []byte{
		0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70, 0x03, 0x21, 0x00,
	}
	// SEQUENCE { SEQUENCE { OID ecPublicKey, OID secp256k1 } BIT STRING (65 bytes) }
	secp256k1DERPrefix = []byte{
		0x30, 0x56, 0x30, 0x10, 0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
		0x06, 0x05, 0x2b, 0x81, 0x04, 0x00, 0x0a, 0x03, 0x42, 0x00,
	}
)

// EncodePublicKey wraps a raw public key into its DER SubjectPublicKeyInfo
// envelope. Only lengths are checked; the point itself is not validated.
func EncodePublicKey(alg Algorithm, raw []byte) ([]byte, error) {
	switch alg {
	case Ed25519:
		if len(raw) != Ed25519PublicKeySize {
			return nil, fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d", ErrInvalidKeyLength, Ed25519PublicKeySize, len(raw))
		}
		return concat(ed25519DERPrefix, raw), nil
	case Secp256k1:
		key, err := NormalizeSecp256k1PublicKey(raw)
		if err != nil {
			return nil, err
		}
		return concat(secp256k1DERPrefix, key), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

// NormalizeSecp256k1PublicKey returns the 65-byte uncompressed form of a
// 64-byte X‖Y key, or a copy of an already prefixed 65-byte key.
func NormalizeSecp256k1PublicKey(raw []byte) ([]byte, error) {
	switch len(raw) {
	case Secp256k1RawPublicKeySize:
		return concat([]byte{uncompressedPointPrefix}, raw), nil
	case Secp256k1UncompressedPublicKeySize:
		if raw[0] != uncompressedPointPrefix {
			return nil, fmt.Errorf("%w: 65-byte secp256k1 public key must start with 0x04, got 0x%02x", ErrInvalidKeyLength, raw[0])
		}
		return concat(nil, raw), nil
	default:
		return nil, fmt.Errorf("%w: secp256k1 public key must be %d or %d bytes, got %d",
			ErrInvalidKeyLength, Secp256k1RawPublicKeySize, Secp256k1UncompressedPublicKeySize, len(raw))
	}
}

func concat(prefix, key []byte) []byte {
	buf := make([]byte, 0, len(prefix)+len(key))
	buf = append(buf, prefix...)
	return append(buf, key...)
}
