package crypto

import (
	"fmt"
	"strings"
)

// Algorithm selects the signature scheme of a key pair. The numeric values
// are part of the native boundary and must not change.
type Algorithm int32

const (
	Ed25519   Algorithm = 0
	Secp256k1 Algorithm = 1
)

func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("algorithm(%d)", int32(a))
	}
}

func (a Algorithm) Valid() bool {
	return a == Ed25519 || a == Secp256k1
}

// ParseAlgorithm accepts the names returned by Algorithm.String, case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ed25519":
		return Ed25519, nil
	case "secp256k1", "k256":
		return Secp256k1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int32(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAlgorithm(string(text))
	return
}
