// Package principal computes network addresses of identities and renders
// them in their canonical textual form.
package principal

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/multiformats/go-base32"

	"github.com/icidkit/icid/util/crypto"
	"github.com/icidkit/icid/util/errcode"
)

var (
	errGroup = errcode.ErrGroup(200)

	ErrInvalidText = errGroup.Register(errors.New("invalid principal text"), 1)
	ErrTooLong     = errGroup.Register(errors.New("principal is too long"), 2)
	ErrChecksum    = errGroup.Register(errors.New("principal checksum mismatch"), 3)
)

const (
	// MaxLength is the longest principal the network accepts.
	MaxLength = 29

	checksumLength = crc32.Size
	groupLength    = 5
)

// Class is the trailing tag byte of a principal.
type Class byte

const (
	Opaque             Class = 0x01
	SelfAuthenticating Class = 0x02
	Derived            Class = 0x03
	AnonymousClass     Class = 0x04
	Reserved           Class = 0x7f
)

func (c Class) String() string {
	switch c {
	case SelfAuthenticating:
		return "self-authenticating"
	case Derived:
		return "derived"
	case AnonymousClass:
		return "anonymous"
	case Reserved:
		return "reserved"
	default:
		return "opaque"
	}
}

var encoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

var (
	// ManagementCanister is the empty principal, "aaaaa-aa".
	ManagementCanister = Principal{}
	// Anonymous is the principal of unauthenticated callers, "2vxsx-fae".
	Anonymous = Principal{raw: string([]byte{byte(AnonymousClass)})}
)

// Principal is an immutable address. The zero value is the management canister.
// Principals are comparable with ==, which compares their bytes.
type Principal struct {
	raw string
}

// FromEncoded returns the self-authenticating principal of a DER-encoded public key.
func FromEncoded(der []byte) Principal {
	hash := sha256.Sum224(der)
	b := make([]byte, 0, len(hash)+1)
	b = append(b, hash[:]...)
	b = append(b, byte(SelfAuthenticating))
	return Principal{raw: string(b)}
}

// FromPublicKey encodes a raw public key and returns its self-authenticating principal.
func FromPublicKey(alg crypto.Algorithm, raw []byte) (Principal, error) {
	der, err := crypto.EncodePublicKey(alg, raw)
	if err != nil {
		return Principal{}, err
	}
	return FromEncoded(der), nil
}

// FromPubKey is FromPublicKey for a key object.
func FromPubKey(pub crypto.PubKey) (Principal, error) {
	der, err := pub.DER()
	if err != nil {
		return Principal{}, err
	}
	return FromEncoded(der), nil
}

func FromBytes(b []byte) (Principal, error) {
	if len(b) > MaxLength {
		return Principal{}, fmt.Errorf("%w: %d bytes", ErrTooLong, len(b))
	}
	return Principal{raw: string(b)}, nil
}

// FromText parses the canonical textual form. Anything that does not
// re-encode to exactly the same text is rejected, including upper case.
func FromText(text string) (Principal, error) {
	compact := strings.ReplaceAll(text, "-", "")
	decoded, err := encoding.DecodeString(compact)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidText, err)
	}
	if len(decoded) < checksumLength {
		return Principal{}, fmt.Errorf("%w: too short", ErrInvalidText)
	}
	p, err := FromBytes(decoded[checksumLength:])
	if err != nil {
		return Principal{}, err
	}
	if !bytes.Equal(decoded[:checksumLength], p.checksum()) {
		return Principal{}, ErrChecksum
	}
	if p.String() != text {
		return Principal{}, fmt.Errorf("%w: %q is not in canonical form", ErrInvalidText, text)
	}
	return p, nil
}

func MustFromText(text string) Principal {
	p, err := FromText(text)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Principal) checksum() []byte {
	sum := make([]byte, checksumLength)
	binary.BigEndian.PutUint32(sum, crc32.ChecksumIEEE([]byte(p.raw)))
	return sum
}

// String returns the lowercase base32 of checksum‖bytes grouped by five with dashes.
func (p Principal) String() string {
	buf := make([]byte, 0, checksumLength+len(p.raw))
	buf = append(buf, p.checksum()...)
	buf = append(buf, p.raw...)
	enc := encoding.EncodeToString(buf)

	var sb strings.Builder
	sb.Grow(len(enc) + len(enc)/groupLength)
	for i := 0; i < len(enc); i += groupLength {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := min(i+groupLength, len(enc))
		sb.WriteString(enc[i:end])
	}
	return sb.String()
}

func (p Principal) Bytes() []byte {
	return []byte(p.raw)
}

func (p Principal) Len() int {
	return len(p.raw)
}

func (p Principal) Equal(o Principal) bool {
	return p.raw == o.raw
}

// Class returns the tag of the principal. The empty principal is Opaque.
func (p Principal) Class() Class {
	if len(p.raw) == 0 {
		return Opaque
	}
	switch c := Class(p.raw[len(p.raw)-1]); c {
	case SelfAuthenticating, Derived, AnonymousClass, Reserved:
		return c
	}
	return Opaque
}

func (p Principal) IsAnonymous() bool {
	return p == Anonymous
}

func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Principal) UnmarshalText(text []byte) (err error) {
	*p, err = FromText(string(text))
	return
}
