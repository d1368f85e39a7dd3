package crypto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// DerivationPath is a BIP-32 path with hardened indexes already offset.
type DerivationPath []uint32

// https://github.com/satoshilabs/slips/blob/master/slip-0044.md
const icpCoinType = 223

// DefaultSecp256k1Path is m/44'/223'/0'/0/0, the first external address of the first account.
var DefaultSecp256k1Path = DerivationPath{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + icpCoinType,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// ParseDerivationPath parses paths like "m/44'/223'/0'/0/0". Hardened
// components may be marked with ', h or H.
func ParseDerivationPath(path string) (DerivationPath, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || (parts[0] != "m" && parts[0] != "M") {
		return nil, fmt.Errorf("%w: %q must start with m/", ErrInvalidDerivationPath, path)
	}
	parts = parts[1:]
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %q has no components", ErrInvalidDerivationPath, path)
	}
	res := make(DerivationPath, 0, len(parts))
	for _, p := range parts {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H")
		if hardened {
			p = p[:len(p)-1]
		}
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil || v >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("%w: bad component %q in %q", ErrInvalidDerivationPath, p, path)
		}
		idx := uint32(v)
		if hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		res = append(res, idx)
	}
	return res, nil
}

func (p DerivationPath) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, idx := range p {
		sb.WriteByte('/')
		if idx >= hdkeychain.HardenedKeyStart {
			sb.WriteString(strconv.FormatUint(uint64(idx-hdkeychain.HardenedKeyStart), 10))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	}
	return sb.String()
}

// DeriveSecp256k1 treats seed as a BIP-32 master seed and walks path.
func DeriveSecp256k1(seed []byte, path DerivationPath) (PrivKey, error) {
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: master key: %v", ErrEncodingFailure, err)
	}
	key := masterKey
	for _, n := range path {
		if key, err = key.Derive(n); err != nil {
			return nil, fmt.Errorf("%w: derive %d: %v", ErrEncodingFailure, n, err)
		}
	}
	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailure, err)
	}
	return NewSecp256k1PrivKey(privateKey), nil
}
