package principal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icidkit/icid/util/crypto"
)

const (
	ed25519PubB64     = "HeNS5EzTM2clk/IzSnMOGAqvKQ3omqFtSA3llONOKWE="
	ed25519Principal  = "yhnve-5y5qy-svqjc-aiobw-3a53m-n2gzt-xlrvn-s7kld-r5xid-td2ef-iae"
	secp256k1PubB64   = "BBz+IZWfHzq8STHpP6u3hU/DOJS6Fy5m3ewbQautk0Vd3u79WEhh0/0gvh886bxxFK9et89Fi2sBc4LDysmVe4g="
	secp256k1Principl = "m7bn6-s5er4-xouui-ymkqf-azncv-qfche-3qghk-2fvpm-atfyh-ozg2w-iqe"
)

func decode(t *testing.T, s string) []byte {
	b, err := crypto.DecodeBytesFromString(s)
	require.NoError(t, err)
	return b
}

func TestFromPublicKey(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		p, err := FromPublicKey(crypto.Ed25519, decode(t, ed25519PubB64))
		require.NoError(t, err)
		assert.Equal(t, ed25519Principal, p.String())
		assert.Equal(t, SelfAuthenticating, p.Class())
		assert.Equal(t, 29, p.Len())
	})
	t.Run("secp256k1", func(t *testing.T) {
		p, err := FromPublicKey(crypto.Secp256k1, decode(t, secp256k1PubB64))
		require.NoError(t, err)
		assert.Equal(t, secp256k1Principl, p.String())
	})
	t.Run("secp256k1 without prefix", func(t *testing.T) {
		p, err := FromPublicKey(crypto.Secp256k1, decode(t, secp256k1PubB64)[1:])
		require.NoError(t, err)
		assert.Equal(t, secp256k1Principl, p.String())
	})
	t.Run("key object", func(t *testing.T) {
		pub, err := crypto.UnmarshalPublicKey(crypto.Ed25519, decode(t, ed25519PubB64))
		require.NoError(t, err)
		p, err := FromPubKey(pub)
		require.NoError(t, err)
		assert.Equal(t, ed25519Principal, p.String())
	})
	t.Run("errors", func(t *testing.T) {
		_, err := FromPublicKey(crypto.Ed25519, make([]byte, 31))
		require.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
		_, err = FromPublicKey(crypto.Algorithm(3), make([]byte, 32))
		require.ErrorIs(t, err, crypto.ErrUnsupportedAlgorithm)
	})
}

func TestWellKnown(t *testing.T) {
	assert.Equal(t, "aaaaa-aa", ManagementCanister.String())
	assert.Equal(t, "2vxsx-fae", Anonymous.String())
	assert.True(t, Anonymous.IsAnonymous())
	assert.Equal(t, AnonymousClass, Anonymous.Class())
	assert.Equal(t, Opaque, ManagementCanister.Class())

	ledger, err := FromBytes([]byte{0, 0, 0, 0, 0, 0, 0, 2, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, "ryjl3-tyaaa-aaaaa-aaaba-cai", ledger.String())
	assert.Equal(t, Opaque, ledger.Class())
}

func TestFromText(t *testing.T) {
	for _, text := range []string{
		ed25519Principal,
		secp256k1Principl,
		"aaaaa-aa",
		"2vxsx-fae",
		"ryjl3-tyaaa-aaaaa-aaaba-cai",
		"rrkah-fqaaa-aaaaa-aaaaq-cai",
	} {
		t.Run(text, func(t *testing.T) {
			p, err := FromText(text)
			require.NoError(t, err)
			assert.Equal(t, text, p.String())
			again, err := FromBytes(p.Bytes())
			require.NoError(t, err)
			assert.True(t, p == again)
			assert.True(t, p.Equal(again))
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, text := range []string{
			"",
			"aaa",
			"not a principal",
			strings.ToUpper(ed25519Principal),
			strings.ReplaceAll(ed25519Principal, "-", ""),
		} {
			_, err := FromText(text)
			assert.ErrorIs(t, err, ErrInvalidText, text)
		}
	})
	t.Run("checksum", func(t *testing.T) {
		// last data character flipped, checksum still from the original bytes
		bad := "ryjl3-tyaaa-aaaaa-aaaba-caa"
		_, err := FromText(bad)
		require.Error(t, err)
	})
	t.Run("too long", func(t *testing.T) {
		_, err := FromBytes(make([]byte, 30))
		require.ErrorIs(t, err, ErrTooLong)
	})
}

func TestPrincipal_JSON(t *testing.T) {
	type wrapper struct {
		Owner Principal `json:"owner"`
	}
	in := wrapper{Owner: MustFromText(ed25519Principal)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"`+ed25519Principal+`"}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	require.Error(t, json.Unmarshal([]byte(`{"owner":"bogus"}`), &out))
}

func TestFromEncoded_Independent(t *testing.T) {
	der, err := crypto.EncodePublicKey(crypto.Ed25519, decode(t, ed25519PubB64))
	require.NoError(t, err)
	a := FromEncoded(der)
	der[20] ^= 0xff
	b := FromEncoded(der)
	assert.NotEqual(t, a, b)
	assert.Equal(t, ed25519Principal, a.String())
}
