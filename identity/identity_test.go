package identity

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icidkit/icid/util/crypto"
)

const testPhrase crypto.Mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

func TestDerive_Vectors(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		data, err := Derive(crypto.Ed25519, testPhrase)
		require.NoError(t, err)
		assert.Equal(t, "HeNS5EzTM2clk/IzSnMOGAqvKQ3omqFtSA3llONOKWE=", data.PublicKey)
		assert.Equal(t, "QIsoXBI4NgBPS4hCyJMkwfATgkUMDUOa80W6f8Saz3A=", data.PrivateKey)
		assert.Equal(t, "yhnve-5y5qy-svqjc-aiobw-3a53m-n2gzt-xlrvn-s7kld-r5xid-td2ef-iae", data.PrincipalText)
	})
	t.Run("secp256k1", func(t *testing.T) {
		data, err := Derive(crypto.Secp256k1, testPhrase)
		require.NoError(t, err)
		assert.Equal(t, "BBz+IZWfHzq8STHpP6u3hU/DOJS6Fy5m3ewbQautk0Vd3u79WEhh0/0gvh886bxxFK9et89Fi2sBc4LDysmVe4g=", data.PublicKey)
		assert.Equal(t, "Yb+9dY8vXeoLiLMSqhpHbE4MhT2HkGRk0Ai8NkBcD/I=", data.PrivateKey)
		assert.Equal(t, "m7bn6-s5er4-xouui-ymkqf-azncv-qfche-3qghk-2fvpm-atfyh-ozg2w-iqe", data.PrincipalText)
	})
}

func TestDerive_Deterministic(t *testing.T) {
	for _, alg := range []crypto.Algorithm{crypto.Ed25519, crypto.Secp256k1} {
		d1, err := Derive(alg, testPhrase)
		require.NoError(t, err)
		d2, err := Derive(alg, "  "+testPhrase+"\n")
		require.NoError(t, err)
		assert.Equal(t, d1, d2, alg.String())
	}
}

func TestDerive_RoundTrip(t *testing.T) {
	for _, alg := range []crypto.Algorithm{crypto.Ed25519, crypto.Secp256k1} {
		data, err := Derive(alg, testPhrase)
		require.NoError(t, err)
		raw, err := crypto.DecodeBytesFromString(data.PublicKey)
		require.NoError(t, err)
		text, err := PrincipalFromPublicKey(alg, raw)
		require.NoError(t, err)
		assert.Equal(t, data.PrincipalText, text, alg.String())
	}
}

func TestDeriveKeyPair_Sign(t *testing.T) {
	for _, alg := range []crypto.Algorithm{crypto.Ed25519, crypto.Secp256k1} {
		kp, err := DeriveKeyPair(alg, testPhrase)
		require.NoError(t, err)
		assert.Equal(t, alg, kp.Algorithm)
		msg := []byte("hello")
		sig, err := kp.PrivKey.Sign(msg)
		require.NoError(t, err)
		ok, err := kp.PubKey.Verify(msg, sig)
		require.NoError(t, err)
		assert.True(t, ok, alg.String())
	}
}

func TestDerive_Errors(t *testing.T) {
	t.Run("empty phrase", func(t *testing.T) {
		_, err := Derive(crypto.Ed25519, "   ")
		assert.ErrorIs(t, err, ErrMissingPhrase)
	})
	t.Run("bad checksum", func(t *testing.T) {
		_, err := Derive(crypto.Ed25519, "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon")
		assert.ErrorIs(t, err, crypto.ErrInvalidPhrase)
	})
	t.Run("unknown word", func(t *testing.T) {
		_, err := Derive(crypto.Secp256k1, "notaword abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about")
		assert.ErrorIs(t, err, crypto.ErrInvalidPhrase)
	})
	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := Derive(crypto.Algorithm(7), testPhrase)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedAlgorithm)
	})
}

func TestPrincipalFromPublicKey_Invalid(t *testing.T) {
	_, err := PrincipalFromPublicKey(crypto.Ed25519, make([]byte, 31))
	require.Error(t, err)
	assert.True(t, errors.Is(err, crypto.ErrInvalidKeyLength))
	_, err = PrincipalFromPublicKey(crypto.Secp256k1, bytes.Repeat([]byte{1}, 65))
	require.Error(t, err)
}
