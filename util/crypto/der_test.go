package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePublicKey(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		raw := make([]byte, 32)
		for i := range raw {
			raw[i] = byte(i)
		}
		der, err := EncodePublicKey(Ed25519, raw)
		require.NoError(t, err)
		require.Len(t, der, 44)
		assert.Equal(t, "302a300506032b6570032100", hex.EncodeToString(der[:12]))
		assert.Equal(t, raw, der[12:])
	})
	t.Run("ed25519 wrong length", func(t *testing.T) {
		_, err := EncodePublicKey(Ed25519, make([]byte, 31))
		require.ErrorIs(t, err, ErrInvalidKeyLength)
		_, err = EncodePublicKey(Ed25519, make([]byte, 33))
		require.ErrorIs(t, err, ErrInvalidKeyLength)
	})
	t.Run("secp256k1 uncompressed", func(t *testing.T) {
		raw := make([]byte, 65)
		raw[0] = 0x04
		raw[64] = 0xaa
		der, err := EncodePublicKey(Secp256k1, raw)
		require.NoError(t, err)
		require.Len(t, der, 88)
		assert.Equal(t, "3056301006072a8648ce3d020106052b8104000a034200", hex.EncodeToString(der[:23]))
		assert.Equal(t, raw, der[23:])
	})
	t.Run("secp256k1 raw is normalized", func(t *testing.T) {
		raw := make([]byte, 64)
		raw[63] = 0xaa
		der, err := EncodePublicKey(Secp256k1, raw)
		require.NoError(t, err)
		require.Len(t, der, 88)
		assert.Equal(t, byte(0x04), der[23])
		assert.Equal(t, raw, der[24:])

		withPrefix := append([]byte{0x04}, raw...)
		der2, err := EncodePublicKey(Secp256k1, withPrefix)
		require.NoError(t, err)
		assert.Equal(t, der, der2)
	})
	t.Run("secp256k1 wrong length", func(t *testing.T) {
		_, err := EncodePublicKey(Secp256k1, make([]byte, 63))
		require.ErrorIs(t, err, ErrInvalidKeyLength)
		_, err = EncodePublicKey(Secp256k1, make([]byte, 33))
		require.ErrorIs(t, err, ErrInvalidKeyLength)
	})
	t.Run("secp256k1 wrong prefix", func(t *testing.T) {
		raw := make([]byte, 65)
		raw[0] = 0x02
		_, err := EncodePublicKey(Secp256k1, raw)
		require.ErrorIs(t, err, ErrInvalidKeyLength)
	})
	t.Run("unsupported", func(t *testing.T) {
		_, err := EncodePublicKey(Algorithm(7), make([]byte, 32))
		require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})
	t.Run("does not alias input", func(t *testing.T) {
		raw := make([]byte, 65)
		raw[0] = 0x04
		norm, err := NormalizeSecp256k1PublicKey(raw)
		require.NoError(t, err)
		norm[1] = 0xff
		assert.Equal(t, byte(0), raw[1])
	})
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("Ed25519")
	require.NoError(t, err)
	assert.Equal(t, Ed25519, alg)
	alg, err = ParseAlgorithm("secp256k1")
	require.NoError(t, err)
	assert.Equal(t, Secp256k1, alg)
	_, err = ParseAlgorithm("p256")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	assert.Equal(t, "algorithm(9)", Algorithm(9).String())
}
