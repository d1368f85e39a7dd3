package crypto

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPhrase12 Mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPhrase24 Mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"
)

func TestMnemonic(t *testing.T) {
	for _, wc := range []int{12, 15, 18, 21, 24} {
		phrase, err := NewMnemonicGenerator().WithWordCount(wc)
		require.NoError(t, err)
		parts := strings.Split(string(phrase), " ")
		require.Equal(t, wc, len(parts))
		require.NoError(t, phrase.Validate())
		seed, err := phrase.Seed()
		require.NoError(t, err)
		require.Len(t, seed, SeedSize)
	}
	_, err := NewMnemonicGenerator().WithWordCount(13)
	require.ErrorIs(t, err, ErrInvalidWordCount)
}

func TestMnemonic_Seed(t *testing.T) {
	seed, err := testPhrase12.Seed()
	require.NoError(t, err)
	assert.Equal(t, "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4", hex.EncodeToString(seed))

	seed, err = testPhrase24.Seed()
	require.NoError(t, err)
	assert.Equal(t, "408b285c123836004f4b8842c89324c1f01382450c0d439af345ba7fc49acf70", hex.EncodeToString(seed[:32]))

	t.Run("whitespace is normalized", func(t *testing.T) {
		messy := Mnemonic("  " + strings.ReplaceAll(string(testPhrase12), " ", " \t ") + "\n")
		seed2, err := messy.Seed()
		require.NoError(t, err)
		seed1, _ := testPhrase12.Seed()
		assert.Equal(t, seed1, seed2)
	})
}

func TestMnemonic_Invalid(t *testing.T) {
	for name, phrase := range map[string]Mnemonic{
		"bad checksum": "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon",
		"unknown word": "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon zzzz",
		"wrong count":  "abandon abandon abandon",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := phrase.Seed()
			require.ErrorIs(t, err, ErrInvalidPhrase)
			require.ErrorIs(t, phrase.Validate(), ErrInvalidPhrase)
		})
	}
}

func TestMnemonicGenerator_Reader(t *testing.T) {
	zero := bytes.NewReader(make([]byte, 32))
	phrase, err := NewMnemonicGeneratorWithReader(zero).WithWordCount(24)
	require.NoError(t, err)
	assert.Equal(t, testPhrase24, phrase)

	entropy, err := phrase.Entropy()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), entropy)

	_, err = NewMnemonicGeneratorWithReader(bytes.NewReader(nil)).WithWordCount(12)
	require.Error(t, err)
}
