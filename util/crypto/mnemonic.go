package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of the stretched BIP-39 seed.
const SeedSize = 64

type MnemonicGenerator struct {
	rand io.Reader
}

// NewMnemonicGenerator returns a generator reading entropy from crypto/rand.
func NewMnemonicGenerator() MnemonicGenerator {
	return MnemonicGenerator{rand: rand.Reader}
}

// NewMnemonicGeneratorWithReader returns a generator reading entropy from r.
func NewMnemonicGeneratorWithReader(r io.Reader) MnemonicGenerator {
	return MnemonicGenerator{rand: r}
}

// Mnemonic is a BIP-39 recovery phrase.
type Mnemonic string

func (g MnemonicGenerator) WithWordCount(wc int) (Mnemonic, error) {
	size := 0
	switch wc {
	case 12:
		size = 128
	case 15:
		size = 160
	case 18:
		size = 192
	case 21:
		size = 224
	case 24:
		size = 256
	default:
		return "", ErrInvalidWordCount
	}
	return g.WithRandomEntropy(size)
}

func (g MnemonicGenerator) WithRandomEntropy(size int) (Mnemonic, error) {
	if size%32 != 0 || size < 128 || size > 256 {
		return "", fmt.Errorf("%w: entropy size %d", ErrInvalidWordCount, size)
	}
	src := g.rand
	if src == nil {
		src = rand.Reader
	}
	entropy := make([]byte, size/8)
	if _, err := io.ReadFull(src, entropy); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return g.WithEntropy(entropy)
}

func (g MnemonicGenerator) WithEntropy(b []byte) (Mnemonic, error) {
	mnemonic, err := bip39.NewMnemonic(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidWordCount, err)
	}
	return Mnemonic(mnemonic), nil
}

// Normalized collapses runs of whitespace into single spaces. The seed is
// computed over this form.
func (m Mnemonic) Normalized() Mnemonic {
	return Mnemonic(strings.Join(strings.Fields(string(m)), " "))
}

func (m Mnemonic) WordCount() int {
	return len(strings.Fields(string(m)))
}

// Validate checks every word against the english wordlist and verifies the checksum.
func (m Mnemonic) Validate() error {
	if _, err := bip39.MnemonicToByteArray(string(m.Normalized())); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPhrase, err)
	}
	return nil
}

// Seed stretches the phrase into a 64-byte seed with an empty passphrase.
func (m Mnemonic) Seed() ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(string(m.Normalized()), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhrase, err)
	}
	return seed, nil
}

// Entropy returns the entropy bytes encoded by the phrase.
func (m Mnemonic) Entropy() ([]byte, error) {
	b, err := bip39.EntropyFromMnemonic(string(m.Normalized()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhrase, err)
	}
	return b, nil
}
