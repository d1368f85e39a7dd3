package identity

import (
	"io"

	"github.com/icidkit/icid/util/crypto"
)

// EntropySource supplies a recovery phrase when the caller has none.
type EntropySource interface {
	Mnemonic() (crypto.Mnemonic, error)
}

// NewRandomSource generates fresh phrases of words words from r.
// r must be a cryptographically secure reader.
func NewRandomSource(r io.Reader, words int) EntropySource {
	return randomSource{gen: crypto.NewMnemonicGeneratorWithReader(r), words: words}
}

type randomSource struct {
	gen   crypto.MnemonicGenerator
	words int
}

func (s randomSource) Mnemonic() (crypto.Mnemonic, error) {
	return s.gen.WithWordCount(s.words)
}

// FixedSource always returns the same phrase. Every identity it yields is
// known to whoever knows the phrase, so it is meant for tests and vectors.
type FixedSource crypto.Mnemonic

func (s FixedSource) Mnemonic() (crypto.Mnemonic, error) {
	return crypto.Mnemonic(s), nil
}
