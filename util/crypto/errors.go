package crypto

import (
	"errors"

	"github.com/icidkit/icid/util/errcode"
)

var (
	errGroup = errcode.ErrGroup(100)

	ErrInvalidPhrase         = errGroup.Register(errors.New("invalid recovery phrase"), 1)
	ErrUnsupportedAlgorithm  = errGroup.Register(errors.New("unsupported algorithm"), 2)
	ErrInvalidKeyLength      = errGroup.Register(errors.New("invalid key length"), 3)
	ErrInvalidWordCount      = errGroup.Register(errors.New("invalid word count for mnemonic"), 4)
	ErrEncodingFailure       = errGroup.Register(errors.New("encoding failure"), 5)
	ErrIncorrectKeyType      = errGroup.Register(errors.New("incorrect key type"), 6)
	ErrInvalidDerivationPath = errGroup.Register(errors.New("invalid derivation path"), 7)
	ErrInvalidKey            = errGroup.Register(errors.New("invalid key"), 8)
)
