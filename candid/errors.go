package candid

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/icidkit/icid/util/errcode"
)

var (
	errGroup = errcode.ErrGroup(400)

	ErrSyntax = errGroup.Register(errors.New("syntax error"), 1)
)

// SyntaxError reports the first structural violation in interface text.
// Offset is a byte offset, Line and Column are 1-based with Column counted in runes.
type SyntaxError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func newSyntaxError(src string, offset int, format string, args ...any) *SyntaxError {
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	if lineStart == 0 && strings.HasPrefix(before, bom) {
		lineStart = len(bom)
	}
	return &SyntaxError{
		Offset: offset,
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
