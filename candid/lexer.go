package candid

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokText
	tokPunct
	tokArrow
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

func (t token) is(punct string) bool {
	return (t.kind == tokPunct || t.kind == tokArrow) && t.text == punct
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

const punctChars = "(){}:;,="

const bom = "\ufeff"

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// tokenize splits src into tokens, dropping whitespace and comments.
// The returned slice always ends with a tokEOF token. A leading byte order
// mark is skipped; offsets still count its bytes.
func tokenize(src string) ([]token, error) {
	var (
		toks []token
		i    int
	)
	if strings.HasPrefix(src, bom) {
		i = len(bom)
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
			} else {
				i += end + 1
			}
		case strings.HasPrefix(src[i:], "/*"):
			end, err := skipBlockComment(src, i)
			if err != nil {
				return nil, err
			}
			i = end
		case strings.HasPrefix(src[i:], "->"):
			toks = append(toks, token{kind: tokArrow, text: "->", offset: i})
			i += 2
		case strings.IndexByte(punctChars, c) >= 0:
			toks = append(toks, token{kind: tokPunct, text: src[i : i+1], offset: i})
			i++
		case c == '"':
			end, err := scanText(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokText, text: src[i:end], offset: i})
			i = end
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentChar(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], offset: start})
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i++
			for i < len(src) && (isIdentChar(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: src[start:i], offset: start})
		default:
			r, _ := utf8.DecodeRuneInString(src[i:])
			return nil, newSyntaxError(src, i, "unexpected character %q", r)
		}
	}
	toks = append(toks, token{kind: tokEOF, offset: len(src)})
	return toks, nil
}

// skipBlockComment returns the offset after the comment opened at start.
// Block comments nest.
func skipBlockComment(src string, start int) (int, error) {
	depth := 0
	i := start
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(src[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				return i, nil
			}
		default:
			i++
		}
	}
	return 0, newSyntaxError(src, start, "unterminated comment")
}

// scanText returns the offset after the string literal opened at start.
func scanText(src string, start int) (int, error) {
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, nil
		case '\n':
			return 0, newSyntaxError(src, start, "unterminated string")
		default:
			i++
		}
	}
	return 0, newSyntaxError(src, start, "unterminated string")
}

// unquote decodes a text literal token. Supported escapes are \n \r \t \\
// \" \' \HH and \u{X..}.
func unquote(lit string) (string, bool) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", false
	}
	body := lit[1 : len(lit)-1]
	if strings.IndexByte(body, '\\') < 0 {
		return body, true
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch e := body[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '"', '\'':
			sb.WriteByte(e)
		case 'u':
			if i+1 >= len(body) || body[i+1] != '{' {
				return "", false
			}
			end := strings.IndexByte(body[i:], '}')
			if end < 0 {
				return "", false
			}
			v, err := strconv.ParseUint(strings.ReplaceAll(body[i+2:i+end], "_", ""), 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", false
			}
			sb.WriteRune(rune(v))
			i += end
		default:
			if i+1 >= len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return "", false
			}
			sb.WriteByte(byte(v))
			i++
		}
	}
	return sb.String(), true
}
