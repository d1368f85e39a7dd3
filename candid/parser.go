package candid

import (
	"strings"
)

type Option func(p *parser)

// WithRejectDuplicates makes a repeated method name a syntax error reported
// at the repeated declaration. By default every declaration is kept.
func WithRejectDuplicates() Option {
	return func(p *parser) {
		p.rejectDuplicates = true
	}
}

// Parse parses interface text. It either returns the whole interface or the
// first *SyntaxError; there is no partial result.
func Parse(text string, opts ...Option) (*Interface, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{
		src:      text,
		toks:     toks,
		types:    make(map[string]string),
		funcs:    make(map[string]funcSig),
		services: make(map[string][]Method),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.parse()
}

type funcSig struct {
	args   []string
	rets   []string
	kind   MethodKind
	oneway bool
}

type parser struct {
	src  string
	toks []token
	pos  int

	rejectDuplicates bool

	types    map[string]string
	funcs    map[string]funcSig
	services map[string][]Method
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return newSyntaxError(p.src, t.offset, format, args...)
}

func (p *parser) expect(punct string) (token, error) {
	t := p.next()
	if !t.is(punct) {
		return t, p.errorf(t, "expected %q, got %s", punct, t.describe())
	}
	return t, nil
}

func (p *parser) isKeyword(word string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == word
}

func (p *parser) joinFrom(start int) string {
	parts := make([]string, 0, p.pos-start)
	for _, t := range p.toks[start:p.pos] {
		parts = append(parts, t.text)
	}
	return strings.Join(parts, " ")
}

func (p *parser) parse() (*Interface, error) {
	for {
		t := p.peek()
		switch {
		case p.isKeyword("import"):
			if err := p.parseImport(); err != nil {
				return nil, err
			}
		case p.isKeyword("type"):
			if err := p.parseTypeDef(); err != nil {
				return nil, err
			}
		case p.isKeyword("service"):
			iface, err := p.parseActor()
			if err != nil {
				return nil, err
			}
			if p.peek().is(";") {
				p.next()
			}
			if t = p.peek(); t.kind != tokEOF {
				return nil, p.errorf(t, "unexpected %s after service declaration", t.describe())
			}
			if len(p.types) > 0 {
				iface.Types = p.types
			}
			return iface, nil
		case t.kind == tokEOF:
			return nil, p.errorf(t, "missing service declaration")
		default:
			return nil, p.errorf(t, "unexpected %s, expected type, import or service", t.describe())
		}
	}
}

// import ["service"] "file" ;
func (p *parser) parseImport() error {
	p.next()
	if p.isKeyword("service") {
		p.next()
	}
	if t := p.next(); t.kind != tokText {
		return p.errorf(t, "expected file name, got %s", t.describe())
	}
	_, err := p.expect(";")
	return err
}

// type Name = <type> ;
func (p *parser) parseTypeDef() error {
	p.next()
	nameTok := p.next()
	if nameTok.kind != tokIdent {
		return p.errorf(nameTok, "expected type name, got %s", nameTok.describe())
	}
	if _, err := p.expect("="); err != nil {
		return err
	}
	start := p.pos
	switch {
	case p.isKeyword("service"):
		p.next()
		methods, err := p.parseServiceRef()
		if err != nil {
			return err
		}
		p.services[nameTok.text] = methods
	case p.isKeyword("func"):
		p.next()
		sig, err := p.parseFuncSig()
		if err != nil {
			return err
		}
		p.funcs[nameTok.text] = sig
	default:
		if _, err := p.parseType(false); err != nil {
			return err
		}
	}
	p.types[nameTok.text] = p.joinFrom(start)
	_, err := p.expect(";")
	return err
}

// service [name] : [(<init args>) ->] ({ ... } | TypeName)
func (p *parser) parseActor() (*Interface, error) {
	p.next()
	iface := &Interface{}
	if t := p.peek(); t.kind == tokIdent {
		iface.Name = p.next().text
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	if p.peek().is("(") {
		initArgs, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect("->"); err != nil {
			return nil, err
		}
		iface.InitArgs = initArgs
	}
	methods, err := p.parseServiceRef()
	if err != nil {
		return nil, err
	}
	iface.Methods = methods
	return iface, nil
}

func (p *parser) parseServiceRef() ([]Method, error) {
	t := p.peek()
	switch {
	case t.is("{"):
		return p.parseServiceBody()
	case t.kind == tokIdent:
		p.next()
		methods, ok := p.services[t.text]
		if !ok {
			return nil, p.errorf(t, "unknown service type %q", t.text)
		}
		return append([]Method{}, methods...), nil
	default:
		return nil, p.errorf(t, "expected '{' or service type name, got %s", t.describe())
	}
}

func (p *parser) parseServiceBody() ([]Method, error) {
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	methods := []Method{}
	seen := make(map[string]struct{})
	for {
		t := p.peek()
		if t.is("}") {
			p.next()
			return methods, nil
		}
		m, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[m.Name]; dup && p.rejectDuplicates {
			return nil, p.errorf(t, "duplicate method %q", m.Name)
		}
		seen[m.Name] = struct{}{}
		methods = append(methods, m)

		switch sep := p.peek(); {
		case sep.is(";"):
			p.next()
		case sep.is("}"):
		default:
			return nil, p.errorf(sep, "expected ';' or '}' after method %q, got %s", m.Name, sep.describe())
		}
	}
}

// name : (args) -> (rets) [annotations] | name : FuncTypeName
func (p *parser) parseMethod() (m Method, err error) {
	nameTok := p.next()
	switch nameTok.kind {
	case tokIdent:
		m.Name = nameTok.text
	case tokText:
		var ok bool
		if m.Name, ok = unquote(nameTok.text); !ok {
			return m, p.errorf(nameTok, "invalid method name %s", nameTok.text)
		}
	default:
		return m, p.errorf(nameTok, "expected method name, got %s", nameTok.describe())
	}
	if _, err = p.expect(":"); err != nil {
		return
	}

	var sig funcSig
	switch t := p.peek(); {
	case t.is("("):
		if sig, err = p.parseFuncSig(); err != nil {
			return
		}
	case t.kind == tokIdent:
		p.next()
		var ok bool
		if sig, ok = p.funcs[t.text]; !ok {
			return m, p.errorf(t, "unknown function type %q", t.text)
		}
	default:
		return m, p.errorf(t, "expected '(' or function type name, got %s", t.describe())
	}
	m.Args = append([]string{}, sig.args...)
	m.Rets = append([]string{}, sig.rets...)
	m.Kind = sig.kind
	m.Oneway = sig.oneway
	return m, nil
}

// (args) -> (rets) [query|composite_query|oneway]*
func (p *parser) parseFuncSig() (sig funcSig, err error) {
	if sig.args, err = p.parseTuple(); err != nil {
		return
	}
	if _, err = p.expect("->"); err != nil {
		return
	}
	if sig.rets, err = p.parseTuple(); err != nil {
		return
	}
	var kindSet bool
	for p.peek().kind == tokIdent {
		t := p.peek()
		if p.peekAt(1).is(":") {
			// next method, separator missing
			break
		}
		p.next()
		switch t.text {
		case "query", "composite_query":
			if kindSet {
				return sig, p.errorf(t, "conflicting annotation %q", t.text)
			}
			kindSet = true
			sig.kind = Query
			if t.text == "composite_query" {
				sig.kind = CompositeQuery
			}
		case "oneway":
			sig.oneway = true
		default:
			return sig, p.errorf(t, "unknown annotation %q", t.text)
		}
	}
	return sig, nil
}

// ( [name :] <type>, ... )
func (p *parser) parseTuple() ([]string, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	items := []string{}
	if p.peek().is(")") {
		p.next()
		return items, nil
	}
	for {
		if named := p.peek(); named.kind != tokPunct && named.kind != tokArrow && named.kind != tokEOF && p.peekAt(1).is(":") {
			p.pos += 2
		}
		item, err := p.parseType(true)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		t := p.next()
		switch {
		case t.is(")"):
			return items, nil
		case t.is(","):
			if p.peek().is(")") {
				p.next()
				return items, nil
			}
		default:
			return nil, p.errorf(t, "expected ',' or ')', got %s", t.describe())
		}
	}
}

var closing = map[string]string{"(": ")", "{": "}"}

// parseType consumes one opaque type up to a top-level delimiter, which is
// left unconsumed. In a tuple the delimiters are ',' and ')', otherwise ';'.
func (p *parser) parseType(inTuple bool) (string, error) {
	start := p.pos
	var (
		stack   []token
		sawFunc bool
	)
loop:
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			if len(stack) > 0 {
				open := stack[len(stack)-1]
				return "", p.errorf(open, "missing %q for %q", closing[open.text], open.text)
			}
			if inTuple {
				return "", p.errorf(t, "unexpected end of input, missing ')'")
			}
			return "", p.errorf(t, "unexpected end of input, missing ';'")
		case t.is("(") || t.is("{"):
			stack = append(stack, t)
		case t.is(")") || t.is("}"):
			if len(stack) == 0 {
				if inTuple && t.is(")") {
					break loop
				}
				return "", p.errorf(t, "unexpected %s", t.describe())
			}
			open := stack[len(stack)-1]
			if closing[open.text] != t.text {
				return "", p.errorf(t, "unexpected %s, missing %q for %q", t.describe(), closing[open.text], open.text)
			}
			stack = stack[:len(stack)-1]
		case t.is(","):
			if len(stack) == 0 {
				if inTuple {
					break loop
				}
				return "", p.errorf(t, "unexpected ','")
			}
		case t.is(";"):
			if len(stack) == 0 {
				if !inTuple {
					break loop
				}
				return "", p.errorf(t, "unexpected ';', missing ')'")
			}
			if stack[len(stack)-1].text != "{" {
				return "", p.errorf(t, "unexpected ';', missing ')'")
			}
		case t.is("="):
			return "", p.errorf(t, "unexpected '='")
		case t.kind == tokArrow:
			if len(stack) == 0 && !sawFunc {
				return "", p.errorf(t, "unexpected '->', missing ')'")
			}
		case t.kind == tokIdent && t.text == "func":
			sawFunc = true
		}
		p.next()
	}
	if p.pos == start {
		return "", p.errorf(p.peek(), "expected type, got %s", p.peek().describe())
	}
	return p.joinFrom(start), nil
}
