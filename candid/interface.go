// Package candid parses the service part of Candid interface descriptions.
// Types are kept opaque: the parser enumerates methods, their call kind and
// the textual form of each argument and result type.
package candid

import (
	"fmt"

	"github.com/icidkit/icid/util/slice"
)

type MethodKind int

const (
	Update MethodKind = iota
	Query
	CompositeQuery
)

func (k MethodKind) String() string {
	switch k {
	case Update:
		return "update"
	case Query:
		return "query"
	case CompositeQuery:
		return "composite_query"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k MethodKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MethodKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "update":
		*k = Update
	case "query":
		*k = Query
	case "composite_query":
		*k = CompositeQuery
	default:
		return fmt.Errorf("unknown method kind %q", text)
	}
	return nil
}

// Method is one callable entry of a service. Args and Rets hold type text with
// tokens separated by single spaces, in declaration order.
type Method struct {
	Name   string     `json:"name"`
	Kind   MethodKind `json:"kind"`
	Args   []string   `json:"args"`
	Rets   []string   `json:"rets"`
	Oneway bool       `json:"oneway,omitempty"`
}

type Interface struct {
	// Name is the optional name after the service keyword
	Name     string            `json:"name,omitempty"`
	Methods  []Method          `json:"methods"`
	InitArgs []string          `json:"init_args,omitempty"`
	Types    map[string]string `json:"types,omitempty"`
}

// Method returns the first method declared with name.
func (i *Interface) Method(name string) (Method, bool) {
	for _, m := range i.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Queries returns query and composite query methods.
func (i *Interface) Queries() []Method {
	return slice.Filter(i.Methods, func(m Method) bool { return m.Kind != Update })
}

func (i *Interface) Updates() []Method {
	return slice.Filter(i.Methods, func(m Method) bool { return m.Kind == Update })
}
