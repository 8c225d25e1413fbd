// Package ext is the boundary to foreign headers. The front end never parses
// header files itself; it consumes a Summary of the symbols a header
// declares, produced by a HeaderReader and cached per header location.
package ext

import "fmt"

type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindClass    SymbolKind = "class"
)

// Symbol is one declaration exported by a header.
type Symbol struct {
	Name         string     `yaml:"name"`
	Kind         SymbolKind `yaml:"kind"`
	GenericCount int        `yaml:"generics,omitempty"`
	Reference    bool       `yaml:"reference,omitempty"`
	Methods      []Symbol   `yaml:"methods,omitempty"`
}

// Summary lists the symbols declared by the header at Location.
type Summary struct {
	Location string   `yaml:"location"`
	Symbols  []Symbol `yaml:"symbols"`
}

// HeaderReader produces the summary of a foreign header.
type HeaderReader interface {
	ReadHeader(path string) (*Summary, error)
}

// Lookup returns the symbol called name.
func (s *Summary) Lookup(name string) (Symbol, bool) {
	if s == nil {
		return Symbol{}, false
	}
	for _, sym := range s.Symbols {
		if sym.Name == name {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Class returns the class called name.
func (s *Summary) Class(name string) (Symbol, bool) {
	sym, ok := s.Lookup(name)
	if !ok || sym.Kind != KindClass {
		return Symbol{}, false
	}
	return sym, true
}

// Validate rejects summaries a reader should never produce.
func (s *Summary) Validate() error {
	seen := make(map[string]bool, len(s.Symbols))
	for _, sym := range s.Symbols {
		if sym.Name == "" {
			return fmt.Errorf("%s: symbol without a name", s.Location)
		}
		if sym.Kind != KindFunction && sym.Kind != KindClass {
			return fmt.Errorf("%s: symbol %q has unknown kind %q", s.Location, sym.Name, sym.Kind)
		}
		if sym.GenericCount < 0 {
			return fmt.Errorf("%s: symbol %q has a negative generic count", s.Location, sym.Name)
		}
		if seen[sym.Name] {
			return fmt.Errorf("%s: symbol %q declared twice", s.Location, sym.Name)
		}
		seen[sym.Name] = true
	}
	return nil
}

// Set is the union of the summaries visible to one program.
type Set []*Summary

// Class finds a class in any summary of the set.
func (set Set) Class(name string) (Symbol, *Summary, bool) {
	for _, s := range set {
		if sym, ok := s.Class(name); ok {
			return sym, s, true
		}
	}
	return Symbol{}, nil, false
}

// Lookup finds a symbol of any kind in any summary of the set.
func (set Set) Lookup(name string) (Symbol, *Summary, bool) {
	for _, s := range set {
		if sym, ok := s.Lookup(name); ok {
			return sym, s, true
		}
	}
	return Symbol{}, nil, false
}
