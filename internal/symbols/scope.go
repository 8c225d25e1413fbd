// Package symbols tracks the names visible while a function body is walked.
package symbols

import (
	"github.com/funvibe/surf/internal/typesystem"
)

type OuterKind int

const (
	OuterFunction OuterKind = iota
	OuterImported
)

func (k OuterKind) String() string {
	if k == OuterImported {
		return "imported symbol"
	}
	return "function"
}

// Variable is a name bound in a frame.
type Variable struct {
	Name string
	Type *typesystem.ParamType
	// RefToHeap is set for references initialised from a heap allocation.
	RefToHeap bool
	// RefToParam is set for reference parameters and for references
	// initialised from one.
	RefToParam bool
	Trace      string
}

// IsReference reports whether the variable holds a reference.
func (v *Variable) IsReference() bool {
	return v.Type != nil && v.Type.IsReference
}

// Outer is a permanent name: a function or an imported symbol.
type Outer struct {
	Name   string
	Kind   OuterKind
	Origin string
}

type frame struct {
	order []*Variable
	names map[string]*Variable
}

// Scope is a stack of insertion-ordered frames on top of a permanent outer
// set of names. Collision checks look at every frame, not just the innermost.
type Scope struct {
	outer  map[string]Outer
	frames []*frame
}

func NewScope() *Scope {
	return &Scope{outer: make(map[string]Outer)}
}

// DeclareOuter adds a permanent name. The first declaration wins.
func (s *Scope) DeclareOuter(o Outer) {
	if _, ok := s.outer[o.Name]; !ok {
		s.outer[o.Name] = o
	}
}

// Push opens a frame: the parameters of a function or a `{ ... }` block.
func (s *Scope) Push() {
	s.frames = append(s.frames, &frame{names: make(map[string]*Variable)})
}

// Pop drops the innermost frame. It reports false when there is nothing to pop.
func (s *Scope) Pop() bool {
	if len(s.frames) == 0 {
		return false
	}
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// Depth is the number of frames on the stack.
func (s *Scope) Depth() int {
	return len(s.frames)
}

// Declare binds v in the innermost frame.
func (s *Scope) Declare(v *Variable) {
	if len(s.frames) == 0 {
		s.Push()
	}
	top := s.frames[len(s.frames)-1]
	top.order = append(top.order, v)
	top.names[v.Name] = v
}

// Lookup finds a variable, innermost frame first.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].names[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupOuter finds a permanent name.
func (s *Scope) LookupOuter(name string) (Outer, bool) {
	o, ok := s.outer[name]
	return o, ok
}

// Frame returns the variables of frame i (0 is the outermost) in
// declaration order.
func (s *Scope) Frame(i int) []*Variable {
	if i < 0 || i >= len(s.frames) {
		return nil
	}
	return s.frames[i].order
}

// Reset drops every frame but keeps the outer names.
func (s *Scope) Reset() {
	s.frames = nil
}
