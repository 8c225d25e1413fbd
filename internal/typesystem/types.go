// Package typesystem parses written type expressions such as
// `&Result<str, num>` into ParamType trees.
package typesystem

import (
	"strings"

	"github.com/funvibe/surf/internal/token"
)

// ParamType is a parsed type expression. A node without Params is a leaf
// (a builtin or a class name). IsReference is set only when the written
// type opened with '&'; the sigil never appears in the children.
type ParamType struct {
	Name        string
	Params      []*ParamType
	Raw         []token.Token
	IsReference bool
}

func (p *ParamType) IsLeaf() bool {
	return len(p.Params) == 0
}

// GenericCount is the number of type arguments written for this node.
func (p *ParamType) GenericCount() int {
	return len(p.Params)
}

// IsBuiltin reports whether the node names one of the language's data types.
func (p *ParamType) IsBuiltin() bool {
	if len(p.Raw) == 0 {
		return false
	}
	head := p.Raw[0]
	if p.IsReference && len(p.Raw) > 1 {
		head = p.Raw[1]
	}
	return token.IsDataType(head.Type)
}

func (p *ParamType) String() string {
	var sb strings.Builder
	if p.IsReference {
		sb.WriteByte('&')
	}
	sb.WriteString(p.Name)
	if len(p.Params) > 0 {
		sb.WriteByte('<')
		for i, param := range p.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(param.String())
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

// Equal compares two types structurally, ignoring source positions.
func (p *ParamType) Equal(other *ParamType) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Name != other.Name || p.IsReference != other.IsReference || len(p.Params) != len(other.Params) {
		return false
	}
	for i := range p.Params {
		if !p.Params[i].Equal(other.Params[i]) {
			return false
		}
	}
	return true
}
