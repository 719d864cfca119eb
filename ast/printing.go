// The MIT License (MIT)
//
// Copyright (c) 2019 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package ast

import (
	"strconv"
	"strings"

	"github.com/wdamron/typer/types"
)

// NodeString returns an s-expression representation of the subtree at id.
func (t *Tree) NodeString(id NodeID) string {
	var sb strings.Builder
	t.nodeString(&sb, id)
	return sb.String()
}

func (t *Tree) nodeString(sb *strings.Builder, id NodeID) {
	if id == NoNode {
		sb.WriteString("<none>")
		return
	}
	n := t.Node(id)
	switch n.Kind {
	case LeftName, RightName:
		if n.Name == nil {
			sb.WriteString("<name?>")
			return
		}
		sb.WriteString(n.Name.String())

	case Value:
		valueString(sb, n.Value)

	case Stay:
		sb.WriteString("(stay)")

	case Escape:
		sb.WriteString("(escape ...)")

	case Decl:
		sb.WriteString("(let ")
		t.children(sb, n.Children)
		if n.Decl != nil && n.Decl.Type != nil {
			sb.WriteString(": ")
			sb.WriteString(types.TypeString(n.Decl.Type))
		}
		sb.WriteByte(')')

	case Fun:
		sb.WriteString("(fn (")
		t.children(sb, n.Params())
		sb.WriteByte(')')
		if n.Fun != nil && n.Fun.Return != nil {
			sb.WriteString(": ")
			sb.WriteString(types.TypeString(n.Fun.Return))
		}
		sb.WriteByte(' ')
		t.nodeString(sb, n.Body())
		sb.WriteByte(')')

	case Block:
		sb.WriteString("(block")
		if len(n.Children) > 0 {
			sb.WriteByte(' ')
		}
		t.children(sb, n.Children)
		sb.WriteByte(')')

	case Call:
		sb.WriteByte('(')
		t.children(sb, n.Children)
		sb.WriteByte(')')
	}
}

func (t *Tree) children(sb *strings.Builder, ids []NodeID) {
	for i, c := range ids {
		if i > 0 {
			sb.WriteByte(' ')
		}
		t.nodeString(sb, c)
	}
}

func valueString(sb *strings.Builder, v *ValueInfo) {
	if v == nil {
		sb.WriteString("<value?>")
		return
	}
	switch v.Kind {
	case IntValue:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case StringValue:
		sb.WriteString(strconv.Quote(v.Str))
	case BoolValue:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case NullValue:
		sb.WriteString("null")
	case VoidValue:
		sb.WriteString("void")
	case TypeValue:
		sb.WriteByte('\\')
		sb.WriteString(types.TypeString(v.Type))
	case FnValue:
		if v.Fn == nil {
			sb.WriteString("<fn?>")
			return
		}
		switch {
		case v.Fn.Op == OpDot && v.Fn.Dot != nil:
			sb.WriteByte('.')
			sb.WriteString(v.Fn.Dot.Symbol)
			if v.Fn.Dot.Access != Get {
				sb.WriteByte(':')
				sb.WriteString(v.Fn.Dot.Access.String())
			}
		case v.Fn.Name != "":
			sb.WriteString(v.Fn.Name)
		default:
			sb.WriteString(v.Fn.Op.String())
		}
	}
}
