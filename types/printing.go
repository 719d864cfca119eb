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

package types

import (
	"strconv"
	"strings"
	"sync"
)

var printerPool = sync.Pool{
	New: func() interface{} {
		return &typePrinter{formals: make(map[*Formal]string, 8)}
	},
}

func newTypePrinter() *typePrinter { return printerPool.Get().(*typePrinter) }

func (p *typePrinter) Release() {
	for k := range p.formals {
		delete(p.formals, k)
	}
	p.sb.Reset()
	printerPool.Put(p)
}

type typePrinter struct {
	formals map[*Formal]string
	sb      strings.Builder
}

// TypeString returns a string representation of a Type.
func TypeString(t Type) string {
	p := newTypePrinter()
	typeString(p, false, t)
	s := p.sb.String()
	p.Release()
	return s
}

// TypeListString returns a comma-separated representation of ts.
func TypeListString(ts []Type) string {
	p := newTypePrinter()
	for i, t := range ts {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		typeString(p, false, t)
	}
	s := p.sb.String()
	p.Release()
	return s
}

func (p *typePrinter) formalName(f *Formal) string {
	if name, ok := p.formals[f]; ok {
		return name
	}
	name := f.Name
	if name == "" {
		name = "T" + strconv.Itoa(f.Id)
	}
	p.formals[f] = name
	return name
}

func typeString(p *typePrinter, simple bool, t Type) {
	switch t := t.(type) {
	case nil:
		p.sb.WriteString("<nil>")

	case *Special:
		switch t.Kind {
		case KindInvalid:
			p.sb.WriteString("Invalid")
		case KindAnyValue:
			p.sb.WriteString("AnyValue")
		case KindVoid:
			p.sb.WriteString("Void")
		case KindNever:
			p.sb.WriteString("Never")
		case KindNull:
			p.sb.WriteString("Null")
		case KindBubble:
			p.sb.WriteString("Bubble")
		}

	case *Var:
		if t.IsLinkVar() {
			typeString(p, simple, RealType(t))
			return
		}
		p.sb.WriteString("'_")
		p.sb.WriteString(strconv.Itoa(t.Id()))

	case *Formal:
		p.sb.WriteString(p.formalName(t))

	case *Nominal:
		p.sb.WriteString(t.Shape.Name)
		if len(t.Args) == 0 {
			return
		}
		p.sb.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			typeString(p, false, arg)
		}
		p.sb.WriteByte('>')

	case *TypeToken:
		p.sb.WriteString("Type<")
		typeString(p, false, t.Of)
		p.sb.WriteByte('>')

	case *Sig:
		if simple {
			p.sb.WriteByte('(')
		}
		p.sb.WriteString("fn")
		if len(t.Formals) > 0 {
			p.sb.WriteByte('<')
			for i, f := range t.Formals {
				if i > 0 {
					p.sb.WriteString(", ")
				}
				p.sb.WriteString(p.formalName(f))
			}
			p.sb.WriteByte('>')
		}
		p.sb.WriteByte('(')
		n := 0
		sep := func() {
			if n > 0 {
				p.sb.WriteString(", ")
			}
			n++
		}
		for _, param := range t.Required {
			sep()
			typeString(p, false, param)
		}
		for _, param := range t.Optional {
			sep()
			typeString(p, false, param)
			p.sb.WriteString(" = ...")
		}
		if t.Rest != nil {
			sep()
			p.sb.WriteString("...")
			typeString(p, true, t.Rest)
		}
		p.sb.WriteString("): ")
		typeString(p, true, t.Return)
		if simple {
			p.sb.WriteByte(')')
		}

	case *UnionType:
		if len(t.Members) == 2 {
			// Nullable types print as `T?`
			for i, m := range t.Members {
				if m == Type(Null) {
					typeString(p, true, t.Members[1-i])
					p.sb.WriteByte('?')
					return
				}
			}
		}
		typeSetString(p, simple, t.Members, " | ")

	case *Intersection:
		typeSetString(p, simple, t.Members, " & ")
	}
}

func typeSetString(p *typePrinter, simple bool, members []Type, sep string) {
	if simple {
		p.sb.WriteByte('(')
	}
	for i, m := range members {
		if i > 0 {
			p.sb.WriteString(sep)
		}
		typeString(p, true, m)
	}
	if simple {
		p.sb.WriteByte(')')
	}
}
