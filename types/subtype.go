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
	"github.com/hashicorp/go-set/v3"
)

// Context answers subtype judgments over the nominal hierarchy.
// A Context caches super-type closures and is not safe for concurrent use.
type Context struct {
	closures map[*Shape][]*Nominal
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{closures: make(map[*Shape][]*Nominal)}
}

// Supers returns the direct super-types of n, with n's type arguments substituted.
func (c *Context) Supers(n *Nominal) []*Nominal {
	if len(n.Shape.Supers) == 0 {
		return nil
	}
	b := shapeBindings(n)
	supers := make([]*Nominal, len(n.Shape.Supers))
	for i, s := range n.Shape.Supers {
		if b.Len() == 0 {
			supers[i] = s
			continue
		}
		supers[i] = Substitute(s, b).(*Nominal)
	}
	return supers
}

func shapeBindings(n *Nominal) Bindings {
	if len(n.Shape.Formals) == 0 || len(n.Args) != len(n.Shape.Formals) {
		return EmptyBindings
	}
	b := NewBindingsBuilder()
	for i, f := range n.Shape.Formals {
		if n.Args[i] != Type(f) {
			b.Set(f, n.Args[i])
		}
	}
	return b.Build()
}

// Levels returns the super-type graph of n breadth-first, one slice per level, excluding n.
// Each shape is visited once.
func (c *Context) Levels(n *Nominal) [][]*Nominal {
	seen := set.New[*Shape](8)
	seen.Insert(n.Shape)
	var levels [][]*Nominal
	frontier := []*Nominal{n}
	for len(frontier) > 0 {
		var next []*Nominal
		for _, t := range frontier {
			for _, s := range c.Supers(t) {
				if seen.Insert(s.Shape) {
					next = append(next, s)
				}
			}
		}
		if len(next) > 0 {
			levels = append(levels, next)
		}
		frontier = next
	}
	return levels
}

// Closure returns ts and all of their super-types, breadth-first, without duplicate shapes.
func (c *Context) Closure(ts ...*Nominal) []*Nominal {
	seen := set.New[*Shape](8)
	var out []*Nominal
	for _, t := range ts {
		if seen.Insert(t.Shape) {
			out = append(out, t)
		}
	}
	for i := 0; i < len(out); i++ {
		for _, s := range c.Supers(out[i]) {
			if seen.Insert(s.Shape) {
				out = append(out, s)
			}
		}
	}
	return out
}

// AsSuper returns the application of shape which n extends, or nil.
func (c *Context) AsSuper(n *Nominal, shape *Shape) *Nominal {
	if n.Shape == shape {
		return n
	}
	if len(n.Shape.Formals) == 0 {
		for _, s := range c.shapeClosure(n.Shape) {
			if s.Shape == shape {
				return s
			}
		}
		return nil
	}
	for _, s := range c.Closure(n) {
		if s.Shape == shape {
			return s
		}
	}
	return nil
}

func (c *Context) shapeClosure(s *Shape) []*Nominal {
	if cl, ok := c.closures[s]; ok {
		return cl
	}
	cl := c.Closure(s.Type())
	c.closures[s] = cl
	return cl
}

// CommonSupers returns the nearest super-types shared by every type in ts.
func (c *Context) CommonSupers(ts []*Nominal) []*Nominal {
	if len(ts) == 0 {
		return nil
	}
	common := c.Closure(ts[0])
	for _, t := range ts[1:] {
		var kept []*Nominal
		for _, s := range common {
			if super := c.AsSuper(t, s.Shape); super != nil && Equal(super, s) {
				kept = append(kept, s)
			}
		}
		common = kept
	}
	// Drop types which are super-types of other common types.
	var nearest []*Nominal
	for i, s := range common {
		masked := false
		for j, o := range common {
			if i != j && o.Shape != s.Shape && c.AsSuper(o, s.Shape) != nil {
				masked = true
				break
			}
		}
		if !masked {
			nearest = append(nearest, s)
		}
	}
	return nearest
}

// IsSubtype reports whether a value of type sub may be used where super is expected.
// The invalid sentinel and unbound solver variables are compatible with everything.
func (c *Context) IsSubtype(sub, super Type) bool {
	sub, super = RealType(sub), RealType(super)
	if sub == nil || super == nil {
		return false
	}
	if sub == super || IsInvalid(sub) || IsInvalid(super) {
		return true
	}
	if _, ok := sub.(*Var); ok {
		return true
	}
	if _, ok := super.(*Var); ok {
		return true
	}
	if sub == Type(Never) {
		return true
	}
	if u, ok := sub.(*UnionType); ok {
		for _, m := range u.Members {
			if !c.IsSubtype(m, super) {
				return false
			}
		}
		return true
	}
	if i, ok := super.(*Intersection); ok {
		for _, m := range i.Members {
			if !c.IsSubtype(sub, m) {
				return false
			}
		}
		return true
	}
	if u, ok := super.(*UnionType); ok {
		for _, m := range u.Members {
			if c.IsSubtype(sub, m) {
				return true
			}
		}
		return false
	}
	if i, ok := sub.(*Intersection); ok {
		for _, m := range i.Members {
			if c.IsSubtype(m, super) {
				return true
			}
		}
		return false
	}

	switch super := super.(type) {
	case *Special:
		return super == AnyValue && isValue(sub)
	case *Formal:
		return false
	case *TypeToken:
		tok, ok := sub.(*TypeToken)
		return ok && Equal(tok.Of, super.Of)
	case *Nominal:
		switch sub := sub.(type) {
		case *Nominal:
			return c.nominalSubtype(sub, super)
		case *Formal:
			return c.formalSubtype(sub, super)
		case *Sig:
			if m := super.Shape.FunctionalMethod(); m != nil && m.Sig != nil {
				method := SubstituteSig(m.Sig, shapeBindings(super)).Curry()
				return c.IsSubtype(sub, method)
			}
		}
		return false
	case *Sig:
		switch sub := sub.(type) {
		case *Sig:
			return c.sigSubtype(sub, super)
		case *Formal:
			return c.formalSubtype(sub, super)
		}
		return false
	}
	return false
}

func isValue(t Type) bool {
	if s, ok := t.(*Special); ok {
		return s.Kind == KindAnyValue
	}
	return true
}

func (c *Context) formalSubtype(sub *Formal, super Type) bool {
	for _, u := range sub.Upper {
		if c.IsSubtype(u, super) {
			return true
		}
	}
	return false
}

func (c *Context) nominalSubtype(sub, super *Nominal) bool {
	s := c.AsSuper(sub, super.Shape)
	if s == nil || len(s.Args) != len(super.Args) {
		return false
	}
	for i := range s.Args {
		if !c.IsSubtype(s.Args[i], super.Args[i]) || !c.IsSubtype(super.Args[i], s.Args[i]) {
			return false
		}
	}
	return true
}

func (c *Context) sigSubtype(sub, super *Sig) bool {
	if len(sub.Formals) != len(super.Formals) {
		return false
	}
	if len(sub.Formals) > 0 {
		b := NewBindingsBuilder()
		for i, f := range sub.Formals {
			b.Set(f, super.Formals[i])
		}
		sub = SubstituteSig(sub, b.Build())
	}
	subMin, subMax := sub.Arity()
	superMin, superMax := super.Arity()
	if subMin > superMin {
		return false
	}
	if subMax >= 0 && (superMax < 0 || subMax < superMax) {
		return false
	}
	n := super.ParamCount()
	for i := 0; i < n; i++ {
		p := super.Param(i)
		if p == nil {
			break
		}
		if !c.IsSubtype(p, sub.Param(i)) {
			return false
		}
	}
	if super.Return == Type(Void) {
		return true
	}
	return c.IsSubtype(sub.Return, super.Return)
}

// Disjoint reports whether no value can have both types a and b.
func (c *Context) Disjoint(a, b Type) bool {
	a, b = RealType(a), RealType(b)
	if IsInvalid(a) || IsInvalid(b) {
		return false
	}
	for _, x := range Members(a) {
		for _, y := range Members(b) {
			if !c.disjointMembers(RealType(x), RealType(y)) {
				return false
			}
		}
	}
	return true
}

func (c *Context) disjointMembers(a, b Type) bool {
	if c.IsSubtype(a, b) || c.IsSubtype(b, a) {
		return false
	}
	as, aSpecial := a.(*Special)
	bs, bSpecial := b.(*Special)
	switch {
	case aSpecial && bSpecial:
		return as != AnyValue && bs != AnyValue
	case aSpecial:
		return as == Null || as == Void
	case bSpecial:
		return bs == Null || bs == Void
	}
	an, ok1 := a.(*Nominal)
	bn, ok2 := b.(*Nominal)
	if !ok1 || !ok2 {
		return false
	}
	// Distinct classes share no instances; an interface may be implemented by either.
	return an.Shape.Kind == Class && bn.Shape.Kind == Class && an.Shape != bn.Shape
}
