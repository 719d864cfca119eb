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

// ShapeKind distinguishes concrete classes from interfaces.
type ShapeKind uint8

const (
	// Classes are final; they may not be extended.
	Class ShapeKind = iota
	Interface
)

// Shape is the declared interface of a nominal type.
type Shape struct {
	Name    string
	Kind    ShapeKind
	Formals []*Formal
	// Supers are the direct super-types, expressed in terms of Formals.
	Supers  []*Nominal
	Members []*Member
	// Constructors take the constructor arguments, without the instance being constructed.
	Constructors []*Sig
	// Functional marks an interface whose single method may be implemented by a function value.
	Functional bool
}

// NewShape creates a shape. Members added with AddMember are attached to it.
func NewShape(name string, kind ShapeKind, formals ...*Formal) *Shape {
	return &Shape{Name: name, Kind: kind, Formals: formals}
}

// Type returns the shape applied to its own formals.
func (s *Shape) Type() *Nominal {
	args := make([]Type, len(s.Formals))
	for i, f := range s.Formals {
		args[i] = f
	}
	return &Nominal{Shape: s, Args: args}
}

// AddSuper declares a direct super-type.
func (s *Shape) AddSuper(super *Nominal) { s.Supers = append(s.Supers, super) }

// AddMember attaches m to the shape and returns it.
func (s *Shape) AddMember(m *Member) *Member {
	m.Shape = s
	if m.Name == "" {
		m.Name = s.Name + "." + m.Symbol
	}
	s.Members = append(s.Members, m)
	return m
}

// MembersFor returns the members declared directly on the shape for a symbol.
func (s *Shape) MembersFor(symbol string) []*Member {
	var ms []*Member
	for _, m := range s.Members {
		if m.Symbol == symbol {
			ms = append(ms, m)
		}
	}
	return ms
}

// FunctionalMethod returns the single abstract method of a functional interface.
func (s *Shape) FunctionalMethod() *Member {
	if !s.Functional {
		return nil
	}
	var found *Member
	for _, m := range s.Members {
		if m.Kind != Method || m.MethodKind != Normal {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}

type MemberKind uint8

const (
	Property MemberKind = iota
	Method
	StaticProperty
)

func (k MemberKind) String() string {
	switch k {
	case Property:
		return "property"
	case Method:
		return "method"
	default:
		return "static property"
	}
}

type MethodKind uint8

const (
	Normal MethodKind = iota
	Getter
	Setter
	Constructor
)

type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

type Openness uint8

const (
	Final Openness = iota
	Open
)

// Member is a property, method or static property declared on a shape.
type Member struct {
	Shape  *Shape
	Name   string
	Symbol string
	Kind   MemberKind
	// MethodKind distinguishes getters and setters from ordinary methods.
	MethodKind MethodKind
	// Sig is the signature of a method; its first parameter is the instance.
	Sig *Sig
	// Type is the type of a property or static property.
	Type       Type
	Visibility Visibility
	Openness   Openness
	// Settable marks properties which may be assigned.
	Settable bool

	overridden []*Member
	linked     bool
}

// Overridden returns the members which m overrides. It is empty until m is linked.
func (m *Member) Overridden() []*Member { return m.overridden }

// Linked reports whether overrides have been computed for m.
func (m *Member) Linked() bool { return m.linked }

// SetOverridden records the overridden members. It reports false if m was already linked;
// the recorded set is not changed in that case.
func (m *Member) SetOverridden(ms []*Member) bool {
	if m.linked {
		return false
	}
	m.overridden, m.linked = ms, true
	return true
}

// Overrides reports whether m overrides other, directly or through a chain of overrides.
func (m *Member) Overrides(other *Member) bool {
	for _, o := range m.overridden {
		if o == other || o.Overrides(other) {
			return true
		}
	}
	return false
}

// Arity is the number of parameters of a method, not counting the instance.
func (m *Member) Arity() int {
	if m.Sig == nil {
		return 0
	}
	return m.Sig.ParamCount() - 1
}

// Extension is a function declared outside a shape which may be called with member syntax.
type Extension struct {
	Name   string
	Symbol string
	// Sig of an instance extension takes the receiver as its first parameter.
	Sig *Sig
	// Static extensions are called on a type rather than a value.
	Static bool
	// Extends is the shape a static extension applies to.
	Extends *Shape
}

type Priority uint8

const (
	Default Priority = iota
	Fallback
)

// Callee is one candidate of an overload set.
type Callee struct {
	Sig      *Sig
	Priority Priority
}

// Variants is an overload group. A cover function has a covering signature which is solved
// first, then narrowed among the primary variants; the fallback is used only when no primary
// variant matches.
type Variants struct {
	Cover    *Sig
	Primary  []*Sig
	Fallback *Sig
}

// SingleVariant wraps one signature.
func SingleVariant(sig *Sig) *Variants { return &Variants{Primary: []*Sig{sig}} }

// IsCover reports whether the group has a covering signature.
func (v *Variants) IsCover() bool { return v.Cover != nil }

// Callees expands the group for solving: the cover (or the primary variants) first, then the fallback.
func (v *Variants) Callees() []Callee {
	var cs []Callee
	if v.Cover != nil {
		cs = append(cs, Callee{Sig: v.Cover})
	} else {
		for _, s := range v.Primary {
			cs = append(cs, Callee{Sig: s})
		}
	}
	if v.Fallback != nil {
		cs = append(cs, Callee{Sig: v.Fallback, Priority: Fallback})
	}
	return cs
}
