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

// Type is the base interface for all types. There is a single representation of types;
// nominal types, function signatures, unions and intersections are all built from it.
type Type interface {
	TypeName() string
	// IsGeneric reports whether the type mentions a type formal.
	IsGeneric() bool
}

func (t *Special) TypeName() string      { return "Special" }
func (t *Nominal) TypeName() string      { return "Nominal" }
func (t *Formal) TypeName() string       { return "Formal" }
func (t *Sig) TypeName() string          { return "Sig" }
func (t *UnionType) TypeName() string    { return "Union" }
func (t *Intersection) TypeName() string { return "Intersection" }
func (t *TypeToken) TypeName() string    { return "TypeToken" }
func (t *Var) TypeName() string          { return "Var" }

func (t *Special) IsGeneric() bool { return false }
func (t *Formal) IsGeneric() bool  { return true }

func (t *Nominal) IsGeneric() bool { return anyGeneric(t.Args) }

func (t *Sig) IsGeneric() bool {
	if len(t.Formals) > 0 || anyGeneric(t.Required) || anyGeneric(t.Optional) {
		return true
	}
	if t.Rest != nil && t.Rest.IsGeneric() {
		return true
	}
	return t.Return != nil && t.Return.IsGeneric()
}

func (t *UnionType) IsGeneric() bool    { return anyGeneric(t.Members) }
func (t *Intersection) IsGeneric() bool { return anyGeneric(t.Members) }
func (t *TypeToken) IsGeneric() bool    { return t.Of != nil && t.Of.IsGeneric() }

func (t *Var) IsGeneric() bool {
	if r := RealType(t); r != Type(t) {
		return r.IsGeneric()
	}
	return false
}

func anyGeneric(ts []Type) bool {
	for _, t := range ts {
		if t != nil && t.IsGeneric() {
			return true
		}
	}
	return false
}

// SpecialKind distinguishes the built-in non-nominal types.
type SpecialKind uint8

const (
	// The invalid sentinel: type computation failed here.
	KindInvalid SpecialKind = iota
	// Any non-null value.
	KindAnyValue
	// No value produced.
	KindVoid
	// No value is ever produced; control does not return.
	KindNever
	// The type of the null literal.
	KindNull
	// The failure channel of an operation which may fail.
	KindBubble
)

// Special is one of the distinguished built-in types. Specials are singletons.
type Special struct {
	Kind SpecialKind
}

var (
	Invalid  = &Special{KindInvalid}
	AnyValue = &Special{KindAnyValue}
	Void     = &Special{KindVoid}
	Never    = &Special{KindNever}
	Null     = &Special{KindNull}
	Bubble   = &Special{KindBubble}
)

// IsInvalid reports whether t is (or contains at its top level) the invalid sentinel.
func IsInvalid(t Type) bool {
	switch t := RealType(t).(type) {
	case nil:
		return false
	case *Special:
		return t.Kind == KindInvalid
	case *UnionType:
		for _, m := range t.Members {
			if IsInvalid(m) {
				return true
			}
		}
	}
	return false
}

// Nominal type application: `List<Int>`
type Nominal struct {
	Shape *Shape
	Args  []Type
}

// NewNominal creates an application of shape to args.
func NewNominal(shape *Shape, args ...Type) *Nominal {
	return &Nominal{Shape: shape, Args: args}
}

// Formal is a type parameter declared by a type shape or a function signature.
type Formal struct {
	// Id should be unique within a compilation.
	Id   int
	Name string
	// Upper bounds; AnyValue when empty.
	Upper []Type
}

// NewFormal creates a type formal with optional upper bounds.
func NewFormal(id int, name string, upper ...Type) *Formal {
	return &Formal{Id: id, Name: name, Upper: upper}
}

// Sig is a function signature: `fn<T>(Int, String = ..., ...T): T`
type Sig struct {
	Formals  []*Formal
	Required []Type
	Optional []Type
	// Rest is the element type of a variadic parameter, or nil.
	Rest   Type
	Return Type
}

// Variadic reports whether the signature accepts any number of trailing arguments.
func (t *Sig) Variadic() bool { return t.Rest != nil }

// Arity returns the minimum and maximum argument count. max is -1 for variadic signatures.
func (t *Sig) Arity() (min, max int) {
	min = len(t.Required)
	if t.Rest != nil {
		return min, -1
	}
	return min, min + len(t.Optional)
}

// Accepts reports whether argc arguments may be passed.
func (t *Sig) Accepts(argc int) bool {
	min, max := t.Arity()
	return argc >= min && (max < 0 || argc <= max)
}

// Param returns the declared type of the parameter receiving argument i, or nil.
func (t *Sig) Param(i int) Type {
	switch {
	case i < 0:
		return nil
	case i < len(t.Required):
		return t.Required[i]
	case i < len(t.Required)+len(t.Optional):
		return t.Optional[i-len(t.Required)]
	default:
		return t.Rest
	}
}

// ParamCount is the number of declared parameters, counting a rest parameter once.
func (t *Sig) ParamCount() int {
	n := len(t.Required) + len(t.Optional)
	if t.Rest != nil {
		n++
	}
	return n
}

// Curry returns the signature with its first parameter captured.
func (t *Sig) Curry() *Sig {
	c := *t
	switch {
	case len(t.Required) > 0:
		c.Required = t.Required[1:]
	case len(t.Optional) > 0:
		c.Optional = t.Optional[1:]
	}
	return &c
}

// UnionType is `A | B`; build it with Union.
type UnionType struct {
	Members []Type
}

// Intersection type: `A & B`
type Intersection struct {
	Members []Type
}

// TypeToken is the type of an expression which denotes a type rather than a value.
type TypeToken struct {
	Of Type
}

// Var is a solver variable. Variables only exist while a batch of calls is being solved.
type Var struct {
	link  Type
	id    int32
	Lower []Type
	Upper []Type
}

// NewVar creates an unbound variable.
func NewVar(id int) *Var { return &Var{id: int32(id)} }

func (tv *Var) Id() int          { return int(tv.id) }
func (tv *Var) Link() Type       { return tv.link }
func (tv *Var) IsLinkVar() bool  { return tv.link != nil }
func (tv *Var) SetLink(t Type)   { tv.link = t }
func (tv *Var) UnsafeUnsetLink() { tv.link = nil }

// Flatten a chain of linked variables.
func (tv *Var) Flatten() {
	if tv.link != nil {
		tv.link = RealType(tv.link)
	}
}

// RealType returns the underlying type for a chain of linked variables.
func RealType(t Type) Type {
	for {
		tv, ok := t.(*Var)
		if !ok || tv.link == nil {
			return t
		}
		t = tv.link
	}
}
