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

// Union combines types. Nested unions are flattened, duplicates and Never are dropped,
// and the invalid sentinel absorbs everything.
func Union(ts ...Type) Type {
	var members []Type
	var add func(t Type) bool
	add = func(t Type) bool {
		switch t := RealType(t).(type) {
		case nil:
		case *Special:
			switch t.Kind {
			case KindInvalid:
				return false
			case KindNever:
				return true
			}
			members = appendUnique(members, t)
		case *UnionType:
			for _, m := range t.Members {
				if !add(m) {
					return false
				}
			}
		default:
			members = appendUnique(members, t)
		}
		return true
	}
	for _, t := range ts {
		if !add(t) {
			return Invalid
		}
	}
	// AnyValue absorbs every other value type.
	for _, m := range members {
		if m == Type(AnyValue) {
			kept := members[:0:0]
			for _, m := range members {
				if s, ok := m.(*Special); ok && s.Kind != KindAnyValue && s.Kind != KindNever {
					kept = append(kept, m)
				}
			}
			members = append([]Type{AnyValue}, kept...)
			break
		}
	}
	switch len(members) {
	case 0:
		return Never
	case 1:
		return members[0]
	}
	return &UnionType{Members: members}
}

// Intersect combines types which must all hold. AnyValue is the identity.
func Intersect(ts ...Type) Type {
	var members []Type
	for _, t := range ts {
		switch t := RealType(t).(type) {
		case nil:
		case *Special:
			switch t.Kind {
			case KindInvalid, KindNever:
				return t
			case KindAnyValue:
				continue
			}
			members = appendUnique(members, t)
		case *Intersection:
			for _, m := range t.Members {
				members = appendUnique(members, m)
			}
		default:
			members = appendUnique(members, t)
		}
	}
	switch len(members) {
	case 0:
		return AnyValue
	case 1:
		return members[0]
	}
	return &Intersection{Members: members}
}

func appendUnique(ts []Type, t Type) []Type {
	for _, existing := range ts {
		if Equal(existing, t) {
			return ts
		}
	}
	return append(ts, t)
}

// Members returns the members of a union, or t itself.
func Members(t Type) []Type {
	if u, ok := RealType(t).(*UnionType); ok {
		return u.Members
	}
	return []Type{t}
}

// NoValue reports whether t has no value member: every member is Never or the failure channel.
func NoValue(t Type) bool {
	for _, m := range Members(t) {
		s, ok := RealType(m).(*Special)
		if !ok || (s.Kind != KindNever && s.Kind != KindBubble) {
			return false
		}
	}
	return true
}

// Nullable returns t | Null.
func Nullable(t Type) Type { return Union(t, Null) }

// IsNullable reports whether null is a member of t.
func IsNullable(t Type) bool { return hasSpecial(t, KindNull) }

// NonNull removes null from t.
func NonNull(t Type) Type { return withoutSpecial(t, KindNull) }

// HasBubble reports whether t includes the failure channel.
func HasBubble(t Type) bool { return hasSpecial(t, KindBubble) }

// ExcludeBubble removes the failure channel from t.
func ExcludeBubble(t Type) Type { return withoutSpecial(t, KindBubble) }

func hasSpecial(t Type, kind SpecialKind) bool {
	for _, m := range Members(t) {
		if s, ok := RealType(m).(*Special); ok && s.Kind == kind {
			return true
		}
	}
	return false
}

func withoutSpecial(t Type, kind SpecialKind) Type {
	t = RealType(t)
	u, ok := t.(*UnionType)
	if !ok {
		if s, ok := t.(*Special); ok && s.Kind == kind {
			return Never
		}
		return t
	}
	kept := make([]Type, 0, len(u.Members))
	for _, m := range u.Members {
		if s, ok := RealType(m).(*Special); ok && s.Kind == kind {
			continue
		}
		kept = append(kept, m)
	}
	return Union(kept...)
}

// Equal reports whether a and b are structurally identical. Formals declared by two
// signatures are identified by position.
func Equal(a, b Type) bool { return equal(a, b, nil) }

func equal(a, b Type, formals map[*Formal]*Formal) bool {
	a, b = RealType(a), RealType(b)
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch a := a.(type) {
	case *Special:
		return false
	case *Formal:
		bf, ok := b.(*Formal)
		return ok && formals != nil && formals[a] == bf
	case *Nominal:
		bn, ok := b.(*Nominal)
		return ok && a.Shape == bn.Shape && equalLists(a.Args, bn.Args, formals)
	case *Sig:
		bs, ok := b.(*Sig)
		if !ok || len(a.Formals) != len(bs.Formals) {
			return false
		}
		if len(a.Formals) > 0 {
			m := make(map[*Formal]*Formal, len(formals)+len(a.Formals))
			for k, v := range formals {
				m[k] = v
			}
			for i, f := range a.Formals {
				m[f] = bs.Formals[i]
			}
			formals = m
		}
		if (a.Rest == nil) != (bs.Rest == nil) {
			return false
		}
		if a.Rest != nil && !equal(a.Rest, bs.Rest, formals) {
			return false
		}
		return equalLists(a.Required, bs.Required, formals) &&
			equalLists(a.Optional, bs.Optional, formals) &&
			equal(a.Return, bs.Return, formals)
	case *UnionType:
		bu, ok := b.(*UnionType)
		return ok && equalSets(a.Members, bu.Members, formals)
	case *Intersection:
		bi, ok := b.(*Intersection)
		return ok && equalSets(a.Members, bi.Members, formals)
	case *TypeToken:
		bt, ok := b.(*TypeToken)
		return ok && equal(a.Of, bt.Of, formals)
	}
	return false
}

func equalLists(a, b []Type, formals map[*Formal]*Formal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], formals) {
			return false
		}
	}
	return true
}

func equalSets(a, b []Type, formals map[*Formal]*Formal) bool {
	if len(a) != len(b) {
		return false
	}
Outer:
	for _, x := range a {
		for _, y := range b {
			if equal(x, y, formals) {
				continue Outer
			}
		}
		return false
	}
	return true
}

// Substitute replaces bound formals within t. Formals declared by a signature which are
// bound are removed from the resulting signature.
func Substitute(t Type, b Bindings) Type {
	if b.Len() == 0 || t == nil {
		return t
	}
	switch t := RealType(t).(type) {
	case *Formal:
		if actual, ok := b.Get(t); ok {
			return actual
		}
		return t
	case *Nominal:
		if !t.IsGeneric() {
			return t
		}
		return &Nominal{Shape: t.Shape, Args: substituteList(t.Args, b)}
	case *Sig:
		if !t.IsGeneric() {
			return t
		}
		return SubstituteSig(t, b)
	case *UnionType:
		return Union(substituteList(t.Members, b)...)
	case *Intersection:
		return Intersect(substituteList(t.Members, b)...)
	case *TypeToken:
		return &TypeToken{Of: Substitute(t.Of, b)}
	default:
		return t
	}
}

// SubstituteSig is Substitute specialized to signatures.
func SubstituteSig(t *Sig, b Bindings) *Sig {
	if t == nil || b.Len() == 0 {
		return t
	}
	s := &Sig{
		Required: substituteList(t.Required, b),
		Optional: substituteList(t.Optional, b),
		Return:   Substitute(t.Return, b),
	}
	if t.Rest != nil {
		s.Rest = Substitute(t.Rest, b)
	}
	for _, f := range t.Formals {
		if _, ok := b.Get(f); !ok {
			s.Formals = append(s.Formals, f)
		}
	}
	return s
}

func substituteList(ts []Type, b Bindings) []Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, b)
	}
	return out
}

// Mentions reports whether f occurs within t.
func Mentions(t Type, f *Formal) bool {
	found := false
	VisitFormals(t, func(g *Formal) {
		if g == f {
			found = true
		}
	})
	return found
}

// VisitFormals calls visit for every formal occurring within t.
func VisitFormals(t Type, visit func(*Formal)) {
	switch t := RealType(t).(type) {
	case *Formal:
		visit(t)
	case *Nominal:
		for _, a := range t.Args {
			VisitFormals(a, visit)
		}
	case *Sig:
		for _, p := range t.Required {
			VisitFormals(p, visit)
		}
		for _, p := range t.Optional {
			VisitFormals(p, visit)
		}
		if t.Rest != nil {
			VisitFormals(t.Rest, visit)
		}
		VisitFormals(t.Return, visit)
	case *UnionType:
		for _, m := range t.Members {
			VisitFormals(m, visit)
		}
	case *Intersection:
		for _, m := range t.Members {
			VisitFormals(m, visit)
		}
	case *TypeToken:
		VisitFormals(t.Of, visit)
	}
}
