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

package typer

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/wdamron/typer/types"
)

// LinkOverrides computes the members m overrides, once per member. Super-types are searched
// breadth-first from m's shape; the search stops at the first level where an overridden member
// is found. Private members and static properties override nothing.
func LinkOverrides(ctx *types.Context, m *types.Member) []*types.Member {
	if m.Linked() {
		return m.Overridden()
	}
	if m.Shape == nil || m.Visibility == types.Private || m.Kind == types.StaticProperty ||
		m.MethodKind == types.Constructor {
		m.SetOverridden(nil)
		return nil
	}
	found := set.New[*types.Member](2)
	var out []*types.Member
	for _, level := range ctx.Levels(m.Shape.Type()) {
		for _, super := range level {
			for _, o := range super.Shape.MembersFor(m.Symbol) {
				if o.Kind != m.Kind || o.MethodKind != m.MethodKind || o.Visibility == types.Private {
					continue
				}
				if m.Kind == types.Method && !overridesMethod(ctx, m, o, super) {
					continue
				}
				if found.Insert(o) {
					out = append(out, o)
				}
			}
		}
		if len(out) > 0 {
			break
		}
	}
	m.SetOverridden(out)
	return out
}

// overridesMethod reports whether method m may override o, declared on super. Arity, variadic-ness
// and the number of type formals must agree; o's formals are rebound to m's. Each parameter of m
// after the instance must accept the corresponding parameter of o, and m's result must fit o's.
func overridesMethod(ctx *types.Context, m, o *types.Member, super *types.Nominal) bool {
	ms, os := m.Sig, o.Sig
	if ms == nil || os == nil {
		return false
	}
	mMin, mMax := ms.Arity()
	oMin, oMax := os.Arity()
	if mMin != oMin || mMax != oMax || ms.Variadic() != os.Variadic() || len(ms.Formals) != len(os.Formals) {
		return false
	}
	b := nominalBindings(super).Builder()
	for i, f := range os.Formals {
		b = b.Set(f, ms.Formals[i])
	}
	sup := types.SubstituteSig(os, b.Build())
	for i := 1; i < ms.ParamCount(); i++ {
		if !ctx.IsSubtype(sup.Param(i), ms.Param(i)) {
			return false
		}
	}
	if sup.Return == types.Type(types.Void) {
		return true
	}
	return ctx.IsSubtype(ms.Return, sup.Return)
}
