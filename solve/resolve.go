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

package solve

import (
	"github.com/pkg/errors"

	"github.com/wdamron/typer/types"
)

// resolve assigns every variable the union of its lower bounds, or the intersection of its upper
// bounds when it has no lower bound, then checks every recorded constraint under that assignment.
func (st *state) resolve() bool {
	if err := st.closeBounds(); err != nil {
		st.err = err
		return false
	}
	st.solved = make(map[*types.Var]types.Type)
	for i, in := range st.insts {
		for k, v := range in.vars {
			if st.solve(v, map[*types.Var]bool{}) != nil {
				continue
			}
			sig := st.batch.Calls[i].Candidates[in.cand].Sig
			f := sig.Formals[k]
			if types.Mentions(sig.Return, f) {
				st.err = errors.Wrapf(ErrUnsolved, "%s", types.TypeString(f))
				return false
			}
			// A formal which is neither constrained nor returned is unobservable.
			st.solved[v] = types.AnyValue
		}
	}
	for _, c := range st.constraints {
		sub, super := st.apply(c.sub), st.apply(c.super)
		if sub == nil || super == nil {
			st.err = errors.Wrap(ErrUnsolved, "constraint")
			return false
		}
		if !st.ctx.IsSubtype(sub, super) {
			st.err = mismatch(sub, super)
			return false
		}
	}
	return true
}

// closeBounds constrains each lower bound of a variable by each of its upper bounds where either
// mentions variables, until no new pair appears. This is how the result of a nested call meets the
// type expected of it.
func (st *state) closeBounds() error {
	done := make(map[[2]types.Type]bool)
	for round := 0; round < 4*st.nextVar+4; round++ {
		changed := false
		for _, in := range st.insts {
			if in == nil {
				continue
			}
			for _, v := range in.vars {
				for i := 0; i < len(v.Lower); i++ {
					for j := 0; j < len(v.Upper); j++ {
						l, u := v.Lower[i], v.Upper[j]
						key := [2]types.Type{l, u}
						if done[key] || (!hasVars(l) && !hasVars(u)) {
							continue
						}
						done[key], changed = true, true
						if err := st.constrain(l, u); err != nil {
							return err
						}
					}
				}
			}
		}
		if !changed {
			return nil
		}
	}
	return nil
}

func (st *state) solve(v *types.Var, visiting map[*types.Var]bool) types.Type {
	if t, ok := st.solved[v]; ok {
		return t
	}
	if visiting[v] {
		return nil
	}
	visiting[v] = true
	defer delete(visiting, v)

	var t types.Type
	var lowers []types.Type
	for _, l := range v.Lower {
		if r := st.applyVisiting(l, visiting); r != nil {
			lowers = append(lowers, r)
		}
	}
	if len(lowers) > 0 {
		t = types.Union(lowers...)
	} else {
		var uppers []types.Type
		for _, u := range v.Upper {
			if r := st.applyVisiting(u, visiting); r != nil {
				uppers = append(uppers, r)
			}
		}
		if len(uppers) > 0 {
			t = types.Intersect(uppers...)
		}
	}
	if t != nil {
		st.solved[v] = t
	}
	return t
}

func (st *state) apply(t types.Type) types.Type {
	return st.applyVisiting(t, map[*types.Var]bool{})
}

// applyVisiting replaces solved variables within t. It returns nil if some variable is unsolved.
func (st *state) applyVisiting(t types.Type, visiting map[*types.Var]bool) types.Type {
	switch t := types.RealType(t).(type) {
	case *types.Var:
		return st.solve(t, visiting)
	case *types.Nominal:
		if !hasVars(t) {
			return t
		}
		args, ok := st.applyList(t.Args, visiting)
		if !ok {
			return nil
		}
		return &types.Nominal{Shape: t.Shape, Args: args}
	case *types.Sig:
		if !hasVars(t) {
			return t
		}
		req, ok1 := st.applyList(t.Required, visiting)
		opt, ok2 := st.applyList(t.Optional, visiting)
		ret := st.applyVisiting(t.Return, visiting)
		if !ok1 || !ok2 || ret == nil {
			return nil
		}
		s := &types.Sig{Formals: t.Formals, Required: req, Optional: opt, Return: ret}
		if t.Rest != nil {
			if s.Rest = st.applyVisiting(t.Rest, visiting); s.Rest == nil {
				return nil
			}
		}
		return s
	case *types.UnionType:
		ms, ok := st.applyList(t.Members, visiting)
		if !ok {
			return nil
		}
		return types.Union(ms...)
	case *types.Intersection:
		ms, ok := st.applyList(t.Members, visiting)
		if !ok {
			return nil
		}
		return types.Intersect(ms...)
	case *types.TypeToken:
		of := st.applyVisiting(t.Of, visiting)
		if of == nil {
			return nil
		}
		return &types.TypeToken{Of: of}
	default:
		return t
	}
}

func (st *state) applyList(ts []types.Type, visiting map[*types.Var]bool) ([]types.Type, bool) {
	if len(ts) == 0 {
		return ts, true
	}
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		if out[i] = st.applyVisiting(t, visiting); out[i] == nil {
			return nil, false
		}
	}
	return out, true
}

func (st *state) result(i int) Result {
	c := &st.batch.Calls[i]
	in := st.insts[i]
	sig := c.Candidates[in.cand].Sig
	b := types.NewBindingsBuilder()
	for k, v := range in.vars {
		b.Set(sig.Formals[k], st.solved[v])
	}
	bindings := b.Build()
	solved := types.SubstituteSig(sig, bindings)
	r := Result{Index: in.cand, Bindings: bindings, Sig: solved, Type: solved.Return}
	for j, a := range c.Args {
		if a.Kind != NeedsBinding {
			continue
		}
		if r.Args == nil {
			r.Args = make([]types.Type, len(c.Args))
		}
		r.Args[j] = solved.Param(j)
	}
	return r
}
