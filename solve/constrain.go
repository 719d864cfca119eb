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

	"github.com/wdamron/typer/internal/util"
	"github.com/wdamron/typer/types"
)

// inst is a candidate of a call with its formals replaced by fresh variables.
type inst struct {
	cand int
	vars []*types.Var
	sig  *types.Sig
}

type constraint struct {
	sub, super types.Type
}

// trailEntry restores the bounds of a variable on rollback.
type trailEntry struct {
	v            *types.Var
	lower, upper int
}

// txn marks a point the search may roll back to.
type txn struct {
	trail, constraints int
}

type state struct {
	ctx    *types.Context
	batch  *Batch
	viable [][]int
	order  []int
	insts  []*inst

	trail       []trailEntry
	constraints []constraint
	nextVar     int

	solved map[*types.Var]types.Type
	tried  int
	err    error
}

func newState(ctx *types.Context, b *Batch) *state {
	st := &state{
		ctx:    ctx,
		batch:  b,
		viable: make([][]int, len(b.Calls)),
		insts:  make([]*inst, len(b.Calls)),
	}
	for i, c := range b.Calls {
		// Default candidates are tried before fallbacks.
		for _, prio := range [...]types.Priority{types.Default, types.Fallback} {
			for j, cand := range c.Candidates {
				if cand.Priority == prio && cand.Sig != nil && cand.Sig.Accepts(len(c.Args)) {
					st.viable[i] = append(st.viable[i], j)
				}
			}
		}
	}
	st.order = st.dependencyOrder()
	return st
}

// dependencyOrder places each call after the calls its arguments refer to.
func (st *state) dependencyOrder() []int {
	n := len(st.batch.Calls)
	g := util.NewGraph(n)
	for i, c := range st.batch.Calls {
		for _, a := range c.Args {
			if a.Kind == CallRef && a.Ref >= 0 && a.Ref < n {
				g.AddEdge(i, a.Ref)
			}
		}
	}
	return g.DependencyOrder()
}

func (st *state) begin() txn { return txn{len(st.trail), len(st.constraints)} }

func (st *state) rollback(t txn) {
	for i := len(st.trail) - 1; i >= t.trail; i-- {
		e := st.trail[i]
		e.v.Lower, e.v.Upper = e.v.Lower[:e.lower], e.v.Upper[:e.upper]
	}
	st.trail, st.constraints = st.trail[:t.trail], st.constraints[:t.constraints]
}

func (st *state) addLower(v *types.Var, t types.Type) {
	st.trail = append(st.trail, trailEntry{v, len(v.Lower), len(v.Upper)})
	v.Lower = append(v.Lower, t)
}

func (st *state) addUpper(v *types.Var, t types.Type) {
	st.trail = append(st.trail, trailEntry{v, len(v.Lower), len(v.Upper)})
	v.Upper = append(v.Upper, t)
}

func (st *state) instantiate(call, cand int) *inst {
	sig := st.batch.Calls[call].Candidates[cand].Sig
	in := &inst{cand: cand, sig: sig}
	if len(sig.Formals) == 0 {
		return in
	}
	b := types.NewBindingsBuilder()
	for _, f := range sig.Formals {
		v := types.NewVar(st.nextVar)
		st.nextVar++
		in.vars = append(in.vars, v)
		b.Set(f, v)
	}
	in.sig = types.SubstituteSig(sig, b.Build())
	return in
}

// search chooses candidates for the calls in dependency order, backtracking on contradiction.
func (st *state) search(pos, max int) bool {
	if pos == len(st.order) {
		return st.resolve()
	}
	i := st.order[pos]
	for _, cand := range st.viable[i] {
		if st.tried >= max {
			st.err = ErrTooManyCombinations
			return false
		}
		st.tried++
		t := st.begin()
		st.insts[i] = st.instantiate(i, cand)
		err := st.constrainCall(i)
		if err == nil && st.search(pos+1, max) {
			return true
		}
		if err != nil {
			st.err = err
		}
		if st.err == ErrTooManyCombinations {
			return false
		}
		st.rollback(t)
		st.insts[i] = nil
	}
	return false
}

func (st *state) constrainCall(i int) error {
	c := &st.batch.Calls[i]
	in := st.insts[i]
	for j, a := range c.Args {
		param := in.sig.Param(j)
		var arg types.Type
		switch a.Kind {
		case Concrete:
			arg = a.Type
		case CallRef:
			if a.Ref < 0 || a.Ref >= len(st.insts) || st.insts[a.Ref] == nil {
				return errors.Errorf("argument %d refers to an unknown call", j)
			}
			arg = st.insts[a.Ref].sig.Return
			if a.Handled {
				arg = types.ExcludeBubble(arg)
			}
		case NeedsBinding:
			arg = a.Type
		}
		if arg == nil {
			continue
		}
		if err := st.constrain(arg, param); err != nil {
			return errors.Wrapf(err, "argument %d", j)
		}
	}
	if c.Context != nil {
		if err := st.constrain(in.sig.Return, c.Context); err != nil {
			return errors.Wrap(err, "result")
		}
	}
	for k, t := range c.Explicit {
		if k >= len(in.vars) || t == nil {
			continue
		}
		if err := st.constrain(t, in.vars[k]); err != nil {
			return err
		}
		if err := st.constrain(in.vars[k], t); err != nil {
			return err
		}
	}
	return nil
}

func mismatch(sub, super types.Type) error {
	return errors.Errorf("%s is not a subtype of %s", types.TypeString(sub), types.TypeString(super))
}

// constrain records that sub must be a subtype of super. Variables gather the bounds; concrete
// structure is decomposed.
func (st *state) constrain(sub, super types.Type) error {
	sub, super = types.RealType(sub), types.RealType(super)
	if sub == nil || super == nil || sub == super || types.IsInvalid(sub) || types.IsInvalid(super) {
		return nil
	}
	subVar, isSubVar := sub.(*types.Var)
	superVar, isSuperVar := super.(*types.Var)
	if isSuperVar || isSubVar {
		if isSuperVar {
			st.addLower(superVar, sub)
		}
		if isSubVar {
			st.addUpper(subVar, super)
		}
		st.constraints = append(st.constraints, constraint{sub, super})
		return nil
	}
	if !hasVars(sub) && !hasVars(super) {
		if st.ctx.IsSubtype(sub, super) {
			return nil
		}
		return mismatch(sub, super)
	}

	if u, ok := sub.(*types.UnionType); ok {
		for _, m := range u.Members {
			if err := st.constrain(m, super); err != nil {
				return err
			}
		}
		return nil
	}

	switch super := super.(type) {
	case *types.UnionType:
		return st.constrainUnion(sub, super)

	case *types.Nominal:
		switch sub := sub.(type) {
		case *types.Nominal:
			as := st.ctx.AsSuper(sub, super.Shape)
			if as == nil || len(as.Args) != len(super.Args) {
				return mismatch(sub, super)
			}
			for i := range as.Args {
				if err := st.constrain(as.Args[i], super.Args[i]); err != nil {
					return err
				}
				if err := st.constrain(super.Args[i], as.Args[i]); err != nil {
					return err
				}
			}
			return nil
		case *types.Sig:
			m := super.Shape.FunctionalMethod()
			if m == nil || m.Sig == nil {
				return mismatch(sub, super)
			}
			method := types.SubstituteSig(m.Sig, nominalBindings(super)).Curry()
			return st.constrain(sub, method)
		}

	case *types.Sig:
		subSig, ok := sub.(*types.Sig)
		if !ok {
			return mismatch(sub, super)
		}
		n := super.ParamCount()
		for i := 0; i < n; i++ {
			p, q := super.Param(i), subSig.Param(i)
			if q == nil {
				return mismatch(sub, super)
			}
			if err := st.constrain(p, q); err != nil {
				return err
			}
		}
		if super.Return == types.Type(types.Void) {
			return nil
		}
		return st.constrain(subSig.Return, super.Return)

	case *types.TypeToken:
		if tok, ok := sub.(*types.TypeToken); ok {
			if err := st.constrain(tok.Of, super.Of); err != nil {
				return err
			}
			return st.constrain(super.Of, tok.Of)
		}
	}
	st.constraints = append(st.constraints, constraint{sub, super})
	return nil
}

// constrainUnion handles `sub <: A | B | V` where at most one member V holds variables: the parts
// of sub not covered by the other members flow into V.
func (st *state) constrainUnion(sub types.Type, super *types.UnionType) error {
	var fixed []types.Type
	var open types.Type
	for _, m := range super.Members {
		if hasVars(m) {
			if open != nil {
				st.constraints = append(st.constraints, constraint{sub, super})
				return nil
			}
			open = m
			continue
		}
		fixed = append(fixed, m)
	}
	covered := types.Union(fixed...)
	for _, m := range types.Members(sub) {
		if !hasVars(m) && len(fixed) > 0 && st.ctx.IsSubtype(m, covered) {
			continue
		}
		if open == nil {
			return mismatch(sub, super)
		}
		if err := st.constrain(m, open); err != nil {
			return err
		}
	}
	return nil
}

func nominalBindings(n *types.Nominal) types.Bindings {
	b := types.NewBindingsBuilder()
	for i, f := range n.Shape.Formals {
		if i < len(n.Args) {
			b.Set(f, n.Args[i])
		}
	}
	return b.Build()
}

// hasVars reports whether t mentions an unbound solver variable.
func hasVars(t types.Type) bool {
	switch t := types.RealType(t).(type) {
	case *types.Var:
		return true
	case *types.Nominal:
		return anyVars(t.Args)
	case *types.Sig:
		if anyVars(t.Required) || anyVars(t.Optional) || hasVars(t.Return) {
			return true
		}
		return t.Rest != nil && hasVars(t.Rest)
	case *types.UnionType:
		return anyVars(t.Members)
	case *types.Intersection:
		return anyVars(t.Members)
	case *types.TypeToken:
		return hasVars(t.Of)
	}
	return false
}

func anyVars(ts []types.Type) bool {
	for _, t := range ts {
		if hasVars(t) {
			return true
		}
	}
	return false
}
