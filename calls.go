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
	"github.com/pkg/errors"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/solve"
	"github.com/wdamron/typer/types"
)

// callInfo holds what is known about a call while it is resolved.
type callInfo struct {
	call       ast.NodeID
	name       string
	variants   *types.Variants
	candidates []types.Callee
	// args are the nodes passed for the candidates' parameters, in order.
	args     []ast.NodeID
	explicit []types.Type
	// dot holds the origin of each candidate of a member access.
	dot []dotCandidate
}

// lateCall is a call deferred until it can be solved with the call consuming its result.
type lateCall struct {
	info *callInfo
}

type argStatus uint8

const (
	argsReady argStatus = iota
	argsWaiting
	argsInvalid
)

func (c *Context) visitApply(id ast.NodeID) {
	n := c.tree.Node(id)
	callee := n.Callee()
	info := &callInfo{call: id, args: n.Args()}
	if fn := c.tree.Callable(callee); fn != nil {
		if fn.Variants == nil {
			c.report(id, diag.MalformedCall, fn.Name)
			c.decideType(id, types.Invalid)
			return
		}
		info.name, info.variants = fn.Name, fn.Variants
	} else {
		d := c.tree.Decision(callee)
		if d == nil {
			c.park(id)
			return
		}
		if !d.Valid() {
			c.decideType(id, types.Invalid)
			return
		}
		info.name = c.calleeName(callee)
		if v := c.env[callee]; v != nil {
			info.variants = v
		} else if info.variants = c.variantsOf(d.Type); info.variants == nil {
			c.report(id, diag.NoMatchingVariant, info.name, types.TypeString(d.Type))
			c.decideType(id, types.Invalid)
			return
		}
	}
	info.candidates = info.variants.Callees()
	c.resolveCall(info)
}

func (c *Context) calleeName(callee ast.NodeID) string {
	n := c.tree.Node(callee)
	switch {
	case n.Name != nil:
		return n.Name.String()
	case n.Kind == ast.Fun && n.Fun != nil:
		return funName(n.Fun)
	}
	return n.Kind.String()
}

// variantsOf returns the candidates for calling a value of type t.
func (c *Context) variantsOf(t types.Type) *types.Variants {
	if inter, ok := t.(*types.Intersection); ok {
		v := &types.Variants{}
		for _, m := range inter.Members {
			sig := c.asSig(m)
			if sig == nil {
				return nil
			}
			v.Primary = append(v.Primary, sig)
		}
		return v
	}
	if sig := c.asSig(t); sig != nil {
		return types.SingleVariant(sig)
	}
	return nil
}

// argBounds describes each argument for the solver. refs holds the deferred call providing each
// CallRef argument.
func (c *Context) argBounds(info *callInfo) ([]solve.Bound, []ast.NodeID, argStatus) {
	bounds := make([]solve.Bound, len(info.args))
	refs := make([]ast.NodeID, len(info.args))
	status := argsReady
	for i, arg := range info.args {
		refs[i] = ast.NoNode
		if late := c.lateRef(arg); late != ast.NoNode {
			bounds[i], refs[i] = solve.Bound{Kind: solve.CallRef, Handled: c.handled(late)}, late
			continue
		}
		d := c.tree.Decision(arg)
		switch {
		case d != nil && !d.Valid():
			return nil, nil, argsInvalid
		case d != nil:
			bounds[i] = solve.Bound{Kind: solve.Concrete, Type: d.Type}
		case c.tree.IsNullLiteral(arg):
			bounds[i] = solve.Bound{Kind: solve.NeedsBinding, Type: types.Null}
		case c.pendingFun(info.call, arg) != ast.NoNode:
			bounds[i] = solve.Bound{Kind: solve.NeedsBinding}
		default:
			status = argsWaiting
		}
	}
	return bounds, refs, status
}

// handled reports whether a call is wrapped by a failure handler.
func (c *Context) handled(call ast.NodeID) bool {
	parent := c.plan.Parent(call)
	return parent != ast.NoNode && c.tree.Op(parent) == ast.OpHandle
}

// pendingFun returns the untyped function passed as arg to call, directly or through a
// single-read name.
func (c *Context) pendingFun(call, arg ast.NodeID) ast.NodeID {
	n := c.tree.Node(arg)
	fun := ast.NoNode
	switch n.Kind {
	case ast.Fun:
		fun = arg
	case ast.RightName:
		as := c.plan.Assignments[n.Name.ID]
		if len(as) == 1 && c.tree.Node(as[0].RHS).Kind == ast.Fun {
			fun = as[0].RHS
		}
	}
	if fun == ast.NoNode || c.tree.Decision(fun) != nil {
		return ast.NoNode
	}
	if use, ok := c.plan.Consumers[fun]; !ok || use.Call != call {
		return ast.NoNode
	}
	return fun
}

func hasRefs(refs []ast.NodeID) bool {
	for _, r := range refs {
		if r != ast.NoNode {
			return true
		}
	}
	return false
}

// resolveCall chooses a candidate for a call and decides it, or defers it to be solved jointly
// with the call consuming its result.
func (c *Context) resolveCall(info *callInfo) {
	id := info.call
	c.calls[id] = info
	bounds, refs, status := c.argBounds(info)
	switch status {
	case argsWaiting:
		c.park(id)
		return
	case argsInvalid:
		c.decideType(id, types.Invalid)
		return
	}
	if len(info.candidates) == 0 {
		c.report(id, diag.NoMatchingVariant, info.name, c.boundsString(bounds))
		c.decideType(id, types.Invalid)
		return
	}
	if len(info.candidates) == 1 && len(info.candidates[0].Sig.Formals) == 0 && !hasRefs(refs) {
		c.fastPath(info, bounds)
		return
	}
	if !anyAccepts(info.candidates, len(info.args)) {
		min, _ := info.candidates[0].Sig.Arity()
		c.report(id, diag.ArityMismatch, min, len(info.args))
		c.decideType(id, types.Invalid)
		return
	}

	var ctx types.Type
	if !c.determined(info, bounds) {
		ctx = c.contextType(id)
		if ctx == nil && c.canDefer(id) {
			c.late[id] = &lateCall{info: info}
			c.traceNode("defer", id)
			return
		}
	}
	if hasRefs(refs) {
		c.solveJoint(id, ctx)
		return
	}
	c.solveSingle(info, bounds, ctx)
}

func anyAccepts(cs []types.Callee, argc int) bool {
	for _, cand := range cs {
		if cand.Sig != nil && cand.Sig.Accepts(argc) {
			return true
		}
	}
	return false
}

// fastPath types a call with one non-generic candidate without solving.
func (c *Context) fastPath(info *callInfo, bounds []solve.Bound) {
	sig := info.candidates[0].Sig
	if min, _ := sig.Arity(); len(info.args) < min {
		c.report(info.call, diag.ArityMismatch, min, len(info.args))
		c.decideType(info.call, types.Invalid)
		return
	}
	for i, arg := range info.args {
		param := sig.Param(i)
		if param == nil {
			c.report(arg, diag.RedundantArgument, i)
			continue
		}
		b := bounds[i]
		switch {
		case b.Kind == solve.Concrete:
			if !c.cfg.Types.IsSubtype(b.Type, param) {
				c.report(arg, diag.ArgumentMismatch, i, types.TypeString(b.Type), types.TypeString(param))
			}
		case c.tree.IsNullLiteral(arg):
			if types.IsNullable(param) || param == types.Type(types.AnyValue) {
				c.decideType(arg, param)
			} else {
				c.report(arg, diag.ArgumentMismatch, i, types.TypeString(types.Null), types.TypeString(param))
				c.decideType(arg, types.Null)
			}
		}
	}
	c.decideCall(info, 0, sig, types.EmptyBindings, sig.Return)
}

// determined reports whether the arguments supplied determine every formal which matters for
// the call: those in the result and those in the parameters receiving arguments.
func (c *Context) determined(info *callInfo, bounds []solve.Bound) bool {
	for _, cand := range info.candidates {
		sig := cand.Sig
		if !sig.Accepts(len(bounds)) {
			continue
		}
		for k, f := range sig.Formals {
			if k < len(info.explicit) && info.explicit[k] != nil {
				continue
			}
			needed, covered := types.Mentions(sig.Return, f), false
			for i, b := range bounds {
				p := sig.Param(i)
				if p == nil || !types.Mentions(p, f) {
					continue
				}
				needed = true
				if b.Kind == solve.Concrete {
					covered = true
				}
			}
			if needed && !covered {
				return false
			}
		}
	}
	return true
}

// contextType returns the type expected of a call's result by its surroundings, if known:
// the declared type of the name it is assigned to, the result type of the function it is
// returned from, or the parameter type of an already solved consuming call.
func (c *Context) contextType(call ast.NodeID) types.Type {
	parent := c.plan.Parent(call)
	handled := false
	if parent != ast.NoNode && c.tree.Op(parent) == ast.OpHandle {
		parent, handled = c.plan.Parent(parent), true
	}
	var ctx types.Type
	if parent != ast.NoNode && c.tree.Node(parent).Kind == ast.Call && c.tree.Op(parent) == ast.OpAssign {
		if a, ok := c.plan.AssignmentOf(parent); ok {
			if t := c.plan.DeclaredType(a.Name); t != nil {
				ctx = t
			} else if d := c.plan.ContextSink(a.Name.ID); d != nil {
				ctx = d.Type
			} else if fun, ok := c.plan.Returns[a.Name.ID]; ok && fun != ast.NoNode {
				ctx = c.tree.Node(fun).Fun.Return
			}
		}
	}
	if ctx == nil {
		if use, ok := c.plan.Consumers[call]; ok {
			if d := c.tree.Decision(use.Call); d != nil && d.Variant != nil {
				p := types.Substitute(d.Variant.Param(c.paramIndex(use.Call, use.Arg)), d.Bindings)
				if p != nil && !mentionsAny(p, d.Variant.Formals, d.Bindings) {
					ctx = p
				}
			}
		}
	}
	if ctx != nil && handled {
		ctx = types.Union(ctx, types.Bubble)
	}
	return ctx
}

// adoptResultType types an abort-style call, which yields no value, as the result of its
// enclosing function or of the module, once that result is known.
func (c *Context) adoptResultType(call ast.NodeID) {
	d := c.tree.Decision(call)
	if !d.Valid() || !types.NoValue(d.Type) {
		return
	}
	fun := c.plan.Parent(call)
	for fun != ast.NoNode && c.tree.Node(fun).Kind != ast.Fun {
		fun = c.plan.Parent(fun)
	}
	var result types.Type
	for nameID, f := range c.plan.Returns {
		if f != fun {
			continue
		}
		if t, ok := c.names.GetID(nameID); ok {
			result = t
		}
	}
	if result == nil || types.IsInvalid(result) || types.NoValue(result) {
		return
	}
	if types.HasBubble(d.Type) {
		result = types.Union(result, types.Bubble)
	}
	adopted := *d
	adopted.Type = result
	c.decide(call, &adopted)
}

// mentionsAny reports whether t mentions one of formals left unbound by b.
func mentionsAny(t types.Type, formals []*types.Formal, b types.Bindings) bool {
	for _, f := range formals {
		if _, ok := b.Get(f); !ok && types.Mentions(t, f) {
			return true
		}
	}
	return false
}

// canDefer reports whether a call can wait for the call consuming its result.
func (c *Context) canDefer(call ast.NodeID) bool {
	if c.draining {
		return false
	}
	use, ok := c.plan.Consumers[call]
	if !ok || c.tree.Decision(use.Call) != nil {
		return false
	}
	// A receiver is needed to find the members of the consuming access.
	return !(c.tree.Op(use.Call) == ast.OpDot && use.Arg == 0)
}

func (c *Context) batchCall(info *callInfo, bounds []solve.Bound, ctx types.Type) solve.Call {
	return solve.Call{
		ID:         int(info.call),
		Candidates: info.candidates,
		Args:       bounds,
		Context:    ctx,
		Explicit:   info.explicit,
	}
}

func (c *Context) solveSingle(info *callInfo, bounds []solve.Bound, ctx types.Type) {
	b := &solve.Batch{Calls: []solve.Call{c.batchCall(info, bounds, ctx)}}
	c.traceBatch(b)
	r := c.cfg.Solver.Solve(b)[0]
	if r.Err != nil {
		if errors.Cause(r.Err) == solve.ErrUnsolved && !c.draining && c.hintFuns(info, bounds) {
			// Solved again once the functions passed to it are typed.
			c.park(info.call)
			return
		}
		c.failCall(info, bounds, r.Err)
		return
	}
	c.applyResult(info, bounds, r)
}

// hintFuns records the parameter types expected of the untyped functions passed to a call whose
// result depends on what those functions return.
func (c *Context) hintFuns(info *callInfo, bounds []solve.Bound) bool {
	var funs []ast.NodeID
	for _, arg := range info.args {
		funs = append(funs, c.pendingFun(info.call, arg))
	}
	pending := false
	for _, f := range funs {
		pending = pending || f != ast.NoNode
	}
	if !pending {
		return false
	}
	cands := make([]types.Callee, len(info.candidates))
	for i, cand := range info.candidates {
		sig := *cand.Sig
		sig.Return = types.Void
		cands[i] = types.Callee{Sig: &sig, Priority: cand.Priority}
	}
	call := c.batchCall(info, bounds, nil)
	call.Candidates = cands
	r := c.cfg.Solver.Solve(&solve.Batch{Calls: []solve.Call{call}})[0]
	if r.Err != nil {
		return false
	}
	for i, f := range funs {
		if f == ast.NoNode || i >= len(r.Args) {
			continue
		}
		if hint := c.asSig(r.Args[i]); hint != nil {
			c.funHints[f] = hint
		}
	}
	return true
}

func (c *Context) failCall(info *callInfo, bounds []solve.Bound, err error) {
	if errors.Cause(err) == solve.ErrUnsolved {
		c.report(info.call, diag.UnsolvedCall, info.name, err.Error())
	} else {
		c.report(info.call, diag.NoMatchingVariant, info.name, c.boundsString(bounds))
	}
	c.decideType(info.call, types.Invalid)
}

func (c *Context) boundsString(bounds []solve.Bound) string {
	ts := make([]types.Type, len(bounds))
	for i, b := range bounds {
		if b.Type != nil {
			ts[i] = b.Type
		} else {
			ts[i] = types.AnyValue
		}
	}
	return types.TypeListString(ts)
}

// applyResult decides a solved call: its type, chosen variant and bindings, and the literals
// whose types were bound by the solution.
func (c *Context) applyResult(info *callInfo, bounds []solve.Bound, r solve.Result) {
	variant := r.Sig
	if v := info.variants; v != nil && v.IsCover() && info.candidates[r.Index].Sig == v.Cover {
		variant = c.narrowCover(info, bounds, r)
	}
	for i, arg := range info.args {
		if i < len(r.Args) && r.Args[i] != nil && c.tree.IsNullLiteral(arg) && c.tree.Decision(arg) == nil {
			c.decideType(arg, r.Args[i])
		}
	}
	c.decideCall(info, r.Index, variant, r.Bindings, r.Type)
}

func (c *Context) decideCall(info *callInfo, index int, variant *types.Sig, bindings types.Bindings, t types.Type) {
	callee := c.tree.Node(info.call).Callee()
	if info.dot != nil {
		c.rewriteDot(info, index, variant)
	}
	if d := c.tree.Decision(callee); d != nil && c.tree.Callable(callee) == nil {
		refined := *d
		refined.Variant = variant
		c.decide(callee, &refined)
	} else {
		c.decide(callee, &ast.Decision{Type: variant, Variant: variant})
	}
	c.decide(info.call, &ast.Decision{Type: t, Variant: variant, Bindings: bindings})
}
