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
	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

// decide stores a decision for id and resumes its parent if the parent was waiting.
// Nodes decided by an earlier run keep their decisions.
func (c *Context) decide(id ast.NodeID, d *ast.Decision) {
	if c.prior[id] {
		return
	}
	if old := c.tree.Decision(id); old != nil && len(old.Explanations) > 0 {
		d.Explanations = append(append([]diag.Diagnostic(nil), old.Explanations...), d.Explanations...)
	}
	if pending := c.explanations[id]; len(pending) > 0 {
		d.Explanations = append(d.Explanations, pending...)
		delete(c.explanations, id)
	}
	c.tree.Decide(id, d)
	c.traceNode("decide", id)
	c.wake(c.plan.Parent(id))
}

func (c *Context) decideType(id ast.NodeID, t types.Type) {
	c.decide(id, &ast.Decision{Type: t})
}

// report records a diagnostic for id. Nothing is reported while replaying an earlier run.
func (c *Context) report(id ast.NodeID, code diag.Code, values ...interface{}) {
	if c.replaying || c.prior[id] {
		return
	}
	d := diag.New(c.tree.Pos(id), code, values...)
	if !c.bag.Add(d) {
		return
	}
	c.cfg.Logger.Info("type error", "pos", d.Pos.String(), "code", code.String(), "msg", d.Message())
	if dec := c.tree.Decision(id); dec != nil {
		dec.Explanations = append(dec.Explanations, d)
		return
	}
	c.explanations[id] = append(c.explanations[id], d)
}

func (c *Context) park(id ast.NodeID) {
	c.parked[id] = true
	c.traceNode("park", id)
}

// parkOn parks id until the name is bound.
func (c *Context) parkOn(id ast.NodeID, nameID int) {
	c.park(id)
	c.blocked[nameID] = append(c.blocked[nameID], id)
}

func (c *Context) wake(id ast.NodeID) {
	if id == ast.NoNode || !c.parked[id] {
		return
	}
	c.traceNode("wake", id)
	c.visit(id)
}

// bind finalizes the type of a name and resumes the nodes waiting for it.
func (c *Context) bind(nameID int, t types.Type) {
	c.names = c.names.set(nameID, t)
	waiting := c.blocked[nameID]
	delete(c.blocked, nameID)
	for _, id := range waiting {
		c.wake(id)
	}
}

func (c *Context) visit(id ast.NodeID) {
	delete(c.parked, id)
	if c.prior[id] {
		c.replay(id)
		return
	}
	switch c.tree.Node(id).Kind {
	case ast.Value:
		c.visitValue(id)
	case ast.RightName:
		c.visitRead(id)
	case ast.Decl:
		c.visitDecl(id)
	case ast.Block:
		c.decideType(id, types.Void)
	case ast.Fun:
		c.finishFun(id)
	case ast.Call:
		c.visitCall(id)
		if c.plan.Deferred.Contains(id) {
			c.adoptResultType(id)
		}
	}
}

// replay re-applies the effects on name bindings of a node decided by an earlier run.
func (c *Context) replay(id ast.NodeID) {
	n := c.tree.Node(id)
	switch n.Kind {
	case ast.Decl, ast.Fun:
	case ast.Call:
		if !isAssignment(c.tree.Op(id)) {
			return
		}
	default:
		return
	}
	c.replaying = true
	defer func() { c.replaying = false }()
	switch n.Kind {
	case ast.Decl:
		c.visitDecl(id)
	case ast.Fun:
		c.finishFun(id)
	default:
		c.visitAssignment(id)
	}
}

func isAssignment(op ast.Op) bool {
	return op == ast.OpAssign || op == ast.OpSetProperty || op == ast.OpHandle
}

func (c *Context) visitValue(id ast.NodeID) {
	v := c.tree.Node(id).Value
	if v == nil {
		c.report(id, diag.MalformedTypeRef)
		c.decideType(id, types.Invalid)
		return
	}
	if v.Type != nil && v.Kind != ast.TypeValue && v.Kind != ast.FnValue {
		c.decideType(id, v.Type)
		return
	}
	b := c.cfg.Builtins
	switch v.Kind {
	case ast.IntValue:
		c.decideType(id, b.Int.Type())
	case ast.StringValue:
		c.decideType(id, b.String.Type())
	case ast.BoolValue:
		c.decideType(id, b.Boolean.Type())
	case ast.VoidValue:
		c.decideType(id, types.Void)
	case ast.NullValue:
		// Arguments take their type from the call.
		if c.isArgument(id) {
			return
		}
		c.decideType(id, types.Null)
	case ast.TypeValue:
		if v.Type == nil {
			c.report(id, diag.MalformedTypeRef)
			c.decideType(id, types.Invalid)
			return
		}
		c.decideType(id, &types.TypeToken{Of: v.Type})
	case ast.FnValue:
		parent := c.plan.Parent(id)
		if parent != ast.NoNode && c.tree.Node(parent).Kind == ast.Call && c.tree.ChildIndex(parent, id) == 0 {
			return
		}
		if v.Fn == nil || v.Fn.Variants == nil {
			c.report(id, diag.MalformedCall, "function value")
			c.decideType(id, types.Invalid)
			return
		}
		c.decideType(id, variantsType(v.Fn.Variants))
	}
}

// isArgument reports whether id is an argument of a call.
func (c *Context) isArgument(id ast.NodeID) bool {
	parent := c.plan.Parent(id)
	return parent != ast.NoNode && c.tree.Node(parent).Kind == ast.Call && c.tree.ChildIndex(parent, id) > 0
}

func (c *Context) visitRead(id ast.NodeID) {
	name := c.tree.Node(id).Name
	if t, ok := c.names.Get(name); ok {
		c.decideType(id, t)
		return
	}
	if late := c.lateSource(name.ID); late != ast.NoNode {
		// Solved with the call reading it; the read itself waits for the name.
		c.lateAlias[id] = late
		c.parkOn(id, name.ID)
		return
	}
	if t := c.plan.DeclaredType(name); t != nil {
		c.decideType(id, t)
		return
	}
	if len(c.plan.Assignments[name.ID]) > 0 {
		// Once draining, names never bound are reported when untyped nodes are filled in.
		if !c.draining {
			c.parkOn(id, name.ID)
		}
		return
	}
	if c.plan.Declared(name) {
		c.report(id, diag.UseBeforeInit, name.String())
		c.decideType(id, types.Invalid)
		return
	}
	if t, v, ok := c.cfg.Env.Lookup(name); ok {
		if v != nil {
			c.env[id] = v
		}
		c.decideType(id, t)
		return
	}
	c.report(id, diag.NameUndeclared, name.String())
	c.decideType(id, types.Invalid)
}

// lateSource returns the deferred call whose result is the only value assigned to a name.
func (c *Context) lateSource(nameID int) ast.NodeID {
	as := c.plan.Assignments[nameID]
	if len(as) != 1 || c.tree.Op(as[0].Call) != ast.OpAssign {
		return ast.NoNode
	}
	rhs := as[0].RHS
	if c.tree.Op(rhs) == ast.OpHandle {
		rhs = c.tree.Node(rhs).Args()[1]
	}
	return c.lateRef(rhs)
}

// lateRef returns the deferred call providing the value of id, or NoNode.
func (c *Context) lateRef(id ast.NodeID) ast.NodeID {
	if _, ok := c.late[id]; ok {
		return id
	}
	if target, ok := c.lateAlias[id]; ok {
		if _, ok := c.late[target]; ok {
			return target
		}
	}
	return ast.NoNode
}

func (c *Context) visitDecl(id ast.NodeID) {
	n := c.tree.Node(id)
	if len(n.Children) == 0 || n.Decl == nil || c.tree.Node(n.Children[0]).Name == nil {
		c.report(id, diag.MalformedDeclaration)
		c.decideType(id, types.Invalid)
		return
	}
	left := n.Children[0]
	name := c.tree.Node(left).Name
	if t := n.Decl.Type; t != nil && !n.Decl.Param {
		c.bind(name.ID, t)
	}
	if t, ok := c.names.Get(name); ok {
		c.decideType(left, t)
	}
	c.decideType(id, types.Void)
}

// decideOp decides a special call and its operator callee.
func (c *Context) decideOp(call ast.NodeID, t types.Type) {
	n := c.tree.Node(call)
	sig := &types.Sig{Return: t}
	for _, a := range n.Args() {
		if d := c.tree.Decision(a); d != nil {
			sig.Required = append(sig.Required, d.Type)
		} else {
			sig.Required = append(sig.Required, types.AnyValue)
		}
	}
	callee := n.Callee()
	c.decide(callee, &ast.Decision{Type: sig, Variant: sig})
	c.decideType(call, t)
}

func (c *Context) visitCall(id ast.NodeID) {
	switch op := c.tree.Op(id); op {
	case ast.OpAssign, ast.OpSetProperty, ast.OpHandle:
		c.visitAssignment(id)
	case ast.OpIs, ast.OpAs, ast.OpNotNull:
		c.visitCheck(id, op)
	case ast.OpNew:
		c.visitNew(id)
	case ast.OpDot:
		c.visitDot(id)
	default:
		c.visitApply(id)
	}
}
