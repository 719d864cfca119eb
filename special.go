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

// visitCheck types is-checks, casts and not-null assertions.
func (c *Context) visitCheck(id ast.NodeID, op ast.Op) {
	args := c.tree.Node(id).Args()
	want := 2
	if op == ast.OpNotNull {
		want = 1
	}
	if len(args) != want {
		c.report(id, diag.MalformedCall, op.String())
		c.decideType(id, types.Invalid)
		return
	}
	operand := args[0]
	if c.tree.IsNullLiteral(operand) && c.tree.Decision(operand) == nil {
		c.decideType(operand, types.Null)
	}
	d := c.tree.Decision(operand)
	if d == nil {
		c.park(id)
		return
	}
	if !d.Valid() {
		c.decideType(id, types.Invalid)
		return
	}
	if op == ast.OpNotNull {
		c.decideOp(id, types.NonNull(d.Type))
		return
	}
	target, ok := c.typeRef(id, args[1])
	if !ok {
		c.decideType(id, types.Invalid)
		return
	}
	if op == ast.OpIs {
		c.decideOp(id, c.cfg.Builtins.Boolean.Type())
		return
	}
	c.decideOp(id, target)
}

// typeRef returns the type referenced by a type argument of a special call.
func (c *Context) typeRef(call, ref ast.NodeID) (types.Type, bool) {
	d := c.tree.Decision(ref)
	if d == nil || !d.Valid() {
		return nil, false
	}
	tok, ok := d.Type.(*types.TypeToken)
	if !ok {
		c.report(call, diag.MalformedTypeRef)
		return nil, false
	}
	return tok.Of, true
}

// visitNew types a constructor call. The constructors of the referenced shape become ordinary
// signatures over the shape's formals which return the constructed type.
func (c *Context) visitNew(id ast.NodeID) {
	args := c.tree.Node(id).Args()
	if len(args) == 0 {
		c.report(id, diag.MalformedCall, "new")
		c.decideType(id, types.Invalid)
		return
	}
	t, ok := c.typeRef(id, args[0])
	if !ok {
		c.decideType(id, types.Invalid)
		return
	}
	n, ok := t.(*types.Nominal)
	if !ok || n.Shape == nil || n.Shape.Kind != types.Class {
		c.report(id, diag.UnresolvedTypeRef, types.TypeString(t))
		c.decideType(id, types.Invalid)
		return
	}
	shape := n.Shape
	ctors := shape.Constructors
	if len(ctors) == 0 {
		ctors = []*types.Sig{{}}
	}
	info := &callInfo{call: id, name: shape.Name, args: args[1:]}
	for _, ctor := range ctors {
		sig := &types.Sig{
			Formals:  append(append([]*types.Formal(nil), shape.Formals...), ctor.Formals...),
			Required: ctor.Required,
			Optional: ctor.Optional,
			Rest:     ctor.Rest,
			Return:   shape.Type(),
		}
		info.candidates = append(info.candidates, types.Callee{Sig: sig})
	}
	if explicitArgs(n) {
		info.explicit = n.Args
	}
	c.resolveCall(info)
}

// explicitArgs reports whether a type reference supplies its own type arguments, rather than
// naming the shape with its formals.
func explicitArgs(n *types.Nominal) bool {
	if len(n.Args) == 0 {
		return false
	}
	for i, a := range n.Args {
		if f, ok := a.(*types.Formal); ok && i < len(n.Shape.Formals) && f == n.Shape.Formals[i] {
			return false
		}
	}
	return true
}
