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

// explicitSig builds the signature of a function whose parameter and return types are declared.
func (c *Context) explicitSig(fun ast.NodeID) *types.Sig {
	n := c.tree.Node(fun)
	sig := &types.Sig{Formals: n.Fun.Formals, Return: n.Fun.Return}
	for _, p := range n.Params() {
		if d := c.tree.Node(p).Decl; d != nil {
			addParam(sig, d, d.Type)
		}
	}
	return sig
}

func addParam(sig *types.Sig, d *ast.DeclInfo, t types.Type) {
	switch {
	case d.Rest:
		sig.Rest = t
	case d.Optional || len(sig.Optional) > 0:
		sig.Optional = append(sig.Optional, t)
	default:
		sig.Required = append(sig.Required, t)
	}
}

// enterFun binds the parameters of a function before its body is typed.
func (c *Context) enterFun(fun ast.NodeID) {
	c.traceNode("enter", fun)
	c.depth++
	n := c.tree.Node(fun)
	hint := c.funHint(fun)
	var prior *types.Sig
	if d := c.tree.Decision(fun); d != nil {
		prior, _ = d.Type.(*types.Sig)
	}
	sig := &types.Sig{Formals: n.Fun.Formals}
	optional := ast.NoNode
	for i, p := range n.Params() {
		pn := c.tree.Node(p)
		if pn.Kind != ast.Decl || pn.Decl == nil || len(pn.Children) == 0 || c.tree.Node(pn.Children[0]).Name == nil {
			c.report(p, diag.MalformedFunction, funName(n.Fun))
			continue
		}
		d := pn.Decl
		t := d.Type
		if t == nil {
			t = paramOf(hint, i, d.Rest)
		}
		if t == nil {
			t = paramOf(prior, i, d.Rest)
		}
		if t == nil {
			t = types.AnyValue
		}
		switch {
		case d.Optional:
			if optional == ast.NoNode {
				optional = p
			}
		case !d.Rest && optional != ast.NoNode:
			c.report(optional, diag.OptionalBeforeRequired, c.tree.Node(c.tree.Node(optional).Children[0]).Name.String())
			optional = ast.NoNode
		}
		addParam(sig, d, t)
		bound := t
		if d.Rest {
			bound = types.NewNominal(c.cfg.Builtins.List, t)
		}
		c.bind(c.tree.Node(pn.Children[0]).Name.ID, bound)
	}
	if pre, ok := c.funSigs[fun]; ok {
		sig.Return = pre.Return
	}
	c.funSigs[fun] = sig
}

func paramOf(sig *types.Sig, i int, rest bool) types.Type {
	if sig == nil {
		return nil
	}
	if rest && sig.Rest != nil {
		return sig.Rest
	}
	return sig.Param(i)
}

func funName(info *ast.FunInfo) string {
	if info.Name == "" {
		return "<anonymous>"
	}
	return info.Name
}

// funHint returns the signature expected of a function passed to a call.
func (c *Context) funHint(fun ast.NodeID) *types.Sig {
	if h, ok := c.funHints[fun]; ok {
		return h
	}
	use, ok := c.plan.Consumers[fun]
	if !ok {
		return nil
	}
	d := c.tree.Decision(use.Call)
	if d == nil || d.Variant == nil {
		return nil
	}
	return c.asSig(d.Variant.Param(c.paramIndex(use.Call, use.Arg)))
}

// paramIndex maps an argument slot of a call to the parameter of its chosen variant.
func (c *Context) paramIndex(call ast.NodeID, arg int) int {
	if c.tree.Op(call) == ast.OpNew {
		return arg - 1
	}
	return arg
}

// asSig returns the signature of a callable type.
func (c *Context) asSig(t types.Type) *types.Sig {
	switch t := t.(type) {
	case *types.Sig:
		return t
	case *types.Nominal:
		m := t.Shape.FunctionalMethod()
		if m == nil || m.Sig == nil {
			return nil
		}
		return types.SubstituteSig(m.Sig, nominalBindings(t)).Curry()
	case *types.UnionType:
		if types.IsNullable(t) {
			if nn := types.NonNull(t); nn != types.Type(t) {
				return c.asSig(nn)
			}
		}
	}
	return nil
}

func nominalBindings(n *types.Nominal) types.Bindings {
	b := types.NewBindingsBuilder()
	for i, f := range n.Shape.Formals {
		if i < len(n.Args) {
			b = b.Set(f, n.Args[i])
		}
	}
	return b.Build()
}

func (c *Context) exitFun(fun ast.NodeID) {
	c.depth--
	c.finishFun(fun)
}

// finishFun decides the signature of a function once its result is known.
func (c *Context) finishFun(fun ast.NodeID) {
	n := c.tree.Node(fun)
	info := n.Fun
	params := c.funSigs[fun]
	if params == nil {
		params = c.explicitSig(fun)
	}
	ret := info.Return
	if ret == nil {
		switch {
		case info.ReturnRequired:
			c.report(fun, diag.ReturnTypeRequired, funName(info))
			ret = c.priorReturn(fun)
		case info.ReturnName != nil:
			if t, ok := c.names.GetID(info.ReturnName.ID); ok {
				ret = t
			} else if len(c.plan.Assignments[info.ReturnName.ID]) > 0 && !c.draining {
				c.parkOn(fun, info.ReturnName.ID)
				return
			} else if d := c.tree.Decision(fun); d != nil {
				ret = c.priorReturn(fun)
			} else if len(c.plan.Assignments[info.ReturnName.ID]) > 0 {
				ret = types.AnyValue
			} else {
				ret = types.Void
			}
		default:
			ret = types.Void
		}
	}
	sig := *params
	sig.Return = ret
	c.decideType(fun, &sig)
	if m := info.Member; m != nil && m.Kind == types.Method && m.Sig == nil && m.Shape != nil {
		withThis := sig
		withThis.Required = append([]types.Type{m.Shape.Type()}, sig.Required...)
		m.Sig = &withThis
	}
}

func (c *Context) priorReturn(fun ast.NodeID) types.Type {
	if d := c.tree.Decision(fun); d != nil {
		if sig, ok := d.Type.(*types.Sig); ok && sig.Return != nil {
			return sig.Return
		}
	}
	return types.AnyValue
}
