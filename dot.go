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

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

// dotCandidate is a member or extension which may serve a member access.
type dotCandidate struct {
	member *types.Member
	ext    *types.Extension
	sig    *types.Sig
}

func (c *Context) visitDot(id ast.NodeID) {
	n := c.tree.Node(id)
	fn := c.tree.Callable(n.Callee())
	args := n.Args()
	if fn.Dot == nil || len(args) == 0 {
		c.report(id, diag.MalformedCall, "member")
		c.decideType(id, types.Invalid)
		return
	}
	dot := fn.Dot
	rd := c.tree.Decision(args[0])
	if rd == nil {
		c.park(id)
		return
	}
	if !rd.Valid() {
		c.decideType(id, types.Invalid)
		return
	}
	cands := c.gatherMembers(id, dot, rd.Type)
	if cands == nil {
		c.decideType(id, types.Invalid)
		return
	}
	info := &callInfo{call: id, name: dot.Symbol, args: args, dot: cands}
	for _, cand := range cands {
		info.candidates = append(info.candidates, types.Callee{Sig: cand.sig})
	}
	c.resolveCall(info)
}

// gatherMembers finds the members and extensions named by a member access on a receiver of type
// recv. When none is usable it reports why and returns nil.
func (c *Context) gatherMembers(id ast.NodeID, dot *ast.DotInfo, recv types.Type) []dotCandidate {
	if tok, ok := recv.(*types.TypeToken); ok {
		return c.gatherStatic(id, dot, tok)
	}
	ctx := c.cfg.Types
	closure := ctx.Closure(c.nominalsOf(recv)...)
	var cands []dotCandidate
	found, hidden := false, false
	for _, n := range closure {
		for _, m := range n.Shape.MembersFor(dot.Symbol) {
			if m.Kind == types.StaticProperty {
				continue
			}
			found = true
			compatible := accessible(m, dot.Access)
			if !c.visible(m, dot.From) {
				hidden = hidden || compatible
				continue
			}
			if !compatible {
				continue
			}
			cands = append(cands, dotCandidate{member: m, sig: memberSig(m, n, dot.Access)})
		}
	}
	cands = c.mergeProperties(dropMasked(cands), dot.Access)
	for _, ext := range dot.Extensions {
		if ext.Static || ext.Symbol != dot.Symbol || ext.Sig == nil || ext.Sig.ParamCount() == 0 {
			continue
		}
		if len(ext.Sig.Formals) == 0 && !ctx.IsSubtype(recv, ext.Sig.Param(0)) {
			continue
		}
		found = true
		sig := ext.Sig
		if dot.Access == ast.Bind {
			sig = bindSig(ext.Sig.Param(0), ext.Sig)
		}
		cands = append(cands, dotCandidate{ext: ext, sig: sig})
	}
	if len(cands) > 0 {
		return cands
	}
	c.reportMissingMember(id, dot, found, hidden, nominalList(closure))
	return nil
}

func (c *Context) reportMissingMember(id ast.NodeID, dot *ast.DotInfo, found, hidden bool, searched []types.Type) {
	where := types.TypeListString(searched)
	switch {
	case hidden:
		c.report(id, diag.MemberNotAccessible, dot.Symbol, where)
	case found:
		c.report(id, diag.NoCompatibleMember, dot.Symbol, where, dot.Access.String())
	default:
		c.report(id, diag.NoSuchMember, dot.Symbol, where)
	}
}

func nominalList(ns []*types.Nominal) []types.Type {
	ts := make([]types.Type, len(ns))
	for i, n := range ns {
		ts[i] = n
	}
	return ts
}

// gatherStatic finds the static members and static extensions named by an access on a type.
func (c *Context) gatherStatic(id ast.NodeID, dot *ast.DotInfo, tok *types.TypeToken) []dotCandidate {
	n, ok := tok.Of.(*types.Nominal)
	if !ok || n.Shape == nil {
		c.report(id, diag.UnresolvedTypeRef, types.TypeString(tok.Of))
		return nil
	}
	var cands []dotCandidate
	found, hidden := false, false
	for _, m := range n.Shape.MembersFor(dot.Symbol) {
		if m.Kind != types.StaticProperty {
			continue
		}
		found = true
		compatible := dot.Access == ast.Get || (dot.Access == ast.Set && m.Settable)
		if !c.visible(m, dot.From) {
			hidden = hidden || compatible
			continue
		}
		if !compatible {
			continue
		}
		t := m.Type
		if t == nil {
			t = types.AnyValue
		}
		sig := &types.Sig{Required: []types.Type{tok}, Return: t}
		if dot.Access == ast.Set {
			sig = &types.Sig{Required: []types.Type{tok, t}, Return: types.Void}
		}
		cands = append(cands, dotCandidate{member: m, sig: sig})
	}
	for _, ext := range dot.Extensions {
		if !ext.Static || ext.Extends != n.Shape || ext.Symbol != dot.Symbol || ext.Sig == nil {
			continue
		}
		found = true
		sig := *ext.Sig
		sig.Required = append([]types.Type{tok}, ext.Sig.Required...)
		cands = append(cands, dotCandidate{ext: ext, sig: &sig})
	}
	if len(cands) > 0 {
		return cands
	}
	c.reportMissingMember(id, dot, found, hidden, []types.Type{tok})
	return nil
}

// nominalsOf returns the nominal types a value of type t is guaranteed to have. The members of a
// union contribute their nearest common super-types; those of an intersection contribute each.
func (c *Context) nominalsOf(t types.Type) []*types.Nominal {
	switch t := t.(type) {
	case *types.Nominal:
		return []*types.Nominal{t}
	case *types.Formal:
		var out []*types.Nominal
		for _, u := range t.Upper {
			out = append(out, c.nominalsOf(u)...)
		}
		return out
	case *types.Intersection:
		var out []*types.Nominal
		for _, m := range t.Members {
			out = append(out, c.nominalsOf(m)...)
		}
		return out
	case *types.UnionType:
		var each []*types.Nominal
		for _, m := range types.Members(types.NonNull(t)) {
			ns := c.nominalsOf(m)
			if len(ns) == 0 {
				return nil
			}
			if len(ns) > 1 {
				ns = c.cfg.Types.CommonSupers(ns)
			}
			each = append(each, ns...)
		}
		if len(each) <= 1 {
			return each
		}
		return c.cfg.Types.CommonSupers(each)
	}
	return nil
}

// visible reports whether m may be accessed from code in shape from.
func (c *Context) visible(m *types.Member, from *types.Shape) bool {
	switch m.Visibility {
	case types.Private:
		return from != nil && from == m.Shape
	case types.Protected:
		return from != nil && c.cfg.Types.AsSuper(from.Type(), m.Shape) != nil
	}
	return true
}

func accessible(m *types.Member, access ast.Access) bool {
	switch access {
	case ast.Get:
		return m.Kind == types.Property || (m.Kind == types.Method && (m.MethodKind == types.Normal || m.MethodKind == types.Getter))
	case ast.Set:
		return (m.Kind == types.Property && m.Settable) || (m.Kind == types.Method && m.MethodKind == types.Setter)
	default:
		return m.Kind == types.Method && m.MethodKind == types.Normal
	}
}

// memberSig is the signature of an access to m on a receiver of type recv, which is the
// application of m's shape in the receiver's super-type closure.
func memberSig(m *types.Member, recv *types.Nominal, access ast.Access) *types.Sig {
	b := nominalBindings(recv)
	if m.Kind == types.Property {
		t := m.Type
		if t == nil {
			t = types.AnyValue
		}
		t = types.Substitute(t, b)
		if access == ast.Set {
			return &types.Sig{Required: []types.Type{recv, t}, Return: types.Void}
		}
		return &types.Sig{Required: []types.Type{recv}, Return: t}
	}
	sig := types.SubstituteSig(m.Sig, b)
	if access == ast.Bind {
		return bindSig(recv, sig)
	}
	return sig
}

// bindSig is the signature of binding a receiver to a method: it takes the receiver and returns
// the method with the receiver captured.
func bindSig(recv types.Type, method *types.Sig) *types.Sig {
	return &types.Sig{Required: []types.Type{recv}, Return: method.Curry()}
}

// dropMasked removes members overridden by another candidate.
func dropMasked(cands []dotCandidate) []dotCandidate {
	masked := set.New[*types.Member](len(cands))
	for _, a := range cands {
		for _, b := range cands {
			if a.member != nil && b.member != nil && a.member != b.member && a.member.Overrides(b.member) {
				masked.Insert(b.member)
			}
		}
	}
	if masked.Size() == 0 {
		return cands
	}
	out := cands[:0:0]
	for _, cand := range cands {
		if cand.member == nil || !masked.Contains(cand.member) {
			out = append(out, cand)
		}
	}
	return out
}

func propertyShaped(m *types.Member) bool {
	return m != nil && (m.Kind == types.Property || (m.Kind == types.Method && m.MethodKind != types.Normal))
}

// mergeProperties folds the properties, getters and setters sharing the accessed symbol into one
// candidate for the member nearest the receiver. A read yields a value satisfying every one of
// them.
func (c *Context) mergeProperties(cands []dotCandidate, access ast.Access) []dotCandidate {
	first := -1
	var returns []types.Type
	out := cands[:0:0]
	for _, cand := range cands {
		if !propertyShaped(cand.member) {
			out = append(out, cand)
			continue
		}
		returns = append(returns, cand.sig.Return)
		if first < 0 {
			first = len(out)
			out = append(out, cand)
		}
	}
	if first < 0 || len(returns) == 1 || access != ast.Get {
		return out
	}
	ret := returns[0]
	for _, r := range returns[1:] {
		if !c.cfg.Types.IsSubtype(ret, r) {
			ret = types.Intersect(ret, r)
		}
	}
	merged := *out[first].sig
	merged.Return = ret
	out[first].sig = &merged
	return out
}

// rewriteDot records the member or extension chosen for an access. A call of an instance
// extension becomes a direct call of the extension function.
func (c *Context) rewriteDot(info *callInfo, index int, variant *types.Sig) {
	if index < 0 || index >= len(info.dot) {
		return
	}
	cand := info.dot[index]
	callee := c.tree.Node(info.call).Callee()
	dot := c.tree.Callable(callee).Dot
	dot.Extensions = nil
	if cand.member != nil {
		dot.Member = cand.member
		return
	}
	dot.Extension = cand.ext
	if cand.ext.Static || dot.Access != ast.Get {
		return
	}
	c.tree.Replace(callee, ast.Node{
		Kind: ast.Value,
		Value: &ast.ValueInfo{Kind: ast.FnValue, Fn: &ast.Callable{
			Name:     cand.ext.Name,
			Variants: types.SingleVariant(cand.ext.Sig),
		}},
	})
}
