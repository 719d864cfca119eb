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

package plan

import (
	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/types"
)

// scope collects functions deferred to the end of the enclosing function or module.
type scope struct {
	deferred []ast.NodeID
}

type orderer struct {
	p      *Plan
	scopes []*scope
	aborts []ast.NodeID
}

// order computes the typing order. Calls come after their arguments, and the segments of a block
// are visited in reverse post-order so that every branch reaching a join is ordered before it.
// Functions without fully explicit signatures (other than constructors) are moved to the end of
// their enclosing scope, and abort-style statements to the end of the whole order.
func (p *Plan) order() {
	o := &orderer{p: p}
	o.scopes = append(o.scopes, &scope{})
	o.node(p.Tree.Root)
	o.closeScope()
	for _, id := range o.aborts {
		o.visitChildren(id)
		o.emit(id, Visit)
	}
}

func (o *orderer) emit(id ast.NodeID, phase Phase) {
	o.p.Order = append(o.p.Order, Step{Node: id, Phase: phase})
}

func (o *orderer) closeScope() {
	s := o.scopes[len(o.scopes)-1]
	for i := 0; i < len(s.deferred); i++ {
		o.fun(s.deferred[i])
	}
	o.scopes = o.scopes[:len(o.scopes)-1]
}

func (o *orderer) node(id ast.NodeID) {
	t := o.p.Tree
	n := t.Node(id)
	switch n.Kind {
	case ast.Escape:
		return

	case ast.Fun:
		if !n.Fun.Ctor && !t.Explicit(id) {
			s := o.scopes[len(o.scopes)-1]
			s.deferred = append(s.deferred, id)
			return
		}
		o.fun(id)

	case ast.Block:
		o.block(id)
		o.emit(id, Visit)

	default:
		o.visitChildren(id)
		o.emit(id, Visit)
	}
}

func (o *orderer) visitChildren(id ast.NodeID) {
	for _, c := range o.p.Tree.Node(id).Children {
		o.node(c)
	}
}

func (o *orderer) fun(id ast.NodeID) {
	n := o.p.Tree.Node(id)
	o.emit(id, Enter)
	o.scopes = append(o.scopes, &scope{})
	for _, param := range n.Params() {
		o.node(param)
	}
	o.node(n.Body())
	o.closeScope()
	o.emit(id, Exit)
}

func (o *orderer) block(id ast.NodeID) {
	t := o.p.Tree
	n := t.Node(id)
	statement := func(c ast.NodeID) {
		if o.isAbort(c) {
			o.p.Deferred.Insert(c)
			o.aborts = append(o.aborts, c)
			return
		}
		o.node(c)
	}
	if n.Flow == nil || len(n.Flow.Segments) <= 1 {
		for _, c := range n.Children {
			statement(c)
		}
		return
	}
	g, exit := segmentGraph(n.Flow)
	visited := make([]bool, len(n.Flow.Segments))
	for _, s := range g.PostOrder(0, true) {
		if s == exit {
			continue
		}
		visited[s] = true
		seg := n.Flow.Segments[s]
		for _, c := range n.Children[seg.Start:seg.End] {
			statement(c)
		}
	}
	// Unreachable segments are still typed.
	for s, seg := range n.Flow.Segments {
		if visited[s] {
			continue
		}
		for _, c := range n.Children[seg.Start:seg.End] {
			statement(c)
		}
	}
}

// isAbort reports whether a block statement is a nullary call to a builtin which never returns a
// value: it only diverges or fails.
func (o *orderer) isAbort(id ast.NodeID) bool {
	t := o.p.Tree
	n := t.Node(id)
	if n.Kind != ast.Call || len(n.Children) != 1 {
		return false
	}
	fn := t.Callable(n.Callee())
	if fn == nil || fn.Op != ast.OpNone || fn.Variants == nil {
		return false
	}
	callees := fn.Variants.Callees()
	if len(callees) == 0 {
		return false
	}
	for _, c := range callees {
		if min, _ := c.Sig.Arity(); min != 0 || c.Sig.Return == nil || !types.NoValue(c.Sig.Return) {
			return false
		}
	}
	return true
}
