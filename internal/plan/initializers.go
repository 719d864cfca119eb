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
	"github.com/benbjohnson/immutable"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/internal/util"
)

// initState orders what is known about a name along every path reaching a point.
type initState uint8

const (
	notInit initState = iota
	initNull
	initNonNull
)

type intHasher struct{}

func (intHasher) Hash(key interface{}) uint32 {
	h := uint32(key.(int))
	h ^= h >> 16
	h *= 0x45d9f3b
	h ^= h >> 16
	return h
}

func (intHasher) Equal(a, b interface{}) bool { return a.(int) == b.(int) }

// states maps name ids to their init state; absent names are not initialized.
type states struct {
	m *immutable.Map
}

var emptyStates = states{immutable.NewMap(intHasher{})}

func (s states) get(nameID int) initState {
	v, ok := s.m.Get(nameID)
	if !ok {
		return notInit
	}
	return v.(initState)
}

func (s states) set(nameID int, st initState) states {
	if s.get(nameID) == st {
		return s
	}
	if st == notInit {
		return states{s.m.Delete(nameID)}
	}
	return states{s.m.Set(nameID, st)}
}

// meet keeps what holds on both paths.
func meet(a, b states) states {
	if a.m == b.m {
		return a
	}
	out := a
	iter := a.m.Iterator()
	for !iter.Done() {
		k, _ := iter.Next()
		id := k.(int)
		if st := b.get(id); st < out.get(id) {
			out = out.set(id, st)
		}
	}
	return out
}

func equalStates(a, b states) bool {
	if a.m == b.m {
		return true
	}
	if a.m.Len() != b.m.Len() {
		return false
	}
	iter := a.m.Iterator()
	for !iter.Done() {
		k, v := iter.Next()
		if b.get(k.(int)) != v.(initState) {
			return false
		}
	}
	return true
}

func (p *Plan) discoverInitializers() {
	p.initNode(p.Tree.Root, emptyStates)
	for nameID, as := range p.Assignments {
		var inits []ast.NodeID
		for _, a := range as {
			if p.initialized[a.Call] {
				inits = append(inits, a.Call)
			}
		}
		if len(inits) > 0 {
			p.Initializers[nameID] = inits
		}
	}
}

func (p *Plan) initNode(id ast.NodeID, in states) states {
	t := p.Tree
	n := t.Node(id)
	switch n.Kind {
	case ast.Block:
		return p.initBlock(id, in)

	case ast.Fun:
		// A function body starts from the state where the function is defined; running it does
		// not initialize names of the enclosing scope.
		st := in
		for _, c := range n.Children {
			st = p.initNode(c, st)
		}
		return in

	case ast.Call:
		st := in
		for _, c := range n.Children {
			st = p.initNode(c, st)
		}
		switch t.Op(id) {
		case ast.OpAssign, ast.OpSetProperty, ast.OpHandle:
			a, ok := p.AssignmentOf(id)
			if !ok {
				return st
			}
			null := t.Op(id) != ast.OpHandle && t.IsNullLiteral(a.RHS)
			prev := st.get(a.Name.ID)
			switch {
			case prev == notInit:
				p.initialized[id] = true
			case prev == initNull && !null:
				// A non-null assignment following a null one initializes too.
				p.initialized[id] = true
			default:
				p.initialized[id] = false
			}
			if null {
				if prev == notInit {
					st = st.set(a.Name.ID, initNull)
				}
			} else {
				st = st.set(a.Name.ID, initNonNull)
			}
		}
		return st

	default:
		st := in
		for _, c := range n.Children {
			st = p.initNode(c, st)
		}
		return st
	}
}

// initBlock runs initializer discovery over the segments of a block until the states at every
// segment entry stop changing. Failure edges carry the state from the start of their segment.
func (p *Plan) initBlock(block ast.NodeID, in states) states {
	t := p.Tree
	n := t.Node(block)
	segs := t.Segments(block)
	if n.Flow == nil || len(segs) <= 1 {
		st := in
		for _, c := range n.Children {
			st = p.initNode(c, st)
		}
		return st
	}

	g, exit := segmentGraph(n.Flow)
	rpo := g.PostOrder(0, true)
	entries := make([]*states, len(segs))
	exits := make([]*states, len(segs))
	entries[0] = &in
	var out *states

	for iter := 0; iter < 2*len(segs)+2; iter++ {
		changed := false
		out = nil
		for _, s := range rpo {
			if s == exit || entries[s] == nil {
				continue
			}
			st := *entries[s]
			children := n.Children[segs[s].Start:segs[s].End]
			for _, c := range children {
				st = p.initNode(c, st)
			}
			if exits[s] == nil || !equalStates(*exits[s], st) {
				exits[s] = &st
				changed = true
			}
			for _, j := range n.Flow.Successors(s) {
				carried := st
				if j.Failure {
					carried = *entries[s]
				}
				if j.To == ast.Exit {
					if out == nil {
						c := carried
						out = &c
					} else {
						m := meet(*out, carried)
						out = &m
					}
					continue
				}
				if entries[j.To] == nil {
					c := carried
					entries[j.To] = &c
					changed = true
				} else if m := meet(*entries[j.To], carried); !equalStates(m, *entries[j.To]) {
					entries[j.To] = &m
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	if out == nil {
		return in
	}
	return *out
}

// segmentGraph returns the graph of a block's segments. The exit is the last vertex.
func segmentGraph(f *ast.Flow) (util.Graph, int) {
	exit := len(f.Segments)
	g := util.NewGraph(exit + 1)
	for s := range f.Segments {
		for _, j := range f.Successors(s) {
			if j.To == ast.Exit {
				g.AddEdge(s, exit)
			} else {
				g.AddEdge(s, j.To)
			}
		}
	}
	return g, exit
}
