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

package ast

// Clone returns a deep copy of the tree. Decisions are copied; types, names and member shapes
// are shared.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make([]Node, len(t.nodes)), Root: t.Root}
	for i := range t.nodes {
		c.nodes[i] = copyNode(&t.nodes[i])
	}
	return c
}

func copyNode(n *Node) Node {
	c := *n
	if n.Children != nil {
		c.Children = append([]NodeID(nil), n.Children...)
	}
	if n.Value != nil {
		v := *n.Value
		if v.Fn != nil {
			fn := *v.Fn
			if fn.Dot != nil {
				dot := *fn.Dot
				fn.Dot = &dot
			}
			v.Fn = &fn
		}
		c.Value = &v
	}
	if n.Decl != nil {
		d := *n.Decl
		c.Decl = &d
	}
	if n.Fun != nil {
		f := *n.Fun
		c.Fun = &f
	}
	if n.Flow != nil {
		c.Flow = &Flow{
			Segments: append([]Segment(nil), n.Flow.Segments...),
			Jumps:    append([]Jump(nil), n.Flow.Jumps...),
		}
	}
	if n.Decision != nil {
		d := *n.Decision
		d.Explanations = append(d.Explanations[:0:0], n.Decision.Explanations...)
		c.Decision = &d
	}
	return c
}
