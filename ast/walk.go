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

// Walk visits id and its descendants in pre-order. Children of a node are skipped when f returns
// false. Escaped subtrees are visited but not descended into.
func (t *Tree) Walk(id NodeID, f func(NodeID) bool) {
	if id == NoNode {
		return
	}
	if !f(id) {
		return
	}
	n := t.Node(id)
	if n.Kind == Escape {
		return
	}
	for i := 0; i < len(n.Children); i++ {
		t.Walk(n.Children[i], f)
	}
}

// WalkPost visits the descendants of id before id itself.
func (t *Tree) WalkPost(id NodeID, f func(NodeID)) {
	if id == NoNode {
		return
	}
	n := t.Node(id)
	if n.Kind != Escape {
		for i := 0; i < len(n.Children); i++ {
			t.WalkPost(n.Children[i], f)
		}
	}
	f(id)
}

// Parents maps each node reachable from the root to its parent.
func (t *Tree) Parents() map[NodeID]NodeID {
	parents := make(map[NodeID]NodeID, len(t.nodes))
	if t.Root == NoNode {
		return parents
	}
	parents[t.Root] = NoNode
	t.Walk(t.Root, func(id NodeID) bool {
		for _, c := range t.Node(id).Children {
			parents[c] = id
		}
		return true
	})
	return parents
}

// ChildIndex returns the slot of child within parent, or -1.
func (t *Tree) ChildIndex(parent, child NodeID) int {
	for i, c := range t.Node(parent).Children {
		if c == child {
			return i
		}
	}
	return -1
}
