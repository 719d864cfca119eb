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

import (
	"github.com/wdamron/typer/diag"
)

// Tree is an arena of nodes. Rewrites overwrite child slots; node positions stay stable.
type Tree struct {
	nodes []Node
	Root  NodeID
}

// NewTree creates an empty tree.
func NewTree() *Tree { return &Tree{Root: NoNode} }

// Add appends a node to the arena and returns its handle.
func (t *Tree) Add(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Node returns the node for id. The pointer is invalidated by Add.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

// Len returns the number of arena slots.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether id refers to a slot in the arena.
func (t *Tree) Valid(id NodeID) bool { return id >= 0 && int(id) < len(t.nodes) }

// SetChild overwrites the i'th child slot of parent.
func (t *Tree) SetChild(parent NodeID, i int, child NodeID) {
	t.nodes[parent].Children[i] = child
}

// Replace overwrites the node stored at id, keeping its position.
func (t *Tree) Replace(id NodeID, n Node) {
	pos := t.nodes[id].Pos
	t.nodes[id] = n
	t.nodes[id].Pos = pos
}

// Decide stores a decision for id.
func (t *Tree) Decide(id NodeID, d *Decision) { t.nodes[id].Decision = d }

// Decision returns the decision stored for id, or nil.
func (t *Tree) Decision(id NodeID) *Decision { return t.nodes[id].Decision }

// Pos returns the position of id.
func (t *Tree) Pos(id NodeID) diag.Pos { return t.nodes[id].Pos }

// Callable returns the builtin callable of a value node, or nil.
func (t *Tree) Callable(id NodeID) *Callable {
	n := &t.nodes[id]
	if n.Kind != Value || n.Value == nil || n.Value.Kind != FnValue {
		return nil
	}
	return n.Value.Fn
}

// Op returns the special operator of a call node; OpNone for ordinary calls.
func (t *Tree) Op(call NodeID) Op {
	n := &t.nodes[call]
	if n.Kind != Call || len(n.Children) == 0 {
		return OpNone
	}
	if fn := t.Callable(n.Children[0]); fn != nil {
		return fn.Op
	}
	return OpNone
}

// IsNullLiteral reports whether id is the untyped null literal.
func (t *Tree) IsNullLiteral(id NodeID) bool {
	n := &t.nodes[id]
	return n.Kind == Value && n.Value != nil && n.Value.Kind == NullValue && n.Value.Type == nil
}
