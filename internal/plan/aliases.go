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
	"github.com/hashicorp/go-set/v3"

	"github.com/wdamron/typer/ast"
)

// closeAliases records sink ⟵ source for every `sink = source` where source is read exactly once
// and has no declared type, then closes the relation transitively.
func (p *Plan) closeAliases() {
	t := p.Tree
	for sinkID, as := range p.Assignments {
		for _, a := range as {
			if t.Op(a.Call) != ast.OpAssign {
				continue
			}
			rhs := t.Node(a.RHS)
			if rhs.Kind != ast.RightName || rhs.Name == nil {
				continue
			}
			source := rhs.Name.ID
			if source == sinkID || p.ReadCount(source) != 1 || p.DeclaredType(rhs.Name) != nil {
				continue
			}
			s, ok := p.Aliases[sinkID]
			if !ok {
				s = set.New[int](2)
				p.Aliases[sinkID] = s
			}
			s.Insert(source)
		}
	}
	for changed := true; changed; {
		changed = false
		for _, sources := range p.Aliases {
			for _, source := range sources.Slice() {
				if transitive, ok := p.Aliases[source]; ok {
					for _, s := range transitive.Slice() {
						if sources.Insert(s) {
							changed = true
						}
					}
				}
			}
		}
	}
}

// AliasSink follows a chain of single-read names from nameID: while the name is read exactly once
// and that read is the right side of a plain assignment, continue with the assigned name.
// It returns the last name of the chain and the single read of it, if any.
func (p *Plan) AliasSink(nameID int) (int, ast.NodeID) {
	t := p.Tree
	seen := set.New[int](4)
	for seen.Insert(nameID) {
		reads := p.Reads[nameID]
		if len(reads) != 1 {
			return nameID, ast.NoNode
		}
		read := reads[0]
		parent := p.Parent(read)
		if parent == ast.NoNode || t.Op(parent) != ast.OpAssign {
			return nameID, read
		}
		a, ok := p.AssignmentOf(parent)
		if !ok || a.RHS != read {
			return nameID, read
		}
		nameID = a.Name.ID
	}
	return nameID, ast.NoNode
}

// findConsumers links nested and aliased calls, and function values, to the call receiving them.
func (p *Plan) findConsumers() {
	t := p.Tree
	t.Walk(t.Root, func(id ast.NodeID) bool {
		n := t.Node(id)
		if n.Kind != ast.Call && n.Kind != ast.Fun {
			return true
		}
		if use, ok := p.directUse(id); ok {
			p.Consumers[id] = use
			return true
		}
		// Aliased: the right side of an assignment, optionally inside one handle call.
		assign := p.Parent(id)
		if assign != ast.NoNode && t.Op(assign) == ast.OpHandle {
			assign = p.Parent(assign)
		}
		if assign == ast.NoNode || t.Op(assign) != ast.OpAssign {
			return true
		}
		a, ok := p.AssignmentOf(assign)
		if !ok || (a.RHS != id && p.Parent(id) != a.RHS) {
			return true
		}
		_, read := p.AliasSink(a.Name.ID)
		if read == ast.NoNode {
			return true
		}
		if use, ok := p.directUse(read); ok {
			p.Consumers[id] = use
		}
		return true
	})
}

// directUse reports the call argument slot holding id, for calls which are solved as calls.
func (p *Plan) directUse(id ast.NodeID) (Use, bool) {
	t := p.Tree
	parent := p.Parent(id)
	if parent == ast.NoNode || t.Node(parent).Kind != ast.Call {
		return Use{}, false
	}
	switch t.Op(parent) {
	case ast.OpNone, ast.OpDot, ast.OpNew:
	default:
		return Use{}, false
	}
	i := t.ChildIndex(parent, id)
	if i < 1 {
		return Use{}, false
	}
	return Use{Call: parent, Arg: i - 1}, true
}

// ContextSink returns the declared name which finally receives the value assigned to nameID,
// following single-read aliases.
func (p *Plan) ContextSink(nameID int) *Decl {
	sink, _ := p.AliasSink(nameID)
	if d, ok := p.Decls[sink]; ok && d.Type != nil {
		return d
	}
	return nil
}
