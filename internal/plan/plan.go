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

// Package plan computes the order in which a module's nodes are typed, together with the
// facts about names and calls which that typing relies on.
package plan

import (
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/types"
)

type Phase uint8

const (
	Visit Phase = iota
	// Enter and Exit bracket the parameters and body of a function.
	Enter
	Exit
)

// Step is one entry of the typing order.
type Step struct {
	Node  ast.NodeID
	Phase Phase
}

// Decl records a declared name.
type Decl struct {
	Node  ast.NodeID
	Name  *ast.Name
	Type  types.Type
	Param bool
}

// Assignment records a name being assigned. Call is an assign, set-property or handle call.
type Assignment struct {
	Call ast.NodeID
	Name *ast.Name
	// RHS is the assigned expression; for a handle call it is the wrapped call.
	RHS ast.NodeID
}

// Use locates the argument slot of a call receiving a value.
type Use struct {
	Call ast.NodeID
	Arg  int
}

// Plan holds the results of analyzing a module.
type Plan struct {
	Tree *ast.Tree

	Decls map[int]*Decl
	// Assignments per name id, in tree order.
	Assignments map[int][]Assignment
	// Initializers per name id: the assignment calls which are not necessarily preceded by
	// another assignment to the same name.
	Initializers map[int][]ast.NodeID
	// Aliases maps a sink name id to every source it may be inferred from, transitively.
	Aliases map[int]*set.Set[int]
	Order   []Step
	// Conds are the nodes whose values select a branch.
	Conds   *set.Set[ast.NodeID]
	Members map[int]*types.Member
	// Returns maps each return-like name id to its function, or to NoNode for the module result.
	Returns map[int]ast.NodeID
	// Consumers maps calls and functions to the single later call which receives their value,
	// directly as an argument or through a chain of single-read names.
	Consumers map[ast.NodeID]Use
	// Deferred are abort-style calls moved to the end of the order.
	Deferred *set.Set[ast.NodeID]

	Parents map[ast.NodeID]ast.NodeID
	Reads   map[int][]ast.NodeID
	// Enclosing maps each function node to its enclosing function, or NoNode.
	Enclosing map[ast.NodeID]ast.NodeID

	initialized map[ast.NodeID]bool
}

// Analyze plans the typing of tree. result is the name holding the module's result, or nil.
func Analyze(tree *ast.Tree, result *ast.Name) (*Plan, error) {
	if tree == nil || !tree.Valid(tree.Root) {
		return nil, errors.New("plan: tree has no root")
	}
	p := &Plan{
		Tree:         tree,
		Decls:        make(map[int]*Decl),
		Assignments:  make(map[int][]Assignment),
		Initializers: make(map[int][]ast.NodeID),
		Aliases:      make(map[int]*set.Set[int]),
		Conds:        set.New[ast.NodeID](8),
		Members:      make(map[int]*types.Member),
		Returns:      make(map[int]ast.NodeID),
		Consumers:    make(map[ast.NodeID]Use),
		Deferred:     set.New[ast.NodeID](2),
		Reads:        make(map[int][]ast.NodeID),
		Enclosing:    make(map[ast.NodeID]ast.NodeID),
		initialized:  make(map[ast.NodeID]bool),
	}
	if result != nil {
		p.Returns[result.ID] = ast.NoNode
	}
	p.Parents = tree.Parents()
	if err := p.collect(tree.Root, ast.NoNode); err != nil {
		return nil, err
	}
	p.discoverInitializers()
	p.closeAliases()
	p.findConsumers()
	p.order()
	return p, nil
}

// collect records declarations, assignments, reads and branch conditions.
func (p *Plan) collect(id, fun ast.NodeID) error {
	t := p.Tree
	n := t.Node(id)
	switch n.Kind {
	case ast.Escape, ast.Stay, ast.Value, ast.LeftName:
		return nil

	case ast.RightName:
		if n.Name == nil {
			return errors.Errorf("plan: name read without a name at %s", n.Pos)
		}
		p.Reads[n.Name.ID] = append(p.Reads[n.Name.ID], id)
		return nil

	case ast.Decl:
		if len(n.Children) == 0 || t.Node(n.Children[0]).Kind != ast.LeftName || n.Decl == nil {
			return errors.Errorf("plan: malformed declaration at %s", n.Pos)
		}
		name := t.Node(n.Children[0]).Name
		p.Decls[name.ID] = &Decl{Node: id, Name: name, Type: n.Decl.Type, Param: n.Decl.Param}
		if n.Decl.Member != nil {
			p.Members[name.ID] = n.Decl.Member
		}

	case ast.Fun:
		if len(n.Children) == 0 || n.Fun == nil {
			return errors.Errorf("plan: function without a body at %s", n.Pos)
		}
		p.Enclosing[id] = fun
		if n.Fun.ReturnName != nil {
			p.Returns[n.Fun.ReturnName.ID] = id
		}
		fun = id

	case ast.Block:
		if n.Flow != nil {
			for _, j := range n.Flow.Jumps {
				if j.Cond >= 0 && j.Cond < len(n.Children) {
					p.Conds.Insert(n.Children[j.Cond])
				}
			}
		}

	case ast.Call:
		if len(n.Children) == 0 {
			return errors.Errorf("plan: call without a callee at %s", n.Pos)
		}
		switch op := t.Op(id); op {
		case ast.OpAssign, ast.OpSetProperty, ast.OpHandle:
			args := n.Args()
			want := 2
			if op == ast.OpSetProperty {
				want = 3
			}
			if len(args) != want || t.Node(args[0]).Kind != ast.LeftName || t.Node(args[0]).Name == nil {
				return errors.Errorf("plan: %s without a left-hand name at %s", op, n.Pos)
			}
			name := t.Node(args[0]).Name
			rhs := args[len(args)-1]
			p.Assignments[name.ID] = append(p.Assignments[name.ID], Assignment{Call: id, Name: name, RHS: rhs})
		}
	}
	for _, c := range n.Children {
		if err := p.collect(c, fun); err != nil {
			return err
		}
	}
	return nil
}

// Declared reports whether a name has a declaration in the module.
func (p *Plan) Declared(name *ast.Name) bool {
	_, ok := p.Decls[name.ID]
	return ok
}

// DeclaredType returns the declared type of a name, or nil.
func (p *Plan) DeclaredType(name *ast.Name) types.Type {
	if d, ok := p.Decls[name.ID]; ok {
		return d.Type
	}
	return nil
}

// IsInitializer reports whether an assignment call initializes its name.
func (p *Plan) IsInitializer(call ast.NodeID) bool { return p.initialized[call] }

// SinglyAssigned reports whether a name has exactly one assignment.
func (p *Plan) SinglyAssigned(nameID int) bool { return len(p.Assignments[nameID]) == 1 }

// ReadCount is the number of reads of a name.
func (p *Plan) ReadCount(nameID int) int { return len(p.Reads[nameID]) }

// Parent returns the parent of id, or NoNode.
func (p *Plan) Parent(id ast.NodeID) ast.NodeID {
	if parent, ok := p.Parents[id]; ok {
		return parent
	}
	return ast.NoNode
}

// AssignmentOf returns the assignment recorded for an assign, set-property or handle call.
func (p *Plan) AssignmentOf(call ast.NodeID) (Assignment, bool) {
	n := p.Tree.Node(call)
	if n.Kind != ast.Call || len(n.Children) < 2 {
		return Assignment{}, false
	}
	name := p.Tree.Node(n.Children[1]).Name
	if name == nil {
		return Assignment{}, false
	}
	for _, a := range p.Assignments[name.ID] {
		if a.Call == call {
			return a, true
		}
	}
	return Assignment{}, false
}
