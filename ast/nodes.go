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

// Package ast holds the normalized syntax tree consumed by the typer. Nodes live in an arena
// owned by a Tree and refer to their children by NodeID.
package ast

import (
	"strconv"

	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

// NodeID is a stable handle to a node within a Tree.
type NodeID int32

// NoNode is the zero handle.
const NoNode NodeID = -1

type Kind uint8

const (
	// Statements, with optional control flow between them.
	Block Kind = iota
	// Callee followed by arguments.
	Call
	// Declaration of a single name.
	Decl
	// Function: parameter declarations followed by the body.
	Fun
	// A name being assigned.
	LeftName
	// A name being read.
	RightName
	// A literal value, type reference or builtin callable.
	Value
	// Marks a position in a block; produces nothing.
	Stay
	// Quoted syntax which is not typed.
	Escape
)

func (k Kind) String() string {
	switch k {
	case Block:
		return "Block"
	case Call:
		return "Call"
	case Decl:
		return "Decl"
	case Fun:
		return "Fun"
	case LeftName:
		return "LeftName"
	case RightName:
		return "RightName"
	case Value:
		return "Value"
	case Stay:
		return "Stay"
	default:
		return "Escape"
	}
}

// NeedsType reports whether nodes of kind k end typing with a Decision.
func (k Kind) NeedsType() bool { return k != Stay && k != Escape }

type NameKind uint8

const (
	Temporary NameKind = iota
	Source
	Exported
	Builtin
)

// Name is a resolved identifier. Names are unique within a module by ID.
type Name struct {
	ID   int
	Text string
	Kind NameKind
}

func (n *Name) String() string {
	if n.Kind == Temporary {
		return n.Text + "#" + strconv.Itoa(n.ID)
	}
	return n.Text
}

// Node is one arena slot. Only the fields relevant to Kind are set.
type Node struct {
	Kind     Kind
	Pos      diag.Pos
	Children []NodeID

	Name  *Name
	Value *ValueInfo
	Decl  *DeclInfo
	Fun   *FunInfo
	Flow  *Flow

	// Decision is empty until the node is typed.
	Decision *Decision
}

// Callee returns the callee of a call node.
func (n *Node) Callee() NodeID { return n.Children[0] }

// Args returns the arguments of a call node.
func (n *Node) Args() []NodeID { return n.Children[1:] }

// Params returns the parameter declarations of a function node.
func (n *Node) Params() []NodeID { return n.Children[:len(n.Children)-1] }

// Body returns the body of a function node.
func (n *Node) Body() NodeID { return n.Children[len(n.Children)-1] }

// Decision is the typing outcome for one node.
type Decision struct {
	Type types.Type
	// Variant is the chosen signature of a callee.
	Variant  *types.Sig
	Bindings types.Bindings
	// Explanations are diagnostics reported while deciding the node.
	Explanations []diag.Diagnostic
}

// Valid reports whether the decided type is not the invalid sentinel.
func (d *Decision) Valid() bool { return d != nil && !types.IsInvalid(d.Type) }

type ValueKind uint8

const (
	IntValue ValueKind = iota
	StringValue
	BoolValue
	// The untyped null literal.
	NullValue
	VoidValue
	// A reference to a type.
	TypeValue
	// A builtin callable.
	FnValue
)

// ValueInfo describes a literal.
type ValueInfo struct {
	Kind ValueKind
	Int  int64
	Str  string
	Bool bool
	// Type referenced by a TypeValue, or the declared type of a literal.
	Type types.Type
	Fn   *Callable
}

// Op identifies callables with special typing rules.
type Op uint8

const (
	// An ordinary function with a set of variants.
	OpNone Op = iota
	// (LeftName, value)
	OpAssign
	// (LeftName of the property, receiver, value)
	OpSetProperty
	// (LeftName of the failure flag, wrapped call)
	OpHandle
	// (operand, type reference)
	OpIs
	// (operand, type reference)
	OpAs
	// (operand)
	OpNotNull
	// (type reference, constructor arguments...)
	OpNew
	// (receiver, arguments...)
	OpDot
)

var opNames = [...]string{"fn", "assign", "setp", "handle", "is", "as", "notNull", "new", "dot"}

func (op Op) String() string { return opNames[op] }

// Callable is a builtin function or special operator appearing in callee position.
type Callable struct {
	Name     string
	Op       Op
	Variants *types.Variants
	Dot      *DotInfo
}

type Access uint8

const (
	Get Access = iota
	Set
	// Bind the member as a callable with the receiver captured.
	Bind
)

func (a Access) String() string {
	switch a {
	case Get:
		return "get"
	case Set:
		return "set"
	default:
		return "bind"
	}
}

// DotInfo annotates a member access.
type DotInfo struct {
	Symbol string
	Access Access
	// Extensions are the extension functions visible at the access.
	Extensions []*types.Extension
	// From is the shape whose body contains the access, if any.
	From *types.Shape

	// Resolved after typing: either Member or Extension is set.
	Member    *types.Member
	Extension *types.Extension
}

// DeclInfo describes a declaration.
type DeclInfo struct {
	// Type is the declared type, or nil when it is inferred.
	Type     types.Type
	Param    bool
	Optional bool
	Rest     bool
	// Member is the property backed by the declared name.
	Member *types.Member
}

// FunInfo describes a function.
type FunInfo struct {
	Name    string
	Formals []*types.Formal
	// Return is the declared return type, or nil when it is inferred.
	Return types.Type
	// ReturnName holds the function's result.
	ReturnName *Name
	// ReturnRequired marks functions which must declare a return type.
	ReturnRequired bool
	Ctor           bool
	Member         *types.Member
}

// Explicit reports whether the function declares every parameter type and its return type.
func (t *Tree) Explicit(fun NodeID) bool {
	n := t.Node(fun)
	if n.Fun.Return == nil {
		return false
	}
	for _, p := range n.Params() {
		if d := t.Node(p).Decl; d == nil || d.Type == nil {
			return false
		}
	}
	return true
}
