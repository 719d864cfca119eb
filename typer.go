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

// Package typer assigns types to the nodes of a normalized module tree.
//
// Typing follows the order computed by the planner. Each node which needs a type ends with a
// Decision: its type and, for calls, the chosen signature and type-formal bindings. Generic calls
// which cannot be solved from their own arguments or context are deferred and solved jointly with
// the call consuming their result. Type errors are reported as diagnostics; a failed node is typed
// with the invalid sentinel so that dependent nodes do not report again.
package typer

import (
	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/solve"
	"github.com/wdamron/typer/types"
)

// Module is the unit of typing.
type Module struct {
	Tree *ast.Tree
	// Result is the name holding the module's result, or nil.
	Result *ast.Name
	// Shapes declared by the module. Their members are override-linked and receive inferred types.
	Shapes []*types.Shape
}

// Result is the outcome of typing a module. Decisions are attached to the module's tree.
type Result struct {
	Bindings    NameBindings
	Diagnostics *diag.Bag
}

// Environment resolves builtin and imported names.
type Environment interface {
	// Lookup returns the declared type of a name, and its variants if it is a function.
	Lookup(name *ast.Name) (types.Type, *types.Variants, bool)
}

// Solver solves batches of calls with shared type variables.
type Solver interface {
	Solve(b *solve.Batch) []solve.Result
}

// Builtins are the shapes of literal values.
type Builtins struct {
	Int     *types.Shape
	String  *types.Shape
	Boolean *types.Shape
	// List is the type of a rest parameter: List<T>.
	List *types.Shape
}

// NewBuiltins creates fresh builtin shapes.
func NewBuiltins() *Builtins {
	return &Builtins{
		Int:     types.NewShape("Int", types.Class),
		String:  types.NewShape("String", types.Class),
		Boolean: types.NewShape("Boolean", types.Class),
		List:    types.NewShape("List", types.Class, types.NewFormal(-1, "E")),
	}
}

// DefaultBuiltins are used when a Config does not provide builtins.
var DefaultBuiltins = NewBuiltins()
