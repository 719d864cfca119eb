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

package construct

import (
	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

// Trees

// Builder creates nodes in a tree. Each node is given a distinct position on the current line.
type Builder struct {
	Tree     *ast.Tree
	File     string
	line     int
	col      int
	nextName int
}

// NewBuilder creates a builder for an empty tree.
func NewBuilder() *Builder {
	return &Builder{Tree: ast.NewTree(), line: 1}
}

// Line moves subsequent nodes to the given line.
func (b *Builder) Line(line int) *Builder {
	b.line, b.col = line, 0
	return b
}

func (b *Builder) add(n ast.Node) ast.NodeID {
	b.col++
	n.Pos = diag.Pos{File: b.File, Line: b.line, Col: b.col}
	return b.Tree.Add(n)
}

// Root sets the root of the tree and returns it.
func (b *Builder) Root(id ast.NodeID) *ast.Tree {
	b.Tree.Root = id
	return b.Tree
}

// Names

// Name creates a source name.
func (b *Builder) Name(text string) *ast.Name { return b.name(text, ast.Source) }

// Temp creates a compiler-introduced temporary.
func (b *Builder) Temp(text string) *ast.Name { return b.name(text, ast.Temporary) }

// Builtin creates a builtin name.
func (b *Builder) Builtin(text string) *ast.Name { return b.name(text, ast.Builtin) }

func (b *Builder) name(text string, kind ast.NameKind) *ast.Name {
	b.nextName++
	return &ast.Name{ID: b.nextName, Text: text, Kind: kind}
}

// Read: `x`
func (b *Builder) Read(n *ast.Name) ast.NodeID {
	return b.add(ast.Node{Kind: ast.RightName, Name: n})
}

// Write: `x = ...` (left side)
func (b *Builder) Write(n *ast.Name) ast.NodeID {
	return b.add(ast.Node{Kind: ast.LeftName, Name: n})
}

// Values

func (b *Builder) Int(v int64) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.IntValue, Int: v}})
}

func (b *Builder) Str(v string) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.StringValue, Str: v}})
}

func (b *Builder) Bool(v bool) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.BoolValue, Bool: v}})
}

// Null: the untyped null literal.
func (b *Builder) Null() ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.NullValue}})
}

func (b *Builder) Void() ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.VoidValue}})
}

// TypeRef: `\List<Int>`
func (b *Builder) TypeRef(t types.Type) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.TypeValue, Type: t}})
}

// Fn: a builtin callable with one or more variants.
func (b *Builder) Fn(name string, sigs ...*types.Sig) ast.NodeID {
	return b.FnVariants(name, &types.Variants{Primary: sigs})
}

// FnVariants: a builtin callable with an explicit variant group.
func (b *Builder) FnVariants(name string, v *types.Variants) ast.NodeID {
	return b.callable(&ast.Callable{Name: name, Op: ast.OpNone, Variants: v})
}

func (b *Builder) callable(fn *ast.Callable) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Value, Value: &ast.ValueInfo{Kind: ast.FnValue, Fn: fn}})
}

func (b *Builder) op(op ast.Op) ast.NodeID {
	return b.callable(&ast.Callable{Op: op})
}

// Calls

// Call: `f(args...)`
func (b *Builder) Call(callee ast.NodeID, args ...ast.NodeID) ast.NodeID {
	children := append([]ast.NodeID{callee}, args...)
	return b.add(ast.Node{Kind: ast.Call, Children: children})
}

// Assign: `x = rhs`
func (b *Builder) Assign(n *ast.Name, rhs ast.NodeID) ast.NodeID {
	return b.Call(b.op(ast.OpAssign), b.Write(n), rhs)
}

// SetProperty: `recv.p = rhs`, where n is the name backing property p.
func (b *Builder) SetProperty(n *ast.Name, recv, rhs ast.NodeID) ast.NodeID {
	return b.Call(b.op(ast.OpSetProperty), b.Write(n), recv, rhs)
}

// Handle: `flag = failed(call)`
func (b *Builder) Handle(flag *ast.Name, call ast.NodeID) ast.NodeID {
	return b.Call(b.op(ast.OpHandle), b.Write(flag), call)
}

// Is: `x is T`
func (b *Builder) Is(operand ast.NodeID, t types.Type) ast.NodeID {
	return b.Call(b.op(ast.OpIs), operand, b.TypeRef(t))
}

// As: `x as T`
func (b *Builder) As(operand ast.NodeID, t types.Type) ast.NodeID {
	return b.Call(b.op(ast.OpAs), operand, b.TypeRef(t))
}

// NotNull: `x!`
func (b *Builder) NotNull(operand ast.NodeID) ast.NodeID {
	return b.Call(b.op(ast.OpNotNull), operand)
}

// New: `new T(args...)`
func (b *Builder) New(t types.Type, args ...ast.NodeID) ast.NodeID {
	return b.Call(b.op(ast.OpNew), append([]ast.NodeID{b.TypeRef(t)}, args...)...)
}

// Dot: `recv.symbol(args...)`
func (b *Builder) Dot(symbol string, access ast.Access, recv ast.NodeID, args ...ast.NodeID) ast.NodeID {
	return b.DotWith(&ast.DotInfo{Symbol: symbol, Access: access}, recv, args...)
}

// DotWith: a member access with extension candidates or an enclosing shape.
func (b *Builder) DotWith(info *ast.DotInfo, recv ast.NodeID, args ...ast.NodeID) ast.NodeID {
	callee := b.callable(&ast.Callable{Op: ast.OpDot, Dot: info})
	return b.Call(callee, append([]ast.NodeID{recv}, args...)...)
}

// Declarations and functions

// Decl: `let x: T` (t may be nil)
func (b *Builder) Decl(n *ast.Name, t types.Type) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Decl, Children: []ast.NodeID{b.Write(n)}, Decl: &ast.DeclInfo{Type: t}})
}

// Param: a required function parameter (t may be nil).
func (b *Builder) Param(n *ast.Name, t types.Type) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Decl, Children: []ast.NodeID{b.Write(n)}, Decl: &ast.DeclInfo{Type: t, Param: true}})
}

// OptionalParam: a parameter with a default.
func (b *Builder) OptionalParam(n *ast.Name, t types.Type) ast.NodeID {
	id := b.Param(n, t)
	b.Tree.Node(id).Decl.Optional = true
	return id
}

// RestParam: a variadic parameter; t is the element type.
func (b *Builder) RestParam(n *ast.Name, t types.Type) ast.NodeID {
	id := b.Param(n, t)
	b.Tree.Node(id).Decl.Rest = true
	return id
}

// Fun: `fn (params...): ret { body }` (ret may be nil)
func (b *Builder) Fun(info *ast.FunInfo, params []ast.NodeID, body ast.NodeID) ast.NodeID {
	if info == nil {
		info = &ast.FunInfo{}
	}
	children := append(append([]ast.NodeID(nil), params...), body)
	return b.add(ast.Node{Kind: ast.Fun, Children: children, Fun: info})
}

// Block of straight-line statements.
func (b *Builder) Block(stmts ...ast.NodeID) ast.NodeID {
	return b.add(ast.Node{Kind: ast.Block, Children: stmts})
}

func (b *Builder) Stay() ast.NodeID { return b.add(ast.Node{Kind: ast.Stay}) }

// Control flow

// Flow builds a block with explicit segments and jumps.
type Flow struct {
	b        *Builder
	children []ast.NodeID
	flow     ast.Flow
}

// FlowBlock starts a block with control flow.
func (b *Builder) FlowBlock() *Flow { return &Flow{b: b} }

// Segment appends a straight-line segment and returns its index.
func (f *Flow) Segment(stmts ...ast.NodeID) int {
	start := len(f.children)
	f.children = append(f.children, stmts...)
	return f.flow.AddSegment(start, len(f.children))
}

// Jump adds an unconditional edge.
func (f *Flow) Jump(from, to int) *Flow {
	f.flow.AddJump(ast.Jump{From: from, To: to, Cond: -1})
	return f
}

// Branch adds an edge taken when the last statement of segment from evaluates to when.
func (f *Flow) Branch(from, to int, when bool) *Flow {
	cond := f.flow.Segments[from].End - 1
	f.flow.AddJump(ast.Jump{From: from, To: to, Cond: cond, When: when})
	return f
}

// Fail adds an edge taken when an operation in segment from fails.
func (f *Flow) Fail(from, to int) *Flow {
	f.flow.AddJump(ast.Jump{From: from, To: to, Cond: -1, Failure: true})
	return f
}

// Build the block.
func (f *Flow) Build() ast.NodeID {
	flow := f.flow
	return f.b.add(ast.Node{Kind: ast.Block, Children: f.children, Flow: &flow})
}

// If builds `pre...; if (cond) { then... } else { els... }; after...`.
// cond is evaluated as the last statement of the first segment.
func (b *Builder) If(pre []ast.NodeID, cond ast.NodeID, then, els, after []ast.NodeID) ast.NodeID {
	f := b.FlowBlock()
	entry := f.Segment(append(append([]ast.NodeID(nil), pre...), cond)...)
	thenSeg := f.Segment(then...)
	elseSeg := f.Segment(els...)
	join := f.Segment(after...)
	f.Branch(entry, thenSeg, true).Branch(entry, elseSeg, false)
	f.Jump(thenSeg, join).Jump(elseSeg, join)
	return f.Build()
}

// While builds `pre...; while (cond) { body... }; after...`.
func (b *Builder) While(pre []ast.NodeID, cond ast.NodeID, body, after []ast.NodeID) ast.NodeID {
	f := b.FlowBlock()
	entry := f.Segment(pre...)
	test := f.Segment(cond)
	loop := f.Segment(body...)
	exit := f.Segment(after...)
	f.Jump(entry, test)
	f.Branch(test, loop, true).Branch(test, exit, false)
	f.Jump(loop, test)
	return f.Build()
}
