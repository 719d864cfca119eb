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

package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wdamron/typer/ast"
	. "github.com/wdamron/typer/construct"
	"github.com/wdamron/typer/internal/plan"
	"github.com/wdamron/typer/types"
)

var (
	intShape = TClass("Int")
	intT     = intShape.Type()
)

func position(p *plan.Plan, id ast.NodeID, phase plan.Phase) int {
	for i, s := range p.Order {
		if s.Node == id && s.Phase == phase {
			return i
		}
	}
	return -1
}

func TestSingleInitializer(t *testing.T) {
	b := NewBuilder()
	a := b.Name("a")
	decl := b.Decl(a, nil)
	assign := b.Assign(a, b.Int(1))
	read := b.Read(a)
	root := b.Block(decl, assign, read)
	p, err := plan.Analyze(b.Root(root), nil)
	require.NoError(t, err)

	require.Equal(t, []ast.NodeID{assign}, p.Initializers[a.ID])
	require.True(t, p.SinglyAssigned(a.ID))
	require.Equal(t, 1, p.ReadCount(a.ID))
	require.Less(t, position(p, decl, plan.Visit), position(p, assign, plan.Visit))
	require.Less(t, position(p, assign, plan.Visit), position(p, read, plan.Visit))
	require.Equal(t, root, p.Order[len(p.Order)-1].Node)
}

func TestInitializersOverBranches(t *testing.T) {
	b := NewBuilder()
	x, c := b.Name("x"), b.Name("c")
	cond := b.Read(c)
	thenAssign := b.Assign(x, b.Int(1))
	elseAssign := b.Assign(x, b.Str("one"))
	later := b.Assign(x, b.Int(2))
	read := b.Read(x)
	root := b.If([]ast.NodeID{b.Decl(c, nil), b.Decl(x, nil)}, cond, []ast.NodeID{thenAssign}, []ast.NodeID{elseAssign}, []ast.NodeID{later, read})
	p, err := plan.Analyze(b.Root(root), nil)
	require.NoError(t, err)

	require.ElementsMatch(t, []ast.NodeID{thenAssign, elseAssign}, p.Initializers[x.ID])
	require.False(t, p.IsInitializer(later))
	require.True(t, p.Conds.Contains(cond))
	// Both branches are ordered before the join.
	require.Less(t, position(p, thenAssign, plan.Visit), position(p, later, plan.Visit))
	require.Less(t, position(p, elseAssign, plan.Visit), position(p, later, plan.Visit))
}

func TestInitializerOnOnePath(t *testing.T) {
	b := NewBuilder()
	x, c := b.Name("x"), b.Name("c")
	thenAssign := b.Assign(x, b.Int(1))
	after := b.Assign(x, b.Int(2))
	root := b.If(nil, b.Read(c), []ast.NodeID{thenAssign}, nil, []ast.NodeID{after})
	p, err := plan.Analyze(b.Root(root), nil)
	require.NoError(t, err)

	// The else path reaches the join without an assignment.
	require.True(t, p.IsInitializer(thenAssign))
	require.True(t, p.IsInitializer(after))
}

func TestNullSequencing(t *testing.T) {
	b := NewBuilder()
	x, y := b.Name("x"), b.Name("y")
	xNull := b.Assign(x, b.Null())
	xInt := b.Assign(x, b.Int(5))
	yInt := b.Assign(y, b.Int(5))
	yNull := b.Assign(y, b.Null())
	p, err := plan.Analyze(b.Root(b.Block(xNull, xInt, yInt, yNull)), nil)
	require.NoError(t, err)

	require.Equal(t, []ast.NodeID{xNull, xInt}, p.Initializers[x.ID])
	require.Equal(t, []ast.NodeID{yInt}, p.Initializers[y.ID])
}

func TestLoopAndFailureEdges(t *testing.T) {
	b := NewBuilder()
	x, c, f := b.Name("x"), b.Name("c"), b.Name("flag")
	loopAssign := b.Assign(x, b.Int(1))
	root := b.While(nil, b.Read(c), []ast.NodeID{loopAssign}, nil)
	p, err := plan.Analyze(b.Root(root), nil)
	require.NoError(t, err)
	require.True(t, p.IsInitializer(loopAssign))

	b = NewBuilder()
	x = b.Name("x")
	fb := b.FlowBlock()
	try := b.Handle(f, b.Call(b.Fn("parse", TFunc(nil, TUnion(intT, types.Bubble)))))
	first := b.Assign(x, b.Int(1))
	s0 := fb.Segment(try, first)
	recovered := b.Assign(x, b.Int(2))
	s1 := fb.Segment(recovered)
	s2 := fb.Segment(b.Read(x))
	fb.Fail(s0, s1).Jump(s0, s2).Jump(s1, s2)
	p, err = plan.Analyze(b.Root(fb.Build()), nil)
	require.NoError(t, err)
	require.True(t, p.IsInitializer(first))
	require.True(t, p.IsInitializer(recovered))
	require.True(t, p.IsInitializer(try))
}

func TestAliasedCalls(t *testing.T) {
	b := NewBuilder()
	t1, t2 := b.Temp("t"), b.Temp("t")
	T := TFormal(1, "T")
	inner := b.Call(b.Fn("empty", TGeneric([]*types.Formal{T}, nil, T)))
	alias := b.Read(t1)
	outer := b.Call(b.Fn("use", TFunc1(intT, types.Void)), b.Read(t2))
	root := b.Block(b.Assign(t1, inner), b.Assign(t2, alias), outer)
	p, err := plan.Analyze(b.Root(root), nil)
	require.NoError(t, err)

	require.True(t, p.Aliases[t2.ID].Contains(t1.ID))
	sink, _ := p.AliasSink(t1.ID)
	require.Equal(t, t2.ID, sink)
	require.Equal(t, plan.Use{Call: outer, Arg: 0}, p.Consumers[inner])
}

func TestDeferredFunctions(t *testing.T) {
	b := NewBuilder()
	f, g, x, y := b.Name("f"), b.Name("g"), b.Name("x"), b.Name("y")
	implicit := b.Fun(nil, []ast.NodeID{b.Param(x, nil)}, b.Block(b.Read(x)))
	explicit := b.Fun(&ast.FunInfo{Return: intT}, []ast.NodeID{b.Param(y, intT)}, b.Block(b.Read(y)))
	call := b.Call(b.Fn("apply", TFunc1(TFunc1(intT, intT), intT)), b.Read(f))
	root := b.Block(b.Assign(f, implicit), b.Assign(g, explicit), call)
	p, err := plan.Analyze(b.Root(root), nil)
	require.NoError(t, err)

	require.Less(t, position(p, call, plan.Visit), position(p, implicit, plan.Enter))
	require.Less(t, position(p, explicit, plan.Exit), position(p, call, plan.Visit))
	require.Less(t, position(p, implicit, plan.Enter), position(p, implicit, plan.Exit))
	require.Equal(t, plan.Use{Call: call, Arg: 0}, p.Consumers[implicit])
}

func TestAbortDeferredToEnd(t *testing.T) {
	for _, ret := range []types.Type{types.Never, types.Bubble} {
		b := NewBuilder()
		x := b.Name("x")
		abort := b.Call(b.Fn("abort", TFunc(nil, ret)))
		assign := b.Assign(x, b.Int(1))
		p, err := plan.Analyze(b.Root(b.Block(abort, assign)), nil)
		require.NoError(t, err)

		require.True(t, p.Deferred.Contains(abort), "abort returning %s", types.TypeString(ret))
		require.Equal(t, abort, p.Order[len(p.Order)-1].Node)
		require.Less(t, position(p, assign, plan.Visit), position(p, abort, plan.Visit))
	}

	// A call which may fail but also yields a value stays in place.
	b := NewBuilder()
	parse := b.Call(b.Fn("parse", TFunc(nil, TUnion(intT, types.Bubble))))
	p, err := plan.Analyze(b.Root(b.Block(parse, b.Int(1))), nil)
	require.NoError(t, err)
	require.False(t, p.Deferred.Contains(parse))
}

func TestFlowOutputs(t *testing.T) {
	b := NewBuilder()
	result, r, c, x, f := b.Name("result"), b.Temp("return"), b.Name("c"), b.Name("x"), b.Name("f")
	ifCond, loopCond := b.Read(c), b.Read(c)
	thenReturn, elseReturn := b.Assign(r, b.Int(1)), b.Assign(r, b.Int(2))
	branches := b.If(nil, ifCond,
		[]ast.NodeID{thenReturn}, []ast.NodeID{elseReturn}, nil)
	fun := b.Fun(&ast.FunInfo{Name: "f", ReturnName: r}, []ast.NodeID{b.Param(x, nil)}, branches)
	loop := b.While(nil, loopCond, []ast.NodeID{b.Assign(result, b.Call(b.Read(f), b.Int(1)))}, nil)
	p, err := plan.Analyze(b.Root(b.Block(b.Decl(c, nil), b.Assign(f, fun), loop)), result)
	require.NoError(t, err)

	require.Equal(t, map[int]ast.NodeID{result.ID: ast.NoNode, r.ID: fun}, p.Returns)
	require.True(t, p.Conds.Contains(ifCond))
	require.True(t, p.Conds.Contains(loopCond))
	require.Equal(t, 2, p.Conds.Size())
	require.Equal(t, fun, p.Parent(p.Parent(ifCond)))
	require.ElementsMatch(t, []ast.NodeID{thenReturn, elseReturn}, p.Initializers[r.ID])
}

func TestMalformedAssignment(t *testing.T) {
	b := NewBuilder()
	bad := b.Call(b.FnVariants("=", nil), b.Int(1))
	b.Tree.Node(b.Tree.Node(bad).Callee()).Value.Fn.Op = ast.OpAssign
	_, err := plan.Analyze(b.Root(b.Block(bad)), nil)
	require.Error(t, err)
}
