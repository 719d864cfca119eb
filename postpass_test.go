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

package typer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wdamron/typer"
	"github.com/wdamron/typer/ast"
	. "github.com/wdamron/typer/construct"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

func TestRemoveHandles(t *testing.T) {
	b := NewBuilder()
	safeFlag, riskyFlag := b.Name("safeFailed"), b.Name("riskyFailed")
	r1, r2 := b.Name("r1"), b.Name("r2")
	safe := b.Call(b.Fn("safe", TFunc(nil, intT)))
	risky := b.Call(b.Fn("parse", TFunc(nil, TUnion(intT, types.Bubble))))
	safeHandle, riskyHandle := b.Handle(safeFlag, safe), b.Handle(riskyFlag, risky)
	safeAssign, riskyAssign := b.Assign(r1, safeHandle), b.Assign(r2, riskyHandle)
	safeRead, riskyRead := b.Read(safeFlag), b.Read(riskyFlag)
	res := infer(t, typer.Config{}, b, b.Block(safeAssign, riskyAssign, safeRead, riskyRead))
	requireClean(t, res)

	// The call which cannot fail is unwrapped; its flag reads as false.
	require.Equal(t, safe, b.Tree.Node(safeAssign).Args()[1])
	n := b.Tree.Node(safeRead)
	require.Equal(t, ast.Value, n.Kind)
	require.Equal(t, ast.BoolValue, n.Value.Kind)
	require.False(t, n.Value.Bool)
	require.Equal(t, "Boolean", typeOf(b.Tree, safeRead))

	require.Equal(t, riskyHandle, b.Tree.Node(riskyAssign).Args()[1])
	require.Equal(t, "Int", typeOf(b.Tree, riskyHandle))
	require.Equal(t, ast.RightName, b.Tree.Node(riskyRead).Kind)
	require.Equal(t, "Boolean", typeOf(b.Tree, riskyRead))
}

func TestReduceChecks(t *testing.T) {
	b := NewBuilder()
	n, m, r := b.Name("n"), b.Name("m"), b.Name("r")
	isInt := b.Is(b.Read(n), intT)
	isStr := b.Is(b.Read(n), strT)
	nullCheck := b.Is(b.Read(m), intT)
	pre := []ast.NodeID{b.Decl(n, intT), b.Decl(m, TNullable(intT)), b.Decl(r, nil), isStr, nullCheck}
	root := b.If(pre, isInt, []ast.NodeID{b.Assign(r, b.Int(1))}, []ast.NodeID{b.Assign(r, b.Int(2))}, nil)
	res := infer(t, typer.Config{}, b, root)
	requireClean(t, res)

	for id, want := range map[ast.NodeID]bool{isInt: true, isStr: false} {
		v := b.Tree.Node(id).Value
		require.NotNil(t, v, "check %d was not folded", id)
		require.Equal(t, ast.BoolValue, v.Kind)
		require.Equal(t, want, v.Bool)
		require.Equal(t, "Boolean", typeOf(b.Tree, id))
	}

	// A check of Int? against Int only tests for null.
	ref := b.Tree.Node(nullCheck).Args()[1]
	require.Equal(t, ast.Call, b.Tree.Node(nullCheck).Kind)
	require.Equal(t, types.Type(types.AnyValue), b.Tree.Node(ref).Value.Type)
	require.Equal(t, "Type<AnyValue>", typeOf(b.Tree, ref))

	// The branch taken when the folded condition is false is dead.
	for _, j := range b.Tree.Node(root).Flow.Jumps {
		if j.Cond >= 0 {
			require.Equal(t, !j.When, j.Dead)
		}
	}
}

func TestIllegalAssignment(t *testing.T) {
	b := NewBuilder()
	x, y := b.Name("x"), b.Name("y")
	declared := b.Assign(x, b.Str("s"))
	root := b.Block(b.Decl(x, intT), declared, b.Decl(y, nil), b.Assign(y, b.Int(1)), b.Assign(y, b.Str("s")))
	res := infer(t, typer.Config{}, b, root)

	require.Equal(t, 2, res.Diagnostics.Count(diag.IllegalAssignment))
	for _, d := range res.Diagnostics.Items {
		if d.Pos == b.Tree.Pos(declared) {
			require.Equal(t, []interface{}{"x", "String"}, d.Values)
		}
	}
	bound, _ := res.Bindings.Get(y)
	require.True(t, types.Equal(bound, intT))
}

func TestPropertyTypeInferred(t *testing.T) {
	box := TClass("Box")
	value := Property(box, "value", nil, types.Public, true)

	b := NewBuilder()
	self, backing := b.Name("self"), b.Name("value")
	decl := b.Decl(backing, nil)
	b.Tree.Node(decl).Decl.Member = value
	set := b.SetProperty(backing, b.Read(self), b.Int(1))
	res := infer(t, typer.Config{}, b, b.Block(b.Decl(self, box.Type()), decl, set))
	requireClean(t, res)

	require.True(t, types.Equal(value.Type, intT))
	require.Equal(t, "Int", typeOf(b.Tree, set))
}

// Names which are never bound are reported once, at their first read.
func TestMissingTypeInfo(t *testing.T) {
	b := NewBuilder()
	x, y := b.Name("x"), b.Name("y")
	readX := b.Read(x)
	root := b.Block(b.Assign(x, b.Read(y)), b.Assign(y, readX), b.Read(y))
	res := infer(t, typer.Config{}, b, root)

	require.Equal(t, 1, res.Diagnostics.Len())
	require.Equal(t, 1, res.Diagnostics.Count(diag.MissingTypeInfo))
	require.Equal(t, "Invalid", typeOf(b.Tree, readX))
	for i := 0; i < b.Tree.Len(); i++ {
		if n := b.Tree.Node(ast.NodeID(i)); n.Kind.NeedsType() && n.Decision == nil {
			t.Fatalf("node %d (%s) is undecided", i, n.Kind)
		}
	}
}
