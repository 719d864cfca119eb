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

	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/wdamron/typer"
	"github.com/wdamron/typer/ast"
	. "github.com/wdamron/typer/construct"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

var (
	builtins = typer.DefaultBuiltins
	intT     = builtins.Int.Type()
	strT     = builtins.String.Type()
	boolT    = builtins.Boolean.Type()

	wrap = TClass("Wrap", TFormal(100, "W"))
)

func infer(t *testing.T, cfg typer.Config, b *Builder, root ast.NodeID, shapes ...*types.Shape) *typer.Result {
	t.Helper()
	res, err := typer.NewContext(cfg).Infer(&typer.Module{Tree: b.Root(root), Shapes: shapes})
	require.NoError(t, err)
	return res
}

func typeOf(tree *ast.Tree, id ast.NodeID) string {
	d := tree.Decision(id)
	if d == nil {
		return "<undecided>"
	}
	return types.TypeString(d.Type)
}

func requireClean(t *testing.T, res *typer.Result) {
	t.Helper()
	if res.Diagnostics.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", pretty.String(res.Diagnostics.Items))
	}
}

// decisions snapshots the decided type of every node.
func decisions(tree *ast.Tree) map[ast.NodeID]string {
	out := make(map[ast.NodeID]string)
	for i := 0; i < tree.Len(); i++ {
		if d := tree.Decision(ast.NodeID(i)); d != nil {
			out[ast.NodeID(i)] = types.TypeString(d.Type)
		}
	}
	return out
}

func TestSingleInitializer(t *testing.T) {
	b := NewBuilder()
	a := b.Name("a")
	read := b.Read(a)
	res := infer(t, typer.Config{}, b, b.Block(b.Decl(a, nil), b.Assign(a, b.Int(1)), read))
	requireClean(t, res)

	bound, ok := res.Bindings.Get(a)
	if !ok || !types.Equal(bound, intT) {
		t.Fatalf("binding(a) = %s", types.TypeString(bound))
	}
	if s := typeOf(b.Tree, read); s != "Int" {
		t.Fatalf("a: %s", s)
	}
}

func TestUnionOverBranches(t *testing.T) {
	b := NewBuilder()
	x, c := b.Name("x"), b.Name("c")
	thenAssign := b.Assign(x, b.Int(1))
	elseAssign := b.Assign(x, b.Str("one"))
	read := b.Read(x)
	root := b.If([]ast.NodeID{b.Decl(c, boolT), b.Decl(x, nil)}, b.Read(c), []ast.NodeID{thenAssign}, []ast.NodeID{elseAssign}, []ast.NodeID{read})
	res := infer(t, typer.Config{}, b, root)
	requireClean(t, res)

	bound, _ := res.Bindings.Get(x)
	if !types.Equal(bound, types.Union(intT, strT)) {
		t.Fatalf("binding(x) = %s", types.TypeString(bound))
	}
	if !types.Equal(b.Tree.Decision(read).Type, bound) {
		t.Fatalf("x: %s", typeOf(b.Tree, read))
	}
	// Both initializers see the finished union.
	for _, assign := range []ast.NodeID{thenAssign, elseAssign} {
		left := b.Tree.Node(assign).Args()[0]
		if !types.Equal(b.Tree.Decision(left).Type, bound) {
			t.Fatalf("left side of %d: %s", assign, typeOf(b.Tree, left))
		}
	}
}

func TestNullInitializer(t *testing.T) {
	b := NewBuilder()
	x := b.Name("x")
	nullAssign := b.Assign(x, b.Null())
	read := b.Read(x)
	res := infer(t, typer.Config{}, b, b.Block(b.Decl(x, nil), nullAssign, b.Assign(x, b.Int(5)), read))
	requireClean(t, res)

	require.Equal(t, "Int?", typeOf(b.Tree, read))
	require.Equal(t, "Int?", typeOf(b.Tree, b.Tree.Node(nullAssign).Args()[1]))
	require.Equal(t, "Int?", typeOf(b.Tree, nullAssign))
}

func TestCoRecursion(t *testing.T) {
	build := func(gFirst bool) (*Builder, ast.NodeID, ast.NodeID) {
		b := NewBuilder()
		f, g, n, m := b.Name("f"), b.Name("g"), b.Name("n"), b.Name("m")
		funF := b.Fun(&ast.FunInfo{Name: "f", Return: intT}, []ast.NodeID{b.Param(n, intT)},
			b.Block(b.Call(b.Read(g), b.Read(n))))
		funG := b.Fun(&ast.FunInfo{Name: "g", Return: intT}, []ast.NodeID{b.Param(m, intT)},
			b.Block(b.Call(b.Read(f), b.Read(m))))
		assigns := []ast.NodeID{b.Assign(f, funF), b.Assign(g, funG)}
		if gFirst {
			assigns[0], assigns[1] = assigns[1], assigns[0]
		}
		call := b.Call(b.Read(f), b.Int(1))
		return b, b.Block(assigns[0], assigns[1], call), call
	}
	for _, gFirst := range []bool{false, true} {
		b, root, call := build(gFirst)
		res := infer(t, typer.Config{}, b, root)
		requireClean(t, res)
		if s := typeOf(b.Tree, call); s != "Int" {
			t.Fatalf("gFirst=%v: f(1): %s", gFirst, s)
		}
	}
}

func TestGenericModes(t *testing.T) {
	T := TFormal(1, "T")
	wrapAll := TVariadic([]*types.Formal{T}, nil, T, TApp(wrap, T))
	wrapStr := TApp(wrap, strT)

	t.Run("immediate", func(t *testing.T) {
		b := NewBuilder()
		call := b.Call(b.Fn("wrapAll", wrapAll), b.Int(1), b.Int(2))
		res := infer(t, typer.Config{}, b, b.Block(call))
		requireClean(t, res)
		require.Equal(t, "Wrap<Int>", typeOf(b.Tree, call))
		bound, ok := b.Tree.Decision(call).Bindings.Get(T)
		require.True(t, ok)
		require.True(t, types.Equal(bound, intT))
	})

	t.Run("context", func(t *testing.T) {
		b := NewBuilder()
		w := b.Name("w")
		call := b.Call(b.Fn("wrapAll", wrapAll))
		res := infer(t, typer.Config{}, b, b.Block(b.Decl(w, wrapStr), b.Assign(w, call)))
		requireClean(t, res)
		require.Equal(t, "Wrap<String>", typeOf(b.Tree, call))
	})

	t.Run("deferred", func(t *testing.T) {
		b := NewBuilder()
		inner := b.Call(b.Fn("wrapAll", wrapAll))
		outer := b.Call(b.Fn("use", TFunc1(wrapStr, types.Void)), inner)
		res := infer(t, typer.Config{}, b, b.Block(outer))
		requireClean(t, res)
		require.Equal(t, "Wrap<String>", typeOf(b.Tree, inner))
		require.Equal(t, "Void", typeOf(b.Tree, outer))
	})

	t.Run("aliased", func(t *testing.T) {
		b := NewBuilder()
		tmp := b.Temp("t")
		inner := b.Call(b.Fn("wrapAll", wrapAll))
		read := b.Read(tmp)
		outer := b.Call(b.Fn("use", TFunc1(wrapStr, types.Void)), read)
		res := infer(t, typer.Config{}, b, b.Block(b.Assign(tmp, inner), outer))
		requireClean(t, res)
		require.Equal(t, "Wrap<String>", typeOf(b.Tree, inner))
		require.Equal(t, "Wrap<String>", typeOf(b.Tree, read))
		bound, _ := res.Bindings.Get(tmp)
		require.True(t, types.Equal(bound, wrapStr))
	})

	t.Run("unsolved", func(t *testing.T) {
		b := NewBuilder()
		v := b.Name("v")
		call := b.Call(b.Fn("wrapAll", wrapAll))
		res := infer(t, typer.Config{}, b, b.Block(b.Assign(v, call)))
		require.Equal(t, 1, res.Diagnostics.Count(diag.UnsolvedCall))
		require.Equal(t, "Invalid", typeOf(b.Tree, call))
	})
}

func TestImplicitFunctionArgument(t *testing.T) {
	T, U := TFormal(1, "T"), TFormal(2, "U")
	apply := TGeneric([]*types.Formal{T, U}, []types.Type{T, TFunc1(T, U)}, U)

	b := NewBuilder()
	x, r := b.Name("x"), b.Temp("result")
	lambda := b.Fun(&ast.FunInfo{ReturnName: r}, []ast.NodeID{b.Param(x, nil)}, b.Block(b.Assign(r, b.Read(x))))
	call := b.Call(b.Fn("apply", apply), b.Int(1), lambda)
	res := infer(t, typer.Config{}, b, b.Block(call))
	requireClean(t, res)

	require.Equal(t, "fn(Int): Int", typeOf(b.Tree, lambda))
	require.Equal(t, "Int", typeOf(b.Tree, call))
}

func TestConstructor(t *testing.T) {
	C := TFormal(300, "C")
	cell := TClass("Cell", C)
	cell.Constructors = []*types.Sig{TFunc1(C, types.Void)}

	b := NewBuilder()
	call := b.New(cell.Type(), b.Str("s"))
	explicit := b.New(TApp(cell, TNullable(strT)), b.Str("s"))
	res := infer(t, typer.Config{}, b, b.Block(call, explicit))
	requireClean(t, res)
	require.Equal(t, "Cell<String>", typeOf(b.Tree, call))
	require.Equal(t, "Cell<String?>", typeOf(b.Tree, explicit))
}

func TestCallDiagnostics(t *testing.T) {
	one := TFunc1(intT, intT)
	tests := []struct {
		name  string
		build func(b *Builder) ast.NodeID
		code  diag.Code
	}{
		{"arity", func(b *Builder) ast.NodeID { return b.Call(b.Fn("one", one)) }, diag.ArityMismatch},
		{"redundant", func(b *Builder) ast.NodeID { return b.Call(b.Fn("one", one), b.Int(1), b.Int(2)) }, diag.RedundantArgument},
		{"mismatch", func(b *Builder) ast.NodeID { return b.Call(b.Fn("one", one), b.Str("s")) }, diag.ArgumentMismatch},
		{"null", func(b *Builder) ast.NodeID { return b.Call(b.Fn("one", one), b.Null()) }, diag.ArgumentMismatch},
		{"no variant", func(b *Builder) ast.NodeID {
			return b.Call(b.Fn("pick", one, TFunc1(boolT, boolT)), b.Str("s"))
		}, diag.NoMatchingVariant},
		{"not callable", func(b *Builder) ast.NodeID {
			n := b.Name("n")
			return b.Block(b.Decl(n, intT), b.Call(b.Read(n)))
		}, diag.NoMatchingVariant},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := NewBuilder()
			res := infer(t, typer.Config{}, b, b.Block(test.build(b)))
			if res.Diagnostics.Len() != 1 || res.Diagnostics.Items[0].Code != test.code {
				t.Fatalf("expected one %s, got:\n%s", test.code, pretty.String(res.Diagnostics.Items))
			}
		})
	}
}

func TestNullableArgument(t *testing.T) {
	b := NewBuilder()
	null := b.Null()
	call := b.Call(b.Fn("maybe", TFunc1(TNullable(intT), intT)), null)
	res := infer(t, typer.Config{}, b, b.Block(call))
	requireClean(t, res)
	require.Equal(t, "Int?", typeOf(b.Tree, null))
	require.Equal(t, "Int", typeOf(b.Tree, call))
}

func TestFunctionDiagnostics(t *testing.T) {
	b := NewBuilder()
	x, y := b.Name("x"), b.Name("y")
	optional := b.OptionalParam(x, intT)
	bad := b.Fun(&ast.FunInfo{Name: "f", Return: intT}, []ast.NodeID{optional, b.Param(y, intT)}, b.Block())
	required := b.Fun(&ast.FunInfo{Name: "g", ReturnRequired: true}, nil, b.Block())
	res := infer(t, typer.Config{}, b, b.Block(bad, required))

	require.Equal(t, 1, res.Diagnostics.Count(diag.OptionalBeforeRequired))
	require.Equal(t, 1, res.Diagnostics.Count(diag.ReturnTypeRequired))
	require.Equal(t, "fn(Int = ..., Int = ...): Int", typeOf(b.Tree, bad))
	require.Equal(t, "fn(): AnyValue", typeOf(b.Tree, required))
}

func TestUseBeforeInit(t *testing.T) {
	b := NewBuilder()
	x := b.Name("x")
	read := b.Read(x)
	res := infer(t, typer.Config{}, b, b.Block(b.Decl(x, nil), read))
	require.Equal(t, 1, res.Diagnostics.Count(diag.UseBeforeInit))
	require.Equal(t, "Invalid", typeOf(b.Tree, read))
}

// One error is reported once, however many nodes depend on it.
func TestNoErrorExplosion(t *testing.T) {
	b := NewBuilder()
	inc := TFunc1(intT, intT)
	stmts := []ast.NodeID{}
	prev := b.Read(b.Name("undeclared"))
	for i := 0; i < 10; i++ {
		tmp := b.Temp("t")
		stmts = append(stmts, b.Assign(tmp, b.Call(b.Fn("inc", inc), prev)))
		prev = b.Read(tmp)
	}
	last := b.Call(b.Fn("inc", inc), prev)
	stmts = append(stmts, last)
	res := infer(t, typer.Config{}, b, b.Block(stmts...))

	if res.Diagnostics.Len() != 1 || res.Diagnostics.Count(diag.NameUndeclared) != 1 {
		t.Fatalf("expected one NameUndeclared, got:\n%s", pretty.String(res.Diagnostics.Items))
	}
	require.Equal(t, 0, res.Diagnostics.Count(diag.MissingTypeInfo))
	require.Equal(t, "Invalid", typeOf(b.Tree, last))
}

func TestIdempotence(t *testing.T) {
	T := TFormal(1, "T")
	wrapAll := TVariadic([]*types.Formal{T}, nil, T, TApp(wrap, T))

	b := NewBuilder()
	x, c, tmp := b.Name("x"), b.Name("c"), b.Temp("t")
	branches := b.If([]ast.NodeID{b.Decl(c, boolT), b.Decl(x, nil)}, b.Read(c),
		[]ast.NodeID{b.Assign(x, b.Int(1))}, []ast.NodeID{b.Assign(x, b.Null())}, []ast.NodeID{b.Read(x)})
	deferred := b.Block(
		b.Assign(tmp, b.Call(b.Fn("wrapAll", wrapAll))),
		b.Call(b.Fn("use", TFunc1(TApp(wrap, strT), types.Void)), b.Read(tmp)),
	)
	undeclared := b.Read(b.Name("missing"))
	tree := b.Root(b.Block(branches, deferred, undeclared))
	m := &typer.Module{Tree: tree}

	// Infer twice to ensure decisions are kept and state is reset between calls.
	ctx := typer.NewContext(typer.Config{})
	first, err := ctx.Infer(m)
	require.NoError(t, err)
	before := decisions(tree)
	second, err := ctx.Infer(m)
	require.NoError(t, err)
	after := decisions(tree)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("decisions changed (-first +second):\n%s", diff)
	}
	require.Equal(t, first.Diagnostics.Len(), second.Diagnostics.Len())
	require.Equal(t, 1, second.Diagnostics.Count(diag.NameUndeclared))
	require.Equal(t, first.Bindings.Len(), second.Bindings.Len())
	t.Logf("x: %s", typeOf(tree, b.Tree.Node(branches).Children[len(b.Tree.Node(branches).Children)-1]))
}

func TestMaxDiagnostics(t *testing.T) {
	b := NewBuilder()
	root := b.Block(b.Read(b.Name("a")), b.Read(b.Name("b")), b.Read(b.Name("c")))
	res := infer(t, typer.Config{MaxDiagnostics: 2}, b, root)
	require.Equal(t, 2, res.Diagnostics.Len())
	require.Equal(t, 1, res.Diagnostics.Dropped())
}

func TestEmptyModule(t *testing.T) {
	_, err := typer.NewContext(typer.Config{}).Infer(&typer.Module{})
	require.Error(t, err)
}

func TestControlFlow(t *testing.T) {
	t.Run("loop", func(t *testing.T) {
		b := NewBuilder()
		x, c := b.Name("x"), b.Name("c")
		inLoop := b.Assign(x, b.Int(2))
		read := b.Read(x)
		root := b.While([]ast.NodeID{b.Decl(c, boolT), b.Decl(x, nil), b.Assign(x, b.Int(1))}, b.Read(c),
			[]ast.NodeID{inLoop}, []ast.NodeID{read})
		res := infer(t, typer.Config{}, b, root)
		requireClean(t, res)
		require.Equal(t, "Int", typeOf(b.Tree, read))
		require.Equal(t, "Int", typeOf(b.Tree, inLoop))
	})

	t.Run("failure edge", func(t *testing.T) {
		b := NewBuilder()
		x, ok := b.Name("x"), b.Name("ok")
		parse := b.Call(b.Fn("parse", TFunc(nil, TUnion(intT, types.Bubble))))
		handled := b.Handle(ok, parse)
		read := b.Read(x)
		f := b.FlowBlock()
		s0 := f.Segment(b.Decl(ok, boolT), b.Decl(x, nil), handled, b.Assign(x, b.Int(1)))
		s1 := f.Segment(b.Assign(x, b.Str("s")))
		s2 := f.Segment(read)
		f.Fail(s0, s1).Jump(s0, s2).Jump(s1, s2)
		res := infer(t, typer.Config{}, b, f.Build())
		requireClean(t, res)

		bound, _ := res.Bindings.Get(x)
		if !types.Equal(bound, types.Union(intT, strT)) {
			t.Fatalf("binding(x) = %s", types.TypeString(bound))
		}
		require.Equal(t, "Int", typeOf(b.Tree, handled))
		require.True(t, types.Equal(b.Tree.Decision(read).Type, bound))
	})
}

// A deferred call whose result passes through a failure handler is solved without the failure channel.
func TestHandledDeferredCall(t *testing.T) {
	T := TFormal(1, "T")
	mayFail := TGeneric([]*types.Formal{T}, nil, TUnion(TApp(wrap, T), types.Bubble))

	b := NewBuilder()
	tmp, ok := b.Temp("t"), b.Name("ok")
	inner := b.Call(b.Fn("mayFail", mayFail))
	read := b.Read(tmp)
	outer := b.Call(b.Fn("use", TFunc1(TApp(wrap, strT), types.Void)), read)
	res := infer(t, typer.Config{}, b, b.Block(b.Decl(ok, boolT), b.Assign(tmp, b.Handle(ok, inner)), outer))
	requireClean(t, res)
	require.Equal(t, "Wrap<String>", typeOf(b.Tree, read))
	require.Equal(t, "Void", typeOf(b.Tree, outer))
}

func TestNestedDeferredCalls(t *testing.T) {
	T := TFormal(1, "T")
	wrapAll := TVariadic([]*types.Formal{T}, nil, T, TApp(wrap, T))

	b := NewBuilder()
	inner := b.Call(b.Fn("wrapAll", wrapAll))
	middle := b.Call(b.Fn("wrapAll", wrapAll), inner)
	outer := b.Call(b.Fn("use", TFunc1(TApp(wrap, TApp(wrap, strT)), types.Void)), middle)
	res := infer(t, typer.Config{}, b, b.Block(outer))
	requireClean(t, res)
	require.Equal(t, "Wrap<String>", typeOf(b.Tree, inner))
	require.Equal(t, "Wrap<Wrap<String>>", typeOf(b.Tree, middle))
	require.Equal(t, "Void", typeOf(b.Tree, outer))
}

// A call solved from its arguments and one solved from its surroundings bind its formals alike.
func TestModesAgreeOnBindings(t *testing.T) {
	T := TFormal(1, "T")
	wrapAll := TVariadic([]*types.Formal{T}, nil, T, TApp(wrap, T))

	b := NewBuilder()
	w := b.Name("w")
	fromArgs := b.Call(b.Fn("wrapAll", wrapAll), b.Str("s"))
	fromContext := b.Call(b.Fn("wrapAll", wrapAll))
	res := infer(t, typer.Config{}, b, b.Block(fromArgs, b.Decl(w, TApp(wrap, strT)), b.Assign(w, fromContext)))
	requireClean(t, res)

	bound := func(call ast.NodeID) string {
		t.Helper()
		d := b.Tree.Decision(call)
		require.NotNil(t, d)
		v, ok := d.Bindings.Get(T)
		require.True(t, ok, "T unbound for %d", call)
		return types.TypeString(v)
	}
	if diff := cmp.Diff(bound(fromArgs), bound(fromContext)); diff != "" {
		t.Fatalf("bindings differ (-args +context):\n%s", diff)
	}
	require.Equal(t, typeOf(b.Tree, fromArgs), typeOf(b.Tree, fromContext))
}

// A consumer decided generically still tells its argument what it expects.
func TestGenericConsumerContext(t *testing.T) {
	T, U := TFormal(1, "T"), TFormal(2, "U")
	empty := TGeneric([]*types.Formal{T}, nil, TApp(wrap, T))
	useSig := TGeneric([]*types.Formal{U}, []types.Type{TApp(wrap, U)}, types.Void)

	b := NewBuilder()
	inner := b.Call(b.Fn("empty", empty))
	outer := b.Call(b.Fn("use", useSig), inner)
	b.Tree.Decide(outer, &ast.Decision{
		Type:     types.Void,
		Variant:  useSig,
		Bindings: types.NewBindingsBuilder().Set(U, strT).Build(),
	})
	res := infer(t, typer.Config{}, b, b.Block(outer))
	requireClean(t, res)
	require.Equal(t, "Wrap<String>", typeOf(b.Tree, inner))
}

// A call that never yields a value is typed as the result it stands in for.
func TestAbortAdoptsResult(t *testing.T) {
	for _, ret := range []types.Type{types.Never, types.Bubble} {
		b := NewBuilder()
		result := b.Name("result")
		abort := b.Call(b.Fn("abort", TFunc(nil, ret)))
		tree := b.Root(b.Block(abort, b.Assign(result, b.Int(1))))
		res, err := typer.NewContext(typer.Config{}).Infer(&typer.Module{Tree: tree, Result: result})
		require.NoError(t, err)
		requireClean(t, res)

		want := "Int"
		if ret == types.Bubble {
			want = types.TypeString(types.Union(intT, types.Bubble))
		}
		require.Equal(t, want, typeOf(tree, abort), "abort returning %s", types.TypeString(ret))
	}
}
