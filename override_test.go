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
	. "github.com/wdamron/typer/construct"
	"github.com/wdamron/typer/types"
)

func TestLinkOverrides(t *testing.T) {
	number := TClass("Number")
	integer := TClass("Integer")
	integer.AddSuper(number.Type())
	numT, integerT := number.Type(), integer.Type()

	base := TClass("Base")
	sub := TClass("Sub")
	sub.AddSuper(base.Type())
	leaf := TClass("Leaf")
	leaf.AddSuper(sub.Type())

	baseF := Method(base, "f", TFunc1(integerT, types.Void), types.Public)
	baseG := Method(base, "g", TFunc1(numT, integerT), types.Public)
	Method(base, "h", TFunc1(integerT, types.Void), types.Public)
	Method(base, "p", TFunc(nil, types.Void), types.Private)

	// Widened parameter: overrides.
	subF := Method(sub, "f", TFunc1(numT, types.Void), types.Public)
	// Narrowed parameter: does not override.
	subG := Method(sub, "g", TFunc1(integerT, integerT), types.Public)
	// Arity change: does not override.
	subH := Method(sub, "h", TFunc2(integerT, integerT, types.Void), types.Public)
	// Private members are not overridden.
	subPriv := Method(sub, "p", TFunc(nil, types.Void), types.Public)
	// The search stops at the nearest level.
	leafF := Method(leaf, "f", TFunc1(numT, types.Void), types.Public)

	ctx := types.NewContext()
	require.Equal(t, []*types.Member{baseF}, typer.LinkOverrides(ctx, subF))
	require.Empty(t, typer.LinkOverrides(ctx, subG))
	require.Empty(t, typer.LinkOverrides(ctx, subH))
	require.Empty(t, typer.LinkOverrides(ctx, subPriv))
	require.Equal(t, []*types.Member{subF}, typer.LinkOverrides(ctx, leafF))
	require.True(t, leafF.Overrides(baseF))

	// Linked once.
	require.True(t, subF.Linked())
	require.Equal(t, []*types.Member{baseF}, typer.LinkOverrides(ctx, subF))
	require.Empty(t, typer.LinkOverrides(ctx, baseG))
}

func TestLinkGenericOverride(t *testing.T) {
	E := TFormal(400, "E")
	coll := TInterface("Collection", E)
	A := TFormal(401, "A")
	baseMap := Method(coll, "map", TGeneric([]*types.Formal{A}, []types.Type{TFunc1(E, A)}, TApp(coll, A)), types.Public)

	strs := TClass("Strings")
	strs.AddSuper(TApp(coll, strT))
	B := TFormal(402, "B")
	subMap := Method(strs, "map", TGeneric([]*types.Formal{B}, []types.Type{TFunc1(strT, B)}, TApp(coll, B)), types.Public)
	// A different number of formals never overrides.
	C, D := TFormal(403, "C"), TFormal(404, "D")
	subZip := Method(strs, "zip", TGeneric([]*types.Formal{C, D}, []types.Type{C}, D), types.Public)
	Method(coll, "zip", TGeneric([]*types.Formal{A}, []types.Type{A}, A), types.Public)

	ctx := types.NewContext()
	require.Equal(t, []*types.Member{baseMap}, typer.LinkOverrides(ctx, subMap))
	require.Empty(t, typer.LinkOverrides(ctx, subZip))
}

func TestLinkProperties(t *testing.T) {
	base := TClass("Shape")
	sub := TClass("Circle")
	sub.AddSuper(base.Type())
	area := Property(base, "area", intT, types.Public, false)
	subArea := Property(sub, "area", intT, types.Public, false)
	static := Static(sub, "area2", intT)
	Static(base, "area2", intT)

	ctx := types.NewContext()
	require.Equal(t, []*types.Member{area}, typer.LinkOverrides(ctx, subArea))
	require.Empty(t, typer.LinkOverrides(ctx, static))
}
