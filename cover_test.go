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

func code(c diag.Code) *diag.Code { return &c }

func TestCoverNarrowing(t *testing.T) {
	T := TFormal(20, "T")
	cover := TGeneric([]*types.Formal{T}, []types.Type{T}, T)
	ofInt, ofStr := TFunc1(intT, intT), TFunc1(strT, strT)
	fallback := TFunc1(types.AnyValue, types.AnyValue)

	tests := []struct {
		name     string
		variants *types.Variants
		arg      func(b *Builder) ast.NodeID
		want     string
		code     *diag.Code
	}{
		{"one match", &types.Variants{Cover: cover, Primary: []*types.Sig{ofInt, ofStr}}, func(b *Builder) ast.NodeID { return b.Int(1) }, "fn(Int): Int", nil},
		{"fallback", &types.Variants{Cover: cover, Primary: []*types.Sig{ofInt, ofStr}, Fallback: fallback}, func(b *Builder) ast.NodeID { return b.Bool(true) }, "fn(AnyValue): AnyValue", nil},
		{"no match", &types.Variants{Cover: cover, Primary: []*types.Sig{ofInt, ofStr}}, func(b *Builder) ast.NodeID { return b.Bool(true) }, "fn(Boolean): Boolean", code(diag.NoMatchingVariant)},
		{"most specific", &types.Variants{Cover: cover, Primary: []*types.Sig{TFunc1(types.AnyValue, intT), ofInt}}, func(b *Builder) ast.NodeID { return b.Int(1) }, "fn(Int): Int", nil},
		{"ambiguous", &types.Variants{Cover: cover, Primary: []*types.Sig{ofInt, TFunc1(intT, intT)}}, func(b *Builder) ast.NodeID { return b.Int(1) }, "fn(Int): Int", code(diag.AmbiguousVariant)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := NewBuilder()
			call := b.Call(b.FnVariants("pick", test.variants), test.arg(b))
			res := infer(t, typer.Config{}, b, b.Block(call))
			if test.code != nil {
				require.Equal(t, 1, res.Diagnostics.Count(*test.code))
			} else {
				requireClean(t, res)
			}
			require.Equal(t, test.want, types.TypeString(b.Tree.Decision(call).Variant))
		})
	}
}
