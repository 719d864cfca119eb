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
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wdamron/typer"
	"github.com/wdamron/typer/ast"
	. "github.com/wdamron/typer/construct"
	"github.com/wdamron/typer/types"
)

func TestTypeEnv(t *testing.T) {
	parent := typer.NewTypeEnv(nil)
	parent.AddFunc("print", TFunc1(strT, types.Void))
	parent.AddFunc("show", TFunc1(intT, strT), TFunc1(boolT, strT))
	env := typer.NewTypeEnv(parent)
	env.Add("answer", intT)

	b := NewBuilder()
	printed := b.Call(b.Read(b.Builtin("print")), b.Str("hi"))
	shown := b.Call(b.Read(b.Builtin("show")), b.Bool(true))
	answer := b.Read(b.Builtin("answer"))
	res := infer(t, typer.Config{Env: env}, b, b.Block(printed, shown, answer))
	requireClean(t, res)

	require.Equal(t, "Void", typeOf(b.Tree, printed))
	require.Equal(t, "String", typeOf(b.Tree, shown))
	require.Equal(t, "fn(Boolean): String", types.TypeString(b.Tree.Decision(shown).Variant))
	require.Equal(t, "Int", typeOf(b.Tree, answer))

	// Removing a name from a child does not affect its parent.
	env.Add("print", intT)
	tp, _, ok := env.Lookup(&ast.Name{Text: "print"})
	require.True(t, ok)
	require.Equal(t, "Int", types.TypeString(tp))
	env.Remove("print")
	tp, v, ok := env.Lookup(&ast.Name{Text: "print"})
	require.True(t, ok)
	require.NotNil(t, v)
	require.Equal(t, "fn(String): Void", types.TypeString(tp))
	_, _, ok = env.Lookup(&ast.Name{Text: "nothing"})
	require.False(t, ok)
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	T := TFormal(1, "T")

	b := NewBuilder()
	call := b.Call(b.Fn("wrapAll", TVariadic([]*types.Formal{T}, nil, T, TApp(wrap, T))), b.Int(1))
	infer(t, typer.Config{Trace: true, Logger: logger}, b, b.Block(call, b.Read(b.Name("missing"))))

	out := buf.String()
	for _, want := range []string{"infer", "solve", "decide", "type error", "NameUndeclared"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace is missing %q:\n%s", want, out)
		}
	}
}
