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

package typer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/solve"
	"github.com/wdamron/typer/types"
)

var dumper = spew.ConfigState{Indent: "  ", MaxDepth: 4, DisablePointerAddresses: true, SortKeys: true}

func (c *Context) trace(msg string, args ...interface{}) {
	if !c.cfg.Trace {
		return
	}
	c.cfg.Logger.Log(context.Background(), slog.LevelDebug, strings.Repeat("  ", c.depth)+msg, args...)
}

func (c *Context) traceNode(msg string, id ast.NodeID) {
	if !c.cfg.Trace {
		return
	}
	n := c.tree.Node(id)
	args := []interface{}{"node", int(id), "kind", n.Kind.String(), "pos", n.Pos.String()}
	if d := n.Decision; d != nil {
		args = append(args, "type", types.TypeString(d.Type))
	}
	c.trace(msg, args...)
}

func (c *Context) traceBatch(b *solve.Batch) {
	if !c.cfg.Trace {
		return
	}
	c.trace("solve", "calls", len(b.Calls), "batch", dumper.Sdump(b))
}
