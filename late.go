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
	"sort"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/internal/util"
	"github.com/wdamron/typer/solve"
	"github.com/wdamron/typer/types"
)

// component returns the deferred calls connected to root through argument references, root first.
func (c *Context) component(root ast.NodeID) []ast.NodeID {
	ids := make([]ast.NodeID, 0, len(c.late)+1)
	for id := range c.late {
		if id != root {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ids = append([]ast.NodeID{root}, ids...)
	index := make(map[ast.NodeID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	g := util.NewGraph(len(ids))
	for i, id := range ids {
		_, refs, _ := c.argBounds(c.calls[id])
		for _, r := range refs {
			if j, ok := index[r]; ok && r != ast.NoNode {
				g.AddEdge(i, j)
			}
		}
	}
	for _, comp := range g.Components() {
		if comp[0] != 0 {
			continue
		}
		out := make([]ast.NodeID, len(comp))
		for i, v := range comp {
			out[i] = ids[v]
		}
		return out
	}
	return ids[:1]
}

// solveJoint solves root together with the deferred calls feeding it, in one batch. Either every
// call of the batch is decided from the solution, or all of them are invalid.
func (c *Context) solveJoint(root ast.NodeID, ctx types.Type) {
	ids := c.component(root)
	index := make(map[ast.NodeID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	infos := make([]*callInfo, len(ids))
	bounds := make([][]solve.Bound, len(ids))
	batch := &solve.Batch{Calls: make([]solve.Call, len(ids))}
	for i, id := range ids {
		info := c.calls[id]
		bs, refs, _ := c.argBounds(info)
		if bs == nil {
			// An argument became invalid while the call waited.
			bs = make([]solve.Bound, len(info.args))
		}
		for k, r := range refs {
			if j, ok := index[r]; ok && r != ast.NoNode {
				bs[k].Ref = j
			}
		}
		var callCtx types.Type
		if i == 0 {
			callCtx = ctx
		}
		infos[i], bounds[i] = info, bs
		batch.Calls[i] = c.batchCall(info, bs, callCtx)
	}
	for _, id := range ids {
		delete(c.late, id)
	}
	c.traceBatch(batch)
	results := c.cfg.Solver.Solve(batch)
	if err := results[0].Err; err != nil {
		c.failCall(infos[0], bounds[0], err)
		for _, info := range infos[1:] {
			c.decideType(info.call, types.Invalid)
		}
		return
	}
	// Inner calls first, so that their consumers see decided arguments.
	g := util.NewGraph(len(ids))
	for i, bs := range bounds {
		for _, b := range bs {
			if b.Kind == solve.CallRef {
				g.AddEdge(i, b.Ref)
			}
		}
	}
	for _, i := range g.DependencyOrder() {
		c.applyResult(infos[i], bounds[i], results[i])
	}
}

// solveRemainingLate solves the calls still deferred after the main order, without context.
func (c *Context) solveRemainingLate() {
	c.draining = true
	for len(c.late) > 0 {
		root := ast.NoNode
		for id := range c.late {
			if root == ast.NoNode || id > root {
				root = id
			}
		}
		if use, ok := c.plan.Consumers[root]; ok {
			if d := c.tree.Decision(use.Call); d != nil && !d.Valid() {
				// The consumer failed and was reported.
				delete(c.late, root)
				c.decideType(root, types.Invalid)
				continue
			}
		}
		c.solveJoint(root, nil)
	}
}
