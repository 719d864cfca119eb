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
	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/types"
)

// initializerInfo tracks the initializers of a name with more than one.
type initializerInfo struct {
	calls []ast.NodeID
	typed []bool
	types []types.Type
	// null is set when some initializer assigns the null literal.
	null bool
	done bool
	// waiting holds null initializers, decided once the union is known.
	waiting []ast.NodeID
}

func (c *Context) initializers(nameID int) *initializerInfo {
	info, ok := c.inits[nameID]
	if !ok {
		calls := c.plan.Initializers[nameID]
		info = &initializerInfo{
			calls: calls,
			typed: make([]bool, len(calls)),
			types: make([]types.Type, len(calls)),
		}
		c.inits[nameID] = info
	}
	return info
}

func (info *initializerInfo) index(call ast.NodeID) int {
	for i, id := range info.calls {
		if id == call {
			return i
		}
	}
	return -1
}

func (info *initializerInfo) complete() bool {
	for _, typed := range info.typed {
		if !typed {
			return false
		}
	}
	return true
}

func (info *initializerInfo) started() bool {
	for _, typed := range info.typed {
		if typed {
			return true
		}
	}
	return false
}

func (info *initializerInfo) union() types.Type {
	var ts []types.Type
	for i, t := range info.types {
		if info.typed[i] && t != nil {
			ts = append(ts, t)
		}
	}
	u := types.Union(ts...)
	if info.null {
		u = types.Nullable(u)
	}
	return u
}

func (c *Context) visitAssignment(call ast.NodeID) {
	n := c.tree.Node(call)
	args := n.Args()
	op := c.tree.Op(call)
	left := args[0]
	name := c.tree.Node(left).Name
	rhs := args[len(args)-1]
	if op == ast.OpHandle {
		c.visitHandle(call, left, name, rhs)
		return
	}
	if op == ast.OpSetProperty && c.tree.Decision(args[1]) == nil {
		c.park(call)
		return
	}
	rd := c.tree.Decision(rhs)
	null := rd == nil && c.tree.IsNullLiteral(rhs)
	if rd == nil && !null {
		c.park(call)
		return
	}
	t := types.Type(types.Null)
	if !null {
		t = rd.Type
	}
	if c.assignName(call, name, t, null) {
		return
	}
	if null {
		c.decideType(rhs, types.Null)
	}
	c.finishAssignment(call, left, name, t)
}

// assignName updates the binding of an assigned name. It reports true when the assignment is a
// null initializer waiting for the union of the name's initializers.
func (c *Context) assignName(call ast.NodeID, name *ast.Name, t types.Type, null bool) bool {
	if decl, ok := c.plan.Decls[name.ID]; ok && (decl.Type != nil || decl.Param) {
		return false
	}
	inits := c.plan.Initializers[name.ID]
	_, bound := c.names.Get(name)
	if !c.plan.IsInitializer(call) {
		// A later assignment; legality is checked after typing.
		if !bound && len(inits) == 0 {
			c.bind(name.ID, t)
		}
		return false
	}
	if len(inits) <= 1 {
		c.bind(name.ID, t)
		return false
	}
	info := c.initializers(name.ID)
	if info.done {
		return false
	}
	i := info.index(call)
	if i < 0 || info.typed[i] {
		return false
	}
	info.typed[i] = true
	if null {
		info.null = true
		info.waiting = append(info.waiting, call)
	} else {
		info.types[i] = t
	}
	if info.complete() {
		c.finishInitializers(name.ID, info)
	}
	return null
}

// finishInitializers binds a name to the union of its initializers, then decides the null
// initializers which waited for it.
func (c *Context) finishInitializers(nameID int, info *initializerInfo) {
	info.done = true
	u := info.union()
	c.trace("initializers", "name", nameID, "count", len(info.calls), "type", types.TypeString(u))
	c.bind(nameID, u)
	for _, call := range info.calls {
		if op := c.tree.Op(call); op != ast.OpAssign && op != ast.OpSetProperty {
			continue
		}
		if left := c.tree.Node(call).Args()[0]; c.tree.Decision(left) != nil {
			c.decideType(left, u)
		}
	}
	for _, call := range info.waiting {
		args := c.tree.Node(call).Args()
		left, rhs := args[0], args[len(args)-1]
		c.decideType(rhs, u)
		c.finishAssignment(call, left, c.tree.Node(left).Name, u)
	}
	info.waiting = nil
}

func (c *Context) finishAssignment(call, left ast.NodeID, name *ast.Name, t types.Type) {
	lt := t
	if bound, ok := c.names.Get(name); ok {
		lt = bound
	}
	if c.tree.Op(call) == ast.OpSetProperty {
		if m := c.plan.Members[name.ID]; m != nil && m.Type == nil {
			m.Type = lt
		}
	}
	c.decideType(left, lt)
	c.decideOp(call, t)
}

// visitHandle types a failure-handling call as its wrapped call without the failure channel.
// The flag is a Boolean.
func (c *Context) visitHandle(call, left ast.NodeID, flag *ast.Name, wrapped ast.NodeID) {
	d := c.tree.Decision(wrapped)
	if d == nil {
		c.park(call)
		return
	}
	boolean := c.cfg.Builtins.Boolean.Type()
	if _, ok := c.names.Get(flag); !ok {
		c.bind(flag.ID, boolean)
	}
	c.decideType(left, boolean)
	if !d.Valid() {
		c.decideOp(call, types.Invalid)
		return
	}
	c.decideOp(call, types.ExcludeBubble(d.Type))
}
