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
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/types"
)

// postPass completes typing after the main order: pending initializer unions and functions are
// finished, nodes still untyped are filled in, assignments are rechecked and redundant
// failure handling and checks are simplified.
func (c *Context) postPass() {
	c.draining = true
	c.finishPending()
	c.fillUndecided()
	c.recheckAssignments()
	c.removeHandles()
	c.reduceChecks()
	c.markDeadJumps()
}

func sortedKeys[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// finishPending binds names whose initializers were not all typed to the union of those which
// were, then resumes whatever is still parked.
func (c *Context) finishPending() {
	for _, id := range sortedKeys(c.inits) {
		if info := c.inits[id]; !info.done && info.started() {
			c.finishInitializers(id, info)
		}
	}
	parked := make([]ast.NodeID, 0, len(c.parked))
	for id := range c.parked {
		parked = append(parked, id)
	}
	sort.Slice(parked, func(i, j int) bool { return parked[i] < parked[j] })
	for _, id := range parked {
		c.wake(id)
	}
}

// fillUndecided decides every node still untyped. Names take their final binding; a name without
// one is reported once and is invalid, as is any other untyped node.
func (c *Context) fillUndecided() {
	c.tree.WalkPost(c.tree.Root, func(id ast.NodeID) {
		n := c.tree.Node(id)
		if !n.Kind.NeedsType() || n.Decision != nil {
			return
		}
		switch n.Kind {
		case ast.LeftName:
			if t, ok := c.names.Get(n.Name); ok {
				c.decideType(id, t)
			}
			// Otherwise decided with its assignment.
			return
		case ast.RightName:
			if t, ok := c.names.Get(n.Name); ok {
				c.decideType(id, t)
				return
			}
			if c.missing.Insert(n.Name.ID) && !c.sourceMissing(n.Name.ID) {
				c.report(id, diag.MissingTypeInfo, n.Name.String())
			}
		case ast.Decl:
			c.decideType(id, types.Void)
			return
		case ast.Value:
			if c.tree.IsNullLiteral(id) {
				c.decideType(id, types.Null)
				return
			}
			if fn := c.tree.Callable(id); fn != nil && fn.Variants != nil {
				c.decideType(id, variantsType(fn.Variants))
				return
			}
		}
		c.decideType(id, types.Invalid)
	})
	c.tree.WalkPost(c.tree.Root, func(id ast.NodeID) {
		if n := c.tree.Node(id); n.Kind.NeedsType() && n.Decision == nil {
			c.decideType(id, types.Invalid)
		}
	})
}

// sourceMissing reports whether a name aliases one already reported as missing.
func (c *Context) sourceMissing(nameID int) bool {
	sources, ok := c.plan.Aliases[nameID]
	if !ok {
		return false
	}
	for _, source := range sources.Slice() {
		if c.missing.Contains(source) {
			return true
		}
	}
	return false
}

// recheckAssignments reports assignments whose value does not fit the assigned name.
func (c *Context) recheckAssignments() {
	for _, nameID := range sortedKeys(c.plan.Assignments) {
		for _, a := range c.plan.Assignments[nameID] {
			if op := c.tree.Op(a.Call); op != ast.OpAssign && op != ast.OpSetProperty {
				continue
			}
			lhs, ok := c.names.Get(a.Name)
			if m := c.plan.Members[nameID]; m != nil && m.Type != nil {
				lhs, ok = m.Type, true
			}
			rd := c.tree.Decision(a.RHS)
			if !ok || !rd.Valid() || types.IsInvalid(lhs) {
				continue
			}
			if !c.cfg.Types.IsSubtype(rd.Type, lhs) {
				c.report(a.Call, diag.IllegalAssignment, a.Name.String(), types.TypeString(rd.Type))
			}
		}
	}
}

// removeHandles unwraps failure handling around calls which cannot fail. The flag, assigned only
// there, reads as false.
func (c *Context) removeHandles() {
	boolean := c.cfg.Builtins.Boolean.Type()
	for _, nameID := range sortedKeys(c.plan.Assignments) {
		as := c.plan.Assignments[nameID]
		if len(as) != 1 || c.tree.Op(as[0].Call) != ast.OpHandle {
			continue
		}
		handle, wrapped := as[0].Call, as[0].RHS
		d := c.tree.Decision(wrapped)
		if !d.Valid() || types.HasBubble(d.Type) {
			continue
		}
		parent := c.plan.Parent(handle)
		if parent == ast.NoNode {
			continue
		}
		i := c.tree.ChildIndex(parent, handle)
		if i < 0 {
			continue
		}
		c.tree.SetChild(parent, i, wrapped)
		for _, read := range c.plan.Reads[nameID] {
			c.tree.Replace(read, ast.Node{
				Kind:     ast.Value,
				Value:    &ast.ValueInfo{Kind: ast.BoolValue, Bool: false},
				Decision: &ast.Decision{Type: boolean},
			})
		}
		c.trace("unwrap", "handle", int(handle), "flag", nameID)
	}
}

// reduceChecks folds is-checks of names whose result is known from the name's type. A check
// against T of a value of type T? becomes a null check, which is a check against any value.
func (c *Context) reduceChecks() {
	ctx := c.cfg.Types
	boolean := c.cfg.Builtins.Boolean.Type()
	c.tree.Walk(c.tree.Root, func(id ast.NodeID) bool {
		n := c.tree.Node(id)
		if n.Kind != ast.Call || c.tree.Op(id) != ast.OpIs || len(n.Children) != 3 || !n.Decision.Valid() {
			return true
		}
		operand, ref := n.Children[1], n.Children[2]
		od := c.tree.Decision(operand)
		target, ok := c.typeRef(id, ref)
		if !ok || !od.Valid() || c.tree.Node(operand).Kind != ast.RightName {
			return true
		}
		var result, known bool
		switch {
		case ctx.IsSubtype(od.Type, target):
			result, known = true, true
		case ctx.Disjoint(od.Type, target):
			result, known = false, true
		case types.IsNullable(od.Type) && target != types.Type(types.AnyValue) && ctx.IsSubtype(types.NonNull(od.Type), target):
			c.tree.Replace(ref, ast.Node{
				Kind:     ast.Value,
				Value:    &ast.ValueInfo{Kind: ast.TypeValue, Type: types.AnyValue},
				Decision: &ast.Decision{Type: &types.TypeToken{Of: types.AnyValue}},
			})
			return false
		}
		if known {
			c.tree.Replace(id, ast.Node{
				Kind:     ast.Value,
				Value:    &ast.ValueInfo{Kind: ast.BoolValue, Bool: result},
				Decision: &ast.Decision{Type: boolean},
			})
		}
		return false
	})
}

// markDeadJumps marks the jumps never taken on branch conditions folded to constants.
func (c *Context) markDeadJumps() {
	conds := c.plan.Conds.Slice()
	sort.Slice(conds, func(i, j int) bool { return conds[i] < conds[j] })
	for _, cond := range conds {
		v := c.tree.Node(cond).Value
		if v == nil || v.Kind != ast.BoolValue {
			continue
		}
		block := c.plan.Parent(cond)
		if block == ast.NoNode || c.tree.Node(block).Flow == nil {
			continue
		}
		index := c.tree.ChildIndex(block, cond)
		flow := c.tree.Node(block).Flow
		for i := range flow.Jumps {
			if j := &flow.Jumps[i]; j.Cond == index && j.When != v.Bool {
				j.Dead = true
				c.trace("dead", "block", int(block), "from", j.From, "to", j.To)
			}
		}
	}
}
