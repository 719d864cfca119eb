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

	"github.com/benbjohnson/immutable"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/types"
)

type nameHasher struct{}

func (nameHasher) Hash(key interface{}) uint32 {
	h := uint32(key.(int))
	h ^= h >> 16
	h *= 0x45d9f3b
	h ^= h >> 16
	return h
}

func (nameHasher) Equal(a, b interface{}) bool { return a.(int) == b.(int) }

var emptyNameBindings = NameBindings{immutable.NewMap(nameHasher{})}

// NameBindings contains immutable mappings from name ids to finalized types.
type NameBindings struct {
	m *immutable.Map
}

// Get the number of bound names.
func (b NameBindings) Len() int {
	if b.m == nil {
		return 0
	}
	return b.m.Len()
}

// Get the type bound to name.
func (b NameBindings) Get(name *ast.Name) (types.Type, bool) { return b.GetID(name.ID) }

// Get the type bound to the name with id.
func (b NameBindings) GetID(id int) (types.Type, bool) {
	if b.m == nil {
		return nil, false
	}
	t, ok := b.m.Get(id)
	if !ok {
		return nil, false
	}
	return t.(types.Type), true
}

func (b NameBindings) set(id int, t types.Type) NameBindings {
	m := b.m
	if m == nil {
		m = emptyNameBindings.m
	}
	return NameBindings{m.Set(id, t)}
}

// Iterate over bindings ordered by name id.
// If f returns false, iteration will be stopped.
func (b NameBindings) Range(f func(id int, t types.Type) bool) {
	if b.m == nil {
		return
	}
	ids := make([]int, 0, b.m.Len())
	iter := b.m.Iterator()
	for !iter.Done() {
		k, _ := iter.Next()
		ids = append(ids, k.(int))
	}
	sort.Ints(ids)
	for _, id := range ids {
		t, _ := b.GetID(id)
		if !f(id, t) {
			return
		}
	}
}
