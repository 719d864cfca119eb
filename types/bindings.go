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

package types

import (
	"sort"

	"github.com/benbjohnson/immutable"
)

type formalHasher struct{}

func (formalHasher) Hash(key interface{}) uint32 {
	h := uint32(key.(*Formal).Id)
	h ^= h >> 16
	h *= 0x45d9f3b
	h ^= h >> 16
	return h
}

func (formalHasher) Equal(a, b interface{}) bool { return a.(*Formal) == b.(*Formal) }

var emptyBindings = immutable.NewMap(formalHasher{})

// EmptyBindings contains no entries.
var EmptyBindings = Bindings{emptyBindings}

// Bindings contains immutable mappings from type formals to actual types.
type Bindings struct {
	m *immutable.Map
}

// NewBindings creates empty bindings.
func NewBindings() Bindings { return Bindings{emptyBindings} }

// SingletonBindings creates bindings with a single entry.
func SingletonBindings(f *Formal, t Type) Bindings {
	return Bindings{emptyBindings.Set(f, t)}
}

// Get the number of entries.
func (b Bindings) Len() int {
	if b.m == nil {
		return 0
	}
	return b.m.Len()
}

// Get the actual type bound to f.
func (b Bindings) Get(f *Formal) (Type, bool) {
	if b.m == nil {
		return nil, false
	}
	t, ok := b.m.Get(f)
	if !ok {
		return nil, false
	}
	return t.(Type), true
}

// Set returns a copy of the bindings with f bound to t.
func (b Bindings) Set(f *Formal, t Type) Bindings {
	m := b.m
	if m == nil {
		m = emptyBindings
	}
	return Bindings{m.Set(f, t)}
}

// Formals returns the bound formals, ordered by id.
func (b Bindings) Formals() []*Formal {
	if b.m == nil {
		return nil
	}
	fs := make([]*Formal, 0, b.m.Len())
	iter := b.m.Iterator()
	for !iter.Done() {
		k, _ := iter.Next()
		fs = append(fs, k.(*Formal))
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i].Id < fs[j].Id })
	return fs
}

// Iterate over entries ordered by formal id.
// If f returns false, iteration will be stopped.
func (b Bindings) Range(f func(*Formal, Type) bool) {
	for _, formal := range b.Formals() {
		t, _ := b.Get(formal)
		if !f(formal, t) {
			return
		}
	}
}

// Merge returns bindings containing entries from both; entries of other win.
func (b Bindings) Merge(other Bindings) Bindings {
	if other.Len() == 0 {
		return b
	}
	if b.Len() == 0 {
		return other
	}
	builder := b.Builder()
	other.Range(func(f *Formal, t Type) bool {
		builder.Set(f, t)
		return true
	})
	return builder.Build()
}

// Convert the bindings to a builder for modification, without mutating the existing bindings.
func (b Bindings) Builder() BindingsBuilder {
	m := b.m
	if m == nil {
		m = emptyBindings
	}
	return BindingsBuilder{immutable.NewMapBuilder(m)}
}

// BindingsBuilder enables in-place updates of bindings before finalization.
type BindingsBuilder struct {
	b *immutable.MapBuilder
}

func NewBindingsBuilder() BindingsBuilder {
	return BindingsBuilder{immutable.NewMapBuilder(emptyBindings)}
}

// Set the type bound to f in the builder.
func (b BindingsBuilder) Set(f *Formal, t Type) BindingsBuilder {
	b.b.Set(f, t)
	return b
}

// Finalize the builder into immutable bindings.
func (b BindingsBuilder) Build() Bindings {
	if b.b == nil {
		return EmptyBindings
	}
	return Bindings{b.b.Map()}
}
