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

// TypeEnv is a type-environment containing mappings from builtin and exported names to declared types.
//
// A type-environment is read-only during inference and may be shared by contexts typing different
// modules concurrently, provided it is not modified meanwhile.
type TypeEnv struct {
	// Predeclared types in the parent of the current type-environment
	Parent *TypeEnv
	// Mappings from identifiers to declared types in the current type-environment
	Types map[string]types.Type
	// Overload groups of functions declared in the current type-environment
	Variants map[string]*types.Variants
}

// Create a type-environment. The new environment will inherit bindings from the parent, if the parent is not nil.
func NewTypeEnv(parent *TypeEnv) *TypeEnv {
	return &TypeEnv{
		Parent:   parent,
		Types:    make(map[string]types.Type),
		Variants: make(map[string]*types.Variants),
	}
}

// Add a declared type to the environment.
func (e *TypeEnv) Add(name string, t types.Type) { e.Types[name] = t }

// Add a function with one or more signatures to the environment.
func (e *TypeEnv) AddFunc(name string, sigs ...*types.Sig) {
	e.AddVariants(name, &types.Variants{Primary: sigs})
}

// Add an overload group to the environment.
func (e *TypeEnv) AddVariants(name string, v *types.Variants) {
	e.Variants[name] = v
	e.Types[name] = variantsType(v)
}

// Remove a name from the environment. Parents are not modified.
func (e *TypeEnv) Remove(name string) {
	delete(e.Types, name)
	delete(e.Variants, name)
}

// Lookup the declared type of a name. Names are matched by text.
func (e *TypeEnv) Lookup(name *ast.Name) (types.Type, *types.Variants, bool) {
	for env := e; env != nil; env = env.Parent {
		if t, ok := env.Types[name.Text]; ok {
			return t, env.Variants[name.Text], true
		}
	}
	return nil, nil, false
}

// variantsType is the type of a function value with an overload group: the covering signature,
// the single variant, or the intersection of all variants.
func variantsType(v *types.Variants) types.Type {
	if v.Cover != nil {
		return v.Cover
	}
	callees := v.Callees()
	switch len(callees) {
	case 0:
		return types.Invalid
	case 1:
		return callees[0].Sig
	}
	ts := make([]types.Type, len(callees))
	for i, c := range callees {
		ts[i] = c.Sig
	}
	return types.Intersect(ts...)
}
