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

package construct

import (
	"github.com/wdamron/typer/types"
)

// Types

// Create a new solver variable with the given id.
func TVar(id int) *types.Var {
	return types.NewVar(id)
}

// Type formal: `T`
func TFormal(id int, name string, upper ...types.Type) *types.Formal {
	return types.NewFormal(id, name, upper...)
}

// Class shape: `class Int`
func TClass(name string, formals ...*types.Formal) *types.Shape {
	return types.NewShape(name, types.Class, formals...)
}

// Interface shape: `interface Iterable<T>`
func TInterface(name string, formals ...*types.Formal) *types.Shape {
	return types.NewShape(name, types.Interface, formals...)
}

// Type application: `List<Int>`
func TApp(shape *types.Shape, args ...types.Type) *types.Nominal {
	return types.NewNominal(shape, args...)
}

// Function type: `fn(Int, Int): Int`
func TFunc(params []types.Type, ret types.Type) *types.Sig {
	return &types.Sig{Required: params, Return: ret}
}

// Function type: `fn(Int): Int`
func TFunc1(param, ret types.Type) *types.Sig {
	return &types.Sig{Required: []types.Type{param}, Return: ret}
}

// Function type: `fn(Int, Int): Int`
func TFunc2(param1, param2, ret types.Type) *types.Sig {
	return &types.Sig{Required: []types.Type{param1, param2}, Return: ret}
}

// Generic function type: `fn<T>(T): T`
func TGeneric(formals []*types.Formal, params []types.Type, ret types.Type) *types.Sig {
	return &types.Sig{Formals: formals, Required: params, Return: ret}
}

// Variadic function type: `fn<T>(...T): List<T>`
func TVariadic(formals []*types.Formal, params []types.Type, rest, ret types.Type) *types.Sig {
	return &types.Sig{Formals: formals, Required: params, Rest: rest, Return: ret}
}

// Nullable type: `Int?`
func TNullable(t types.Type) types.Type {
	return types.Nullable(t)
}

// Union type: `Int | String`
func TUnion(ts ...types.Type) types.Type {
	return types.Union(ts...)
}

// Members

// Method declared on shape; the instance parameter is prepended to sig.
func Method(shape *types.Shape, symbol string, sig *types.Sig, vis types.Visibility) *types.Member {
	s := *sig
	s.Required = append([]types.Type{shape.Type()}, sig.Required...)
	return shape.AddMember(&types.Member{
		Symbol:     symbol,
		Kind:       types.Method,
		Sig:        &s,
		Visibility: vis,
		Openness:   types.Open,
	})
}

// Getter declared on shape.
func Getter(shape *types.Shape, symbol string, t types.Type, vis types.Visibility) *types.Member {
	m := Method(shape, symbol, TFunc(nil, t), vis)
	m.MethodKind = types.Getter
	return m
}

// Setter declared on shape.
func Setter(shape *types.Shape, symbol string, t types.Type, vis types.Visibility) *types.Member {
	m := Method(shape, symbol, TFunc1(t, types.Void), vis)
	m.MethodKind = types.Setter
	return m
}

// Property declared on shape.
func Property(shape *types.Shape, symbol string, t types.Type, vis types.Visibility, settable bool) *types.Member {
	return shape.AddMember(&types.Member{
		Symbol:     symbol,
		Kind:       types.Property,
		Type:       t,
		Visibility: vis,
		Settable:   settable,
	})
}

// Static property declared on shape.
func Static(shape *types.Shape, symbol string, t types.Type) *types.Member {
	return shape.AddMember(&types.Member{Symbol: symbol, Kind: types.StaticProperty, Type: t})
}

// Instance extension: the receiver is the first parameter of sig.
func Extension(name, symbol string, sig *types.Sig) *types.Extension {
	return &types.Extension{Name: name, Symbol: symbol, Sig: sig}
}

// Static extension of shape.
func StaticExtension(name, symbol string, shape *types.Shape, sig *types.Sig) *types.Extension {
	return &types.Extension{Name: name, Symbol: symbol, Sig: sig, Static: true, Extends: shape}
}
