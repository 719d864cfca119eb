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
	"strings"

	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/solve"
	"github.com/wdamron/typer/types"
)

// narrowCover chooses among the primary variants of a cover function once the cover signature
// has been solved. Variants which accept the argument types and whose result fits the solved
// result are compatible. One compatible variant is chosen; with none the fallback is used; with
// several the most specific one is chosen, if there is one.
func (c *Context) narrowCover(info *callInfo, bounds []solve.Bound, r solve.Result) *types.Sig {
	v := info.variants
	args := make([]solve.Bound, len(bounds))
	for i, b := range bounds {
		if b.Kind == solve.Concrete {
			args[i] = b
		} else {
			args[i] = solve.Bound{Kind: solve.Concrete, Type: r.Sig.Param(i)}
		}
	}
	var matches []*types.Sig
	for _, sig := range v.Primary {
		if !sig.Accepts(len(args)) {
			continue
		}
		call := solve.Call{ID: int(info.call), Candidates: []types.Callee{{Sig: sig}}, Args: args, Context: r.Sig.Return}
		if res := c.cfg.Solver.Solve(&solve.Batch{Calls: []solve.Call{call}})[0]; res.Err == nil {
			matches = append(matches, res.Sig)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0]
	case 0:
		if v.Fallback != nil {
			return v.Fallback
		}
		c.report(info.call, diag.NoMatchingVariant, info.name, c.boundsString(args))
		return r.Sig
	}
	if best := c.mostSpecific(matches); best != nil {
		return best
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = types.TypeString(m)
	}
	c.report(info.call, diag.AmbiguousVariant, info.name, strings.Join(names, ", "))
	return r.Sig
}

// mostSpecific returns the signature whose parameters are all subtypes of the corresponding
// parameters of every other signature, or nil.
func (c *Context) mostSpecific(sigs []*types.Sig) *types.Sig {
	var best *types.Sig
	for i, s := range sigs {
		narrower := true
		for j, o := range sigs {
			if i != j && !c.paramsNarrower(s, o) {
				narrower = false
				break
			}
		}
		if narrower {
			if best != nil {
				return nil
			}
			best = s
		}
	}
	return best
}

func (c *Context) paramsNarrower(s, o *types.Sig) bool {
	n := s.ParamCount()
	if m := o.ParamCount(); m > n {
		n = m
	}
	for i := 0; i < n; i++ {
		p, q := s.Param(i), o.Param(i)
		if p == nil || q == nil {
			continue
		}
		if !c.cfg.Types.IsSubtype(p, q) {
			return false
		}
	}
	return true
}
