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

// Package solve solves batches of generic calls which share type variables.
package solve

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/wdamron/typer/types"
)

type BoundKind uint8

const (
	// The argument has a known type.
	Concrete BoundKind = iota
	// The argument is the result of another call in the same batch.
	CallRef
	// The argument is a literal whose type is taken from its parameter.
	NeedsBinding
)

// Bound describes one argument of a call.
type Bound struct {
	Kind BoundKind
	// Type of a concrete argument; for NeedsBinding, the literal's own type if it has one.
	Type types.Type
	// Ref is the batch index of the call producing a CallRef argument.
	Ref int
	// Handled is set when the referenced result passes through a failure handler, which
	// removes the failure channel from it.
	Handled bool
}

// Call is one call of a batch.
type Call struct {
	// ID is an opaque tag for the caller.
	ID         int
	Candidates []types.Callee
	Args       []Bound
	// Context is the type expected of the call's result, or nil.
	Context types.Type
	// Explicit type actuals, by formal position.
	Explicit []types.Type
}

// Batch is a set of calls solved together.
type Batch struct {
	Calls []Call
}

// Result is the solution for one call of a batch.
type Result struct {
	// Index of the chosen candidate, or -1.
	Index    int
	Bindings types.Bindings
	// Sig is the chosen candidate with its bindings substituted.
	Sig  *types.Sig
	Type types.Type
	// Args holds the resolved parameter type for each NeedsBinding argument; nil elsewhere.
	Args []types.Type
	Err  error
}

var (
	// ErrNoMatchingVariant is returned for a call which has no candidate accepting its arguments.
	ErrNoMatchingVariant = errors.New("no candidate accepts the arguments")
	// ErrUnsolved is returned when some type formal has no bound.
	ErrUnsolved = errors.New("type formal has no bound")
	// ErrTooManyCombinations is returned when the search gives up.
	ErrTooManyCombinations = errors.New("too many candidate combinations")
)

// Config controls a Solver.
type Config struct {
	// MaxCombinations limits the candidate combinations tried per batch. Defaults to 256.
	MaxCombinations int
	// Types answers subtype judgments. Defaults to a fresh context.
	Types  *types.Context
	Logger *slog.Logger
}

// Solver solves batches. A Solver is not safe for concurrent use.
type Solver struct {
	cfg Config
}

// New creates a solver.
func New(cfg Config) *Solver {
	if cfg.MaxCombinations <= 0 {
		cfg.MaxCombinations = 256
	}
	if cfg.Types == nil {
		cfg.Types = types.NewContext()
	}
	return &Solver{cfg: cfg}
}

// Solve returns one result per call of the batch. Results are computed together: either every
// call has a solution from a single consistent choice of candidates, or every call fails.
func (s *Solver) Solve(b *Batch) []Result {
	st := newState(s.cfg.Types, b)
	results := make([]Result, len(b.Calls))
	for i, c := range b.Calls {
		if len(st.viable[i]) == 0 {
			err := errors.Wrapf(ErrNoMatchingVariant, "call %d with %d arguments", c.ID, len(c.Args))
			return fail(results, err)
		}
	}
	if !st.search(0, s.cfg.MaxCombinations) {
		err := st.err
		if err == nil {
			err = ErrNoMatchingVariant
		}
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("batch unsolved", "calls", len(b.Calls), "tried", st.tried, "err", err)
		}
		return fail(results, err)
	}
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug("batch solved", "calls", len(b.Calls), "tried", st.tried)
	}
	for i := range b.Calls {
		results[i] = st.result(i)
	}
	return results
}

func fail(results []Result, err error) []Result {
	for i := range results {
		results[i] = Result{Index: -1, Type: types.Invalid, Err: err}
	}
	return results
}
