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
	"io"
	"log/slog"

	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"

	"github.com/wdamron/typer/ast"
	"github.com/wdamron/typer/diag"
	"github.com/wdamron/typer/internal/plan"
	"github.com/wdamron/typer/solve"
	"github.com/wdamron/typer/types"
)

// Config controls a Context. Zero fields are given defaults.
type Config struct {
	Solver   Solver
	Env      Environment
	Types    *types.Context
	Builtins *Builtins
	// Trace logs each typing step at debug level.
	Trace  bool
	Logger *slog.Logger
	// MaxDiagnostics limits the diagnostics retained per module; 0 means no limit.
	MaxDiagnostics int
}

func setConfigDefaults(cfg *Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Types == nil {
		cfg.Types = types.NewContext()
	}
	if cfg.Solver == nil {
		cfg.Solver = solve.New(solve.Config{Types: cfg.Types, Logger: cfg.Logger})
	}
	if cfg.Env == nil {
		cfg.Env = NewTypeEnv(nil)
	}
	if cfg.Builtins == nil {
		cfg.Builtins = DefaultBuiltins
	}
}

// Context types modules. A context may be reused for modules sequentially; it cannot be used
// concurrently.
type Context struct {
	cfg Config

	tree   *ast.Tree
	plan   *plan.Plan
	module *Module
	names  NameBindings
	bag    *diag.Bag

	// prior holds nodes decided before the current run; their decisions are kept.
	prior     map[ast.NodeID]bool
	replaying bool

	inits   map[int]*initializerInfo
	blocked map[int][]ast.NodeID
	parked  map[ast.NodeID]bool

	late      map[ast.NodeID]*lateCall
	lateAlias map[ast.NodeID]ast.NodeID
	calls     map[ast.NodeID]*callInfo
	funSigs   map[ast.NodeID]*types.Sig
	funHints  map[ast.NodeID]*types.Sig
	env       map[ast.NodeID]*types.Variants
	// draining is set once the main order is complete; nothing is deferred or parked after it.
	draining bool

	explanations map[ast.NodeID][]diag.Diagnostic
	missing      *set.Set[int]
	depth        int
}

// NewContext creates a context.
func NewContext(cfg Config) *Context {
	setConfigDefaults(&cfg)
	return &Context{cfg: cfg}
}

// Config returns the configuration with defaults applied.
func (c *Context) Config() Config { return c.cfg }

func (c *Context) reset(m *Module) {
	c.tree, c.module = m.Tree, m
	c.plan = nil
	c.names = emptyNameBindings
	c.bag = &diag.Bag{Max: c.cfg.MaxDiagnostics}
	c.prior = make(map[ast.NodeID]bool)
	c.replaying = false
	c.inits = make(map[int]*initializerInfo)
	c.blocked = make(map[int][]ast.NodeID)
	c.parked = make(map[ast.NodeID]bool)
	c.late = make(map[ast.NodeID]*lateCall)
	c.lateAlias = make(map[ast.NodeID]ast.NodeID)
	c.calls = make(map[ast.NodeID]*callInfo)
	c.funSigs = make(map[ast.NodeID]*types.Sig)
	c.funHints = make(map[ast.NodeID]*types.Sig)
	c.draining = false
	c.env = make(map[ast.NodeID]*types.Variants)
	c.explanations = make(map[ast.NodeID][]diag.Diagnostic)
	c.missing = set.New[int](4)
	c.depth = 0
}

// Infer types every node of the module's tree which needs a type. Type errors are reported in the
// result's diagnostics; an error is returned only for a tree which cannot be typed at all.
func (c *Context) Infer(m *Module) (*Result, error) {
	if m == nil || m.Tree == nil {
		return nil, errors.New("typer: empty module")
	}
	c.reset(m)
	p, err := plan.Analyze(m.Tree, m.Result)
	if err != nil {
		return nil, errors.Wrap(err, "typer: planning failed")
	}
	c.plan = p
	for i := 0; i < c.tree.Len(); i++ {
		if d := c.tree.Decision(ast.NodeID(i)); d != nil {
			c.prior[ast.NodeID(i)] = true
			for _, e := range d.Explanations {
				c.bag.Add(e)
			}
		}
	}
	c.trace("infer", "nodes", c.tree.Len(), "steps", len(p.Order), "prior", len(c.prior))

	for _, shape := range m.Shapes {
		for _, member := range shape.Members {
			LinkOverrides(c.cfg.Types, member)
		}
	}
	c.prebind()

	for _, step := range p.Order {
		switch step.Phase {
		case plan.Enter:
			c.enterFun(step.Node)
		case plan.Exit:
			c.exitFun(step.Node)
		default:
			c.visit(step.Node)
		}
	}
	c.solveRemainingLate()
	c.postPass()
	c.trace("done", "diagnostics", c.bag.Len())
	return &Result{Bindings: c.names, Diagnostics: c.bag}, nil
}

// prebind binds names whose only assignment is a fully signed function, so that co-recursive
// functions may refer to each other in any order.
func (c *Context) prebind() {
	for nameID, as := range c.plan.Assignments {
		if len(as) != 1 || c.tree.Op(as[0].Call) != ast.OpAssign {
			continue
		}
		fun := as[0].RHS
		if c.tree.Node(fun).Kind != ast.Fun || !c.tree.Explicit(fun) {
			continue
		}
		if _, ok := c.names.GetID(nameID); ok {
			continue
		}
		sig := c.explicitSig(fun)
		c.funSigs[fun] = sig
		c.names = c.names.set(nameID, sig)
		c.trace("prebind", "name", as[0].Name.String(), "type", types.TypeString(sig))
	}
}
