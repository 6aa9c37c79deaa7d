/*
 * Copyright 2024 Selene Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package driver

import (
	"fmt"
	"time"

	"github.com/selene-lang/selene/debug"
	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/flow"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/pass"
)

// Driver applies the eligible transform passes of one module to a
// fixed point. One Driver instance serves one module; the registry and
// options are shared and read-only.
type Driver struct {
	Name     string
	Options  *opts.Options
	Registry *pass.Registry
	Profile  *debug.Profile
}

// Result reports how one module converged.
type Result struct {
	Rounds int
	Capped bool
}

// Run optimizes one module tree, consuming it and returning the
// optimized replacement. Hitting the round cap is not an error, the
// best tree obtained so far wins; a transform that lies about having
// changed the tree is a defect and panics.
func (d *Driver) Run(tree *ast.ImmutableTree) (*ast.ImmutableTree, Result) {
	eligible := d.Registry.Eligible(d.Options)

	/* nothing to do at this level */
	if len(eligible) == 0 {
		return tree, Result{}
	}

	/* move into the mutable working form */
	wt := tree.IntoWorking()
	if d.Options.CheckInvariants {
		wt.AuditMove()
	}

	/* bind the analysis cache and the pass context */
	an := flow.NewAnalyses(wt.Stmts())
	ctx := &pass.Context{
		Tree:     wt,
		Analyses: an,
		Options:  d.Options,
	}

	/* iterate the full pass list to a fixed point */
	res := Result{}
	for round := 0; round < d.Options.MaxRounds; round++ {
		res.Rounds = round + 1
		if !d.round(ctx, eligible, round) {
			return wt.IntoImmutable(), res
		}
	}

	/* the cap stops further optimization, never the build */
	res.Capped = true
	d.Profile.Warn("optimizer: module %q did not converge within %d rounds", d.Name, d.Options.MaxRounds)
	return wt.IntoImmutable(), res
}

/* round runs every eligible pass once, in registry order, and reports
 * whether any of them changed the tree */
func (d *Driver) round(ctx *pass.Context, eligible []pass.Pass, round int) bool {
	changed := false

	for _, p := range eligible {
		/* rebuild whatever facts the pass declared */
		d.ensure(ctx.Analyses, p.Requires())

		/* checked mode fingerprints the tree around the pass */
		var fp uint64
		if d.Options.CheckInvariants {
			fp = ast.Fingerprint(ctx.Stmts())
		}

		/* run and log */
		start := time.Now()
		ch := p.Run(ctx)
		if d.Options.Profile {
			d.Profile.Record(debug.PassRecord{
				Module:  d.Name,
				Pass:    p.Name(),
				Round:   round,
				Changed: ch,
				Elapsed: time.Since(start),
			})
		}

		/* a change invalidates every cached fact; a claimed no-change
		 * must really be one */
		if ch {
			changed = true
			ctx.Analyses.Invalidate(ctx.Stmts())
		} else if d.Options.CheckInvariants {
			if now := ast.Fingerprint(ctx.Stmts()); now != fp {
				panic(fmt.Sprintf("selene: pass %q mutated the tree while reporting no change", p.Name()))
			}
		}
	}
	return changed
}

/* ensure builds the analyses a pass requires, for the module chunk
 * and every function scope */
func (d *Driver) ensure(an *flow.Analyses, kinds []flow.AnalysisKind) {
	for _, k := range kinds {
		switch k {
		case flow.AnalysisEffects:
			an.Effects()
		case flow.AnalysisCFG:
			an.EachScope(func(sc *flow.ScopeInfo) { sc.CFG() })
		case flow.AnalysisDominators:
			an.EachScope(func(sc *flow.ScopeInfo) { sc.Dominators() })
		case flow.AnalysisSSA:
			an.EachScope(func(sc *flow.ScopeInfo) { sc.SSA() })
		case flow.AnalysisAlias:
			an.EachScope(func(sc *flow.ScopeInfo) { sc.Alias() })
		}
	}
}
