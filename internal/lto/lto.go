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

// Package lto performs the whole-program link phase: once every module
// has been optimized in isolation, the linker builds the module
// dependency graph and shakes dead exports, dead imports and re-export
// chains to a fixed point. It runs on a single goroutine, after the
// parallel per-module phase has fully drained.
package lto

import (
	"time"

	"github.com/selene-lang/selene/debug"
	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/unit"
)

// linkModule is the module name used in profile records for link-wide
// passes, which have no single subject module.
const linkModule = "(program)"

type linker struct {
	prog    *unit.Program
	options *opts.Options
	profile *debug.Profile
	work    map[string]*ast.WorkingTree
	stmts   map[string][]ast.Stmt
}

// Run applies the link passes to the whole program, mutating module
// trees and symbol tables in place. It returns the number of rounds
// executed and whether the round cap cut the iteration short. Below
// LevelModerate the link phase is skipped entirely.
func Run(prog *unit.Program, o *opts.Options, prof *debug.Profile) (int, bool) {
	if o.Level < opts.LevelModerate {
		return 0, false
	}

	lk := &linker{
		prog:    prog,
		options: o,
		profile: prof,
		work:    make(map[string]*ast.WorkingTree, len(prog.Modules)),
		stmts:   make(map[string][]ast.Stmt, len(prog.Modules)),
	}

	/* move every tree into its working form */
	for _, m := range prog.Modules {
		wt := m.Tree.IntoWorking()
		if o.CheckInvariants {
			wt.AuditMove()
		}
		lk.work[m.Name] = wt
		lk.stmts[m.Name] = wt.Stmts()
	}

	/* the first graph build doubles as the value-cycle defect check */
	BuildGraph(prog, lk.stmts)

	rounds, capped := lk.iterate()

	/* freeze the shaken trees back onto the modules */
	for _, m := range prog.Modules {
		wt := lk.work[m.Name]
		wt.Replace(lk.stmts[m.Name])
		m.Tree = wt.IntoImmutable()
	}
	return rounds, capped
}

func (self *linker) iterate() (int, bool) {
	for round := 1; round <= self.options.MaxRounds; round++ {
		changed := false
		if !self.options.NoTreeShaking {
			g := BuildGraph(self.prog, self.stmts)
			changed = self.timed("lto-dead-export", round, func() bool { return self.shakeExports(g) }) || changed
			changed = self.timed("lto-dead-import", round, self.shakeImports) || changed
		}
		changed = self.timed("lto-flatten-reexport", round, self.flatten) || changed
		if !changed {
			return round, false
		}
	}
	if self.profile != nil {
		self.profile.Warn("optimizer: whole-program link did not converge within %d rounds", self.options.MaxRounds)
	}
	return self.options.MaxRounds, true
}

func (self *linker) timed(name string, round int, fn func() bool) bool {
	t0 := time.Now()
	changed := fn()
	if self.profile != nil {
		self.profile.Record(debug.PassRecord{
			Module:  linkModule,
			Pass:    name,
			Round:   round,
			Changed: changed,
			Elapsed: time.Since(t0),
		})
	}
	return changed
}
