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

// Package selene is the optimizer of the Selene compiler. It sits
// between the type checker and code generation: it takes checked
// module trees, rewrites them through a fixed-point pass pipeline, and
// at LevelModerate and above links the whole program, shaking dead
// exports and imports and flattening re-export chains.
package selene

import (
	"runtime"

	"github.com/selene-lang/selene/debug"
	"github.com/selene-lang/selene/internal/driver"
	"github.com/selene-lang/selene/internal/lto"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/pass"
)

// A Report summarizes one optimization run: aggregate convergence
// statistics plus the per-pass change log when profiling was enabled.
type Report struct {
	Stats   debug.Stats
	Profile *debug.Profile
}

// Optimize rewrites a single module tree in place, without any
// whole-program knowledge. The module's tree is consumed and replaced
// with the optimized one.
//
// An optimizer defect is returned as a *DefectError. The module must
// not be fed to code generation after an error: its tree is left in an
// indeterminate state.
func Optimize(m *Module, options ...Option) (rep Report, err error) {
	o := buildOptions(options)
	defer trapDefects(&err)

	prof := newProfile(&o)
	d := driver.Driver{
		Name:     m.Name,
		Options:  &o,
		Registry: &pass.Defaults,
		Profile:  prof,
	}

	nt, r := d.Run(m.Tree)
	m.Tree = nt
	rep.Profile = prof
	rep.Stats = debug.Stats{Modules: 1, Rounds: r.Rounds}
	if r.Capped {
		rep.Stats.Capped = 1
	}
	return rep, nil
}

// OptimizeProgram optimizes every module of a checked program and then
// links the whole program. The per-module phase runs in parallel
// unless disabled; the link phase starts only after every module has
// fully converged, and runs on the calling goroutine.
//
// The result is deterministic: for identical input the optimized
// program is structurally identical whether the parallel phase ran on
// one worker or many.
//
// An optimizer defect, including a module dependency cycle through
// value imports reaching this stage, is returned as a *DefectError.
// The program must not be fed to code generation after an error.
func OptimizeProgram(p *Program, options ...Option) (rep Report, err error) {
	o := buildOptions(options)
	defer trapDefects(&err)

	prof := newProfile(&o)
	st := driver.RunProgram(p, &o, &pass.Defaults, prof)

	rounds, capped := lto.Run(p, &o, prof)
	st.Rounds += rounds
	if capped {
		st.Capped++
	}

	rep.Profile = prof
	rep.Stats = debug.Stats{
		Modules: len(p.Modules),
		Rounds:  st.Rounds,
		Capped:  st.Capped,
	}
	return rep, nil
}

func newProfile(o *opts.Options) *debug.Profile {
	if !o.Profile {
		return nil
	}
	return new(debug.Profile)
}

func buildOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	if runtime.GOMAXPROCS(0) == 1 {
		o.NoParallel = true
	}
	return o
}
