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
	"context"
	"runtime"
	"sync"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/selene-lang/selene/debug"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/pass"
	"github.com/selene-lang/selene/internal/unit"
)

// RunProgram drives the per-module phase of a whole-program build:
// every module converges independently, in parallel unless disabled.
// Workers share nothing mutable; the interned-string table is retained
// per worker and only read. The WaitGroup is the barrier: RunProgram
// does not return until every module reached its fixed point or cap,
// so whole-program link work may start right after.
func RunProgram(prog *unit.Program, o *opts.Options, reg *pass.Registry, prof *debug.Profile) Stats {
	if o.NoParallel || len(prog.Modules) <= 1 {
		return runSerial(prog, o, reg, prof)
	}
	return runParallel(prog, o, reg, prof)
}

// Stats aggregates the per-module convergence results.
type Stats struct {
	Rounds int
	Capped int
}

func (s *Stats) add(r Result) {
	s.Rounds += r.Rounds
	if r.Capped {
		s.Capped++
	}
}

func runSerial(prog *unit.Program, o *opts.Options, reg *pass.Registry, prof *debug.Profile) Stats {
	st := Stats{}
	for _, m := range prog.Modules {
		d := &Driver{Name: m.Name, Options: o, Registry: reg, Profile: prof}
		nt, r := d.Run(m.Tree)
		m.Tree = nt
		st.add(r)
	}
	return st
}

func runParallel(prog *unit.Program, o *opts.Options, reg *pass.Registry, prof *debug.Profile) Stats {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fault interface{}

	/* one pool per build; a worker panic is captured and re-raised on
	 * the coordinating goroutine, a defect must fail the whole build */
	st := Stats{}
	pool := gopool.NewPool("selene-optimizer", int32(runtime.GOMAXPROCS(0)), gopool.NewConfig())
	pool.SetPanicHandler(func(_ context.Context, r interface{}) {
		mu.Lock()
		if fault == nil {
			fault = r
		}
		mu.Unlock()
		wg.Done()
	})

	/* fan out one task per module */
	for _, m := range prog.Modules {
		m := m
		wg.Add(1)
		pool.Go(func() {
			if prog.Strings != nil {
				t := prog.Strings.Retain()
				defer t.Release()
			}
			d := &Driver{Name: m.Name, Options: o, Registry: reg, Profile: prof}
			nt, r := d.Run(m.Tree)
			m.Tree = nt
			mu.Lock()
			st.add(r)
			mu.Unlock()
			wg.Done()
		})
	}

	/* the barrier before any whole-program work */
	wg.Wait()
	if fault != nil {
		panic(fault)
	}
	return st
}
