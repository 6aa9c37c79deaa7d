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

package debug

import (
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/selene-lang/selene/internal/ast"
)

// A PassRecord is one pass invocation as seen by the profiler: which
// pass ran on which module in which round, whether it changed the
// tree, and how long it took.
type PassRecord struct {
	Module  string
	Pass    string
	Round   int
	Changed bool
	Elapsed time.Duration
}

// A Profile is the per-build change log backing --profile-optimizer
// style reporting. It is diagnostic only: nothing in the optimizer
// reads it back. Safe for concurrent use, the parallel phase appends
// from every worker.
type Profile struct {
	mu       sync.Mutex
	records  []PassRecord
	warnings []string
}

// Record appends one pass invocation.
func (p *Profile) Record(r PassRecord) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.records = append(p.records, r)
	p.mu.Unlock()
}

// Warn appends a non-fatal diagnostic, e.g. a convergence cap hit.
func (p *Profile) Warn(format string, args ...interface{}) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
	p.mu.Unlock()
}

// Records returns a copy of the recorded pass invocations.
func (p *Profile) Records() []PassRecord {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PassRecord(nil), p.records...)
}

// Warnings returns a copy of the recorded diagnostics.
func (p *Profile) Warnings() []string {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.warnings...)
}

// A Stats summarizes one whole-program optimization.
type Stats struct {
	Modules int
	Rounds  int
	Capped  int
}

// DumpTree pretty-prints a statement sequence for debugging.
func DumpTree(stmts []ast.Stmt) string {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	return cfg.Sdump(stmts)
}
