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

package selene

import (
	"fmt"

	"github.com/selene-lang/selene/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithLevel sets the optimization level.
//
// The default level is LevelModerate.
func WithLevel(lv Level) Option {
	if lv > opts.LevelAggressive {
		panic(fmt.Sprintf("selene: invalid optimization level: %d", lv))
	}
	return func(o *opts.Options) { o.Level = lv }
}

// WithNoParallel forces the per-module phase onto a single goroutine.
// The optimized output is identical either way; this option only
// trades wall-clock time for predictable scheduling.
func WithNoParallel(v bool) Option {
	return func(o *opts.Options) { o.NoParallel = v }
}

// WithNoTreeShaking keeps dead exports and dead imports in the
// program. Re-export flattening still runs.
func WithNoTreeShaking(v bool) Option {
	return func(o *opts.Options) { o.NoTreeShaking = v }
}

// WithNoScopeHoisting disables the scope hoisting transform.
func WithNoScopeHoisting(v bool) Option {
	return func(o *opts.Options) { o.NoScopeHoisting = v }
}

// WithProfile enables the per-pass change log, returned on the Report.
func WithProfile(v bool) Option {
	return func(o *opts.Options) { o.Profile = v }
}

// WithCheckInvariants enables the internal consistency checks: tree
// move audits and pass change-report verification. Slow; meant for the
// compiler's own test suites.
func WithCheckInvariants(v bool) Option {
	return func(o *opts.Options) { o.CheckInvariants = v }
}

// WithMaxRounds overrides the fixed-point round cap.
//
// The default value of this option is "10".
func WithMaxRounds(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("selene: invalid round cap: %d", n))
	}
	return func(o *opts.Options) { o.MaxRounds = n }
}
