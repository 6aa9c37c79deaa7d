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

package pass

import (
    `sort`

    `github.com/selene-lang/selene/internal/ast`
    `github.com/selene-lang/selene/internal/flow`
    `github.com/selene-lang/selene/internal/opts`
)

// Kind tells a transform from a pure analysis: a transform may mutate
// the working tree and must report whether it did, an analysis only
// produces facts.
type Kind uint8

const (
    KindTransform Kind = iota
    KindAnalysis
)

// Priority is the fixed ordering class of a pass: structural
// simplification runs before elimination, elimination before
// devirtualization, devirtualization before anything link-adjacent.
// Ties break by registration order.
type Priority uint8

const (
    PrioSimplify Priority = iota
    PrioEliminate
    PrioDevirtualize
    PrioLink
)

// Context is what a pass runs against: the working tree of one module
// and the analysis cache bound to it.
type Context struct {
    Tree     *ast.WorkingTree
    Analyses *flow.Analyses
    Options  *opts.Options
}

// Stmts returns the current top-level statement sequence.
func (self *Context) Stmts() []ast.Stmt {
    return self.Tree.Stmts()
}

// Replace installs a rewritten top-level sequence.
func (self *Context) Replace(stmts []ast.Stmt) {
    self.Tree.Replace(stmts)
}

// Pass is a named unit of transformation or analysis.
type Pass interface {
    Name     () string
    Kind     () Kind
    Priority () Priority
    MinLevel () opts.Level
    Requires () []flow.AnalysisKind
    Enabled  (o *opts.Options) bool
    Run      (ctx *Context) bool
}

// Registry holds the registered passes and hands out the eligible,
// deterministically ordered subset for a level.
type Registry struct {
    passes []Pass
}

// Register appends a pass. Registration order is the tie-breaker
// within a priority class, so registering is order-sensitive and done
// once, at package init.
func (self *Registry) Register(p Pass) {
    self.passes = append(self.passes, p)
}

// All returns every registered pass in registration order.
func (self *Registry) All() []Pass {
    return self.passes
}

// Eligible returns the transform passes active for the options, in
// execution order. The same options always yield the same sequence.
func (self *Registry) Eligible(o *opts.Options) []Pass {
    nb := make([]Pass, 0, len(self.passes))
    idx := make(map[Pass]int, len(self.passes))

    /* level and option gates */
    for i, p := range self.passes {
        if p.MinLevel() <= o.Level && p.Enabled(o) {
            nb = append(nb, p)
            idx[p] = i
        }
    }

    /* priority class first, registration order second */
    sort.SliceStable(nb, func(i int, j int) bool {
        if nb[i].Priority() != nb[j].Priority() {
            return nb[i].Priority() < nb[j].Priority()
        } else {
            return idx[nb[i]] < idx[nb[j]]
        }
    })
    return nb
}

/* the default registry, populated at init in registration order */
var Defaults Registry

func init() {
    Defaults.Register(new(ConstFold))
    Defaults.Register(new(BranchElim))
    Defaults.Register(new(ScopeHoist))
    Defaults.Register(new(Unreachable))
    Defaults.Register(new(DeadStore))
    Defaults.Register(new(Devirt))
}
