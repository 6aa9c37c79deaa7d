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
    `github.com/selene-lang/selene/internal/ast`
    `github.com/selene-lang/selene/internal/flow`
    `github.com/selene-lang/selene/internal/opts`
)

// Unreachable drops statements no control path reaches: everything in
// a list after a statement that always transfers away.
type Unreachable struct{}

func (Unreachable) Name     () string              { return "Unreachable Code Elimination" }
func (Unreachable) Kind     () Kind                { return KindTransform }
func (Unreachable) Priority () Priority            { return PrioEliminate }
func (Unreachable) MinLevel () opts.Level          { return opts.LevelModerate }
func (Unreachable) Requires () []flow.AnalysisKind { return nil }
func (Unreachable) Enabled  (*opts.Options) bool   { return true }

func (self Unreachable) Run(ctx *Context) bool {
    nb, changed := rewriteLists(ctx.Stmts(), self.truncate)
    if changed {
        ctx.Replace(nb)
    }
    return changed
}

func (self Unreachable) truncate(stmts []ast.Stmt) ([]ast.Stmt, bool) {
    for i, s := range stmts {
        if transfersAway(s) && i + 1 < len(stmts) {
            return stmts[:i + 1], true
        }
    }
    return stmts, false
}

/* transfersAway reports whether control never falls out of the
 * statement */
func transfersAway(s ast.Stmt) bool {
    switch v := s.(type) {
        case *ast.ReturnStmt:
            return true
        case *ast.BreakStmt:
            return true
        case *ast.ThrowStmt:
            return true
        case *ast.IfStmt:
            return len(v.Else) > 0 && listTransfers(v.Then) && listTransfers(v.Else)
        case *ast.DoStmt:
            return listTransfers(v.Body)
        default:
            return false
    }
}

func listTransfers(stmts []ast.Stmt) bool {
    for _, s := range stmts {
        if transfersAway(s) {
            return true
        }
    }
    return false
}
