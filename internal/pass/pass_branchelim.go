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

// BranchElim removes branches decided at compile time: a conditional
// with a literal condition keeps only the arm that runs, a loop that
// never enters disappears, and a conditional with two empty arms is
// reduced to its condition when skipping the test is unobservable.
type BranchElim struct{}

func (BranchElim) Name     () string              { return "Branch Elimination" }
func (BranchElim) Kind     () Kind                { return KindTransform }
func (BranchElim) Priority () Priority            { return PrioSimplify }
func (BranchElim) MinLevel () opts.Level          { return opts.LevelMinimal }
func (BranchElim) Requires () []flow.AnalysisKind { return []flow.AnalysisKind { flow.AnalysisEffects } }
func (BranchElim) Enabled  (*opts.Options) bool   { return true }

func (self BranchElim) Run(ctx *Context) bool {
    et := ctx.Analyses.Effects()
    nb, changed := rewriteLists(ctx.Stmts(), func(stmts []ast.Stmt) ([]ast.Stmt, bool) {
        return self.reduce(stmts, et)
    })
    if changed {
        ctx.Replace(nb)
    }
    return changed
}

func (self BranchElim) reduce(stmts []ast.Stmt, et *flow.Effects) ([]ast.Stmt, bool) {
    nb := make([]ast.Stmt, 0, len(stmts))
    changed := false

    for _, s := range stmts {
        switch v := s.(type) {
            case *ast.IfStmt:
                r, ok := self.reduceIf(v, et)
                nb = append(nb, r...)
                changed = changed || ok
            case *ast.WhileStmt:
                r, ok := self.reduceWhile(v, et)
                nb = append(nb, r...)
                changed = changed || ok
            default:
                nb = append(nb, s)
        }
    }

    if !changed {
        return stmts, false
    }
    return nb, true
}

func (self BranchElim) reduceIf(v *ast.IfStmt, et *flow.Effects) ([]ast.Stmt, bool) {
    /* a literal condition picks its arm at compile time */
    if c, ok := v.Cond.(*ast.Lit); ok {
        if c.Truthy() {
            return wrapScope(v.Then), true
        } else {
            return wrapScope(v.Else), true
        }
    }

    /* both arms empty: the branch only evaluates its condition */
    if len(v.Then) == 0 && len(v.Else) == 0 {
        if et.OfExpr(v.Cond).Removable() {
            return nil, true
        } else {
            return []ast.Stmt { &ast.ExprStmt { X: v.Cond } }, true
        }
    }
    return []ast.Stmt { v }, false
}

func (self BranchElim) reduceWhile(v *ast.WhileStmt, et *flow.Effects) ([]ast.Stmt, bool) {
    /* a loop whose condition is a false literal never enters */
    if c, ok := v.Cond.(*ast.Lit); ok && !c.Truthy() {
        return nil, true
    }
    return []ast.Stmt { v }, false
}

/* a dropped conditional arm keeps its own scope so hoisting decides
 * separately whether its locals may merge upward */
func wrapScope(stmts []ast.Stmt) []ast.Stmt {
    if len(stmts) == 0 {
        return nil
    }
    return []ast.Stmt { &ast.DoStmt { Body: stmts } }
}
