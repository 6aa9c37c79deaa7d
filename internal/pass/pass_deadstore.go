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

// DeadStore removes stores no control path ever reads: assignments
// whose every defined version is dead, and declarations of bindings
// nothing uses. A store only goes away when computing its value is
// removable; a value that may throw or mutate anything is kept even
// if nobody reads the result.
type DeadStore struct{}

func (DeadStore) Name     () string              { return "Dead Store Elimination" }
func (DeadStore) Kind     () Kind                { return KindTransform }
func (DeadStore) Priority () Priority            { return PrioEliminate }
func (DeadStore) MinLevel () opts.Level          { return opts.LevelModerate }
func (DeadStore) Requires () []flow.AnalysisKind { return []flow.AnalysisKind { flow.AnalysisSSA, flow.AnalysisEffects } }
func (DeadStore) Enabled  (*opts.Options) bool   { return true }

func (self DeadStore) Run(ctx *Context) bool {
    changed := false

    /* removing one store can orphan another, iterate to a fixed point
     * so a rerun of the whole pass has nothing left to do */
    for {
        et := ctx.Analyses.Effects()
        kill := make(map[ast.Stmt]struct{})

        /* gather dead stores of the chunk and of every function body */
        ctx.Analyses.EachScope(func(sc *flow.ScopeInfo) {
            for s := range self.gather(sc.SSA(), et) {
                kill[s] = struct{}{}
            }
        })

        /* fixed point reached */
        if len(kill) == 0 {
            return changed
        }

        /* drop the statements and rebuild the facts */
        nb, _ := rewriteLists(ctx.Stmts(), func(stmts []ast.Stmt) ([]ast.Stmt, bool) {
            return dropStmts(stmts, kill)
        })
        ctx.Replace(nb)
        ctx.Analyses.Invalidate(nb)
        changed = true
    }
}

/* gather decides which statements of one scope can go */
func (self DeadStore) gather(ssa *flow.SsaForm, et *flow.Effects) map[ast.Stmt]struct{} {
    dead := make(map[ast.Stmt]map[string]struct{})
    defs := make(map[ast.Stmt]int)
    vers := make(map[string]int)
    uses := make(map[string]int)

    /* index the renaming facts */
    for _, d := range ssa.Defs {
        defs[d.Stmt]++
        vers[d.Name]++
        uses[d.Name] += d.Uses
    }
    for _, j := range ssa.Joins {
        uses[j.Name] += j.Uses
    }
    for _, d := range ssa.Dead {
        if dead[d.Stmt] == nil {
            dead[d.Stmt] = make(map[string]struct{})
        }
        dead[d.Stmt][d.Name] = struct{}{}
    }

    /* a statement dies when every version it defines is dead */
    kill := make(map[ast.Stmt]struct{})
    for s, names := range dead {
        switch v := s.(type) {
            case *ast.AssignStmt:
                if len(names) == defs[s] && len(v.Lhs) == len(names) && removableAll(v.Rhs, et) {
                    kill[s] = struct{}{}
                }
            case *ast.LocalStmt:
                if self.declDead(v, vers, uses) && removableAll(v.Init, et) {
                    kill[s] = struct{}{}
                }
        }
    }
    return kill
}

/* a declaration goes only when every binding it introduces has exactly
 * this one version and no use at all, otherwise a later assignment
 * still needs the binding in scope */
func (self DeadStore) declDead(v *ast.LocalStmt, vers map[string]int, uses map[string]int) bool {
    for _, n := range v.Names {
        if vers[n.Ident] != 1 || uses[n.Ident] != 0 {
            return false
        }
    }
    return true
}

func dropStmts(stmts []ast.Stmt, kill map[ast.Stmt]struct{}) ([]ast.Stmt, bool) {
    hit := false
    out := make([]ast.Stmt, 0, len(stmts))
    for _, s := range stmts {
        if _, ok := kill[s]; ok {
            hit = true
        } else {
            out = append(out, s)
        }
    }
    if !hit {
        return stmts, false
    }
    return out, true
}

func removableAll(vs []ast.Expr, et *flow.Effects) bool {
    for _, x := range vs {
        if !et.OfExpr(x).Removable() {
            return false
        }
    }
    return true
}
