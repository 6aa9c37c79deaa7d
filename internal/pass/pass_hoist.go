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

// ScopeHoist merges an explicit nested scope into its parent when the
// merge cannot change name resolution: none of the scope's own locals
// may collide with a name the parent scope declares or references.
// Fewer scopes means fewer generated do/end pairs and longer
// straight-line runs for the other passes.
type ScopeHoist struct{}

func (ScopeHoist) Name     () string              { return "Scope Hoisting" }
func (ScopeHoist) Kind     () Kind                { return KindTransform }
func (ScopeHoist) Priority () Priority            { return PrioSimplify }
func (ScopeHoist) MinLevel () opts.Level          { return opts.LevelModerate }
func (ScopeHoist) Requires () []flow.AnalysisKind { return nil }

func (ScopeHoist) Enabled(o *opts.Options) bool {
    return !o.NoScopeHoisting
}

func (self ScopeHoist) Run(ctx *Context) bool {
    nb, changed := rewriteLists(ctx.Stmts(), self.flatten)
    if changed {
        ctx.Replace(nb)
    }
    return changed
}

func (self ScopeHoist) flatten(stmts []ast.Stmt) ([]ast.Stmt, bool) {
    nb := make([]ast.Stmt, 0, len(stmts))
    merged := make(map[string]struct{})
    changed := false

    for i, s := range stmts {
        v, ok := s.(*ast.DoStmt)
        if !ok {
            nb = append(nb, s)
            continue
        }

        /* the hoisted locals must stay invisible to the rest of the
         * parent list, must not capture a parent binding that a later
         * sibling re-declares, and must not clash with the locals of a
         * sibling scope spliced earlier in this sweep */
        if self.collides(v.Body, stmts, i) || self.clashes(v.Body, merged) {
            nb = append(nb, s)
            continue
        }

        /* splice the body in place */
        for n := range declaredNames(v.Body) {
            merged[n] = struct{}{}
        }
        nb = append(nb, v.Body...)
        changed = true
    }

    if !changed {
        return stmts, false
    }
    return nb, true
}

func (self ScopeHoist) clashes(body []ast.Stmt, merged map[string]struct{}) bool {
    for n := range declaredNames(body) {
        if _, ok := merged[n]; ok {
            return true
        }
    }
    return false
}

func (self ScopeHoist) collides(body []ast.Stmt, parent []ast.Stmt, at int) bool {
    decl := declaredNames(body)
    if len(decl) == 0 {
        return false
    }

    /* names the parent declares anywhere, or references after the
     * scope being hoisted */
    for i, s := range parent {
        if i == at {
            continue
        }
        for _, n := range stmtDeclared(s) {
            if _, ok := decl[n]; ok {
                return true
            }
        }
        if i > at {
            for n := range usedBy(s) {
                if _, ok := decl[n]; ok {
                    return true
                }
            }
        }
    }
    return false
}

/* top-level declarations of a statement list, nested scopes excluded */
func declaredNames(stmts []ast.Stmt) map[string]struct{} {
    decl := make(map[string]struct{})
    for _, s := range stmts {
        for _, n := range stmtDeclared(s) {
            decl[n] = struct{}{}
        }
    }
    return decl
}

func stmtDeclared(s ast.Stmt) []string {
    switch v := s.(type) {
        case *ast.LocalStmt:
            nb := make([]string, len(v.Names))
            for i, n := range v.Names { nb[i] = n.Ident }
            return nb
        case *ast.FuncStmt:
            return []string { v.Name }
        case *ast.ImportStmt:
            return []string { v.Local }
        default:
            return nil
    }
}

func usedBy(s ast.Stmt) map[string]int {
    return ast.UsedNames([]ast.Stmt { s })
}
