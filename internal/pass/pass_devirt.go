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

// Devirt replaces dynamic dispatch with direct calls where the
// receiver's class is statically known, and drops dispatch guards of
// the form `if x then x:m(...) end` when the guarded receiver is
// provably the tested storage and its class type cannot hold nil.
// Both rewrites stop at the first unknown: a receiver without a class
// type stays dynamic, and a guard whose tested expression does not
// prove AliasSame with the receiver stays in place.
type Devirt struct{}

func (Devirt) Name     () string              { return "Devirtualization" }
func (Devirt) Kind     () Kind                { return KindTransform }
func (Devirt) Priority () Priority            { return PrioDevirtualize }
func (Devirt) MinLevel () opts.Level          { return opts.LevelAggressive }
func (Devirt) Requires () []flow.AnalysisKind { return []flow.AnalysisKind { flow.AnalysisAlias, flow.AnalysisEffects } }
func (Devirt) Enabled  (*opts.Options) bool   { return true }

func (self Devirt) Run(ctx *Context) bool {
    changed := self.dropGuards(ctx)
    return self.direct(ctx) || changed
}

/* rewrite method calls with a statically known receiver class */
func (self Devirt) direct(ctx *Context) bool {
    return rewriteAllExprs(ctx.Stmts(), func(x ast.Expr) (ast.Expr, bool) {
        if v, ok := x.(*ast.MethodCall); ok && v.RecvTy.Kind == ast.TypeClass {
            return &ast.StaticCall {
                Class : v.RecvTy.Class,
                Name  : v.Name,
                Recv  : v.Recv,
                Args  : v.Args,
            }, true
        }
        return x, false
    })
}

/* drop dispatch guards whose test can never fail */
func (self Devirt) dropGuards(ctx *Context) bool {
    at := ctx.Analyses.TopScope().Alias()
    nb, changed := rewriteLists(ctx.Stmts(), func(stmts []ast.Stmt) ([]ast.Stmt, bool) {
        return self.reduceGuards(stmts, at)
    })
    if changed {
        ctx.Replace(nb)
    }
    return changed
}

func (self Devirt) reduceGuards(stmts []ast.Stmt, at *flow.AliasTable) ([]ast.Stmt, bool) {
    nb := make([]ast.Stmt, 0, len(stmts))
    changed := false

    for _, s := range stmts {
        if v, ok := s.(*ast.IfStmt); ok && self.guardAlwaysTaken(v, at) {
            nb = append(nb, wrapScope(v.Then)...)
            changed = true
        } else {
            nb = append(nb, s)
        }
    }

    if !changed {
        return stmts, false
    }
    return nb, true
}

/* `if x then x:m(...) end` where x is a class-typed binding: the test
 * never fails because a class-typed value is never nil or false. The
 * receiver must prove AliasSame with the tested storage; anything the
 * alias table cannot decide keeps its guard. */
func (self Devirt) guardAlwaysTaken(v *ast.IfStmt, at *flow.AliasTable) bool {
    if len(v.Else) != 0 || len(v.Then) != 1 {
        return false
    }

    /* the test must be a plain class-typed name */
    cond, ok := v.Cond.(*ast.Name)
    if !ok || cond.Ty.Kind != ast.TypeClass {
        return false
    }

    /* the single guarded statement must dispatch on the same storage */
    es, ok := v.Then[0].(*ast.ExprStmt)
    if !ok {
        return false
    }
    recv := receiverOf(es.X)
    if recv == nil {
        return false
    }
    return at.Alias(cond, recv) == flow.AliasSame
}

func receiverOf(x ast.Expr) ast.Expr {
    switch v := x.(type) {
        case *ast.MethodCall : return v.Recv
        case *ast.StaticCall : return v.Recv
        default              : return nil
    }
}
