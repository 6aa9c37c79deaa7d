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
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/selene-lang/selene/internal/ast`
    `github.com/selene-lang/selene/internal/opts`
)

/* a chunk giving every default pass something to chew on */
func richStmts() []ast.Stmt {
    return []ast.Stmt {
        local("a", &ast.Binary { Op: ast.AddOp, L: ast.Int(1), R: &ast.Binary { Op: ast.MulOp, L: ast.Int(2), R: ast.Int(3) } }),
        local("zombie", ast.Int(9)),
        &ast.IfStmt {
            Cond: ast.Bool(true),
            Then: []ast.Stmt { assign("a", &ast.Binary { Op: ast.AddOp, L: intName("a"), R: ast.Int(0) }) },
            Else: []ast.Stmt { assign("a", ast.Int(-1)) },
        },
        &ast.WhileStmt { Cond: ast.Bool(false), Body: []ast.Stmt { assign("a", ast.Int(0)) } },
        &ast.IfStmt {
            Cond: classNameExpr("w", "Widget"),
            Then: []ast.Stmt {
                &ast.ExprStmt { X: &ast.MethodCall { Recv: classNameExpr("w", "Widget"), Name: "draw", RecvTy: classLit("Widget") } },
            },
        },
        &ast.ReturnStmt { Results: []ast.Expr { intName("a") } },
        assign("a", ast.Int(5)),
    }
}

/* a pass reporting a change must leave nothing behind for a rerun: the
 * second invocation on its own output reports no change */
func TestPasses_Idempotent(t *testing.T) {
    for _, p := range Defaults.All() {
        t.Run(p.Name(), func(t *testing.T) {
            o := opts.GetDefaultOptions()
            o.Level = opts.LevelAggressive
            ctx := newCtx(richStmts(), &o)

            if p.Run(ctx) {
                ctx.Analyses.Invalidate(ctx.Stmts())
            }
            require.False(t, p.Run(ctx), "second run of %q still changed the tree", p.Name())
        })
    }
}

/* the fingerprint only moves when a pass reports a change */
func TestPasses_HonestChangeReports(t *testing.T) {
    for _, p := range Defaults.All() {
        t.Run(p.Name(), func(t *testing.T) {
            o := opts.GetDefaultOptions()
            o.Level = opts.LevelAggressive
            ctx := newCtx(richStmts(), &o)

            before := ast.Fingerprint(ctx.Stmts())
            changed := p.Run(ctx)
            after := ast.Fingerprint(ctx.Stmts())
            require.Equal(t, changed, before != after)
        })
    }
}
