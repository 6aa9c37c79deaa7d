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
)

func TestBranchElim_LiteralCondition(t *testing.T) {
    thenArm := assign("x", ast.Int(1))
    elseArm := assign("x", ast.Int(2))

    nb, ok := runOn(BranchElim{}, []ast.Stmt {
        local("x", ast.Int(0)),
        &ast.IfStmt { Cond: ast.Bool(true), Then: []ast.Stmt { thenArm }, Else: []ast.Stmt { elseArm } },
    })
    require.True(t, ok)
    require.Len(t, nb, 2)

    /* the taken arm survives inside its own scope */
    do, isDo := nb[1].(*ast.DoStmt)
    require.True(t, isDo)
    require.True(t, ast.EqualStmts([]ast.Stmt { thenArm }, do.Body))
}

func TestBranchElim_FalseWithoutElse(t *testing.T) {
    nb, ok := runOn(BranchElim{}, []ast.Stmt {
        &ast.IfStmt { Cond: ast.Bool(false), Then: []ast.Stmt { assign("x", ast.Int(1)) } },
        &ast.ReturnStmt{},
    })
    require.True(t, ok)
    require.Len(t, nb, 1)
}

func TestBranchElim_EmptyBranch(t *testing.T) {
    /* a removable condition disappears with the branch */
    nb, ok := runOn(BranchElim{}, []ast.Stmt {
        &ast.IfStmt { Cond: name("c") },
        &ast.ReturnStmt{},
    })
    require.True(t, ok)
    require.Len(t, nb, 1)

    /* an effectful condition stays as a bare evaluation */
    call := &ast.Call { Fn: name("sideEffect") }
    nb, ok = runOn(BranchElim{}, []ast.Stmt {
        &ast.IfStmt { Cond: call },
        &ast.ReturnStmt{},
    })
    require.True(t, ok)
    require.Len(t, nb, 2)
    es, isExpr := nb[0].(*ast.ExprStmt)
    require.True(t, isExpr)
    require.Same(t, ast.Expr(call), es.X)
}

func TestBranchElim_DeadLoop(t *testing.T) {
    nb, ok := runOn(BranchElim{}, []ast.Stmt {
        &ast.WhileStmt { Cond: ast.Bool(false), Body: []ast.Stmt { assign("x", ast.Int(1)) } },
        &ast.ReturnStmt{},
    })
    require.True(t, ok)
    require.Len(t, nb, 1)

    /* nil is falsy too */
    nb, ok = runOn(BranchElim{}, []ast.Stmt {
        &ast.WhileStmt { Cond: ast.Nil(), Body: []ast.Stmt{} },
        &ast.ReturnStmt{},
    })
    require.True(t, ok)
    require.Len(t, nb, 1)
}

func TestBranchElim_NestedArms(t *testing.T) {
    /* a literal branch nested inside a surviving branch reduces in the
     * same run, lists rewrite leaves first */
    nb, ok := runOn(BranchElim{}, []ast.Stmt {
        &ast.IfStmt {
            Cond: name("c"),
            Then: []ast.Stmt {
                &ast.IfStmt { Cond: ast.Bool(false), Then: []ast.Stmt { assign("x", ast.Int(1)) } },
                assign("x", ast.Int(2)),
            },
        },
    })
    require.True(t, ok)
    outer := nb[0].(*ast.IfStmt)
    require.Len(t, outer.Then, 1)
}
