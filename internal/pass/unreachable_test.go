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

func TestUnreachable_AfterReturn(t *testing.T) {
    nb, ok := runOn(Unreachable{}, []ast.Stmt {
        &ast.ReturnStmt{},
        assign("x", ast.Int(1)),
        assign("y", ast.Int(2)),
    })
    require.True(t, ok)
    require.Len(t, nb, 1)
}

func TestUnreachable_AfterThrow(t *testing.T) {
    nb, ok := runOn(Unreachable{}, []ast.Stmt {
        &ast.ThrowStmt { X: ast.Str("fatal") },
        assign("x", ast.Int(1)),
    })
    require.True(t, ok)
    require.Len(t, nb, 1)
}

func TestUnreachable_AfterBreakInLoop(t *testing.T) {
    nb, ok := runOn(Unreachable{}, []ast.Stmt {
        &ast.WhileStmt {
            Cond: ast.Bool(true),
            Body: []ast.Stmt { &ast.BreakStmt{}, assign("x", ast.Int(1)) },
        },
    })
    require.True(t, ok)
    require.Len(t, nb[0].(*ast.WhileStmt).Body, 1)
}

func TestUnreachable_BothArmsTransfer(t *testing.T) {
    nb, ok := runOn(Unreachable{}, []ast.Stmt {
        &ast.IfStmt {
            Cond: name("c"),
            Then: []ast.Stmt { &ast.ReturnStmt { Results: []ast.Expr { ast.Int(1) } } },
            Else: []ast.Stmt { &ast.ThrowStmt { X: ast.Str("no") } },
        },
        assign("x", ast.Int(1)),
    })
    require.True(t, ok)
    require.Len(t, nb, 1)
}

func TestUnreachable_OneArmFallsThrough(t *testing.T) {
    _, ok := runOn(Unreachable{}, []ast.Stmt {
        &ast.IfStmt {
            Cond: name("c"),
            Then: []ast.Stmt { &ast.ReturnStmt{} },
        },
        assign("x", ast.Int(1)),
    })
    require.False(t, ok)
}
