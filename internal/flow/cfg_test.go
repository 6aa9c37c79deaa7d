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

package flow

import (
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/selene-lang/selene/internal/ast`
)

func name(s string) *ast.Name {
    return &ast.Name { Ident: s }
}

func local(n string, init ast.Expr) ast.Stmt {
    return &ast.LocalStmt { Names: []*ast.Name { name(n) }, Init: []ast.Expr { init } }
}

func assign(n string, rhs ast.Expr) ast.Stmt {
    return &ast.AssignStmt { Lhs: []ast.Expr { name(n) }, Rhs: []ast.Expr { rhs } }
}

func edgeTo(bb *BasicBlock, id int) bool {
    for _, e := range bb.Out {
        if e.To.Id == id {
            return true
        }
    }
    return false
}

func TestCFG_Straight(t *testing.T) {
    cfg := BuildCFG([]ast.Stmt {
        local("x", ast.Int(1)),
        assign("x", ast.Int(2)),
    })
    require.Len(t, cfg.Entry.Ins, 2)
    require.True(t, edgeTo(cfg.Entry, cfg.Exit.Id))
}

func TestCFG_Diamond(t *testing.T) {
    cfg := BuildCFG([]ast.Stmt {
        local("x", ast.Int(1)),
        &ast.IfStmt {
            Cond: name("c"),
            Then: []ast.Stmt { assign("x", ast.Int(2)) },
            Else: []ast.Stmt { assign("x", ast.Int(3)) },
        },
        &ast.ReturnStmt { Results: []ast.Expr { name("x") } },
    })

    /* entry splits on the condition */
    require.NotNil(t, cfg.Entry.Term)
    require.Len(t, cfg.Entry.Out, 2)

    /* both arms fall into the same join */
    var joins []int
    for _, e := range cfg.Entry.Out {
        arm := e.To
        require.Len(t, arm.Out, 1)
        joins = append(joins, arm.Out[0].To.Id)
    }
    require.Equal(t, joins[0], joins[1])

    /* the join returns */
    join := cfg.Block(joins[0])
    require.True(t, edgeTo(join, cfg.Exit.Id))
}

func TestCFG_Loop(t *testing.T) {
    cfg := BuildCFG([]ast.Stmt {
        local("i", ast.Int(0)),
        &ast.WhileStmt {
            Cond: &ast.Binary { Op: ast.LtOp, L: name("i"), R: ast.Int(10) },
            Body: []ast.Stmt { assign("i", &ast.Binary { Op: ast.AddOp, L: name("i"), R: ast.Int(1) }) },
        },
    })

    /* find the back edge */
    back := 0
    cfg.ForEach(func(bb *BasicBlock) {
        for _, e := range bb.Out {
            if e.Kind == BackEdge {
                back++
            }
        }
    })
    require.Equal(t, 1, back)
}

func TestCFG_BreakTargetsLoopExit(t *testing.T) {
    cfg := BuildCFG([]ast.Stmt {
        &ast.WhileStmt {
            Cond: ast.Bool(true),
            Body: []ast.Stmt {
                &ast.IfStmt { Cond: name("done"), Then: []ast.Stmt { &ast.BreakStmt{} } },
            },
        },
        &ast.ReturnStmt{},
    })

    /* the break block must not target the exit directly */
    cfg.ForEach(func(bb *BasicBlock) {
        if _, ok := bb.Term.(*ast.BreakStmt); ok {
            require.Len(t, bb.Out, 1)
            require.NotEqual(t, cfg.Exit.Id, bb.Out[0].To.Id)
        }
    })
}

func TestCFG_BreakOutsideLoop(t *testing.T) {
    require.PanicsWithValue(t, "selene: break outside of a loop", func() {
        BuildCFG([]ast.Stmt { &ast.BreakStmt{} })
    })
}

func TestCFG_ThrowEdge(t *testing.T) {
    cfg := BuildCFG([]ast.Stmt {
        &ast.ThrowStmt { X: ast.Str("boom") },
    })
    require.Len(t, cfg.Entry.Out, 1)
    require.Equal(t, ThrowEdge, cfg.Entry.Out[0].Kind)
    require.Equal(t, cfg.Exit.Id, cfg.Entry.Out[0].To.Id)
}

func TestCFG_PostOrderVisitsReachableOnce(t *testing.T) {
    cfg := BuildCFG([]ast.Stmt {
        &ast.IfStmt { Cond: name("c"), Then: []ast.Stmt { &ast.ReturnStmt{} } },
        &ast.ReturnStmt{},
    })
    seen := make(map[int]int)
    cfg.PostOrder(func(bb *BasicBlock) { seen[bb.Id]++ })
    for id, n := range seen {
        require.Equal(t, 1, n, "block %d", id)
    }
    require.Len(t, seen, len(cfg.Reachable()))
}
