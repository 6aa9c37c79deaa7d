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
)

// rewriteLists applies fn to every statement list of the tree, leaves
// first, so a rewrite of an outer list sees its inner lists already in
// final form. It reports whether any list changed.
func rewriteLists(stmts []ast.Stmt, fn func([]ast.Stmt) ([]ast.Stmt, bool)) ([]ast.Stmt, bool) {
    changed := false

    /* children first */
    for _, s := range stmts {
        switch v := s.(type) {
            case *ast.IfStmt:
                v.Then, changed = rewriteInto(v.Then, fn, changed)
                v.Else, changed = rewriteInto(v.Else, fn, changed)
            case *ast.WhileStmt:
                v.Body, changed = rewriteInto(v.Body, fn, changed)
            case *ast.DoStmt:
                v.Body, changed = rewriteInto(v.Body, fn, changed)
            case *ast.FuncStmt:
                v.Body, changed = rewriteInto(v.Body, fn, changed)
            default:
                changed = rewriteClosures(s, fn) || changed
        }
    }

    /* then the list itself */
    nb, ok := fn(stmts)
    return nb, changed || ok
}

func rewriteInto(stmts []ast.Stmt, fn func([]ast.Stmt) ([]ast.Stmt, bool), changed bool) ([]ast.Stmt, bool) {
    nb, ok := rewriteLists(stmts, fn)
    return nb, changed || ok
}

/* closure bodies hide behind expressions */
func rewriteClosures(s ast.Stmt, fn func([]ast.Stmt) ([]ast.Stmt, bool)) bool {
    changed := false
    ast.WalkExprs(s, func(x ast.Expr) {
        if c, ok := x.(*ast.Closure); ok {
            if nb, ok := rewriteLists(c.Body, fn); ok {
                c.Body = nb
                changed = true
            } else {
                c.Body = nb
            }
        }
    })
    return changed
}

// rewriteAllExprs runs an expression rewriter over every statement of
// the tree, nested bodies included, and reports whether anything
// changed. The rewriter must return its argument unchanged (same
// pointer) when it has nothing to do.
func rewriteAllExprs(stmts []ast.Stmt, fn func(ast.Expr) (ast.Expr, bool)) bool {
    changed := false
    ast.WalkStmts(stmts, func(s ast.Stmt) bool {
        ast.RewriteExprs(s, func(x ast.Expr) ast.Expr {
            if nx, ok := fn(x); ok {
                changed = true
                return nx
            } else {
                return nx
            }
        })
        return true
    })
    return changed
}
