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

package ast

// WalkStmts visits every statement in the sequence in pre-order,
// descending into nested bodies. Returning false from fn skips the
// children of that statement.
func WalkStmts(stmts []Stmt, fn func(Stmt) bool) {
    for _, s := range stmts {
        if fn(s) {
            switch v := s.(type) {
                case *IfStmt    : WalkStmts(v.Then, fn); WalkStmts(v.Else, fn)
                case *WhileStmt : WalkStmts(v.Body, fn)
                case *DoStmt    : WalkStmts(v.Body, fn)
                case *FuncStmt  : WalkStmts(v.Body, fn)
            }
        }
    }
}

// WalkExprs visits every expression of a single statement in pre-order,
// including expressions inside closure bodies. It does not descend into
// nested statement bodies other than closures; pair it with WalkStmts
// for a full traversal.
func WalkExprs(s Stmt, fn func(Expr)) {
    switch v := s.(type) {
        case *LocalStmt:
            for _, x := range v.Init { walkExpr(x, fn) }
        case *AssignStmt:
            for _, x := range v.Lhs { walkExpr(x, fn) }
            for _, x := range v.Rhs { walkExpr(x, fn) }
        case *ExprStmt:
            walkExpr(v.X, fn)
        case *IfStmt:
            walkExpr(v.Cond, fn)
        case *WhileStmt:
            walkExpr(v.Cond, fn)
        case *ReturnStmt:
            for _, x := range v.Results { walkExpr(x, fn) }
        case *ThrowStmt:
            walkExpr(v.X, fn)
    }
}

func walkExpr(x Expr, fn func(Expr)) {
    fn(x)
    switch v := x.(type) {
        case *Binary:
            walkExpr(v.L, fn)
            walkExpr(v.R, fn)
        case *Unary:
            walkExpr(v.X, fn)
        case *Call:
            walkExpr(v.Fn, fn)
            for _, p := range v.Args { walkExpr(p, fn) }
        case *MethodCall:
            walkExpr(v.Recv, fn)
            for _, p := range v.Args { walkExpr(p, fn) }
        case *StaticCall:
            walkExpr(v.Recv, fn)
            for _, p := range v.Args { walkExpr(p, fn) }
        case *Index:
            walkExpr(v.X, fn)
            walkExpr(v.Key, fn)
        case *Member:
            walkExpr(v.X, fn)
        case *Closure:
            WalkStmts(v.Body, func(s Stmt) bool { WalkExprs(s, fn); return true })
    }
}

// RewriteExprs rewrites every expression of a statement bottom-up
// through fn, installing the returned expression in place. fn must
// return its argument unchanged when it has nothing to do.
func RewriteExprs(s Stmt, fn func(Expr) Expr) {
    switch v := s.(type) {
        case *LocalStmt:
            rewriteList(v.Init, fn)
        case *AssignStmt:
            rewriteList(v.Lhs, fn)
            rewriteList(v.Rhs, fn)
        case *ExprStmt:
            v.X = rewriteExpr(v.X, fn)
        case *IfStmt:
            v.Cond = rewriteExpr(v.Cond, fn)
        case *WhileStmt:
            v.Cond = rewriteExpr(v.Cond, fn)
        case *ReturnStmt:
            rewriteList(v.Results, fn)
        case *ThrowStmt:
            v.X = rewriteExpr(v.X, fn)
    }
}

func rewriteList(vs []Expr, fn func(Expr) Expr) {
    for i, x := range vs {
        vs[i] = rewriteExpr(x, fn)
    }
}

func rewriteExpr(x Expr, fn func(Expr) Expr) Expr {
    switch v := x.(type) {
        case *Binary:
            v.L = rewriteExpr(v.L, fn)
            v.R = rewriteExpr(v.R, fn)
        case *Unary:
            v.X = rewriteExpr(v.X, fn)
        case *Call:
            v.Fn = rewriteExpr(v.Fn, fn)
            rewriteList(v.Args, fn)
        case *MethodCall:
            v.Recv = rewriteExpr(v.Recv, fn)
            rewriteList(v.Args, fn)
        case *StaticCall:
            v.Recv = rewriteExpr(v.Recv, fn)
            rewriteList(v.Args, fn)
        case *Index:
            v.X   = rewriteExpr(v.X, fn)
            v.Key = rewriteExpr(v.Key, fn)
        case *Member:
            v.X = rewriteExpr(v.X, fn)
        case *Closure:
            WalkStmts(v.Body, func(s Stmt) bool { RewriteExprs(s, fn); return true })
    }
    return fn(x)
}

// UsedNames counts every Name reference in the sequence, including
// references from closure bodies and nested scopes. A local export
// counts as a reference to its binding: the statement publishes the
// name without carrying an expression.
func UsedNames(stmts []Stmt) map[string]int {
    uses := make(map[string]int)
    WalkStmts(stmts, func(s Stmt) bool {
        if v, ok := s.(*ExportStmt); ok && v.From == "" {
            uses[v.Binding()]++
        }
        WalkExprs(s, func(x Expr) {
            if n, ok := x.(*Name); ok {
                uses[n.Ident]++
            }
        })
        return true
    })
    return uses
}
