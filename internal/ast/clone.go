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

import (
    `fmt`
)

// CloneTree deep-copies a frozen tree into a fresh one, sharing nothing
// with the source. The source stays usable.
func CloneTree(t *ImmutableTree) *ImmutableTree {
    return Freeze(CloneStmts(t.Stmts()))
}

// CloneStmts deep-copies a statement sequence.
func CloneStmts(stmts []Stmt) []Stmt {
    if stmts == nil {
        return nil
    }
    nb := make([]Stmt, len(stmts))
    for i, s := range stmts {
        nb[i] = CloneStmt(s)
    }
    return nb
}

// CloneStmt deep-copies a single statement.
func CloneStmt(s Stmt) Stmt {
    switch v := s.(type) {
        case *LocalStmt  : return &LocalStmt { Names: cloneNames(v.Names), Init: CloneExprs(v.Init) }
        case *AssignStmt : return &AssignStmt { Lhs: CloneExprs(v.Lhs), Rhs: CloneExprs(v.Rhs) }
        case *ExprStmt   : return &ExprStmt { X: CloneExpr(v.X) }
        case *IfStmt     : return &IfStmt { Cond: CloneExpr(v.Cond), Then: CloneStmts(v.Then), Else: CloneStmts(v.Else) }
        case *WhileStmt  : return &WhileStmt { Cond: CloneExpr(v.Cond), Body: CloneStmts(v.Body) }
        case *DoStmt     : return &DoStmt { Body: CloneStmts(v.Body) }
        case *ReturnStmt : return &ReturnStmt { Results: CloneExprs(v.Results) }
        case *BreakStmt  : return &BreakStmt{}
        case *ThrowStmt  : return &ThrowStmt { X: CloneExpr(v.X) }
        case *FuncStmt   : return &FuncStmt { Name: v.Name, Params: cloneNames(v.Params), Body: CloneStmts(v.Body), Exported: v.Exported }
        case *ImportStmt : return &ImportStmt { Local: v.Local, Symbol: v.Symbol, From: v.From, TypeOnly: v.TypeOnly }
        case *ExportStmt : return &ExportStmt { Name: v.Name, Local: v.Local, From: v.From, TypeOnly: v.TypeOnly }
        default          : panic(fmt.Sprintf("ast: invalid statement node: %v", s))
    }
}

// CloneExprs deep-copies an expression list.
func CloneExprs(vs []Expr) []Expr {
    if vs == nil {
        return nil
    }
    nb := make([]Expr, len(vs))
    for i, x := range vs {
        nb[i] = CloneExpr(x)
    }
    return nb
}

// CloneExpr deep-copies a single expression.
func CloneExpr(x Expr) Expr {
    switch v := x.(type) {
        case *Lit        : r := *v; return &r
        case *Name       : r := *v; return &r
        case *Binary     : return &Binary { Op: v.Op, L: CloneExpr(v.L), R: CloneExpr(v.R) }
        case *Unary      : return &Unary { Op: v.Op, X: CloneExpr(v.X) }
        case *Call       : return &Call { Fn: CloneExpr(v.Fn), Args: CloneExprs(v.Args) }
        case *MethodCall : return &MethodCall { Recv: CloneExpr(v.Recv), Name: v.Name, Args: CloneExprs(v.Args), RecvTy: v.RecvTy }
        case *StaticCall : return &StaticCall { Class: v.Class, Name: v.Name, Recv: CloneExpr(v.Recv), Args: CloneExprs(v.Args) }
        case *Index      : return &Index { X: CloneExpr(v.X), Key: CloneExpr(v.Key), XTy: v.XTy }
        case *Member     : return &Member { X: CloneExpr(v.X), Name: v.Name, XTy: v.XTy }
        case *Closure    : return &Closure { Params: cloneStrings(v.Params), Body: CloneStmts(v.Body), Captures: cloneStrings(v.Captures) }
        default          : panic(fmt.Sprintf("ast: invalid expression node: %v", x))
    }
}

func cloneNames(ns []*Name) []*Name {
    nb := make([]*Name, len(ns))
    for i, n := range ns {
        r := *n
        nb[i] = &r
    }
    return nb
}

func cloneStrings(ss []string) []string {
    if ss == nil {
        return nil
    }
    nb := make([]string, len(ss))
    copy(nb, ss)
    return nb
}
