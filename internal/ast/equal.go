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
    `encoding/binary`
    `hash`
    `hash/fnv`
    `math`
)

// EqualTrees reports structural equality of two frozen trees.
func EqualTrees(a *ImmutableTree, b *ImmutableTree) bool {
    return EqualStmts(a.Stmts(), b.Stmts())
}

// EqualStmts reports structural equality of two statement sequences.
// Type annotations participate, capture flags do not: renaming-free
// transforms never touch them.
func EqualStmts(a []Stmt, b []Stmt) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if !EqualStmt(a[i], b[i]) {
            return false
        }
    }
    return true
}

// EqualStmt reports structural equality of two statements.
func EqualStmt(a Stmt, b Stmt) bool {
    switch x := a.(type) {
        case *LocalStmt:
            y, ok := b.(*LocalStmt)
            return ok && equalNames(x.Names, y.Names) && EqualExprs(x.Init, y.Init)
        case *AssignStmt:
            y, ok := b.(*AssignStmt)
            return ok && EqualExprs(x.Lhs, y.Lhs) && EqualExprs(x.Rhs, y.Rhs)
        case *ExprStmt:
            y, ok := b.(*ExprStmt)
            return ok && EqualExpr(x.X, y.X)
        case *IfStmt:
            y, ok := b.(*IfStmt)
            return ok && EqualExpr(x.Cond, y.Cond) && EqualStmts(x.Then, y.Then) && EqualStmts(x.Else, y.Else)
        case *WhileStmt:
            y, ok := b.(*WhileStmt)
            return ok && EqualExpr(x.Cond, y.Cond) && EqualStmts(x.Body, y.Body)
        case *DoStmt:
            y, ok := b.(*DoStmt)
            return ok && EqualStmts(x.Body, y.Body)
        case *ReturnStmt:
            y, ok := b.(*ReturnStmt)
            return ok && EqualExprs(x.Results, y.Results)
        case *BreakStmt:
            _, ok := b.(*BreakStmt)
            return ok
        case *ThrowStmt:
            y, ok := b.(*ThrowStmt)
            return ok && EqualExpr(x.X, y.X)
        case *FuncStmt:
            y, ok := b.(*FuncStmt)
            return ok && x.Name == y.Name && x.Exported == y.Exported && equalNames(x.Params, y.Params) && EqualStmts(x.Body, y.Body)
        case *ImportStmt:
            y, ok := b.(*ImportStmt)
            return ok && *x == *y
        case *ExportStmt:
            y, ok := b.(*ExportStmt)
            return ok && *x == *y
        default:
            return false
    }
}

// EqualExprs reports structural equality of two expression lists.
func EqualExprs(a []Expr, b []Expr) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if !EqualExpr(a[i], b[i]) {
            return false
        }
    }
    return true
}

// EqualExpr reports structural equality of two expressions.
func EqualExpr(a Expr, b Expr) bool {
    switch x := a.(type) {
        case *Lit:
            y, ok := b.(*Lit)
            return ok && *x == *y
        case *Name:
            y, ok := b.(*Name)
            return ok && x.Ident == y.Ident && x.Ty == y.Ty
        case *Binary:
            y, ok := b.(*Binary)
            return ok && x.Op == y.Op && EqualExpr(x.L, y.L) && EqualExpr(x.R, y.R)
        case *Unary:
            y, ok := b.(*Unary)
            return ok && x.Op == y.Op && EqualExpr(x.X, y.X)
        case *Call:
            y, ok := b.(*Call)
            return ok && EqualExpr(x.Fn, y.Fn) && EqualExprs(x.Args, y.Args)
        case *MethodCall:
            y, ok := b.(*MethodCall)
            return ok && x.Name == y.Name && x.RecvTy == y.RecvTy && EqualExpr(x.Recv, y.Recv) && EqualExprs(x.Args, y.Args)
        case *StaticCall:
            y, ok := b.(*StaticCall)
            return ok && x.Class == y.Class && x.Name == y.Name && EqualExpr(x.Recv, y.Recv) && EqualExprs(x.Args, y.Args)
        case *Index:
            y, ok := b.(*Index)
            return ok && x.XTy == y.XTy && EqualExpr(x.X, y.X) && EqualExpr(x.Key, y.Key)
        case *Member:
            y, ok := b.(*Member)
            return ok && x.Name == y.Name && x.XTy == y.XTy && EqualExpr(x.X, y.X)
        case *Closure:
            y, ok := b.(*Closure)
            return ok && equalStrings(x.Params, y.Params) && EqualStmts(x.Body, y.Body)
        default:
            return false
    }
}

func equalNames(a []*Name, b []*Name) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if a[i].Ident != b[i].Ident || a[i].Ty != b[i].Ty {
            return false
        }
    }
    return true
}

func equalStrings(a []string, b []string) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if a[i] != b[i] {
            return false
        }
    }
    return true
}

// Fingerprint hashes the structure of a statement sequence. Two
// sequences with equal fingerprints are structurally equal for every
// practical purpose; the driver uses it to catch transforms that mutate
// the tree while reporting no change.
func Fingerprint(stmts []Stmt) uint64 {
    h := fnv.New64a()
    hashStmts(h, stmts)
    return h.Sum64()
}

func hashTag(h hash.Hash64, t byte) {
    h.Write([]byte { t })
}

func hashInt(h hash.Hash64, v int64) {
    var b [8]byte
    binary.LittleEndian.PutUint64(b[:], uint64(v))
    h.Write(b[:])
}

func hashStr(h hash.Hash64, s string) {
    hashInt(h, int64(len(s)))
    h.Write([]byte(s))
}

func hashType(h hash.Hash64, t Type) {
    hashTag(h, byte(t.Kind))
    hashStr(h, t.Class)
}

func hashStmts(h hash.Hash64, stmts []Stmt) {
    hashInt(h, int64(len(stmts)))
    for _, s := range stmts {
        hashStmt(h, s)
    }
}

func hashStmt(h hash.Hash64, s Stmt) {
    switch v := s.(type) {
        case *LocalStmt:
            hashTag(h, 0x01)
            hashInt(h, int64(len(v.Names)))
            for _, n := range v.Names { hashStr(h, n.Ident); hashType(h, n.Ty) }
            hashExprs(h, v.Init)
        case *AssignStmt:
            hashTag(h, 0x02)
            hashExprs(h, v.Lhs)
            hashExprs(h, v.Rhs)
        case *ExprStmt:
            hashTag(h, 0x03)
            hashExpr(h, v.X)
        case *IfStmt:
            hashTag(h, 0x04)
            hashExpr(h, v.Cond)
            hashStmts(h, v.Then)
            hashStmts(h, v.Else)
        case *WhileStmt:
            hashTag(h, 0x05)
            hashExpr(h, v.Cond)
            hashStmts(h, v.Body)
        case *DoStmt:
            hashTag(h, 0x06)
            hashStmts(h, v.Body)
        case *ReturnStmt:
            hashTag(h, 0x07)
            hashExprs(h, v.Results)
        case *BreakStmt:
            hashTag(h, 0x08)
        case *ThrowStmt:
            hashTag(h, 0x09)
            hashExpr(h, v.X)
        case *FuncStmt:
            hashTag(h, 0x0a)
            hashStr(h, v.Name)
            hashInt(h, int64(len(v.Params)))
            for _, p := range v.Params { hashStr(h, p.Ident); hashType(h, p.Ty) }
            hashStmts(h, v.Body)
        case *ImportStmt:
            hashTag(h, 0x0b)
            hashStr(h, v.Local)
            hashStr(h, v.Symbol)
            hashStr(h, v.From)
        case *ExportStmt:
            hashTag(h, 0x0c)
            hashStr(h, v.Name)
            hashStr(h, v.Local)
            hashStr(h, v.From)
        default:
            panic("ast: invalid statement node")
    }
}

func hashExprs(h hash.Hash64, vs []Expr) {
    hashInt(h, int64(len(vs)))
    for _, x := range vs {
        hashExpr(h, x)
    }
}

func hashExpr(h hash.Hash64, x Expr) {
    switch v := x.(type) {
        case *Lit:
            hashTag(h, 0x81)
            hashTag(h, byte(v.Kind))
            hashInt(h, v.Int)
            hashInt(h, int64(math.Float64bits(v.Num)))
            hashStr(h, v.Str)
        case *Name:
            hashTag(h, 0x82)
            hashStr(h, v.Ident)
            hashType(h, v.Ty)
        case *Binary:
            hashTag(h, 0x83)
            hashTag(h, byte(v.Op))
            hashExpr(h, v.L)
            hashExpr(h, v.R)
        case *Unary:
            hashTag(h, 0x84)
            hashTag(h, byte(v.Op))
            hashExpr(h, v.X)
        case *Call:
            hashTag(h, 0x85)
            hashExpr(h, v.Fn)
            hashExprs(h, v.Args)
        case *MethodCall:
            hashTag(h, 0x86)
            hashStr(h, v.Name)
            hashType(h, v.RecvTy)
            hashExpr(h, v.Recv)
            hashExprs(h, v.Args)
        case *StaticCall:
            hashTag(h, 0x87)
            hashStr(h, v.Class)
            hashStr(h, v.Name)
            hashExpr(h, v.Recv)
            hashExprs(h, v.Args)
        case *Index:
            hashTag(h, 0x88)
            hashType(h, v.XTy)
            hashExpr(h, v.X)
            hashExpr(h, v.Key)
        case *Member:
            hashTag(h, 0x89)
            hashStr(h, v.Name)
            hashType(h, v.XTy)
            hashExpr(h, v.X)
        case *Closure:
            hashTag(h, 0x8a)
            hashInt(h, int64(len(v.Params)))
            for _, p := range v.Params { hashStr(h, p) }
            hashStmts(h, v.Body)
        default:
            panic("ast: invalid expression node")
    }
}
