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

// ImmutableTree is the frozen, arena-anchored statement sequence of one
// module. It is handed between pipeline stages as a whole, and it is
// consumed, not borrowed: IntoWorking moves its statements out and any
// later use of the consumed tree is a defect.
type ImmutableTree struct {
    arena    *Arena
    stmts    []Stmt
    consumed bool
}

// Freeze anchors a statement sequence into a fresh arena and returns
// the frozen tree. The input slice must not be used afterwards.
func Freeze(stmts []Stmt) *ImmutableTree {
    t := &ImmutableTree {
        arena: NewArena(),
        stmts: stmts,
    }
    anchorStmts(t.arena, stmts)
    return t
}

// Stmts exposes the frozen statements for read-only traversal.
func (self *ImmutableTree) Stmts() []Stmt {
    if self.consumed {
        panic("selene: use of a consumed tree")
    }
    return self.stmts
}

// Len reports the number of top-level statements.
func (self *ImmutableTree) Len() int {
    return len(self.Stmts())
}

// IntoWorking moves the statement sequence into a fresh WorkingTree,
// consuming the receiver. The move is total: exactly the statements of
// the frozen tree, in order, become the working sequence, and the
// frozen tree can never be observed again.
func (self *ImmutableTree) IntoWorking() *WorkingTree {
    if self.consumed {
        panic("selene: use of a consumed tree")
    }

    /* move the statements out */
    w := &WorkingTree {
        stmts: self.stmts,
        moved: countStmts(self.stmts),
    }

    /* sever the old tree, keeping the arena alive through the working
     * copy only */
    w.arena = self.arena
    self.stmts = nil
    self.arena = nil
    self.consumed = true
    return w
}

// WorkingTree is the resizable, in-place-mutable statement sequence a
// single optimization run rewrites. It exists only between IntoWorking
// and IntoImmutable.
type WorkingTree struct {
    arena *Arena
    stmts []Stmt
    moved int
    done  bool
}

// Stmts returns the mutable statement sequence.
func (self *WorkingTree) Stmts() []Stmt {
    if self.done {
        panic("selene: use of a finalized working tree")
    }
    return self.stmts
}

// Replace installs a rewritten top-level statement sequence.
func (self *WorkingTree) Replace(stmts []Stmt) {
    if self.done {
        panic("selene: use of a finalized working tree")
    }
    self.stmts = stmts
}

// IntoImmutable freezes the working sequence back into an arena-owned
// tree, consuming the receiver. Every retained node is re-anchored into
// the arena so no string storage of a discarded node stays reachable.
// A working tree that gained or lost statements no transform accounted
// for does not exist: transforms edit this sequence directly, so the
// sequence itself is the accounting.
func (self *WorkingTree) IntoImmutable() *ImmutableTree {
    if self.done {
        panic("selene: use of a finalized working tree")
    }

    /* re-anchor into a fresh arena, dropping storage of deleted nodes */
    na := NewArena()
    anchorStmts(na, self.stmts)

    /* freeze the sequence */
    t := &ImmutableTree {
        arena: na,
        stmts: self.stmts,
    }

    /* sever the working copy */
    self.stmts = nil
    self.arena = nil
    self.done = true
    return t
}

// countStmts counts every statement in the sequence, recursively. Used
// to audit that a pure conversion is total.
func countStmts(stmts []Stmt) int {
    n := 0
    for _, s := range stmts {
        n += 1 + countNested(s)
    }
    return n
}

func countNested(s Stmt) int {
    switch v := s.(type) {
        case *IfStmt    : return countStmts(v.Then) + countStmts(v.Else)
        case *WhileStmt : return countStmts(v.Body)
        case *DoStmt    : return countStmts(v.Body)
        case *FuncStmt  : return countStmts(v.Body)
        default         : return 0
    }
}

// AuditMove verifies that a pure move preserved the statement count. It
// is called by conversion tests and by the driver when invariant
// checking is on; a mismatch is a defect, never a recoverable error.
func (self *WorkingTree) AuditMove() {
    if self.done {
        panic("selene: use of a finalized working tree")
    }
    if n := countStmts(self.stmts); n != self.moved {
        panic(fmt.Sprintf("selene: non-total tree conversion: moved %d statements, found %d", self.moved, n))
    }
}

/* anchorStmts re-anchors every string reachable from the sequence */
func anchorStmts(a *Arena, stmts []Stmt) {
    for _, s := range stmts {
        anchorStmt(a, s)
    }
}

func anchorStmt(a *Arena, s Stmt) {
    switch v := s.(type) {
        case *LocalStmt:
            for _, n := range v.Names { anchorName(a, n) }
            for _, x := range v.Init  { anchorExpr(a, x) }
        case *AssignStmt:
            for _, x := range v.Lhs { anchorExpr(a, x) }
            for _, x := range v.Rhs { anchorExpr(a, x) }
        case *ExprStmt:
            anchorExpr(a, v.X)
        case *IfStmt:
            anchorExpr(a, v.Cond)
            anchorStmts(a, v.Then)
            anchorStmts(a, v.Else)
        case *WhileStmt:
            anchorExpr(a, v.Cond)
            anchorStmts(a, v.Body)
        case *DoStmt:
            anchorStmts(a, v.Body)
        case *ReturnStmt:
            for _, x := range v.Results { anchorExpr(a, x) }
        case *BreakStmt:
            break
        case *ThrowStmt:
            anchorExpr(a, v.X)
        case *FuncStmt:
            v.Name = a.Anchor(v.Name)
            for _, p := range v.Params { anchorName(a, p) }
            anchorStmts(a, v.Body)
        case *ImportStmt:
            v.Local  = a.Anchor(v.Local)
            v.Symbol = a.Anchor(v.Symbol)
            v.From   = a.Anchor(v.From)
        case *ExportStmt:
            v.Name  = a.Anchor(v.Name)
            v.Local = a.Anchor(v.Local)
            v.From  = a.Anchor(v.From)
        default:
            panic(fmt.Sprintf("ast: invalid statement node: %v", s))
    }
}

func anchorName(a *Arena, n *Name) {
    n.Ident = a.Anchor(n.Ident)
    n.Ty.Class = a.Anchor(n.Ty.Class)
}

func anchorExpr(a *Arena, x Expr) {
    switch v := x.(type) {
        case *Lit:
            if v.Kind == LitStr {
                v.Str = a.Anchor(v.Str)
            }
        case *Name:
            anchorName(a, v)
        case *Binary:
            anchorExpr(a, v.L)
            anchorExpr(a, v.R)
        case *Unary:
            anchorExpr(a, v.X)
        case *Call:
            anchorExpr(a, v.Fn)
            for _, p := range v.Args { anchorExpr(a, p) }
        case *MethodCall:
            v.Name = a.Anchor(v.Name)
            v.RecvTy.Class = a.Anchor(v.RecvTy.Class)
            anchorExpr(a, v.Recv)
            for _, p := range v.Args { anchorExpr(a, p) }
        case *StaticCall:
            v.Class = a.Anchor(v.Class)
            v.Name  = a.Anchor(v.Name)
            anchorExpr(a, v.Recv)
            for _, p := range v.Args { anchorExpr(a, p) }
        case *Index:
            v.XTy.Class = a.Anchor(v.XTy.Class)
            anchorExpr(a, v.X)
            anchorExpr(a, v.Key)
        case *Member:
            v.Name = a.Anchor(v.Name)
            v.XTy.Class = a.Anchor(v.XTy.Class)
            anchorExpr(a, v.X)
        case *Closure:
            for i, p := range v.Params   { v.Params[i]   = a.Anchor(p) }
            for i, c := range v.Captures { v.Captures[i] = a.Anchor(c) }
            anchorStmts(a, v.Body)
        default:
            panic(fmt.Sprintf("ast: invalid expression node: %v", x))
    }
}
