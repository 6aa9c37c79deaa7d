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
    `github.com/selene-lang/selene/internal/ast`
)

// SideEffectClass orders expression effects from provably inert to
// completely unknown. Classification joins upward: when in doubt the
// answer is EffOpaque, which blocks every reordering or elimination
// that depends on it.
type SideEffectClass uint8

const (
    EffPure SideEffectClass = iota
    EffReadsOnly
    EffMayThrow
    EffMayMutateShared
    EffOpaque
)

func (self SideEffectClass) String() string {
    switch self {
        case EffPure            : return "pure"
        case EffReadsOnly       : return "reads-only"
        case EffMayThrow        : return "may-throw"
        case EffMayMutateShared : return "may-mutate-shared"
        default                 : return "opaque"
    }
}

// Join returns the more conservative of two classes.
func (self SideEffectClass) Join(other SideEffectClass) SideEffectClass {
    if other > self {
        return other
    } else {
        return self
    }
}

// Removable reports whether evaluating an expression of this class can
// be skipped without changing observable behavior.
func (self SideEffectClass) Removable() bool {
    return self <= EffReadsOnly
}

// Effects classifies expression and statement effects for one scope.
// Known maps statically resolved callees (plain functions by name,
// class methods as "Class.method") to their proven class; any callee
// absent from the map is EffOpaque.
type Effects struct {
    Known map[string]SideEffectClass
}

// BuildEffects seeds the effect table from the function declarations
// of the scope itself: a declared function whose body only performs
// removable work gets the class of its body, everything else stays
// out of the table and thus EffOpaque.
func BuildEffects(stmts []ast.Stmt) *Effects {
    et := &Effects {
        Known: make(map[string]SideEffectClass),
    }

    /* two rounds: a function calling another local function resolves
     * once its callee is classified in the first round */
    for i := 0; i < 2; i++ {
        ast.WalkStmts(stmts, func(s ast.Stmt) bool {
            if fn, ok := s.(*ast.FuncStmt); ok {
                et.Known[fn.Name] = et.bodyClass(fn.Body)
            }
            return true
        })
    }
    return et
}

func (self *Effects) bodyClass(body []ast.Stmt) SideEffectClass {
    r := EffPure
    ast.WalkStmts(body, func(s ast.Stmt) bool {
        r = r.Join(self.OfStmt(s))
        return true
    })
    return r
}

// OfStmt classifies the direct effect of one statement, not counting
// nested statement bodies.
func (self *Effects) OfStmt(s ast.Stmt) SideEffectClass {
    switch v := s.(type) {
        case *ast.LocalStmt:
            r := EffPure
            for _, x := range v.Init { r = r.Join(self.OfExpr(x)) }
            return r
        case *ast.AssignStmt:
            r := EffPure
            for _, x := range v.Rhs { r = r.Join(self.OfExpr(x)) }
            for _, x := range v.Lhs { r = r.Join(self.ofStore(x)) }
            return r
        case *ast.ExprStmt:
            return self.OfExpr(v.X)
        case *ast.IfStmt:
            return self.OfExpr(v.Cond)
        case *ast.WhileStmt:
            return self.OfExpr(v.Cond)
        case *ast.DoStmt:
            return EffPure
        case *ast.ReturnStmt:
            r := EffPure
            for _, x := range v.Results { r = r.Join(self.OfExpr(x)) }
            return r
        case *ast.BreakStmt:
            return EffPure
        case *ast.ThrowStmt:
            return self.OfExpr(v.X).Join(EffMayThrow)
        case *ast.FuncStmt:
            return EffPure
        case *ast.ImportStmt:
            return EffOpaque
        case *ast.ExportStmt:
            return EffMayMutateShared
        default:
            return EffOpaque
    }
}

// OfExpr classifies an expression bottom-up.
func (self *Effects) OfExpr(x ast.Expr) SideEffectClass {
    switch v := x.(type) {
        case *ast.Lit:
            return EffPure
        case *ast.Name:
            return EffPure
        case *ast.Closure:
            return EffPure
        case *ast.Binary:
            return self.ofBinary(v)
        case *ast.Unary:
            return self.ofUnary(v)
        case *ast.Call:
            return self.ofCall(v)
        case *ast.MethodCall:
            return self.ofMethod(v)
        case *ast.StaticCall:
            return self.ofStatic(v)
        case *ast.Index:
            return self.ofIndex(v)
        case *ast.Member:
            return self.ofMember(v)
        default:
            return EffOpaque
    }
}

/* arithmetic over statically numeric operands cannot trap, anything
 * else may invoke an arbitrary metamethod */
func (self *Effects) ofBinary(v *ast.Binary) SideEffectClass {
    r := self.OfExpr(v.L).Join(self.OfExpr(v.R))
    switch v.Op {
        case ast.AndOp, ast.OrOp:
            return r
        case ast.EqOp, ast.NeOp:
            return r
        case ast.ConcatOp:
            if isStrOperand(v.L) && isStrOperand(v.R) {
                return r
            } else {
                return r.Join(EffOpaque)
            }
        default:
            if isNumOperand(v.L) && isNumOperand(v.R) {
                return r
            } else {
                return r.Join(EffOpaque)
            }
    }
}

func (self *Effects) ofUnary(v *ast.Unary) SideEffectClass {
    r := self.OfExpr(v.X)
    switch v.Op {
        case ast.NotOp:
            return r
        case ast.NegOp:
            if isNumOperand(v.X) {
                return r
            } else {
                return r.Join(EffOpaque)
            }
        default:
            if t := exprType(v.X); t.Kind == ast.TypeStr || t.Kind == ast.TypeTable {
                return r.Join(EffReadsOnly)
            } else {
                return r.Join(EffOpaque)
            }
    }
}

/* a call to a function lacking a statically known effect class is
 * opaque, full stop */
func (self *Effects) ofCall(v *ast.Call) SideEffectClass {
    r := self.OfExpr(v.Fn)
    for _, p := range v.Args {
        r = r.Join(self.OfExpr(p))
    }
    if n, ok := v.Fn.(*ast.Name); ok {
        if c, ok := self.Known[n.Ident]; ok {
            return r.Join(c)
        }
    }
    return EffOpaque
}

func (self *Effects) ofMethod(v *ast.MethodCall) SideEffectClass {
    r := self.OfExpr(v.Recv)
    for _, p := range v.Args {
        r = r.Join(self.OfExpr(p))
    }
    if v.RecvTy.Kind == ast.TypeClass {
        if c, ok := self.Known[v.RecvTy.Class + "." + v.Name]; ok {
            return r.Join(c)
        }
    }
    return EffOpaque
}

func (self *Effects) ofStatic(v *ast.StaticCall) SideEffectClass {
    r := self.OfExpr(v.Recv)
    for _, p := range v.Args {
        r = r.Join(self.OfExpr(p))
    }
    if c, ok := self.Known[v.Class + "." + v.Name]; ok {
        return r.Join(c)
    }
    return EffOpaque
}

/* container reads through a known table or class type only read, an
 * unknown receiver may run an arbitrary index metamethod */
func (self *Effects) ofIndex(v *ast.Index) SideEffectClass {
    r := self.OfExpr(v.X).Join(self.OfExpr(v.Key))
    if v.XTy.Kind == ast.TypeTable || v.XTy.Kind == ast.TypeClass {
        return r.Join(EffReadsOnly)
    } else {
        return r.Join(EffOpaque)
    }
}

func (self *Effects) ofMember(v *ast.Member) SideEffectClass {
    r := self.OfExpr(v.X)
    if v.XTy.Kind == ast.TypeTable || v.XTy.Kind == ast.TypeClass {
        return r.Join(EffReadsOnly)
    } else {
        return r.Join(EffOpaque)
    }
}

/* a store through a plain local name is invisible to the outside, any
 * other target mutates shared storage */
func (self *Effects) ofStore(x ast.Expr) SideEffectClass {
    switch v := x.(type) {
        case *ast.Name:
            if v.Captured {
                return EffMayMutateShared
            } else {
                return EffPure
            }
        case *ast.Index:
            return self.OfExpr(v.X).Join(self.OfExpr(v.Key)).Join(EffMayMutateShared)
        case *ast.Member:
            return self.OfExpr(v.X).Join(EffMayMutateShared)
        default:
            return EffOpaque
    }
}

func exprType(x ast.Expr) ast.Type {
    switch v := x.(type) {
        case *ast.Lit    : return v.Type()
        case *ast.Name   : return v.Ty
        case *ast.Index  : return ast.Type { Kind: ast.TypeUnknown }
        case *ast.Member : return ast.Type { Kind: ast.TypeUnknown }
        default          : return ast.Type { Kind: ast.TypeUnknown }
    }
}

func isNumOperand(x ast.Expr) bool {
    t := exprType(x)
    return t.Kind == ast.TypeInt || t.Kind == ast.TypeFloat
}

func isStrOperand(x ast.Expr) bool {
    return exprType(x).Kind == ast.TypeStr
}
