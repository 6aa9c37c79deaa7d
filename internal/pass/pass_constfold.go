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
    `math`

    `github.com/selene-lang/selene/internal/ast`
    `github.com/selene-lang/selene/internal/flow`
    `github.com/selene-lang/selene/internal/opts`
)

// ConstFold evaluates constant subexpressions and applies the safe
// algebraic identities. Folding is bottom-up, so one run reaches the
// fixed point of any literal tree.
type ConstFold struct{}

func (ConstFold) Name     () string              { return "Constant Folding" }
func (ConstFold) Kind     () Kind                { return KindTransform }
func (ConstFold) Priority () Priority            { return PrioSimplify }
func (ConstFold) MinLevel () opts.Level          { return opts.LevelMinimal }
func (ConstFold) Requires () []flow.AnalysisKind { return nil }
func (ConstFold) Enabled  (*opts.Options) bool   { return true }

func (self ConstFold) Run(ctx *Context) bool {
    return rewriteAllExprs(ctx.Stmts(), self.fold)
}

func (self ConstFold) fold(x ast.Expr) (ast.Expr, bool) {
    switch v := x.(type) {
        case *ast.Binary : return self.foldBinary(v)
        case *ast.Unary  : return self.foldUnary(v)
        default          : return x, false
    }
}

func (self ConstFold) foldBinary(v *ast.Binary) (ast.Expr, bool) {
    l, lok := v.L.(*ast.Lit)
    r, rok := v.R.(*ast.Lit)

    /* short-circuit operators only need the left side */
    if lok && v.Op == ast.AndOp {
        if l.Truthy() {
            return v.R, true
        } else {
            return l, true
        }
    }
    if lok && v.Op == ast.OrOp {
        if l.Truthy() {
            return l, true
        } else {
            return v.R, true
        }
    }

    /* algebraic identities over statically typed integers */
    if rok && isIntLit(r, 0) && isIntExpr(v.L) && (v.Op == ast.AddOp || v.Op == ast.SubOp) {
        return v.L, true
    }
    if lok && isIntLit(l, 0) && isIntExpr(v.R) && v.Op == ast.AddOp {
        return v.R, true
    }
    if rok && isIntLit(r, 1) && isIntExpr(v.L) && v.Op == ast.MulOp {
        return v.L, true
    }
    if lok && isIntLit(l, 1) && isIntExpr(v.R) && v.Op == ast.MulOp {
        return v.R, true
    }

    /* everything below needs both sides constant */
    if !lok || !rok {
        return v, false
    }

    /* equality works on every literal */
    switch v.Op {
        case ast.EqOp : return ast.Bool(literalEqual(l, r)), true
        case ast.NeOp : return ast.Bool(!literalEqual(l, r)), true
    }

    /* string concatenation */
    if v.Op == ast.ConcatOp && l.Kind == ast.LitStr && r.Kind == ast.LitStr {
        return ast.Str(l.Str + r.Str), true
    }

    /* integer arithmetic and ordering */
    if l.Kind == ast.LitInt && r.Kind == ast.LitInt {
        return self.foldInts(v, l.Int, r.Int)
    }

    /* float arithmetic and ordering, mixed operands promote */
    if isNumLit(l) && isNumLit(r) {
        return self.foldFloats(v, numValue(l), numValue(r))
    }
    return v, false
}

func (self ConstFold) foldInts(v *ast.Binary, a int64, b int64) (ast.Expr, bool) {
    switch v.Op {
        case ast.AddOp : return ast.Int(a + b), true
        case ast.SubOp : return ast.Int(a - b), true
        case ast.MulOp : return ast.Int(a * b), true
        case ast.LtOp  : return ast.Bool(a < b), true
        case ast.LeOp  : return ast.Bool(a <= b), true
        case ast.GtOp  : return ast.Bool(a > b), true
        case ast.GeOp  : return ast.Bool(a >= b), true
        case ast.DivOp : return self.foldIntDiv(v, a, b)
        case ast.ModOp : return self.foldIntMod(v, a, b)
        default        : return v, false
    }
}

/* division by a constant zero stays in the tree: it must keep raising
 * its runtime error */
func (self ConstFold) foldIntDiv(v *ast.Binary, a int64, b int64) (ast.Expr, bool) {
    if b == 0 {
        return v, false
    }
    return ast.Int(floorDiv(a, b)), true
}

func (self ConstFold) foldIntMod(v *ast.Binary, a int64, b int64) (ast.Expr, bool) {
    if b == 0 {
        return v, false
    }
    return ast.Int(a - floorDiv(a, b) * b), true
}

func (self ConstFold) foldFloats(v *ast.Binary, a float64, b float64) (ast.Expr, bool) {
    switch v.Op {
        case ast.AddOp : return ast.Float(a + b), true
        case ast.SubOp : return ast.Float(a - b), true
        case ast.MulOp : return ast.Float(a * b), true
        case ast.DivOp : return ast.Float(a / b), true
        case ast.ModOp : return ast.Float(a - math.Floor(a / b) * b), true
        case ast.LtOp  : return ast.Bool(a < b), true
        case ast.LeOp  : return ast.Bool(a <= b), true
        case ast.GtOp  : return ast.Bool(a > b), true
        case ast.GeOp  : return ast.Bool(a >= b), true
        default        : return v, false
    }
}

func (self ConstFold) foldUnary(v *ast.Unary) (ast.Expr, bool) {
    l, ok := v.X.(*ast.Lit)
    if !ok {
        return v, false
    }
    switch v.Op {
        case ast.NotOp:
            return ast.Bool(!l.Truthy()), true
        case ast.NegOp:
            switch l.Kind {
                case ast.LitInt   : return ast.Int(-l.Int), true
                case ast.LitFloat : return ast.Float(-l.Num), true
                default           : return v, false
            }
        case ast.LenOp:
            if l.Kind == ast.LitStr {
                return ast.Int(int64(len(l.Str))), true
            } else {
                return v, false
            }
        default:
            return v, false
    }
}

func literalEqual(a *ast.Lit, b *ast.Lit) bool {
    if isNumLit(a) && isNumLit(b) {
        return numValue(a) == numValue(b)
    } else {
        return *a == *b
    }
}

func isNumLit(v *ast.Lit) bool {
    return v.Kind == ast.LitInt || v.Kind == ast.LitFloat
}

func numValue(v *ast.Lit) float64 {
    if v.Kind == ast.LitInt {
        return float64(v.Int)
    } else {
        return v.Num
    }
}

func isIntLit(v *ast.Lit, n int64) bool {
    return v.Kind == ast.LitInt && v.Int == n
}

func isIntExpr(x ast.Expr) bool {
    switch v := x.(type) {
        case *ast.Lit  : return v.Kind == ast.LitInt
        case *ast.Name : return v.Ty.Kind == ast.TypeInt
        default        : return false
    }
}

func floorDiv(a int64, b int64) int64 {
    q := a / b
    if (a % b != 0) && ((a < 0) != (b < 0)) {
        q--
    }
    return q
}
