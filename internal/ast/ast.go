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
    `strconv`
    `strings`
)

// Node is implemented by every syntax node.
type Node interface {
    fmt.Stringer
}

// Expr is implemented by every expression node.
type Expr interface {
    Node
    exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
    Node
    stmtNode()
}

// TypeKind enumerates the static types the checker can attach to an
// expression. TypeUnknown is the absence of information, every consumer
// must treat it as "could be anything".
type TypeKind uint8

const (
    TypeUnknown TypeKind = iota
    TypeNil
    TypeBool
    TypeInt
    TypeFloat
    TypeStr
    TypeTable
    TypeFunc
    TypeClass
)

// Type is the checker-assigned static type of an expression.
type Type struct {
    Kind  TypeKind
    Class string
}

func (self Type) IsKnown() bool {
    return self.Kind != TypeUnknown
}

func (self Type) String() string {
    switch self.Kind {
        case TypeNil     : return "nil"
        case TypeBool    : return "bool"
        case TypeInt     : return "int"
        case TypeFloat   : return "float"
        case TypeStr     : return "str"
        case TypeTable   : return "table"
        case TypeFunc    : return "func"
        case TypeClass   : return "class " + self.Class
        default          : return "unknown"
    }
}

// LitKind enumerates literal constants.
type LitKind uint8

const (
    LitNil LitKind = iota
    LitTrue
    LitFalse
    LitInt
    LitFloat
    LitStr
)

// Lit is a literal constant expression.
type Lit struct {
    Kind LitKind
    Int  int64
    Num  float64
    Str  string
}

func Nil()              *Lit { return &Lit { Kind: LitNil } }
func Int(v int64)       *Lit { return &Lit { Kind: LitInt, Int: v } }
func Str(v string)      *Lit { return &Lit { Kind: LitStr, Str: v } }
func Float(v float64)   *Lit { return &Lit { Kind: LitFloat, Num: v } }

func Bool(v bool) *Lit {
    if v {
        return &Lit { Kind: LitTrue }
    } else {
        return &Lit { Kind: LitFalse }
    }
}

// Truthy reports whether the literal is true under the runtime's
// truth rule: everything except nil and false is true.
func (self *Lit) Truthy() bool {
    return self.Kind != LitNil && self.Kind != LitFalse
}

func (self *Lit) Type() Type {
    switch self.Kind {
        case LitNil   : return Type { Kind: TypeNil }
        case LitInt   : return Type { Kind: TypeInt }
        case LitStr   : return Type { Kind: TypeStr }
        case LitFloat : return Type { Kind: TypeFloat }
        default       : return Type { Kind: TypeBool }
    }
}

func (self *Lit) String() string {
    switch self.Kind {
        case LitNil   : return "nil"
        case LitTrue  : return "true"
        case LitFalse : return "false"
        case LitInt   : return strconv.FormatInt(self.Int, 10)
        case LitFloat : return strconv.FormatFloat(self.Num, 'g', -1, 64)
        case LitStr   : return strconv.Quote(self.Str)
        default       : panic("ast: invalid literal kind")
    }
}

// Name is a reference to a local binding, a parameter, or an imported
// symbol. Captured marks names that are closed over by at least one
// nested closure, which makes every write through them observable.
type Name struct {
    Ident    string
    Ty       Type
    Captured bool
}

func (self *Name) String() string {
    return self.Ident
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
    AddOp BinOp = iota
    SubOp
    MulOp
    DivOp
    ModOp
    ConcatOp
    EqOp
    NeOp
    LtOp
    LeOp
    GtOp
    GeOp
    AndOp
    OrOp
)

func (self BinOp) String() string {
    switch self {
        case AddOp    : return "+"
        case SubOp    : return "-"
        case MulOp    : return "*"
        case DivOp    : return "/"
        case ModOp    : return "%"
        case ConcatOp : return ".."
        case EqOp     : return "=="
        case NeOp     : return "~="
        case LtOp     : return "<"
        case LeOp     : return "<="
        case GtOp     : return ">"
        case GeOp     : return ">="
        case AndOp    : return "and"
        case OrOp     : return "or"
        default       : panic("ast: invalid binary operator")
    }
}

// UnOp enumerates unary operators.
type UnOp uint8

const (
    NegOp UnOp = iota
    NotOp
    LenOp
)

func (self UnOp) String() string {
    switch self {
        case NegOp : return "-"
        case NotOp : return "not "
        case LenOp : return "#"
        default    : panic("ast: invalid unary operator")
    }
}

// Binary is a binary operator application.
type Binary struct {
    Op BinOp
    L  Expr
    R  Expr
}

func (self *Binary) String() string {
    return fmt.Sprintf("(%s %s %s)", self.L, self.Op, self.R)
}

// Unary is a unary operator application.
type Unary struct {
    Op UnOp
    X  Expr
}

func (self *Unary) String() string {
    return fmt.Sprintf("(%s%s)", self.Op, self.X)
}

// Call is a plain function call through a first-class callee.
type Call struct {
    Fn   Expr
    Args []Expr
}

func (self *Call) String() string {
    return fmt.Sprintf("%s(%s)", self.Fn, exprList(self.Args))
}

// MethodCall is a virtually dispatched method invocation. RecvTy is the
// checker's static type of the receiver; dispatch stays dynamic until a
// rewrite proves the target.
type MethodCall struct {
    Recv   Expr
    Name   string
    Args   []Expr
    RecvTy Type
}

func (self *MethodCall) String() string {
    return fmt.Sprintf("%s:%s(%s)", self.Recv, self.Name, exprList(self.Args))
}

// StaticCall is a direct call of a known class method, the result of
// devirtualizing a MethodCall. The receiver becomes the first argument.
type StaticCall struct {
    Class string
    Name  string
    Recv  Expr
    Args  []Expr
}

func (self *StaticCall) String() string {
    return fmt.Sprintf("%s.%s(%s)", self.Class, self.Name, exprList(append([]Expr { self.Recv }, self.Args...)))
}

// Index is a dynamic container subscript.
type Index struct {
    X    Expr
    Key  Expr
    XTy  Type
}

func (self *Index) String() string {
    return fmt.Sprintf("%s[%s]", self.X, self.Key)
}

// Member is a field access through a dot.
type Member struct {
    X    Expr
    Name string
    XTy  Type
}

func (self *Member) String() string {
    return fmt.Sprintf("%s.%s", self.X, self.Name)
}

// Closure is an anonymous function literal. Captures lists the outer
// bindings the body refers to.
type Closure struct {
    Params   []string
    Body     []Stmt
    Captures []string
}

func (self *Closure) String() string {
    return fmt.Sprintf("function(%s) ... end", strings.Join(self.Params, ", "))
}

func (*Lit)        exprNode() {}
func (*Name)       exprNode() {}
func (*Binary)     exprNode() {}
func (*Unary)      exprNode() {}
func (*Call)       exprNode() {}
func (*MethodCall) exprNode() {}
func (*StaticCall) exprNode() {}
func (*Index)      exprNode() {}
func (*Member)     exprNode() {}
func (*Closure)    exprNode() {}

// LocalStmt introduces new local bindings, with optional initializers.
type LocalStmt struct {
    Names []*Name
    Init  []Expr
}

func (self *LocalStmt) String() string {
    nb := make([]string, len(self.Names))
    for i, n := range self.Names { nb[i] = n.Ident }
    if len(self.Init) == 0 {
        return "local " + strings.Join(nb, ", ")
    } else {
        return fmt.Sprintf("local %s = %s", strings.Join(nb, ", "), exprList(self.Init))
    }
}

// AssignStmt assigns values to existing storage locations.
type AssignStmt struct {
    Lhs []Expr
    Rhs []Expr
}

func (self *AssignStmt) String() string {
    return fmt.Sprintf("%s = %s", exprList(self.Lhs), exprList(self.Rhs))
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
    X Expr
}

func (self *ExprStmt) String() string {
    return self.X.String()
}

// IfStmt is a two-armed conditional, either arm may be empty.
type IfStmt struct {
    Cond Expr
    Then []Stmt
    Else []Stmt
}

func (self *IfStmt) String() string {
    if len(self.Else) == 0 {
        return fmt.Sprintf("if %s then <%d stmts> end", self.Cond, len(self.Then))
    } else {
        return fmt.Sprintf("if %s then <%d stmts> else <%d stmts> end", self.Cond, len(self.Then), len(self.Else))
    }
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
    Cond Expr
    Body []Stmt
}

func (self *WhileStmt) String() string {
    return fmt.Sprintf("while %s do <%d stmts> end", self.Cond, len(self.Body))
}

// DoStmt is an explicit nested scope.
type DoStmt struct {
    Body []Stmt
}

func (self *DoStmt) String() string {
    return fmt.Sprintf("do <%d stmts> end", len(self.Body))
}

// ReturnStmt leaves the enclosing function (or module chunk).
type ReturnStmt struct {
    Results []Expr
}

func (self *ReturnStmt) String() string {
    if len(self.Results) == 0 {
        return "return"
    } else {
        return "return " + exprList(self.Results)
    }
}

// BreakStmt leaves the innermost loop.
type BreakStmt struct{}

func (self *BreakStmt) String() string {
    return "break"
}

// ThrowStmt raises a runtime error.
type ThrowStmt struct {
    X Expr
}

func (self *ThrowStmt) String() string {
    return fmt.Sprintf("error(%s)", self.X)
}

// FuncStmt declares a named function at statement level.
type FuncStmt struct {
    Name     string
    Params   []*Name
    Body     []Stmt
    Exported bool
}

func (self *FuncStmt) String() string {
    pb := make([]string, len(self.Params))
    for i, p := range self.Params { pb[i] = p.Ident }
    return fmt.Sprintf("function %s(%s) <%d stmts> end", self.Name, strings.Join(pb, ", "), len(self.Body))
}

// ImportStmt binds a symbol exported by another module to a local name.
// It lowers to a runtime require of the source module.
type ImportStmt struct {
    Local    string
    Symbol   string
    From     string
    TypeOnly bool
}

func (self *ImportStmt) String() string {
    return fmt.Sprintf("local %s = require(%q).%s", self.Local, self.From, self.Symbol)
}

// ExportStmt exposes a local binding under an exported name. A non-empty
// From makes it a re-export of another module's symbol instead.
type ExportStmt struct {
    Name     string
    Local    string
    From     string
    TypeOnly bool
}

// Binding is the local name the export resolves through: Local when
// present, the exported name otherwise.
func (self *ExportStmt) Binding() string {
    if self.Local != "" {
        return self.Local
    } else {
        return self.Name
    }
}

func (self *ExportStmt) String() string {
    if self.From == "" {
        return fmt.Sprintf("exports.%s = %s", self.Name, self.Local)
    } else {
        return fmt.Sprintf("exports.%s = require(%q).%s", self.Name, self.From, self.Local)
    }
}

func (*LocalStmt)  stmtNode() {}
func (*AssignStmt) stmtNode() {}
func (*ExprStmt)   stmtNode() {}
func (*IfStmt)     stmtNode() {}
func (*WhileStmt)  stmtNode() {}
func (*DoStmt)     stmtNode() {}
func (*ReturnStmt) stmtNode() {}
func (*BreakStmt)  stmtNode() {}
func (*ThrowStmt)  stmtNode() {}
func (*FuncStmt)   stmtNode() {}
func (*ImportStmt) stmtNode() {}
func (*ExportStmt) stmtNode() {}

func exprList(vs []Expr) string {
    nb := make([]string, len(vs))
    for i, v := range vs { nb[i] = v.String() }
    return strings.Join(nb, ", ")
}
