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
    `sort`

    `github.com/oleiade/lane`
    `github.com/selene-lang/selene/internal/ast`
)

// Def is one defining occurrence of a variable: a declaration or an
// assignment through a plain name.
type Def struct {
    Name  string
    Ver   int
    Uses  int
    Block *BasicBlock
    Stmt  ast.Stmt
}

// JoinValue is a synthetic merge of versions at a block with more than
// one reaching definition, one incoming version per predecessor.
type JoinValue struct {
    Name  string
    Ver   int
    Uses  int
    Block *BasicBlock
    Args  map[int]int
}

// SsaForm is the per-scope renaming fact table. The tree itself is
// never rewritten into SSA; passes consume the table and discard it.
type SsaForm struct {
    Defs  []*Def
    Joins []*JoinValue
    Dead  []*Def
}

/* a reaching value is either a Def or a JoinValue */
type _Value struct {
    def  *Def
    join *JoinValue
}

func (self _Value) ver() int {
    if self.def != nil {
        return self.def.Ver
    } else {
        return self.join.Ver
    }
}

func (self _Value) use() {
    if self.def != nil {
        self.def.Uses++
    } else {
        self.join.Uses++
    }
}

type _SsaBuilder struct {
    dt       *DominatorTree
    out      *SsaForm
    vers     map[string]int
    stack    map[string][]_Value
    joins    map[int][]*JoinValue
    captured map[string]struct{}
}

// BuildSSA renames every local binding of one scope so each has a
// single defining occurrence per control path, inserting join values
// at merge points. Definitions that end up with no use are recorded in
// Dead for the dead-store pass; captured names are pinned as used
// because any later closure call may observe them.
func BuildSSA(cfg *CFG, dt *DominatorTree) *SsaForm {
    sb := &_SsaBuilder {
        dt       : dt,
        out      : new(SsaForm),
        vers     : make(map[string]int),
        stack    : make(map[string][]_Value),
        joins    : make(map[int][]*JoinValue),
        captured : make(map[string]struct{}),
    }
    sb.findCaptured(cfg)
    sb.insertJoins(cfg)
    sb.rename(cfg.Entry)
    sb.collect()
    return sb.out
}

/* names referenced from nested function bodies are observable beyond
 * this scope's control flow */
func (self *_SsaBuilder) findCaptured(cfg *CFG) {
    cfg.ForEach(func(bb *BasicBlock) {
        for _, s := range bb.Ins {
            if fn, ok := s.(*ast.FuncStmt); ok {
                for n := range ast.UsedNames(fn.Body) {
                    self.captured[n] = struct{}{}
                }
            }
        }
        scanStmts(bb, func(x ast.Expr) {
            if c, ok := x.(*ast.Closure); ok {
                for n := range ast.UsedNames(c.Body) {
                    self.captured[n] = struct{}{}
                }
            }
        })
    })
}

/* standard dominance-frontier join placement, driven by a worklist of
 * definition blocks per variable */
func (self *_SsaBuilder) insertJoins(cfg *CFG) {
    defs := make(map[string]map[int]*BasicBlock)

    /* find every definition site */
    cfg.ForEach(func(bb *BasicBlock) {
        for _, s := range bb.Ins {
            for _, n := range stmtDefs(s) {
                if defs[n] == nil {
                    defs[n] = make(map[int]*BasicBlock)
                }
                defs[n][bb.Id] = bb
            }
        }
    })

    /* stable variable order */
    vars := make([]string, 0, len(defs))
    for n, v := range defs {
        if len(v) > 1 {
            vars = append(vars, n)
        }
    }
    sort.Strings(vars)

    /* place the join values */
    for _, n := range vars {
        q := lane.NewQueue()
        seen := make(map[int]struct{})

        /* seed with every definition block, in block order */
        ids := make([]int, 0, len(defs[n]))
        for id := range defs[n] {
            ids = append(ids, id)
        }
        sort.Ints(ids)
        for _, id := range ids {
            q.Enqueue(defs[n][id])
        }

        /* expand across dominance frontiers */
        for !q.Empty() {
            bb := q.Dequeue().(*BasicBlock)
            for _, fb := range self.dt.Frontier[bb.Id] {
                if _, ok := seen[fb.Id]; ok {
                    continue
                }
                seen[fb.Id] = struct{}{}
                self.joins[fb.Id] = append(self.joins[fb.Id], &JoinValue {
                    Name  : n,
                    Block : fb,
                    Args  : make(map[int]int),
                })
                q.Enqueue(fb)
            }
        }
    }
}

func (self *_SsaBuilder) push(n string, v _Value) {
    self.stack[n] = append(self.stack[n], v)
}

func (self *_SsaBuilder) top(n string) (_Value, bool) {
    if s := self.stack[n]; len(s) == 0 {
        return _Value{}, false
    } else {
        return s[len(s) - 1], true
    }
}

func (self *_SsaBuilder) nextver(n string) int {
    v := self.vers[n] + 1
    self.vers[n] = v
    return v
}

func (self *_SsaBuilder) markUse(n string) {
    if v, ok := self.top(n); ok {
        v.use()
    }
}

func (self *_SsaBuilder) rename(bb *BasicBlock) {
    var pushed []string

    /* join values define first */
    for _, j := range self.joins[bb.Id] {
        j.Ver = self.nextver(j.Name)
        self.push(j.Name, _Value { join: j })
        pushed = append(pushed, j.Name)
    }

    /* straight-line statements: uses before definitions */
    for _, s := range bb.Ins {
        self.scanUses(s)
        for _, n := range stmtDefs(s) {
            d := &Def {
                Name  : n,
                Ver   : self.nextver(n),
                Block : bb,
                Stmt  : s,
            }
            self.out.Defs = append(self.out.Defs, d)
            self.push(n, _Value { def: d })
            pushed = append(pushed, n)
        }
    }

    /* the terminator only uses */
    if bb.Term != nil {
        self.scanUses(bb.Term)
    }

    /* feed the join values of the successors */
    for _, e := range bb.Out {
        for _, j := range self.joins[e.To.Id] {
            if v, ok := self.top(j.Name); ok {
                j.Args[bb.Id] = v.ver()
                v.use()
            }
        }
    }

    /* descend the dominator tree */
    for _, p := range self.dt.DominatorOf[bb.Id] {
        self.rename(p)
    }

    /* pop everything this block pushed */
    for i := len(pushed) - 1; i >= 0; i-- {
        n := pushed[i]
        s := self.stack[n]
        self.stack[n] = s[:len(s) - 1]
    }
}

func (self *_SsaBuilder) scanUses(s ast.Stmt) {
    switch v := s.(type) {
        case *ast.LocalStmt:
            for _, x := range v.Init { self.useExpr(x) }
        case *ast.AssignStmt:
            for _, x := range v.Rhs { self.useExpr(x) }
            for _, x := range v.Lhs {
                if _, ok := x.(*ast.Name); !ok {
                    self.useExpr(x)
                }
            }
        case *ast.FuncStmt:
            for n := range ast.UsedNames(v.Body) { self.markUse(n) }
        case *ast.ExportStmt:
            if v.From == "" {
                self.markUse(v.Binding())
            }
        default:
            ast.WalkExprs(s, func(x ast.Expr) {
                if n, ok := x.(*ast.Name); ok {
                    self.markUse(n.Ident)
                }
            })
    }
}

func (self *_SsaBuilder) useExpr(x ast.Expr) {
    walkOne(x, func(e ast.Expr) {
        if n, ok := e.(*ast.Name); ok {
            self.markUse(n.Ident)
        }
    })
}

/* gather the dead definitions, keeping captured names alive */
func (self *_SsaBuilder) collect() {
    for _, d := range self.out.Defs {
        if d.Uses == 0 {
            if _, ok := self.captured[d.Name]; !ok {
                self.out.Dead = append(self.out.Dead, d)
            }
        }
    }
    for _, js := range self.joins {
        self.out.Joins = append(self.out.Joins, js...)
    }
    sort.Slice(self.out.Joins, func(i int, j int) bool {
        a, b := self.out.Joins[i], self.out.Joins[j]
        if a.Block.Id != b.Block.Id {
            return a.Block.Id < b.Block.Id
        } else {
            return a.Name < b.Name
        }
    })
}

/* stmtDefs lists the names a straight-line statement defines */
func stmtDefs(s ast.Stmt) []string {
    switch v := s.(type) {
        case *ast.LocalStmt:
            nb := make([]string, len(v.Names))
            for i, n := range v.Names { nb[i] = n.Ident }
            return nb
        case *ast.AssignStmt:
            var nb []string
            for _, x := range v.Lhs {
                if n, ok := x.(*ast.Name); ok {
                    nb = append(nb, n.Ident)
                }
            }
            return nb
        default:
            return nil
    }
}

/* scanStmts visits every expression of every statement in a block */
func scanStmts(bb *BasicBlock, fn func(ast.Expr)) {
    for _, s := range bb.Ins {
        ast.WalkExprs(s, fn)
    }
    if bb.Term != nil {
        ast.WalkExprs(bb.Term, fn)
    }
}

/* walkOne visits one expression tree */
func walkOne(x ast.Expr, fn func(ast.Expr)) {
    s := &ast.ExprStmt { X: x }
    ast.WalkExprs(s, fn)
}
