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
    `fmt`
    `strings`

    `github.com/selene-lang/selene/internal/ast`
)

// EdgeKind classifies a control transfer between two basic blocks.
type EdgeKind uint8

const (
    FallEdge EdgeKind = iota
    TakenEdge
    NotTakenEdge
    BackEdge
    ThrowEdge
)

func (self EdgeKind) String() string {
    switch self {
        case FallEdge     : return "fall"
        case TakenEdge    : return "taken"
        case NotTakenEdge : return "not-taken"
        case BackEdge     : return "back"
        case ThrowEdge    : return "throw"
        default           : panic("flow: invalid edge kind")
    }
}

// Edge is a directed control transfer.
type Edge struct {
    To   *BasicBlock
    Kind EdgeKind
}

// BasicBlock is a maximal straight-line statement run. Term, when set,
// is the control-transfer statement that ends the run; its nested
// bodies live in successor blocks, not in Ins.
type BasicBlock struct {
    Id   int
    Ins  []ast.Stmt
    Term ast.Stmt
    Out  []Edge
    Pred []*BasicBlock
}

func (self *BasicBlock) linkTo(p *BasicBlock, kind EdgeKind) {
    self.Out = append(self.Out, Edge { To: p, Kind: kind })
    p.Pred = append(p.Pred, self)
}

func (self *BasicBlock) String() string {
    nb := make([]string, 0, len(self.Ins) + 2)
    nb = append(nb, fmt.Sprintf("bb_%d:", self.Id))
    for _, s := range self.Ins {
        nb = append(nb, "  " + s.String())
    }
    if self.Term != nil {
        nb = append(nb, "  => " + self.Term.String())
    }
    return strings.Join(nb, "\n")
}

// CFG is the control-flow graph of a single function or module chunk.
// It is rebuilt from scratch whenever a transform changes control
// structure, never patched in place.
type CFG struct {
    Entry  *BasicBlock
    Exit   *BasicBlock
    Blocks []*BasicBlock
}

// Block returns the block with the given ID.
func (self *CFG) Block(id int) *BasicBlock {
    return self.Blocks[id]
}

type _GraphBuilder struct {
    cfg    *CFG
    breaks []*BasicBlock
}

// BuildCFG constructs the control-flow graph of one statement scope
// with a single linear walk, splitting at conditionals, loops, early
// returns and throw sites.
func BuildCFG(stmts []ast.Stmt) *CFG {
    gb := new(_GraphBuilder)
    gb.cfg = new(CFG)

    /* entry and exit blocks */
    entry := gb.newBlock()
    exit := gb.newBlock()
    gb.cfg.Entry = entry
    gb.cfg.Exit = exit

    /* walk the chunk, then connect the last straight-line run to the
     * exit block if it does not already transfer away */
    if last := gb.scan(entry, stmts); last != nil {
        last.linkTo(exit, FallEdge)
    }
    return gb.cfg
}

func (self *_GraphBuilder) newBlock() *BasicBlock {
    bb := &BasicBlock { Id: len(self.cfg.Blocks) }
    self.cfg.Blocks = append(self.cfg.Blocks, bb)
    return bb
}

/* scan appends the statement run to cur, splitting at control
 * transfers. It returns the open trailing block, or nil when control
 * never falls out of the run. */
func (self *_GraphBuilder) scan(cur *BasicBlock, stmts []ast.Stmt) *BasicBlock {
    for _, s := range stmts {
        if cur == nil {
            break
        }
        switch v := s.(type) {
            case *ast.IfStmt    : cur = self.scanIf(cur, v)
            case *ast.WhileStmt : cur = self.scanWhile(cur, v)
            case *ast.DoStmt    : cur = self.scan(cur, v.Body)
            case *ast.ReturnStmt: cur = self.scanReturn(cur, v)
            case *ast.BreakStmt : cur = self.scanBreak(cur, v)
            case *ast.ThrowStmt : cur = self.scanThrow(cur, v)
            default             : cur.Ins = append(cur.Ins, s)
        }
    }
    return cur
}

func (self *_GraphBuilder) scanIf(cur *BasicBlock, v *ast.IfStmt) *BasicBlock {
    cur.Term = v
    join := (*BasicBlock)(nil)

    /* then arm */
    tb := self.newBlock()
    cur.linkTo(tb, TakenEdge)
    tl := self.scan(tb, v.Then)

    /* else arm, or a direct not-taken edge to the join */
    if len(v.Else) == 0 {
        join = self.newBlock()
        cur.linkTo(join, NotTakenEdge)
    } else {
        eb := self.newBlock()
        cur.linkTo(eb, NotTakenEdge)
        el := self.scan(eb, v.Else)
        if tl == nil && el == nil {
            return nil
        }
        join = self.newBlock()
        if el != nil {
            el.linkTo(join, FallEdge)
        }
    }

    /* connect the then arm */
    if tl != nil {
        tl.linkTo(join, FallEdge)
    }
    return join
}

func (self *_GraphBuilder) scanWhile(cur *BasicBlock, v *ast.WhileStmt) *BasicBlock {
    head := self.newBlock()
    body := self.newBlock()
    after := self.newBlock()

    /* loop header evaluates the condition */
    cur.linkTo(head, FallEdge)
    head.Term = v
    head.linkTo(body, TakenEdge)
    head.linkTo(after, NotTakenEdge)

    /* loop body, break transfers to the after block */
    self.breaks = append(self.breaks, after)
    last := self.scan(body, v.Body)
    self.breaks = self.breaks[:len(self.breaks) - 1]

    /* back edge to the header */
    if last != nil {
        last.linkTo(head, BackEdge)
    }
    return after
}

func (self *_GraphBuilder) scanReturn(cur *BasicBlock, v *ast.ReturnStmt) *BasicBlock {
    cur.Term = v
    cur.linkTo(self.cfg.Exit, FallEdge)
    return nil
}

func (self *_GraphBuilder) scanBreak(cur *BasicBlock, v *ast.BreakStmt) *BasicBlock {
    if n := len(self.breaks); n == 0 {
        panic("selene: break outside of a loop")
    } else {
        cur.Term = v
        cur.linkTo(self.breaks[n - 1], FallEdge)
        return nil
    }
}

func (self *_GraphBuilder) scanThrow(cur *BasicBlock, v *ast.ThrowStmt) *BasicBlock {
    cur.Term = v
    cur.linkTo(self.cfg.Exit, ThrowEdge)
    return nil
}
