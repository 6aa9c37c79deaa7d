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
)

// BasicBlockIter walks every block reachable from the entry exactly
// once, in depth-first order. Successors are pushed in reverse edge
// order so the first out-edge is visited first.
type BasicBlockIter struct {
    g *CFG
    b *BasicBlock
    s *lane.Stack
    v map[int]struct{}
}

func newBasicBlockIter(cfg *CFG) *BasicBlockIter {
    return &BasicBlockIter {
        g: cfg,
        s: stacknew(cfg.Entry),
        v: map[int]struct{} { cfg.Entry.Id: {} },
    }
}

// Next advances the iterator, reporting false once every reachable
// block has been visited.
func (self *BasicBlockIter) Next() bool {
    if self.s.Empty() {
        self.b = nil
        return false
    }

    /* pop the next block */
    self.b = self.s.Pop().(*BasicBlock)

    /* push unvisited successors in reverse order */
    for i := len(self.b.Out) - 1; i >= 0; i-- {
        p := self.b.Out[i].To
        if _, ok := self.v[p.Id]; !ok {
            self.v[p.Id] = struct{}{}
            self.s.Push(p)
        }
    }
    return true
}

// Block returns the current block.
func (self *BasicBlockIter) Block() *BasicBlock {
    return self.b
}

// ForEach visits every reachable block in depth-first order.
func (self *CFG) ForEach(fn func(bb *BasicBlock)) {
    for it := newBasicBlockIter(self); it.Next(); {
        fn(it.Block())
    }
}

// PostOrder visits every reachable block in post-order.
func (self *CFG) PostOrder(fn func(bb *BasicBlock)) {
    for _, bb := range self.postorder() {
        fn(bb)
    }
}

// ReversePostOrder visits every reachable block in reverse post-order,
// the canonical forward-dataflow iteration order.
func (self *CFG) ReversePostOrder(fn func(bb *BasicBlock)) {
    po := self.postorder()
    for i := len(po) - 1; i >= 0; i-- {
        fn(po[i])
    }
}

// Reachable returns the IDs of every block reachable from the entry,
// in ascending order.
func (self *CFG) Reachable() []int {
    ids := make([]int, 0, len(self.Blocks))
    self.ForEach(func(bb *BasicBlock) { ids = append(ids, bb.Id) })
    sort.Ints(ids)
    return ids
}

func (self *CFG) postorder() []*BasicBlock {
    vis := make(map[int]struct{}, len(self.Blocks))
    out := make([]*BasicBlock, 0, len(self.Blocks))
    self.podfs(self.Entry, vis, &out)
    return out
}

func (self *CFG) podfs(bb *BasicBlock, vis map[int]struct{}, out *[]*BasicBlock) {
    if _, ok := vis[bb.Id]; !ok {
        vis[bb.Id] = struct{}{}
        for _, e := range bb.Out {
            self.podfs(e.To, vis, out)
        }
        *out = append(*out, bb)
    }
}

func stacknew(v interface{}) *lane.Stack {
    s := lane.NewStack()
    s.Push(v)
    return s
}
