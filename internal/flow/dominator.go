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

/** Iterative dominance computation as described in Cooper, Harvey and
 *  Kennedy, "A Simple, Fast Dominance Algorithm". The iteration always
 *  terminates: the intersection operator is monotone over a finite
 *  lattice bounded by the block count.
 */

package flow

import (
    `sort`
)

// DominatorTree maps every reachable block to its immediate dominator.
// The entry block is the root and has none.
type DominatorTree struct {
    Root        *BasicBlock
    DominatedBy map[int]*BasicBlock
    DominatorOf map[int][]*BasicBlock
    Frontier    map[int][]*BasicBlock
}

// BuildDominatorTree derives the dominator tree and the dominance
// frontiers of a CFG.
func BuildDominatorTree(cfg *CFG) *DominatorTree {
    po := cfg.postorder()
    ord := make(map[int]int, len(po))
    idom := make(map[int]*BasicBlock, len(po))

    /* number the blocks in post-order */
    for i, bb := range po {
        ord[bb.Id] = i
    }

    /* the entry dominates itself to seed the intersection */
    idom[cfg.Entry.Id] = cfg.Entry

    /* iterate to a fixed point over reverse post-order */
    for changed := true; changed; {
        changed = false
        for i := len(po) - 1; i >= 0; i-- {
            bb := po[i]
            if bb == cfg.Entry {
                continue
            }

            /* intersect the dominators of all processed predecessors */
            var ni *BasicBlock
            for _, p := range bb.Pred {
                if _, ok := ord[p.Id]; !ok {
                    continue
                }
                if idom[p.Id] == nil {
                    continue
                }
                if ni == nil {
                    ni = p
                } else {
                    ni = intersect(ord, idom, ni, p)
                }
            }

            /* update on change */
            if ni != nil && idom[bb.Id] != ni {
                idom[bb.Id] = ni
                changed = true
            }
        }
    }

    /* assemble the tree */
    dt := &DominatorTree {
        Root        : cfg.Entry,
        Frontier    : make(map[int][]*BasicBlock, len(po)),
        DominatedBy : make(map[int]*BasicBlock, len(po)),
        DominatorOf : make(map[int][]*BasicBlock, len(po)),
    }

    /* invert the immediate dominator relation */
    for _, bb := range po {
        if d := idom[bb.Id]; bb != cfg.Entry && d != nil {
            dt.DominatedBy[bb.Id] = d
            dt.DominatorOf[d.Id] = append(dt.DominatorOf[d.Id], bb)
        }
    }

    /* keep the children ordered for deterministic traversal */
    for _, v := range dt.DominatorOf {
        sort.Slice(v, func(i int, j int) bool {
            return v[i].Id < v[j].Id
        })
    }

    /* dominance frontiers, from the same paper */
    for _, bb := range po {
        if len(bb.Pred) < 2 {
            continue
        }
        for _, p := range bb.Pred {
            if _, ok := ord[p.Id]; !ok {
                continue
            }
            for r := p; r != nil && r != dt.DominatedBy[bb.Id]; r = dt.DominatedBy[r.Id] {
                dt.Frontier[r.Id] = addFrontier(dt.Frontier[r.Id], bb)
            }
        }
    }
    return dt
}

// Dominates reports whether block a dominates block b. Every block
// dominates itself.
func (self *DominatorTree) Dominates(a int, b int) bool {
    if a == b {
        return true
    }
    for bb := self.Root; ; {
        if bb = self.DominatedBy[b]; bb == nil {
            return a == self.Root.Id
        } else if bb.Id == a {
            return true
        } else {
            b = bb.Id
        }
    }
}

func intersect(ord map[int]int, idom map[int]*BasicBlock, a *BasicBlock, b *BasicBlock) *BasicBlock {
    for a != b {
        for ord[a.Id] < ord[b.Id] {
            a = idom[a.Id]
        }
        for ord[b.Id] < ord[a.Id] {
            b = idom[b.Id]
        }
    }
    return a
}

func addFrontier(fs []*BasicBlock, bb *BasicBlock) []*BasicBlock {
    for _, p := range fs {
        if p == bb {
            return fs
        }
    }
    return append(fs, bb)
}
