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

// AnalysisKind identifies one analysis a pass can require as input.
type AnalysisKind uint8

const (
    AnalysisCFG AnalysisKind = iota
    AnalysisDominators
    AnalysisSSA
    AnalysisAlias
    AnalysisEffects
)

func (self AnalysisKind) String() string {
    switch self {
        case AnalysisCFG        : return "cfg"
        case AnalysisDominators : return "dominators"
        case AnalysisSSA        : return "ssa"
        case AnalysisAlias      : return "alias"
        case AnalysisEffects    : return "effects"
        default                 : panic("flow: invalid analysis kind")
    }
}

// ScopeInfo lazily derives the flow facts of one statement scope: the
// module chunk, a declared function body, or a closure body. Facts are
// built on first request and all die together on invalidation.
type ScopeInfo struct {
    stmts []ast.Stmt
    cfg   *CFG
    dom   *DominatorTree
    ssa   *SsaForm
    tab   *AliasTable
}

// Stmts returns the scope's statement sequence.
func (self *ScopeInfo) Stmts() []ast.Stmt {
    return self.stmts
}

// CFG returns the scope's control-flow graph, building it on demand.
func (self *ScopeInfo) CFG() *CFG {
    if self.cfg == nil {
        self.cfg = BuildCFG(self.stmts)
    }
    return self.cfg
}

// Dominators returns the scope's dominator tree.
func (self *ScopeInfo) Dominators() *DominatorTree {
    if self.dom == nil {
        self.dom = BuildDominatorTree(self.CFG())
    }
    return self.dom
}

// SSA returns the scope's renaming fact table.
func (self *ScopeInfo) SSA() *SsaForm {
    if self.ssa == nil {
        self.ssa = BuildSSA(self.CFG(), self.Dominators())
    }
    return self.ssa
}

// Alias returns the scope's alias table.
func (self *ScopeInfo) Alias() *AliasTable {
    if self.tab == nil {
        self.tab = BuildAliasTable(self.CFG())
    }
    return self.tab
}

// Analyses caches flow facts across the passes of one optimization
// round. Any transform that reports a change invalidates the whole
// cache; facts never survive a tree mutation.
type Analyses struct {
    top     []ast.Stmt
    effects *Effects
    scopes  map[ast.Node]*ScopeInfo
}

// NewAnalyses binds an analysis cache to a statement sequence.
func NewAnalyses(stmts []ast.Stmt) *Analyses {
    return &Analyses {
        top    : stmts,
        scopes : make(map[ast.Node]*ScopeInfo),
    }
}

// Invalidate drops every cached fact and rebinds the cache to the
// current tree.
func (self *Analyses) Invalidate(stmts []ast.Stmt) {
    self.top = stmts
    self.effects = nil
    self.scopes = make(map[ast.Node]*ScopeInfo)
}

// Effects returns the effect table of the whole module.
func (self *Analyses) Effects() *Effects {
    if self.effects == nil {
        self.effects = BuildEffects(self.top)
    }
    return self.effects
}

// TopScope returns the scope of the module chunk itself.
func (self *Analyses) TopScope() *ScopeInfo {
    return self.scope(nil, self.top)
}

// FuncScope returns the scope of a declared function body.
func (self *Analyses) FuncScope(fn *ast.FuncStmt) *ScopeInfo {
    return self.scope(fn, fn.Body)
}

// EachScope visits the module scope and every function scope of the
// current tree, in declaration order.
func (self *Analyses) EachScope(fn func(*ScopeInfo)) {
    fn(self.TopScope())
    ast.WalkStmts(self.top, func(s ast.Stmt) bool {
        if f, ok := s.(*ast.FuncStmt); ok {
            fn(self.FuncScope(f))
        }
        return true
    })
}

func (self *Analyses) scope(key ast.Node, stmts []ast.Stmt) *ScopeInfo {
    if v, ok := self.scopes[key]; ok {
        return v
    }
    v := &ScopeInfo { stmts: stmts }
    self.scopes[key] = v
    return v
}
