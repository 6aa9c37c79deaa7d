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

// AliasFact relates two storage-referring expressions. The lattice
// bottom is AliasUnknown: when the analysis cannot prove a relation it
// must say so, and every consumer must treat AliasUnknown as blocking.
type AliasFact uint8

const (
    AliasUnknown AliasFact = iota
    AliasSame
    AliasDisjoint
)

func (self AliasFact) String() string {
    switch self {
        case AliasSame     : return "same"
        case AliasDisjoint : return "disjoint"
        default            : return "unknown"
    }
}

// AliasTable answers alias queries for one scope. It is deliberately
// shallow: the only relation it ever proves is between plain local
// bindings, everything reachable through a container or an unknown
// receiver stays AliasUnknown.
type AliasTable struct {
    captured map[string]struct{}
}

// BuildAliasTable records which names escape into closures; writes
// through an escaped name may be observed through another route, so
// such names never prove AliasDisjoint.
func BuildAliasTable(cfg *CFG) *AliasTable {
    at := &AliasTable {
        captured: make(map[string]struct{}),
    }
    cfg.ForEach(func(bb *BasicBlock) {
        for _, s := range bb.Ins {
            if fn, ok := s.(*ast.FuncStmt); ok {
                for n := range ast.UsedNames(fn.Body) {
                    at.captured[n] = struct{}{}
                }
            }
        }
        scanStmts(bb, func(x ast.Expr) {
            if c, ok := x.(*ast.Closure); ok {
                for n := range ast.UsedNames(c.Body) {
                    at.captured[n] = struct{}{}
                }
            }
        })
    })
    return at
}

// Alias classifies the relation between two storage-referring
// expressions.
func (self *AliasTable) Alias(a ast.Expr, b ast.Expr) AliasFact {
    x, ok := a.(*ast.Name)
    if !ok {
        return AliasUnknown
    }
    y, ok := b.(*ast.Name)
    if !ok {
        return AliasUnknown
    }

    /* the same binding is the same storage */
    if x.Ident == y.Ident {
        return AliasSame
    }

    /* distinct bindings are distinct storage unless either escapes */
    if self.Escapes(x.Ident) || self.Escapes(y.Ident) {
        return AliasUnknown
    }
    return AliasDisjoint
}

// Escapes reports whether the named binding is referenced from a
// nested function body.
func (self *AliasTable) Escapes(name string) bool {
    _, ok := self.captured[name]
    return ok
}
