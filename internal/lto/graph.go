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

package lto

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/unit"
)

// Edge is one import dependency between two modules, carrying the
// symbol set that crosses it. Direct is the subset bound by plain
// imports, as opposed to re-exports. TypeOnly holds when every
// crossing symbol is type-only; such edges vanish at code generation
// and are allowed to form cycles.
type Edge struct {
	From     string
	To       string
	Symbols  map[string]struct{}
	Direct   map[string]struct{}
	TypeOnly bool
}

// ModuleGraph is the whole-program dependency graph: one node per
// compiled module, one edge per importer/exporter pair. It is built
// once per link round, by a single goroutine, and never shared.
type ModuleGraph struct {
	prog  *unit.Program
	ids   map[string]int64
	names map[int64]string
	edges map[[2]int64]*Edge
}

// BuildGraph constructs the module graph from the given per-module
// statement lists. A dependency cycle whose edges carry any value
// symbol should have been rejected before optimization ever started;
// seeing one here is a defect and panics.
func BuildGraph(prog *unit.Program, trees map[string][]ast.Stmt) *ModuleGraph {
	g := &ModuleGraph{
		prog:  prog,
		ids:   make(map[string]int64, len(prog.Modules)),
		names: make(map[int64]string, len(prog.Modules)),
		edges: make(map[[2]int64]*Edge),
	}

	/* number the modules */
	for i, m := range prog.Modules {
		id := int64(i)
		g.ids[m.Name] = id
		g.names[id] = m.Name
	}

	/* one edge per importer/exporter pair, merging symbol sets */
	for _, m := range prog.Modules {
		for _, s := range trees[m.Name] {
			switch v := s.(type) {
			case *ast.ImportStmt:
				g.addEdge(m.Name, v.From, v.Symbol, v.TypeOnly, true)
			case *ast.ExportStmt:
				if v.From != "" {
					g.addEdge(m.Name, v.From, v.Binding(), v.TypeOnly, false)
				}
			}
		}
	}

	g.checkValueCycles()
	return g
}

func (g *ModuleGraph) addEdge(from string, to string, symbol string, typeOnly bool, direct bool) {
	a, ok := g.ids[from]
	if !ok {
		panic(fmt.Sprintf("selene: import from unknown module %q", from))
	}
	b, ok := g.ids[to]
	if !ok {
		panic(fmt.Sprintf("selene: import of unknown module %q", to))
	}

	/* a self import is a checker bug, not a link problem */
	if a == b {
		panic(fmt.Sprintf("selene: module %q imports itself", from))
	}

	k := [2]int64{a, b}
	e := g.edges[k]
	if e == nil {
		e = &Edge{
			From:     from,
			To:       to,
			Symbols:  make(map[string]struct{}),
			Direct:   make(map[string]struct{}),
			TypeOnly: true,
		}
		g.edges[k] = e
	}
	e.Symbols[symbol] = struct{}{}
	if direct {
		e.Direct[symbol] = struct{}{}
	}
	e.TypeOnly = e.TypeOnly && typeOnly
}

/* a cycle is tolerated only while every edge on it is type-only */
func (g *ModuleGraph) checkValueCycles() {
	dg := simple.NewDirectedGraph()
	for id := range g.names {
		dg.AddNode(simple.Node(id))
	}
	for k, e := range g.edges {
		if !e.TypeOnly {
			dg.SetEdge(simple.Edge{F: simple.Node(k[0]), T: simple.Node(k[1])})
		}
	}
	if _, err := topo.Sort(dg); err != nil {
		names := g.cycleNames(err)
		panic(fmt.Sprintf("selene: module dependency cycle through value imports: %v", names))
	}
}

func (g *ModuleGraph) cycleNames(err error) []string {
	var names []string
	if u, ok := err.(topo.Unorderable); ok {
		for _, scc := range u {
			for _, n := range scc {
				names = append(names, g.names[n.ID()])
			}
		}
	}
	sort.Strings(names)
	return names
}

// EachDirectImport calls fn once per (exporter, symbol) pair that some
// module binds through a plain import. Re-export edges are excluded:
// they only carry liveness when the re-export itself is live.
func (g *ModuleGraph) EachDirectImport(fn func(exporter string, symbol string)) {
	for _, e := range g.edges {
		for sym := range e.Direct {
			fn(e.To, sym)
		}
	}
}

// Modules returns the modules in deterministic (build) order.
func (g *ModuleGraph) Modules() []*unit.Module {
	return g.prog.Modules
}
