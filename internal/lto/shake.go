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
	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/unit"
)

// shakeExports drops every export of a non-entry module that no other
// module imports or re-exports, together with the declaration backing
// it when nothing else in the module refers to it. Entry modules keep
// all of their exports: those are the program's external surface.
func (self *linker) shakeExports(g *ModuleGraph) bool {
	live := self.liveExports(g)
	changed := false
	for _, m := range self.prog.Modules {
		if !m.Entry && self.shakeModuleExports(m, live[m.Name]) {
			changed = true
		}
	}
	return changed
}

// liveExports computes the live (module, export) set: exports of entry
// modules, exports bound by a plain import anywhere, and the transitive
// closure through live re-exports.
func (self *linker) liveExports(g *ModuleGraph) map[string]map[string]bool {
	live := make(map[string]map[string]bool, len(self.prog.Modules))
	for _, m := range self.prog.Modules {
		live[m.Name] = make(map[string]bool)
	}

	type item struct {
		mod string
		sym string
	}
	var work []item

	mark := func(mod string, sym string) {
		if set := live[mod]; set != nil && !set[sym] {
			set[sym] = true
			work = append(work, item{mod, sym})
		}
	}

	for _, m := range self.prog.Modules {
		if m.Entry {
			for _, e := range m.Exports {
				mark(m.Name, e.Name)
			}
		}
	}
	g.EachDirectImport(mark)

	/* a live re-export keeps its source export live as well */
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		for _, s := range self.stmts[it.mod] {
			if v, ok := s.(*ast.ExportStmt); ok && v.Name == it.sym && v.From != "" {
				mark(v.From, v.Binding())
			}
		}
	}
	return live
}

func (self *linker) shakeModuleExports(m *unit.Module, live map[string]bool) bool {
	var drop []string
	for _, e := range m.Exports {
		if !live[e.Name] {
			drop = append(drop, e.Name)
		}
	}
	if len(drop) == 0 {
		return false
	}

	for _, name := range drop {
		self.dropExport(m, name)
	}
	self.dropDeadDecls(m)
	return true
}

// dropExport removes one export from both the export table and the
// statement list, and clears the Exported flag when the symbol was
// exported directly on its function declaration.
func (self *linker) dropExport(m *unit.Module, name string) {
	nb := make([]unit.ExportEntry, 0, len(m.Exports))
	for _, e := range m.Exports {
		if e.Name != name {
			nb = append(nb, e)
		}
	}
	m.Exports = nb

	stmts := self.stmts[m.Name]
	out := stmts[:0]
	for _, s := range stmts {
		if v, ok := s.(*ast.ExportStmt); ok && v.Name == name {
			continue
		}
		if v, ok := s.(*ast.FuncStmt); ok && v.Exported && v.Name == name {
			v.Exported = false
		}
		out = append(out, s)
	}
	self.stmts[m.Name] = out
}

// dropDeadDecls removes top-level declarations no longer referenced
// anywhere in the module and no longer exported. Only declarations
// whose removal cannot skip a side effect are dropped: functions, and
// locals initialized by literals, closures or bare names.
func (self *linker) dropDeadDecls(m *unit.Module) {
	for {
		stmts := self.stmts[m.Name]
		total := ast.UsedNames(stmts)
		exported := self.exportedBindings(m)

		removed := false
		out := stmts[:0]
		for _, s := range stmts {
			if self.declIsDead(s, total, exported) {
				removed = true
				continue
			}
			out = append(out, s)
		}
		self.stmts[m.Name] = out
		if !removed {
			return
		}
	}
}

func (self *linker) exportedBindings(m *unit.Module) map[string]bool {
	exported := make(map[string]bool)
	for _, s := range self.stmts[m.Name] {
		switch v := s.(type) {
		case *ast.ExportStmt:
			if v.From == "" {
				exported[v.Binding()] = true
			}
		case *ast.FuncStmt:
			if v.Exported {
				exported[v.Name] = true
			}
		}
	}
	return exported
}

func (self *linker) declIsDead(s ast.Stmt, total map[string]int, exported map[string]bool) bool {
	switch v := s.(type) {
	case *ast.FuncStmt:
		if v.Exported || exported[v.Name] {
			return false
		}
		/* self-recursion does not keep a function alive */
		own := ast.UsedNames([]ast.Stmt{v})
		return total[v.Name]-own[v.Name] == 0

	case *ast.LocalStmt:
		own := ast.UsedNames([]ast.Stmt{v})
		for _, n := range v.Names {
			if exported[n.Ident] || total[n.Ident]-own[n.Ident] > 0 {
				return false
			}
		}
		for _, x := range v.Init {
			if !harmlessInit(x) {
				return false
			}
		}
		return true

	default:
		return false
	}
}

func harmlessInit(x ast.Expr) bool {
	switch x.(type) {
	case nil:
		return true
	case *ast.Lit:
		return true
	case *ast.Name:
		return true
	case *ast.Closure:
		return true
	default:
		return false
	}
}

// shakeImports drops every import whose local binding is never
// referenced in the importing module, from both the statement list and
// the import table.
func (self *linker) shakeImports() bool {
	changed := false
	for _, m := range self.prog.Modules {
		if self.shakeModuleImports(m) {
			changed = true
		}
	}
	return changed
}

func (self *linker) shakeModuleImports(m *unit.Module) bool {
	stmts := self.stmts[m.Name]

	/* UsedNames counts a locally re-exported binding as a use */
	uses := ast.UsedNames(stmts)

	var drop map[string]bool
	out := stmts[:0]
	for _, s := range stmts {
		if v, ok := s.(*ast.ImportStmt); ok && uses[v.Local] == 0 {
			if drop == nil {
				drop = make(map[string]bool)
			}
			drop[v.Local] = true
			continue
		}
		out = append(out, s)
	}
	if drop == nil {
		return false
	}

	self.stmts[m.Name] = out
	nb := make([]unit.ImportEntry, 0, len(m.Imports))
	for _, e := range m.Imports {
		if !drop[e.Local] {
			nb = append(nb, e)
		}
	}
	m.Imports = nb
	return true
}
