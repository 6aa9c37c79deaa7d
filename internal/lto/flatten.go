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

// flatten rewrites imports and re-exports that resolve through a
// middleman's re-export to point at the original exporter. One hop is
// taken per round; longer chains settle over the fixed point, and the
// bypassed re-export becomes dead-export fodder for the next round.
func (self *linker) flatten() bool {
	changed := false
	for _, m := range self.prog.Modules {
		if self.flattenModule(m) {
			changed = true
		}
	}
	return changed
}

func (self *linker) flattenModule(m *unit.Module) bool {
	changed := false
	for _, s := range self.stmts[m.Name] {
		switch v := s.(type) {
		case *ast.ImportStmt:
			if src, sym, ok := self.resolveReExport(v.From, v.Symbol); ok {
				self.retargetImport(m, v.Local, src, sym)
				v.From, v.Symbol = src, sym
				changed = true
			}
		case *ast.ExportStmt:
			if v.From == "" {
				continue
			}
			if src, sym, ok := self.resolveReExport(v.From, v.Binding()); ok {
				v.From, v.Local = src, sym
				changed = true
			}
		}
	}
	return changed
}

// resolveReExport reports whether the named export of the given module
// is itself a re-export, and if so where it actually comes from.
func (self *linker) resolveReExport(mod string, sym string) (string, string, bool) {
	for _, s := range self.stmts[mod] {
		if v, ok := s.(*ast.ExportStmt); ok && v.Name == sym && v.From != "" {
			return v.From, v.Binding(), true
		}
	}
	return "", "", false
}

func (self *linker) retargetImport(m *unit.Module, local string, from string, symbol string) {
	for i := range m.Imports {
		if m.Imports[i].Local == local {
			m.Imports[i].From = from
			m.Imports[i].Symbol = symbol
			return
		}
	}
}
