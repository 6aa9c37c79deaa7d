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

package unit

import (
	"github.com/selene-lang/selene/internal/ast"
)

// SymbolKind classifies an exported symbol.
type SymbolKind uint8

const (
	SymbolValue SymbolKind = iota
	SymbolFunc
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolValue:
		return "value"
	case SymbolFunc:
		return "function"
	case SymbolType:
		return "type"
	default:
		return "invalid"
	}
}

// ExportEntry is one row of a module's export table, produced by the
// checker and consumed here.
type ExportEntry struct {
	Name     string
	Kind     SymbolKind
	TypeOnly bool
}

// ImportEntry is one row of a module's import table: the local binding
// name, the exporter-side symbol name, and the source module.
type ImportEntry struct {
	Local    string
	Symbol   string
	From     string
	TypeOnly bool
}

// Module is one compilation unit as the optimizer sees it: the checked
// tree plus the checker's export and import tables. Entry marks the
// modules whose exports are visible outside the program; their exports
// are never shaken off.
type Module struct {
	Name    string
	Tree    *ast.ImmutableTree
	Exports []ExportEntry
	Imports []ImportEntry
	Entry   bool
}

// Program is a whole-program build: every compiled module plus the
// interned-string table they share during the parallel phase.
type Program struct {
	Modules []*Module
	Strings *ast.StringTable
}

// Find returns the module with the given name, or nil.
func (p *Program) Find(name string) *Module {
	for _, m := range p.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}
