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

package selene

import (
	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/unit"
)

// Level selects the active pass set. Each level's set is a superset of
// the previous one.
type Level = opts.Level

const (
	LevelNone       = opts.LevelNone
	LevelMinimal    = opts.LevelMinimal
	LevelModerate   = opts.LevelModerate
	LevelAggressive = opts.LevelAggressive
)

// Tree is an optimized or to-be-optimized module body. Trees are
// immutable between pipeline stages; reading one after handing it to
// the optimizer is a defect.
type Tree = ast.ImmutableTree

// Module is one compilation unit: the checked tree plus its export and
// import tables.
type Module = unit.Module

// Program is a whole-program build handed over by the checker.
type Program = unit.Program

// ExportEntry is one row of a module's export table.
type ExportEntry = unit.ExportEntry

// ImportEntry is one row of a module's import table.
type ImportEntry = unit.ImportEntry

// SymbolKind classifies an exported symbol.
type SymbolKind = unit.SymbolKind

const (
	SymbolValue = unit.SymbolValue
	SymbolFunc  = unit.SymbolFunc
	SymbolType  = unit.SymbolType
)
