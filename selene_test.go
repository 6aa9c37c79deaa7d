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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selene-lang/selene/internal/ast"
)

func checkedModule(name string, stmts []ast.Stmt) *Module {
	return &Module{Name: name, Tree: ast.Freeze(stmts)}
}

func foldableStmts() []ast.Stmt {
	ret := &ast.Binary{
		Op: ast.AddOp,
		L:  ast.Int(40),
		R:  &ast.Binary{Op: ast.MulOp, L: ast.Int(1), R: ast.Int(2)},
	}
	return []ast.Stmt{
		&ast.IfStmt{
			Cond: ast.Bool(true),
			Then: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{ret}}},
			Else: []ast.Stmt{&ast.ThrowStmt{X: ast.Str("unreachable")}},
		},
	}
}

func TestOptimize_Module(t *testing.T) {
	m := checkedModule("main", foldableStmts())
	rep, err := Optimize(m, WithLevel(LevelAggressive), WithProfile(true))
	require.NoError(t, err)
	require.Equal(t, 1, rep.Stats.Modules)
	require.GreaterOrEqual(t, rep.Stats.Rounds, 2)
	require.Zero(t, rep.Stats.Capped)
	require.NotNil(t, rep.Profile)
	require.NotEmpty(t, rep.Profile.Records())

	/* branch elimination leaves a do block, scope hoisting splices it */
	out := m.Tree.Stmts()
	require.Len(t, out, 1)
	ret, ok := out[0].(*ast.ReturnStmt)
	require.True(t, ok)
	lit, ok := ret.Results[0].(*ast.Lit)
	require.True(t, ok)
	require.Equal(t, int64(42), lit.Int)
}

func TestOptimize_LevelNoneLeavesTreeAlone(t *testing.T) {
	m := checkedModule("main", foldableStmts())
	before := m.Tree
	rep, err := Optimize(m, WithLevel(LevelNone))
	require.NoError(t, err)
	require.Zero(t, rep.Stats.Rounds)
	require.Same(t, before, m.Tree)
}

func TestOptimize_DefectBecomesError(t *testing.T) {
	m := checkedModule("main", []ast.Stmt{&ast.BreakStmt{}})
	_, err := Optimize(m, WithLevel(LevelModerate))
	require.Error(t, err)
	var de *DefectError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "selene: break outside of a loop", de.Message)
}

func TestOptimize_OptionValidation(t *testing.T) {
	require.PanicsWithValue(t, "selene: invalid optimization level: 9", func() {
		_, _ = Optimize(checkedModule("main", nil), WithLevel(Level(9)))
	})
	require.PanicsWithValue(t, "selene: invalid round cap: 0", func() {
		_, _ = Optimize(checkedModule("main", nil), WithMaxRounds(0))
	})
}

func testProgram() *Program {
	main := checkedModule("main", append(
		[]ast.Stmt{&ast.ImportStmt{Local: "greet", Symbol: "greet", From: "lib"}},
		&ast.ExprStmt{X: &ast.Call{Fn: &ast.Name{Ident: "greet"}}},
	))
	main.Imports = []ImportEntry{{Local: "greet", Symbol: "greet", From: "lib"}}
	main.Entry = true

	lib := checkedModule("lib", []ast.Stmt{
		&ast.FuncStmt{Name: "greet", Body: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{ast.Str("hi")}}}},
		&ast.FuncStmt{Name: "stale", Body: []ast.Stmt{&ast.ReturnStmt{}}},
		&ast.ExportStmt{Name: "greet", Local: "greet"},
		&ast.ExportStmt{Name: "stale", Local: "stale"},
	})
	lib.Exports = []ExportEntry{
		{Name: "greet", Kind: SymbolFunc},
		{Name: "stale", Kind: SymbolFunc},
	}
	return &Program{Modules: []*Module{main, lib}}
}

func TestOptimizeProgram_LinksAndShakes(t *testing.T) {
	p := testProgram()
	rep, err := OptimizeProgram(p, WithLevel(LevelAggressive), WithCheckInvariants(true))
	require.NoError(t, err)
	require.Equal(t, 2, rep.Stats.Modules)

	lib := p.Find("lib")
	require.Len(t, lib.Exports, 1)
	require.Equal(t, "greet", lib.Exports[0].Name)
	for _, s := range lib.Tree.Stmts() {
		if v, ok := s.(*ast.FuncStmt); ok {
			require.NotEqual(t, "stale", v.Name)
		}
	}
}

func TestOptimizeProgram_Deterministic(t *testing.T) {
	serial := testProgram()
	_, err := OptimizeProgram(serial, WithNoParallel(true))
	require.NoError(t, err)

	parallel := testProgram()
	_, err = OptimizeProgram(parallel)
	require.NoError(t, err)

	for i := range serial.Modules {
		require.True(t, ast.EqualTrees(serial.Modules[i].Tree, parallel.Modules[i].Tree))
	}
}

func TestOptimizeProgram_CycleDefect(t *testing.T) {
	a := checkedModule("a", []ast.Stmt{
		&ast.ImportStmt{Local: "x", Symbol: "x", From: "b"},
		&ast.ExprStmt{X: &ast.Call{Fn: &ast.Name{Ident: "x"}}},
	})
	a.Entry = true
	b := checkedModule("b", []ast.Stmt{
		&ast.ImportStmt{Local: "y", Symbol: "y", From: "a"},
		&ast.ExprStmt{X: &ast.Call{Fn: &ast.Name{Ident: "y"}}},
	})
	p := &Program{Modules: []*Module{a, b}}

	_, err := OptimizeProgram(p)
	require.Error(t, err)
	var de *DefectError
	require.ErrorAs(t, err, &de)
	require.Contains(t, de.Message, "module dependency cycle")
}
