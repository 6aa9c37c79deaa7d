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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/unit"
)

func name(s string) *ast.Name {
	return &ast.Name{Ident: s}
}

func callStmt(fn string) ast.Stmt {
	return &ast.ExprStmt{X: &ast.Call{Fn: name(fn)}}
}

func funcDecl(n string, body ...ast.Stmt) *ast.FuncStmt {
	return &ast.FuncStmt{Name: n, Body: body}
}

func linkOptions() opts.Options {
	o := opts.GetDefaultOptions()
	o.CheckInvariants = true
	return o
}

func exportNames(m *unit.Module) []string {
	nb := make([]string, 0, len(m.Exports))
	for _, e := range m.Exports {
		nb = append(nb, e.Name)
	}
	return nb
}

func stmtsOf(m *unit.Module) []ast.Stmt {
	return m.Tree.Stmts()
}

func declares(m *unit.Module, fn string) bool {
	for _, s := range stmtsOf(m) {
		if v, ok := s.(*ast.FuncStmt); ok && v.Name == fn {
			return true
		}
	}
	return false
}

func utilsModule(helper1Body ...ast.Stmt) *unit.Module {
	return &unit.Module{
		Name: "utils",
		Tree: ast.Freeze([]ast.Stmt{
			funcDecl("helper1", helper1Body...),
			funcDecl("helper2", &ast.ReturnStmt{Results: []ast.Expr{ast.Int(2)}}),
			&ast.ExportStmt{Name: "helper1", Local: "helper1"},
			&ast.ExportStmt{Name: "helper2", Local: "helper2"},
		}),
		Exports: []unit.ExportEntry{
			{Name: "helper1", Kind: unit.SymbolFunc},
			{Name: "helper2", Kind: unit.SymbolFunc},
		},
	}
}

func mainModule(imports ...string) *unit.Module {
	var stmts []ast.Stmt
	var tab []unit.ImportEntry
	for _, sym := range imports {
		stmts = append(stmts, &ast.ImportStmt{Local: sym, Symbol: sym, From: "utils"})
		tab = append(tab, unit.ImportEntry{Local: sym, Symbol: sym, From: "utils"})
	}
	stmts = append(stmts, callStmt("helper1"))
	return &unit.Module{
		Name:    "main",
		Tree:    ast.Freeze(stmts),
		Imports: tab,
		Entry:   true,
	}
}

func TestLink_DeadExportShaken(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		mainModule("helper1"),
		utilsModule(&ast.ReturnStmt{Results: []ast.Expr{ast.Int(1)}}),
	}}

	rounds, capped := Run(prog, &o, nil)
	require.False(t, capped)
	require.GreaterOrEqual(t, rounds, 2)

	utils := prog.Find("utils")
	require.Equal(t, []string{"helper1"}, exportNames(utils))
	require.True(t, declares(utils, "helper1"))
	require.False(t, declares(utils, "helper2"))
}

func TestLink_InternalUseKeepsDeclaration(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		mainModule("helper1"),

		/* helper1 calls helper2, so only the export goes */
		utilsModule(callStmt("helper2"), &ast.ReturnStmt{}),
	}}

	Run(prog, &o, nil)
	utils := prog.Find("utils")
	require.Equal(t, []string{"helper1"}, exportNames(utils))
	require.True(t, declares(utils, "helper2"))
}

func TestLink_DeadImportCascade(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		/* helper2 is imported but never referenced */
		mainModule("helper1", "helper2"),
		utilsModule(&ast.ReturnStmt{}),
	}}

	Run(prog, &o, nil)

	main := prog.Find("main")
	require.Len(t, main.Imports, 1)
	require.Equal(t, "helper1", main.Imports[0].Symbol)
	for _, s := range stmtsOf(main) {
		if v, ok := s.(*ast.ImportStmt); ok {
			require.Equal(t, "helper1", v.Symbol)
		}
	}

	/* losing its last importer kills the export on the next round */
	require.Equal(t, []string{"helper1"}, exportNames(prog.Find("utils")))
}

func TestLink_ReExportFlattening(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		{
			Name: "app",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ImportStmt{Local: "k", Symbol: "m", From: "middle"},
				callStmt("k"),
			}),
			Imports: []unit.ImportEntry{{Local: "k", Symbol: "m", From: "middle"}},
			Entry:   true,
		},
		{
			Name: "middle",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ExportStmt{Name: "m", Local: "k", From: "core"},
			}),
			Exports: []unit.ExportEntry{{Name: "m", Kind: unit.SymbolFunc}},
		},
		{
			Name: "core",
			Tree: ast.Freeze([]ast.Stmt{
				funcDecl("k", &ast.ReturnStmt{}),
				&ast.ExportStmt{Name: "k", Local: "k"},
			}),
			Exports: []unit.ExportEntry{{Name: "k", Kind: unit.SymbolFunc}},
		},
	}}

	Run(prog, &o, nil)

	/* the app binds core directly */
	app := prog.Find("app")
	require.Equal(t, "core", app.Imports[0].From)
	require.Equal(t, "k", app.Imports[0].Symbol)
	for _, s := range stmtsOf(app) {
		if v, ok := s.(*ast.ImportStmt); ok {
			require.Equal(t, "core", v.From)
		}
	}

	/* the middleman retains no trace of the re-export */
	middle := prog.Find("middle")
	require.Empty(t, middle.Exports)
	require.Empty(t, stmtsOf(middle))

	/* core still exports the symbol */
	require.Equal(t, []string{"k"}, exportNames(prog.Find("core")))
}

func TestLink_ReExportBindingNameFallback(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		{
			/* entry re-export with no Local: the binding is the name */
			Name: "hub",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ExportStmt{Name: "k", From: "mid"},
			}),
			Exports: []unit.ExportEntry{{Name: "k", Kind: unit.SymbolFunc}},
			Entry:   true,
		},
		{
			Name: "mid",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ExportStmt{Name: "k", Local: "k", From: "core"},
			}),
			Exports: []unit.ExportEntry{{Name: "k", Kind: unit.SymbolFunc}},
		},
		{
			Name: "core",
			Tree: ast.Freeze([]ast.Stmt{
				funcDecl("k", &ast.ReturnStmt{}),
				&ast.ExportStmt{Name: "k", Local: "k"},
			}),
			Exports: []unit.ExportEntry{{Name: "k", Kind: unit.SymbolFunc}},
		},
	}}

	Run(prog, &o, nil)

	/* the hub re-export now points past the middleman */
	var reexport *ast.ExportStmt
	for _, s := range stmtsOf(prog.Find("hub")) {
		if v, ok := s.(*ast.ExportStmt); ok && v.From != "" {
			reexport = v
		}
	}
	require.NotNil(t, reexport)
	require.Equal(t, "core", reexport.From)
	require.Equal(t, "k", reexport.Local)

	/* and the bypassed middleman was shaken away */
	require.Empty(t, prog.Find("mid").Exports)
	require.Equal(t, []string{"k"}, exportNames(prog.Find("core")))
}

func TestLink_ValueCycleIsADefect(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		{
			Name: "a",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ImportStmt{Local: "x", Symbol: "x", From: "b"},
				callStmt("x"),
			}),
			Entry: true,
		},
		{
			Name: "b",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ImportStmt{Local: "y", Symbol: "y", From: "a"},
				callStmt("y"),
			}),
		},
	}}

	require.Panics(t, func() { Run(prog, &o, nil) })
}

func TestLink_TypeOnlyCycleAllowed(t *testing.T) {
	o := linkOptions()
	prog := &unit.Program{Modules: []*unit.Module{
		{
			Name: "a",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ImportStmt{Local: "T", Symbol: "T", From: "b", TypeOnly: true},
			}),
			Imports: []unit.ImportEntry{{Local: "T", Symbol: "T", From: "b", TypeOnly: true}},
			Entry:   true,
		},
		{
			Name: "b",
			Tree: ast.Freeze([]ast.Stmt{
				&ast.ImportStmt{Local: "U", Symbol: "U", From: "a", TypeOnly: true},
			}),
			Imports: []unit.ImportEntry{{Local: "U", Symbol: "U", From: "a", TypeOnly: true}},
		},
	}}

	require.NotPanics(t, func() { Run(prog, &o, nil) })
}

func TestLink_NoTreeShaking(t *testing.T) {
	o := linkOptions()
	o.NoTreeShaking = true
	prog := &unit.Program{Modules: []*unit.Module{
		mainModule("helper1"),
		utilsModule(&ast.ReturnStmt{}),
	}}

	Run(prog, &o, nil)

	/* everything dead stays put */
	utils := prog.Find("utils")
	require.ElementsMatch(t, []string{"helper1", "helper2"}, exportNames(utils))
	require.True(t, declares(utils, "helper2"))
}

func TestLink_SkippedBelowModerate(t *testing.T) {
	o := linkOptions()
	o.Level = opts.LevelMinimal
	prog := &unit.Program{Modules: []*unit.Module{
		mainModule("helper1"),
		utilsModule(&ast.ReturnStmt{}),
	}}

	rounds, capped := Run(prog, &o, nil)
	require.Equal(t, 0, rounds)
	require.False(t, capped)

	/* the trees were not even consumed */
	require.NotPanics(t, func() { stmtsOf(prog.Find("utils")) })
}
