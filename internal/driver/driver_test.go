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

package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selene-lang/selene/debug"
	"github.com/selene-lang/selene/internal/ast"
	"github.com/selene-lang/selene/internal/flow"
	"github.com/selene-lang/selene/internal/opts"
	"github.com/selene-lang/selene/internal/pass"
	"github.com/selene-lang/selene/internal/unit"
)

func name(s string) *ast.Name {
	return &ast.Name{Ident: s}
}

func local(n string, init ast.Expr) ast.Stmt {
	return &ast.LocalStmt{Names: []*ast.Name{name(n)}, Init: []ast.Expr{init}}
}

func assign(n string, rhs ast.Expr) ast.Stmt {
	return &ast.AssignStmt{Lhs: []ast.Expr{name(n)}, Rhs: []ast.Expr{rhs}}
}

/* folds, prunes and shakes across several passes */
func moduleStmts() []ast.Stmt {
	return []ast.Stmt{
		local("a", &ast.Binary{Op: ast.AddOp, L: ast.Int(40), R: ast.Int(2)}),
		local("waste", ast.Int(1)),
		&ast.IfStmt{
			Cond: ast.Bool(true),
			Then: []ast.Stmt{assign("a", ast.Int(1))},
			Else: []ast.Stmt{assign("a", ast.Int(2))},
		},
		&ast.WhileStmt{Cond: ast.Bool(false), Body: []ast.Stmt{assign("a", ast.Int(3))}},
		&ast.FuncStmt{
			Name:     "peek",
			Exported: true,
			Body:     []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{name("a")}}},
		},
		&ast.ReturnStmt{Results: []ast.Expr{name("a")}},
	}
}

func checkedOptions(lv opts.Level) opts.Options {
	o := opts.GetDefaultOptions()
	o.Level = lv
	o.Profile = true
	o.CheckInvariants = true
	return o
}

func TestDriver_Converges(t *testing.T) {
	o := checkedOptions(opts.LevelAggressive)
	prof := new(debug.Profile)
	d := &Driver{Name: "main", Options: &o, Registry: &pass.Defaults, Profile: prof}

	nt, r := d.Run(ast.Freeze(moduleStmts()))
	require.False(t, r.Capped)
	require.GreaterOrEqual(t, r.Rounds, 2)
	require.LessOrEqual(t, r.Rounds, o.MaxRounds)
	require.Empty(t, prof.Warnings())

	/* the change log covers every round */
	recs := prof.Records()
	require.NotEmpty(t, recs)
	last := 0
	for _, rec := range recs {
		require.Equal(t, "main", rec.Module)
		if rec.Round > last {
			last = rec.Round
		}
	}
	require.Equal(t, r.Rounds-1, last)

	/* the last round reported no change anywhere */
	for _, rec := range recs {
		if rec.Round == last {
			require.False(t, rec.Changed, "pass %q", rec.Pass)
		}
	}

	/* the result is stable: optimizing again changes nothing */
	again, r2 := d.Run(ast.CloneTree(nt))
	require.Equal(t, 1, r2.Rounds)
	require.True(t, ast.EqualTrees(nt, again))
}

func TestDriver_RoundCap(t *testing.T) {
	o := checkedOptions(opts.LevelAggressive)
	o.MaxRounds = 1
	prof := new(debug.Profile)
	d := &Driver{Name: "main", Options: &o, Registry: &pass.Defaults, Profile: prof}

	_, r := d.Run(ast.Freeze(moduleStmts()))
	require.True(t, r.Capped)
	require.Equal(t, 1, r.Rounds)
	require.NotEmpty(t, prof.Warnings())
}

func TestDriver_LevelNone(t *testing.T) {
	o := checkedOptions(opts.LevelNone)
	d := &Driver{Name: "main", Options: &o, Registry: &pass.Defaults}

	tr := ast.Freeze(moduleStmts())
	nt, r := d.Run(tr)
	require.Same(t, tr, nt)
	require.Equal(t, 0, r.Rounds)
}

/* a transform that mutates while denying it */
type lyingPass struct{}

func (lyingPass) Name() string                      { return "Liar" }
func (lyingPass) Kind() pass.Kind                   { return pass.KindTransform }
func (lyingPass) Priority() pass.Priority           { return pass.PrioSimplify }
func (lyingPass) MinLevel() opts.Level              { return opts.LevelMinimal }
func (lyingPass) Requires() []flow.AnalysisKind     { return nil }
func (lyingPass) Enabled(*opts.Options) bool        { return true }
func (lyingPass) Run(ctx *pass.Context) bool {
	ctx.Replace(append(ctx.Stmts(), &ast.ReturnStmt{}))
	return false
}

func TestDriver_LyingPassIsADefect(t *testing.T) {
	reg := new(pass.Registry)
	reg.Register(lyingPass{})

	o := checkedOptions(opts.LevelModerate)
	d := &Driver{Name: "main", Options: &o, Registry: reg}

	require.PanicsWithValue(t, `selene: pass "Liar" mutated the tree while reporting no change`, func() {
		d.Run(ast.Freeze(moduleStmts()))
	})
}

func testProgram(n int) *unit.Program {
	prog := &unit.Program{Strings: ast.NewStringTable([]string{"a", "peek"})}
	for i := 0; i < n; i++ {
		prog.Modules = append(prog.Modules, &unit.Module{
			Name: string(rune('a' + i)),
			Tree: ast.Freeze(moduleStmts()),
		})
	}
	return prog
}

func TestRunProgram_SerialParallelIdentical(t *testing.T) {
	o := checkedOptions(opts.LevelAggressive)

	serial := testProgram(8)
	so := o
	so.NoParallel = true
	RunProgram(serial, &so, &pass.Defaults, nil)

	parallel := testProgram(8)
	RunProgram(parallel, &o, &pass.Defaults, nil)

	for i := range serial.Modules {
		require.True(t, ast.EqualTrees(serial.Modules[i].Tree, parallel.Modules[i].Tree),
			"module %q diverged", serial.Modules[i].Name)
	}
}

func TestRunProgram_WorkerDefectPropagates(t *testing.T) {
	o := checkedOptions(opts.LevelModerate)
	prog := testProgram(4)

	/* a break outside any loop cannot reach the optimizer */
	prog.Modules[2].Tree = ast.Freeze([]ast.Stmt{&ast.BreakStmt{}})

	require.PanicsWithValue(t, "selene: break outside of a loop", func() {
		RunProgram(prog, &o, &pass.Defaults, nil)
	})
}
