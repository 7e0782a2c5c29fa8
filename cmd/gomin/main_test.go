/*
 * main_test.go, part of gomin.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/chemjson"
	"github.com/rmera/gomin/config"
	"github.com/rmera/gomin/mm"
	"github.com/rmera/gomin/molfile"
	v3 "github.com/rmera/gomin/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//echo is an engine that returns the structure it gets.
type echo struct {
	mu    *sync.Mutex
	calcs *[]mm.Calc
	rec   gomin.Record
}

func (E *echo) Setup(rec gomin.Record, Q *mm.Calc) error {
	E.mu.Lock()
	*E.calcs = append(*E.calcs, *Q)
	E.mu.Unlock()
	E.rec = rec
	return nil
}

func (E *echo) Step(n int) (bool, error)           { return true, nil }
func (E *echo) Energy() (float64, string, error)   { return 2.5, "kcal/mol", nil }
func (E *echo) Coordinates() (gomin.Record, error) { return E.rec, nil }
func (E *echo) Close() error                       { return nil }

//registerEcho registers an echo engine, and returns the settings of each
//minimization it runs.
func registerEcho(Te *testing.T) func() []mm.Calc {
	var mu sync.Mutex
	var calcs []mm.Calc
	mm.Register("echo", func(command []string) (mm.Minimizer, error) {
		return &echo{mu: &mu, calcs: &calcs}, nil
	})
	Te.Cleanup(func() { mm.Unregister("echo") })
	return func() []mm.Calc {
		mu.Lock()
		defer mu.Unlock()
		return append([]mm.Calc(nil), calcs...)
	}
}

func propane(Te *testing.T) (*gomin.Topology, *v3.Matrix) {
	atoms := []*gomin.Atom{
		{Name: "C1", ID: 1, Symbol: "C"},
		{Name: "C2", ID: 2, Symbol: "C"},
		{Name: "C3", ID: 3, Symbol: "C"},
	}
	bonds := []*gomin.Bond{{At1: 0, At2: 1, Order: 1}, {At1: 1, At2: 2, Order: 1}}
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1.52, 0, 0, 2.0, 1.43, 0.1})
	require.NoError(Te, err)
	return gomin.NewTopology(0, atoms, bonds), coords
}

func exitCode(err error) int {
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestRun(Te *testing.T) {
	var out, errOut bytes.Buffer
	err := run(nil, nil, &out, &errOut)
	assert.Equal(Te, 2, exitCode(err))
	assert.Contains(Te, errOut.String(), "Usage:")

	out.Reset()
	require.NoError(Te, run([]string{"help"}, nil, &out, &errOut))
	assert.Contains(Te, out.String(), "gomin pipe")

	err = run([]string{"bogus"}, nil, &out, &errOut)
	assert.Equal(Te, 2, exitCode(err))
	assert.Contains(Te, err.Error(), "bogus")

	registerEcho(Te)
	out.Reset()
	require.NoError(Te, run([]string{"engines"}, nil, &out, &errOut))
	assert.Contains(Te, out.String(), "echo")
	assert.Contains(Te, out.String(), "minimize_ob, minimize_rdkit")
}

func TestMin(Te *testing.T) {
	calcs := registerEcho(Te)
	dir := Te.TempDir()
	top, coords := propane(Te)
	a := filepath.Join(dir, "a.mol")
	b := filepath.Join(dir, "b.mol.gz")
	require.NoError(Te, molfile.WriteFile(a, top, coords))
	require.NoError(Te, molfile.WriteFile(b, top, coords))

	var out, errOut bytes.Buffer
	args := []string{"min", "-config", filepath.Join(dir, "missing.hcl"), "-engine", "echo", "-steps", "42", "-fix", "1+2", "-j", "2", a, b}
	require.NoError(Te, run(args, nil, &out, &errOut), errOut.String())

	for _, name := range []string{"a_min.mol", "b_min.mol.gz"} {
		mtop, mcoords, err := molfile.ReadFile(filepath.Join(dir, name))
		require.NoError(Te, err, name)
		assert.Equal(Te, 3, mtop.Len())
		assert.True(Te, v3.Equal(coords, mcoords, 1e-3), name)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(Te, lines, 2)
	assert.True(Te, strings.HasPrefix(lines[0], a+" -> "))
	assert.Contains(Te, lines[1], "Energy:     2.50 kcal/mol")

	got := calcs()
	require.Len(Te, got, 2)
	for _, Q := range got {
		assert.Equal(Te, 42, Q.Steps)
		assert.Equal(Te, "UFF", Q.ForceField)
		assert.Equal(Te, []int{0, 1}, Q.Fixed.Indexes())
	}
}

func TestMinNewObject(Te *testing.T) {
	registerEcho(Te)
	dir := Te.TempDir()
	top, coords := propane(Te)
	in := filepath.Join(dir, "in.mol.zst")
	out := filepath.Join(dir, "out.mol")
	require.NoError(Te, molfile.WriteFile(in, top, coords))
	var stdout, stderr bytes.Buffer
	args := []string{"min", "-config", filepath.Join(dir, "missing.hcl"), "-engine", "echo", "-name", "minimized", "-o", out, "-q", in}
	require.NoError(Te, run(args, nil, &stdout, &stderr), stderr.String())
	assert.Empty(Te, stdout.String())
	_, mcoords, err := molfile.ReadFile(out)
	require.NoError(Te, err)
	assert.True(Te, v3.Equal(coords, mcoords, 1e-3))
}

func TestMinErrors(Te *testing.T) {
	registerEcho(Te)
	dir := Te.TempDir()
	top, coords := propane(Te)
	a := filepath.Join(dir, "a.mol")
	require.NoError(Te, molfile.WriteFile(a, top, coords))
	conf := filepath.Join(dir, "missing.hcl")
	for _, tc := range []struct {
		name string
		args []string
		code int
	}{
		{"no files", []string{"min", "-config", conf}, 2},
		{"-o with two files", []string{"min", "-config", conf, "-o", "x.mol", a, a}, 2},
		{"unknown engine", []string{"min", "-config", conf, "-engine", "nope", a}, 2},
		{"bad flag", []string{"min", "-nope", a}, 2},
		{"bad log level", []string{"min", "-config", conf, "-log-level", "loud", a}, 2},
		{"missing file", []string{"min", "-config", conf, "-engine", "echo", filepath.Join(dir, "nope.mol")}, 1},
		{"bad atom IDs", []string{"min", "-config", conf, "-engine", "echo", "-fix", "x-y", a}, 1},
	} {
		Te.Run(tc.name, func(Te *testing.T) {
			var out, errOut bytes.Buffer
			err := run(tc.args, nil, &out, &errOut)
			assert.Equal(Te, tc.code, exitCode(err), "%v", err)
		})
	}
	var out, errOut bytes.Buffer
	require.NoError(Te, run([]string{"min", "-h"}, nil, &out, &errOut))
	assert.Contains(Te, errOut.String(), "-fix")
}

func TestObjectName(Te *testing.T) {
	used := make(map[string]bool)
	assert.Equal(Te, "water", objectName("/tmp/water.mol", used))
	assert.Equal(Te, "water_2", objectName("other/water.mol.gz", used))
	assert.Equal(Te, "my_mol", objectName("my mol.sdf", used))
	assert.Equal(Te, "mol_all", objectName("all.mol", used))
}

//pipeInput returns the input for the pipe command, with the molecule in the selection "mol".
func pipeInput(Te *testing.T, command string, args map[string]string) *bytes.Buffer {
	top, coords := propane(Te)
	o := chemjson.Options{
		Command:      command,
		Args:         args,
		SelNames:     []string{"mol"},
		AtomsPerSel:  []int{3},
		StatesPerSel: []int{1},
		BondsPerSel:  []bool{true},
	}
	in := new(bytes.Buffer)
	require.NoError(Te, json.NewEncoder(in).Encode(o))
	require.Nil(Te, chemjson.SendMolecule(top, []*v3.Matrix{coords}, top.Bonds, in))
	return in
}

func TestPipe(Te *testing.T) {
	calcs := registerEcho(Te)
	conf := filepath.Join(Te.TempDir(), "missing.hcl")
	in := pipeInput(Te, "minimize_ob", map[string]string{"selection": "mol", "nsteps": "10"})
	var out, errOut bytes.Buffer
	err := run([]string{"pipe", "-config", conf, "-engine", "minimize_ob=echo"}, in, &out, &errOut)
	require.NoError(Te, err, errOut.String())

	r := bufio.NewReader(&out)
	top, coordset, jerr := chemjson.DecodeMolecule(r, 3, 1, false)
	require.Nil(Te, jerr)
	assert.Equal(Te, "C2", top.Atom(1).Name)
	_, coords := propane(Te)
	assert.True(Te, v3.Equal(coords, coordset[0], 1e-3))
	info := new(chemjson.Info)
	require.NoError(Te, json.NewDecoder(r).Decode(info))
	assert.Equal(Te, 1, info.Molecules)
	assert.Equal(Te, []int{3}, info.AtomsPerMolecule)
	assert.Equal(Te, []float64{2.5}, info.Energies)
	assert.Equal(Te, []bool{true}, info.Converged)
	assert.Equal(Te, [][]string{{"mol"}}, info.StringInfo)

	got := calcs()
	require.Len(Te, got, 1)
	assert.Equal(Te, 10, got[0].Steps)
}

func TestPipeErrors(Te *testing.T) {
	registerEcho(Te)
	conf := filepath.Join(Te.TempDir(), "missing.hcl")
	for _, tc := range []struct {
		name  string
		in    *bytes.Buffer
		check func(Te *testing.T, jerr *chemjson.Error)
	}{
		{"bad options", bytes.NewBufferString("{nope\n"), func(Te *testing.T, jerr *chemjson.Error) {
			assert.True(Te, jerr.InOptions)
		}},
		{"unknown command", pipeInput(Te, "minimize_xtb", nil), func(Te *testing.T, jerr *chemjson.Error) {
			assert.True(Te, jerr.InOptions)
			assert.Equal(Te, gomin.ErrArgument.Error(), jerr.Kind)
		}},
		{"bad argument", pipeInput(Te, "minimize_ob", map[string]string{"nsteps": "many"}), func(Te *testing.T, jerr *chemjson.Error) {
			assert.True(Te, jerr.InProcess)
			assert.Equal(Te, gomin.ErrArgument.Error(), jerr.Kind)
		}},
		{"empty selection", pipeInput(Te, "minimize_ob", map[string]string{"selection": "none"}), func(Te *testing.T, jerr *chemjson.Error) {
			assert.Equal(Te, gomin.ErrEmptySelection.Error(), jerr.Kind)
		}},
		{"negative atom count", bytes.NewBufferString(`{"Command":"minimize_ob","SelNames":["mol"],"AtomsPerSel":[-1],"StatesPerSel":[1]}` + "\n"), func(Te *testing.T, jerr *chemjson.Error) {
			assert.True(Te, jerr.InOptions)
			assert.Equal(Te, "mol", jerr.Selection)
		}},
		{"truncated molecule", bytes.NewBufferString(`{"Command":"minimize_ob","SelNames":["mol"],"AtomsPerSel":[2],"StatesPerSel":[1]}` + "\n"), func(Te *testing.T, jerr *chemjson.Error) {
			assert.True(Te, jerr.InSelections)
			assert.Equal(Te, "mol", jerr.Selection)
		}},
	} {
		Te.Run(tc.name, func(Te *testing.T) {
			var out, errOut bytes.Buffer
			err := run([]string{"pipe", "-config", conf, "-engine", "minimize_ob=echo"}, tc.in, &out, &errOut)
			assert.Equal(Te, 1, exitCode(err))
			jerr := new(chemjson.Error)
			require.NoError(Te, json.Unmarshal(out.Bytes(), jerr), out.String())
			assert.True(Te, jerr.IsError)
			tc.check(Te, jerr)
		})
	}
}

func TestEngineDefaults(Te *testing.T) {
	C := config.Default()
	got := engineDefaults("minimize_ob", map[string]string{"quiet": "0"}, C, nil)
	assert.Equal(Te, map[string]string{"quiet": "0", "ff": "UFF", "nsteps": "500"}, got)
	got = engineDefaults("minimize_rdkit", map[string]string{"ff": "UFF"}, C, nil)
	assert.Equal(Te, map[string]string{"ff": "UFF", "nsteps": "200"}, got)
	got = engineDefaults("clean_ob", map[string]string{"selection": "x"}, C, nil)
	assert.Equal(Te, map[string]string{"selection": "x"}, got)
	got = engineDefaults("minimize_ob", nil, C, engineMap{"minimize_ob": "echo"})
	assert.Empty(Te, got)

	e := make(engineMap)
	require.NoError(Te, e.Set("minimize_ob=echo,clean_ob=ob2"))
	assert.Equal(Te, "ob2", e["clean_ob"])
	assert.Error(Te, e.Set("minimize_ob"))
}
