/*
 * json_test.go, part of gomin.
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

package chemjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/gomin"
	v3 "github.com/rmera/gomin/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func water(Te *testing.T) (*gomin.Topology, []*v3.Matrix) {
	atoms := []*gomin.Atom{
		{Name: "O", ID: 1, Symbol: "O", MolName: "HOH", MolID: 1, Chain: "A", Flags: gomin.FlagFix},
		{Name: "H1", ID: 2, Symbol: "H", MolName: "HOH", MolID: 1, Chain: "A"},
		{Name: "H2", ID: 3, Symbol: "H", MolName: "HOH", MolID: 1, Chain: "A"},
	}
	bonds := []*gomin.Bond{{At1: 0, At2: 1, Order: 1}, {At1: 0, At2: 2, Order: 1}}
	c1, err := v3.NewMatrix([]float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0})
	require.NoError(Te, err)
	c2, err := v3.NewMatrix([]float64{0, 0, 1, 0.96, 0, 1, -0.24, 0.93, 1})
	require.NoError(Te, err)
	return gomin.NewTopology(0, atoms, bonds), []*v3.Matrix{c1, c2}
}

func TestMoleculeRoundTrip(Te *testing.T) {
	top, coords := water(Te)
	for _, withBonds := range []bool{true, false} {
		var buf bytes.Buffer
		var bonds []*gomin.Bond
		if withBonds {
			bonds = top.Bonds
		}
		require.Nil(Te, SendMolecule(top, coords, bonds, &buf))
		lines := strings.Count(buf.String(), "\n")
		want := 3*2 + 3
		if withBonds {
			want++
		}
		assert.Equal(Te, want, lines)

		mol, got, jerr := DecodeMolecule(bufio.NewReader(&buf), 3, 2, withBonds)
		require.Nil(Te, jerr)
		assert.Empty(Te, cmp.Diff(top.Atoms, mol.Atoms))
		assert.Empty(Te, cmp.Diff(bonds, mol.Bonds))
		require.Len(Te, got, 2)
		for i := range coords {
			assert.True(Te, v3.Equal(coords[i], got[i], 1e-12))
		}
		assert.True(Te, mol.Atom(0).Fixed())
	}
}

func TestOptions(Te *testing.T) {
	in := `{"Command": "minimize_ob", "Args": {"ff": "MMFF94", "nsteps": "100"}, "SelNames": ["mol", "lig"], "AtomsPerSel": [3, 5], "StatesPerSel": [1, 2], "BondsPerSel": [true]}` + "\n"
	o, jerr := DecodeOptions(bufio.NewReader(strings.NewReader(in)))
	require.Nil(Te, jerr)
	assert.Equal(Te, "minimize_ob", o.Command)
	assert.Equal(Te, map[string]string{"ff": "MMFF94", "nsteps": "100"}, o.Args)
	assert.True(Te, o.Bonds(0))
	assert.False(Te, o.Bonds(1))

	for _, bad := range []string{"", "{not json}\n", `{"SelNames": ["a"], "AtomsPerSel": [], "StatesPerSel": [1]}`,
		`{"SelNames": ["a"], "AtomsPerSel": [-1], "StatesPerSel": [1]}`, `{"SelNames": ["a"], "AtomsPerSel": [2], "StatesPerSel": [0]}`} {
		_, jerr = DecodeOptions(bufio.NewReader(strings.NewReader(bad)))
		require.NotNil(Te, jerr, bad)
		assert.True(Te, jerr.InOptions)
	}
}

func TestDecodeErrors(Te *testing.T) {
	atom := `{"Name": "C", "ID": 1, "Symbol": "C"}` + "\n"
	cases := map[string]string{
		"truncated":  atom,
		"bad coords": atom + `{"Coords": [1, 2]}` + "\n",
		"bad bond":   atom + `{"Coords": [1, 2, 3]}` + "\n" + `{"Bonds": [{"At1": 0, "At2": 4, "Order": 1}]}` + "\n",
		"no bonds":   atom + `{"Coords": [1, 2, 3]}` + "\n",
	}
	for name, in := range cases {
		_, _, jerr := DecodeMolecule(bufio.NewReader(strings.NewReader(in)), 1, 1, true)
		require.NotNil(Te, jerr, name)
		assert.True(Te, jerr.InSelections, name)
	}
	_, jerr := DecodeCoords(bufio.NewReader(strings.NewReader(`{"Coords": [1, 2, 3]}`)), 2)
	assert.NotNil(Te, jerr)
	_, _, jerr = DecodeMolecule(bufio.NewReader(strings.NewReader(atom)), -1, 1, false)
	require.NotNil(Te, jerr)
	assert.True(Te, jerr.InSelections)
	_, jerr = DecodeCoords(bufio.NewReader(strings.NewReader(atom)), -3)
	assert.NotNil(Te, jerr)
}

func TestErrorAndInfo(Te *testing.T) {
	gerr := gomin.NewError(gomin.ErrEmptySelection, "empty selection: none", "MinimizeOB")
	jerr := NewError("process", "minimize_ob", gerr)
	assert.True(Te, jerr.InProcess)
	assert.Equal(Te, "empty selection", jerr.Kind)
	assert.True(Te, jerr.Critical())
	var buf bytes.Buffer
	require.NoError(Te, jerr.Send(&buf))
	var back Error
	require.NoError(Te, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(Te, "empty selection: none", back.Message)
	assert.True(Te, back.IsError)

	warn := NewError("postprocess", "fit", gomin.NewError(gomin.ErrFit, "xfit failed", "fit"))
	assert.False(Te, warn.Critical())
	assert.True(Te, warn.InPostProcess)

	buf.Reset()
	info := &Info{Molecules: 1, AtomsPerMolecule: []int{3}, FramesPerMolecule: []int{1}, Energies: []float64{-3.5}, Units: []string{"kcal/mol"}, Converged: []bool{true}}
	require.Nil(Te, info.Send(&buf))
	var got Info
	require.NoError(Te, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(Te, *info, got)
}
