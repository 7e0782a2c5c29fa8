/*
 * clean_test.go, part of gomin.
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

package minimize

import (
	"bytes"
	"testing"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/mm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixFlags(Te *testing.T, h gomin.Host, sele string) []bool {
	flags, err := h.AtomFlags(sele, gomin.CurrentState)
	require.NoError(Te, err)
	ret := make([]bool, len(flags))
	for i, f := range flags {
		ret[i] = f&gomin.FlagFix != 0
	}
	return ret
}

func TestCleanOBPresent(Te *testing.T) {
	for _, fail := range []bool{false, true} {
		S := newScene(Te, map[string]int{"mol": 6})
		require.NoError(Te, S.Flag(gomin.FlagFix, "mol/1-2", true))
		st := newStub()
		engine := st.register(Te)
		var during []bool
		st.setup = func(rec gomin.Record, Q *mm.Calc) error {
			during = fixFlags(Te, S, "mol")
			assert.Equal(Te, []int{3, 4, 5}, Q.Fixed.Indexes())
			assert.Equal(Te, "MMFF94", Q.ForceField)
			assert.Equal(Te, 50, Q.Steps)
			if fail {
				return gomin.NewError(gomin.ErrEngine, "engine crashed", "setup")
			}
			return nil
		}
		o := DefaultCleanOptions()
		o.Selection = "mol/1-3"
		o.Present = "mol/4-6"
		o.Engine = engine
		o.Logger = quietLogger
		_, err := CleanOB(S, o)
		if fail {
			assert.ErrorIs(Te, err, gomin.ErrEngine)
		} else {
			assert.NoError(Te, err)
		}
		assert.Equal(Te, []bool{false, false, false, true, true, true}, during)
		assert.Equal(Te, []bool{false, false, false, false, false, false}, fixFlags(Te, S, "mol"), "fail=%v", fail)
		require.Len(Te, st.in, 1)
		assert.Empty(Te, S.Selections())
	}
}

func TestCleanOB(Te *testing.T) {
	S := newScene(Te, map[string]int{"mol": 5})
	require.NoError(Te, S.Flag(gomin.FlagFix, "mol/5", true))
	st := newStub()
	engine := st.register(Te)
	o := DefaultCleanOptions()
	o.Selection = "mol"
	o.Method = "Ghemical"
	o.Engine = engine
	o.Logger = quietLogger
	var out bytes.Buffer
	o.Out = &out
	_, err := CleanOB(S, o)
	require.NoError(Te, err)
	require.Len(Te, st.calcs, 1)
	assert.Equal(Te, "Ghemical", st.calcs[0].ForceField)
	assert.Equal(Te, []int{4}, st.calcs[0].Fixed.Indexes())
	assert.Equal(Te, []bool{false, false, false, false, true}, fixFlags(Te, S, "mol"), "without present, the flags stay")
	assert.Empty(Te, out.String(), "clean is quiet")

	o.Selection = "none"
	_, err = CleanOB(S, o)
	assert.ErrorIs(Te, err, gomin.ErrEmptySelection)
}

func TestCommands(Te *testing.T) {
	assert.Equal(Te, []string{"clean_ob", "minimize_ob", "minimize_rdkit"}, CommandNames())
	S := newScene(Te, map[string]int{"mol": 5})
	st := newStub()
	engine := st.register(Te)
	var out bytes.Buffer
	env := &Env{
		Logger:   quietLogger,
		Out:      &out,
		Engines:  map[string]string{"minimize_ob": engine, "minimize_rdkit": engine, "clean_ob": engine},
		Commands: map[string][]string{engine: {"/usr/bin/python3", "-u"}},
	}
	cmds := Commands()

	_, err := cmds["minimize_ob"](S, map[string]string{"selection": "mol", "nsteps": "20", "cutoff": "1", "cut_vdw": "4.5", "ff": "GAFF", "quiet": "0"}, env)
	require.NoError(Te, err)
	Q := st.calcs[0]
	assert.Equal(Te, 20, Q.Steps)
	assert.True(Te, Q.Cutoff)
	assert.Equal(Te, 4.5, Q.CutVDW)
	assert.Equal(Te, "GAFF", Q.ForceField)
	assert.Contains(Te, out.String(), " Energy:     1.50 kcal/mol")

	_, err = cmds["minimize_rdkit"](S, map[string]string{"selection": " mol/1-3 ", "state": "1", "ff": "UFF"}, env)
	require.NoError(Te, err)
	assert.Equal(Te, "UFF", st.calcs[1].ForceField)
	assert.Equal(Te, 200, st.calcs[1].Steps)

	_, err = cmds["clean_ob"](S, map[string]string{"selection": "mol", "save_undo": "0", "message": "cleaning"}, env)
	require.NoError(Te, err)
	assert.Equal(Te, "MMFF94", st.calcs[2].ForceField)

	for _, bad := range []map[string]string{
		{"selection": "mol", "nsteps": "many"},
		{"selection": "mol", "quiet": "maybe"},
		{"selection": "mol", "conv": "small"},
		{"selection": "mol", "colour": "red"},
	} {
		_, err = cmds["minimize_ob"](S, bad, env)
		assert.ErrorIs(Te, err, gomin.ErrArgument, "%v", bad)
	}
	_, err = cmds["clean_ob"](S, map[string]string{"present": "mol"}, env)
	assert.ErrorIs(Te, err, gomin.ErrArgument)
	assert.Len(Te, st.calcs, 3, "bad arguments never reach the engine")

	//without an environment, the default engine is used.
	_, err = cmds["minimize_rdkit"](S, map[string]string{"selection": "none"}, nil)
	assert.ErrorIs(Te, err, gomin.ErrEmptySelection)
}
