/*
 * gomin_test.go, part of gomin.
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

package gomin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedMask(Te *testing.T) {
	var zero FixedMask
	assert.Equal(Te, 0, zero.Len())
	assert.False(Te, zero.Contains(0))
	assert.Empty(Te, zero.Indexes())
	assert.Equal(Te, -1, zero.Max())

	m := NewFixedMask(7, 0, 3, 3)
	assert.Equal(Te, 3, m.Len())
	assert.True(Te, m.Contains(3))
	assert.False(Te, m.Contains(4))
	assert.False(Te, m.Contains(-1))
	assert.Equal(Te, []int{0, 3, 7}, m.Indexes())
	assert.Equal(Te, []int{1, 4, 8}, m.Indexes(1))
	assert.Equal(Te, 7, m.Max())
	assert.Panics(Te, func() { NewFixedMask(-2) })
}

func TestTopologyCopy(Te *testing.T) {
	atoms := []*Atom{
		{Name: "C1", ID: 1, Symbol: "C"},
		{Name: "O1", ID: 2, Symbol: "O", Charge: -1, Flags: FlagFix},
	}
	top := NewTopology(-1, atoms, []*Bond{{At1: 0, At2: 1, Order: 1}})
	cp := top.Copy()
	cp.Atom(0).Name = "X"
	cp.Bonds[0].Order = 2
	assert.Equal(Te, "C1", top.Atom(0).Name)
	assert.Equal(Te, 1, top.Bonds[0].Order)
	assert.Equal(Te, -1, cp.Charge())
	assert.True(Te, cp.Atom(1).Fixed())
	assert.False(Te, cp.Atom(0).Fixed())
	assert.Panics(Te, func() { top.Atom(2) })

	top.Atoms[0].ID, top.Atoms[1].ID = 10, 20
	top.ResetIDs()
	assert.Equal(Te, 1, top.Atom(0).ID)
	assert.Equal(Te, 2, top.Atom(1).ID)
}

func TestErrors(Te *testing.T) {
	err := NewError(ErrEmptySelection, "", "MinimizeOB")
	assert.ErrorIs(Te, err, ErrEmptySelection)
	assert.True(Te, err.Critical())
	assert.Equal(Te, "empty selection", err.Error())

	w := NewError(ErrFit, "xfit failed", "fit")
	assert.False(Te, w.Critical())

	cause := fmt.Errorf("no such object")
	var dec error = Decorate(cause, "Update")
	var e *Error
	require.True(Te, errors.As(dec, &e))
	assert.ErrorIs(Te, dec, ErrHost)
	assert.ErrorIs(Te, dec, cause)
	Decorate(dec, "LoadOrUpdate")
	assert.Equal(Te, "Update: LoadOrUpdate: no such object", e.Trace())
	assert.Nil(Te, Decorate(nil, "x"))
}

func TestRecord(Te *testing.T) {
	r := MolRecord("")
	assert.True(Te, r.Empty())
	assert.Equal(Te, FormatMol, r.Format)
}
