/*
 * chem.go, part of gomin.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package gomin

import "fmt"

//Flag bits for Atom.Flags. They follow the PyMOL numbering,
//so flags read from the host can be used directly.
const (
	FlagFocus    uint32 = 1 << 0
	FlagFree     uint32 = 1 << 1
	FlagRestrain uint32 = 1 << 2
	FlagFix      uint32 = 1 << 3 //the atom must not move during minimizations.
	FlagExclude  uint32 = 1 << 4
)

//Atom contains the atom information except for the coordinates, which will be in a matrix.
type Atom struct {
	Name    string
	ID      int //1-based
	Symbol  string
	MolName string
	MolID   int
	Chain   string
	Charge  int //formal charge
	Flags   uint32
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

//Fixed returns true if the atom has the fix flag.
func (A *Atom) Fixed() bool {
	return A.Flags&FlagFix != 0
}

//String returns a short, PyMOL-like, description of the atom.
func (A *Atom) String() string {
	return fmt.Sprintf("/%s/%s/%s`%d/%s`%d", A.MolName, A.Chain, A.MolName, A.MolID, A.Name, A.ID)
}

//Bond joins 2 atoms, given as 0-based indexes in the Topology they belong to.
type Bond struct {
	At1   int
	At2   int
	Order int
}

/*****Topology type***/

//Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates).
type Topology struct {
	Atoms  []*Atom
	Bonds  []*Bond
	charge int
}

//NewTopology returns a topology with the given charge, atoms and bonds.
//It doesn't check for consistency across slices or correct charge.
func NewTopology(charge int, atoms []*Atom, bonds []*Bond) *Topology {
	top := new(Topology)
	top.Atoms = atoms
	if top.Atoms == nil {
		top.Atoms = make([]*Atom, 0)
	}
	top.Bonds = bonds
	top.charge = charge
	return top
}

//Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

//SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Copy returns a deep copy of the topology.
func (T *Topology) Copy() *Topology {
	ret := NewTopology(T.charge, make([]*Atom, T.Len()), make([]*Bond, len(T.Bonds)))
	for i, v := range T.Atoms {
		ret.Atoms[i] = v.Copy()
	}
	for i, v := range T.Bonds {
		b := *v
		ret.Bonds[i] = &b
	}
	return ret
}

//ResetIDs sets the current order of atoms as ID for all atoms.
func (T *Topology) ResetIDs() {
	for i, v := range T.Atoms {
		v.ID = i + 1
	}
}
