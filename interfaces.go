/*
 * interfaces.go, part of gomin.
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

package gomin

import (
	"sync"

	v3 "github.com/rmera/gomin/v3"
)

//State values with a special meaning for the host.
const (
	CurrentState = -1
	AllStates    = 0
)

// Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the Topology. Should panic if
	//out of range.
	Atom(i int) *Atom

	Len() int
}

//Host is the visualization program the minimizations run for. Everything in
//the host is accessed by name (objects and named selections), never by
//references kept between calls.
//States follow the host convention: CurrentState, AllStates or a 1-based index.
type Host interface {

	//The host-wide lock, used to serialize changes to the scene.
	sync.Locker

	//UnusedName returns a name, starting with prefix, that no object or selection
	//in the scene has, and that UnusedName has not returned before.
	UnusedName(prefix string) string

	//Select creates the named selection name with the atoms matching expr.
	//It returns the number of atoms selected.
	Select(name, expr string, state int) (int, error)

	//Delete removes the object or selection name. Deleting something that
	//doesn't exist is not an error.
	Delete(name string) error

	//Names returns the names of all objects in the scene.
	Names() []string

	//Coords returns the coordinates of the atoms in sele, in iteration order.
	Coords(sele string, state int) (*v3.Matrix, error)

	//LoadCoords replaces the coordinates of the atoms in sele.
	LoadCoords(coords *v3.Matrix, sele string, state int) error

	//AtomFlags returns the flag bits of each atom in sele, in iteration order.
	AtomFlags(sele string, state int) ([]uint32, error)

	//Flag sets (or clears, if set is false) the flag bits in flag for all atoms in sele.
	Flag(flag uint32, sele string, set bool) error

	//Export serializes the atoms in sele (with the bonds among them) at the given state.
	Export(sele string, state int) (Record, error)

	//Load creates the object name from rec, putting the coordinates in state.
	Load(rec Record, name string, state int) error

	//Fit superimposes mobile onto target, pairing atoms by order, with up to
	//cycles outlier-rejection cycles. The whole mobile object is moved.
	//It returns the final RMSD.
	Fit(mobile, target string, mobileState, targetState, cycles int) (float64, error)

	//Update copies the coordinates of source into the atoms of target, pairing atoms by order.
	//Only coordinates are changed.
	Update(target, source string, targetState, sourceState int) error
}

//XFitter is implemented by hosts with a robust superposition method, which is
//preferred over Host.Fit when available.
type XFitter interface {
	XFit(mobile, target string, mobileState, targetState, cycles int) (float64, error)
}
