/*
 * openbabel.go, part of gomin.
 *
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
 *
 */
//In order to use this part of the library you need Open Babel, with its Python bindings.
//Please cite Open Babel if you use it in your research: J. Cheminf. 2011, 3, 33.

package mm

import (
	_ "embed"
	"log/slog"

	"github.com/rmera/gomin"
)

//go:embed drivers/openbabel.py
var obDriver string

//OBHandle runs minimizations with Open Babel.
//Note that the default settings are NOT considered part of the API, so they can always change.
type OBHandle struct {
	command []string
	logger  *slog.Logger
	c       caller
	added   []int //IDs of the hydrogens added by Setup
	steps   [2]int
	conv    float64
}

//NewOBHandle returns an Open Babel handle that will run the driver with command.
func NewOBHandle(command ...string) *OBHandle {
	O := new(OBHandle)
	O.SetDefaults()
	if len(command) > 0 {
		O.SetCommand(command...)
	}
	return O
}

//SetDefaults sets the default command to run the driver.
func (O *OBHandle) SetDefaults() {
	O.command = []string{"python3", "-u"}
	O.logger = slog.Default()
}

//SetCommand sets the command used to run the Python driver.
func (O *OBHandle) SetCommand(command ...string) {
	O.command = append([]string{}, command...)
}

//Command returns the command used to run the driver.
func (O *OBHandle) Command() []string {
	return O.command
}

//SetLogger sets the logger for the engine messages.
func (O *OBHandle) SetLogger(l *slog.Logger) {
	if l != nil {
		O.logger = l
	}
}

//Added returns the IDs of the hydrogens added during Setup.
func (O *OBHandle) Added() []int {
	return O.added
}

type obSetup struct {
	ForceField ForceField
	Fixed      []int //1-based
	Cutoff     bool
	CutVDW     float64
	CutElec    float64
}

type idList struct {
	IDs []int
}

//Setup reads the structure, adds hydrogens (if requested), constrains the fixed atoms and
//prepares the force field.
func (O *OBHandle) Setup(rec gomin.Record, Q *Calc) error {
	ff, err := ParseOBForceField(Q.ForceField)
	if err != nil {
		return gomin.Decorate(err, "OBHandle.Setup")
	}
	if rec.Format != gomin.FormatMol {
		return gomin.NewError(gomin.ErrStructureImport, "Open Babel handle needs a mol record, got "+rec.Format, "OBHandle.Setup")
	}
	if O.c == nil {
		s, err := StartSession("openbabel", O.logger, obDriver, O.command...)
		if err != nil {
			return gomin.Decorate(err, "OBHandle.Setup")
		}
		O.c = s
	}
	if err := O.c.Call("read", struct{ Mol string }{rec.Data}, nil); err != nil {
		return gomin.Decorate(err, "OBHandle.Setup")
	}
	O.added = nil
	if Q.AddHydrogens {
		if O.added, err = O.addHydrogens(); err != nil {
			return gomin.Decorate(err, "OBHandle.Setup")
		}
	}
	//The added hydrogens go after the original atoms, so the indexes don't change.
	params := obSetup{ForceField: ff, Fixed: Q.Fixed.Indexes(1), Cutoff: Q.Cutoff, CutVDW: Q.CutVDW, CutElec: Q.CutElec}
	if err := O.c.Call("setup", params, nil); err != nil {
		return gomin.Decorate(err, "OBHandle.Setup")
	}
	O.conv = Q.Convergence
	return nil
}

//addHydrogens adds hydrogens to the molecule and returns the IDs of the new atoms.
func (O *OBHandle) addHydrogens() ([]int, error) {
	var before, after idList
	if err := O.c.Call("atom_ids", nil, &before); err != nil {
		return nil, err
	}
	if err := O.c.Call("add_hydrogens", nil, nil); err != nil {
		return nil, err
	}
	if err := O.c.Call("atom_ids", nil, &after); err != nil {
		return nil, err
	}
	orig := make(map[int]bool, len(before.IDs))
	for _, v := range before.IDs {
		orig[v] = true
	}
	added := make([]int, 0, len(after.IDs)-len(before.IDs))
	for _, v := range after.IDs {
		if !orig[v] {
			added = append(added, v)
		}
	}
	return added, nil
}

type obSteps struct {
	Steps       int
	Convergence float64
}

type convergence struct {
	Converged bool
}

//Step runs n/2 steepest descent steps followed by n/2 conjugate gradients steps.
//It returns true if the last algorithm run met the convergence criterion.
func (O *OBHandle) Step(n int) (bool, error) {
	if O.c == nil {
		return false, gomin.NewError(gomin.ErrEngine, "Step called before Setup", "OBHandle.Step")
	}
	half := n / 2
	var conv convergence
	if half <= 0 {
		return false, nil
	}
	if err := O.c.Call("steepest_descent", obSteps{half, O.conv}, &conv); err != nil {
		return false, gomin.Decorate(err, "OBHandle.Step")
	}
	O.steps[0] += half
	if err := O.c.Call("conjugate_gradients", obSteps{half, O.conv}, &conv); err != nil {
		return false, gomin.Decorate(err, "OBHandle.Step")
	}
	O.steps[1] += half
	O.logger.Debug("Open Babel minimization", "steepest_descent", O.steps[0], "conjugate_gradients", O.steps[1], "converged", conv.Converged)
	return conv.Converged, nil
}

type energy struct {
	Energy float64
	Unit   string
}

//Energy returns the force field energy for the current coordinates, and its unit.
func (O *OBHandle) Energy() (float64, string, error) {
	if O.c == nil {
		return 0, "", gomin.NewError(gomin.ErrEngine, "Energy called before Setup", "OBHandle.Energy")
	}
	var e energy
	if err := O.c.Call("energy", nil, &e); err != nil {
		return 0, "", gomin.Decorate(err, "OBHandle.Energy")
	}
	return e.Energy, e.Unit, nil
}

//Coordinates gets the coordinates from the force field, removes the hydrogens added in Setup, and
//returns the structure.
func (O *OBHandle) Coordinates() (gomin.Record, error) {
	if O.c == nil {
		return gomin.Record{}, gomin.NewError(gomin.ErrEngine, "Coordinates called before Setup", "OBHandle.Coordinates")
	}
	if err := O.c.Call("get_coordinates", nil, nil); err != nil {
		return gomin.Record{}, gomin.Decorate(err, "OBHandle.Coordinates")
	}
	if len(O.added) > 0 {
		if err := O.c.Call("delete_atoms", idList{O.added}, nil); err != nil {
			return gomin.Record{}, gomin.Decorate(err, "OBHandle.Coordinates")
		}
		O.added = nil
	}
	var mol struct{ Mol string }
	if err := O.c.Call("write", nil, &mol); err != nil {
		return gomin.Record{}, gomin.Decorate(err, "OBHandle.Coordinates")
	}
	return gomin.MolRecord(mol.Mol), nil
}

//Close stops the driver.
func (O *OBHandle) Close() error {
	if O.c == nil {
		return nil
	}
	err := O.c.Close()
	O.c = nil
	return err
}
