/*
 * rdkit.go, part of gomin.
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
//In order to use this part of the library you need RDKit, with its Python bindings.

package mm

import (
	_ "embed"
	"log/slog"

	"github.com/rmera/gomin"
)

//go:embed drivers/rdkit.py
var rdkitDriver string

//RDKitHandle runs minimizations with RDKit.
type RDKitHandle struct {
	command []string
	logger  *slog.Logger
	c       caller
	steps   int
}

//NewRDKitHandle returns an RDKit handle that will run the driver with command.
func NewRDKitHandle(command ...string) *RDKitHandle {
	R := new(RDKitHandle)
	R.SetDefaults()
	if len(command) > 0 {
		R.SetCommand(command...)
	}
	return R
}

//SetDefaults sets the default command to run the driver.
func (R *RDKitHandle) SetDefaults() {
	R.command = []string{"python3", "-u"}
	R.logger = slog.Default()
}

//SetCommand sets the command used to run the Python driver.
func (R *RDKitHandle) SetCommand(command ...string) {
	R.command = append([]string{}, command...)
}

//Command returns the command used to run the driver.
func (R *RDKitHandle) Command() []string {
	return R.command
}

//SetLogger sets the logger for the engine messages.
func (R *RDKitHandle) SetLogger(l *slog.Logger) {
	if l != nil {
		R.logger = l
	}
}

type rdkitSetup struct {
	ForceField ForceField
	Fixed      []int //0-based
	Verbose    bool
}

//Setup parses the structure, keeping its hydrogens, builds the force field and
//fixes the fixed atoms. A structure RDKit can't sanitize gives an error
//of the kind gomin.ErrStructureImport.
func (R *RDKitHandle) Setup(rec gomin.Record, Q *Calc) error {
	ff, err := ParseRDKitForceField(Q.ForceField)
	if err != nil {
		return gomin.Decorate(err, "RDKitHandle.Setup")
	}
	if rec.Format != gomin.FormatMol {
		return gomin.NewError(gomin.ErrStructureImport, "RDKit handle needs a mol record, got "+rec.Format, "RDKitHandle.Setup")
	}
	if R.c == nil {
		s, err := StartSession("rdkit", R.logger, rdkitDriver, R.command...)
		if err != nil {
			return gomin.Decorate(err, "RDKitHandle.Setup")
		}
		R.c = s
	}
	if err := R.c.Call("read", struct{ Mol string }{rec.Data}, nil); err != nil {
		return gomin.Decorate(err, "RDKitHandle.Setup")
	}
	if err := R.c.Call("setup", rdkitSetup{ForceField: ff, Fixed: Q.Fixed.Indexes(), Verbose: Q.Verbose}, nil); err != nil {
		return gomin.Decorate(err, "RDKitHandle.Setup")
	}
	return nil
}

//Step runs up to n iterations of the RDKit minimizer.
func (R *RDKitHandle) Step(n int) (bool, error) {
	if R.c == nil {
		return false, gomin.NewError(gomin.ErrEngine, "Step called before Setup", "RDKitHandle.Step")
	}
	var conv convergence
	if err := R.c.Call("minimize", struct{ Steps int }{n}, &conv); err != nil {
		return false, gomin.Decorate(err, "RDKitHandle.Step")
	}
	R.steps += n
	R.logger.Debug("RDKit minimization", "steps", R.steps, "converged", conv.Converged)
	return conv.Converged, nil
}

//Energy returns the force field energy, in kcal/mol.
func (R *RDKitHandle) Energy() (float64, string, error) {
	if R.c == nil {
		return 0, "", gomin.NewError(gomin.ErrEngine, "Energy called before Setup", "RDKitHandle.Energy")
	}
	var e energy
	if err := R.c.Call("energy", nil, &e); err != nil {
		return 0, "", gomin.Decorate(err, "RDKitHandle.Energy")
	}
	if e.Unit == "" {
		e.Unit = "kcal/mol"
	}
	return e.Energy, e.Unit, nil
}

//Coordinates returns the minimized structure.
func (R *RDKitHandle) Coordinates() (gomin.Record, error) {
	if R.c == nil {
		return gomin.Record{}, gomin.NewError(gomin.ErrEngine, "Coordinates called before Setup", "RDKitHandle.Coordinates")
	}
	var mol struct{ Mol string }
	if err := R.c.Call("write", nil, &mol); err != nil {
		return gomin.Record{}, gomin.Decorate(err, "RDKitHandle.Coordinates")
	}
	return gomin.MolRecord(mol.Mol), nil
}

//Close stops the driver.
func (R *RDKitHandle) Close() error {
	if R.c == nil {
		return nil
	}
	err := R.c.Close()
	R.c = nil
	return err
}
