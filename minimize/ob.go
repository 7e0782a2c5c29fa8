/*
 * ob.go, part of gomin.
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
	"io"
	"log/slog"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/mm"
)

//OBOptions contains the settings for MinimizeOB.
type OBOptions struct {
	Selection   string
	State       int
	ForceField  string //GAFF, MMFF94s, MMFF94, UFF or Ghemical
	Steps       int
	Convergence float64
	Cutoff      bool //use the non-bonded cutoffs CutVDW and CutElec
	CutVDW      float64
	CutElec     float64
	Name        string //if given, the result goes to a new object with this name.
	Quiet       bool

	Engine  string   //name of the engine in the mm registry.
	Command []string //command to run the engine driver, empty for the default.
	Guard   *GuardOptions
	Logger  *slog.Logger
	Out     io.Writer //where the energy is printed when not Quiet. Defaults to the standard output.
}

//DefaultOBOptions returns the default options for MinimizeOB.
//Note that the default settings are NOT considered part of the API, so they can always change.
func DefaultOBOptions() *OBOptions {
	return &OBOptions{
		Selection:   "enabled",
		State:       gomin.CurrentState,
		ForceField:  string(mm.OBDefault),
		Steps:       500,
		Convergence: 1e-4,
		CutVDW:      6.0,
		CutElec:     8.0,
		Quiet:       true,
		Engine:      "openbabel",
		Guard:       DefaultGuardOptions(),
	}
}

//MinimizeOB minimizes the atoms in o.Selection with Open Babel. The atoms with the fix flag
//don't move. Hydrogens are added for the minimization and removed afterwards.
//A nil o means DefaultOBOptions().
func MinimizeOB(h gomin.Host, o *OBOptions) (*Result, error) {
	if o == nil {
		o = DefaultOBOptions()
	}
	Q := new(mm.Calc)
	Q.SetDefaults()
	Q.ForceField = o.ForceField
	Q.Steps = o.Steps
	Q.Convergence = o.Convergence
	Q.Cutoff = o.Cutoff
	Q.CutVDW = o.CutVDW
	Q.CutElec = o.CutElec
	Q.Verbose = !o.Quiet
	J := &job{
		engine:    o.Engine,
		command:   o.Command,
		selection: o.Selection,
		state:     o.State,
		name:      o.Name,
		quiet:     o.Quiet,
		calc:      Q,
		guard:     o.Guard,
		logger:    o.Logger,
		out:       o.Out,
	}
	return run(h, J, "MinimizeOB")
}
