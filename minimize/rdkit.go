/*
 * rdkit.go, part of gomin.
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

//RDKitOptions contains the settings for MinimizeRDKit.
type RDKitOptions struct {
	Selection  string
	State      int
	ForceField string //MMFF94s, MMFF94 or UFF
	Steps      int
	Name       string
	Quiet      bool

	Engine  string
	Command []string
	Guard   *GuardOptions
	Logger  *slog.Logger
	Out     io.Writer
}

//DefaultRDKitOptions returns the default options for MinimizeRDKit.
func DefaultRDKitOptions() *RDKitOptions {
	return &RDKitOptions{
		Selection:  "enabled",
		State:      gomin.CurrentState,
		ForceField: string(mm.RDKitDefault),
		Steps:      200,
		Quiet:      true,
		Engine:     "rdkit",
		Guard:      DefaultGuardOptions(),
	}
}

//MinimizeRDKit minimizes the atoms in o.Selection with RDKit. The atoms with the fix
//flag don't move. The structure must have all its hydrogens and correct bond orders and
//formal charges, or RDKit will reject it.
func MinimizeRDKit(h gomin.Host, o *RDKitOptions) (*Result, error) {
	if o == nil {
		o = DefaultRDKitOptions()
	}
	Q := new(mm.Calc)
	Q.SetDefaults()
	Q.ForceField = o.ForceField
	Q.Steps = o.Steps
	Q.AddHydrogens = false
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
	return run(h, J, "MinimizeRDKit")
}
