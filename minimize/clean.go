/*
 * clean.go, part of gomin.
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
	"fmt"
	"io"
	"log/slog"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/mm"
)

//CleanOptions contains the settings for CleanOB. Fix, Restrain, SaveUndo and Message
//are accepted for compatibility with the host's clean command, and ignored.
type CleanOptions struct {
	Selection string
	Present   string //atoms that are fixed during the cleaning.
	State     int
	Method    string //"mmff" or an Open Babel force field name.
	Fix       string
	Restrain  string
	SaveUndo  bool
	Message   string

	Engine  string
	Command []string
	Guard   *GuardOptions
	Logger  *slog.Logger
	Out     io.Writer
}

//DefaultCleanOptions returns the default options for CleanOB. The selection
//must be set by the caller.
func DefaultCleanOptions() *CleanOptions {
	return &CleanOptions{
		State:    gomin.CurrentState,
		Method:   "mmff",
		SaveUndo: true,
		Engine:   "openbabel",
		Guard:    DefaultGuardOptions(),
	}
}

//cleanSteps is the number of minimization steps in a clean.
const cleanSteps = 50

//CleanOB is a short Open Babel minimization. If o.Present is given, its atoms are
//added to the minimization, with the fix flag, and the fix flag of the atoms in o.Selection is
//cleared. The fix flag of the Present atoms is cleared at the end, even if the minimization fails.
func CleanOB(h gomin.Host, o *CleanOptions) (res *Result, err error) {
	if o == nil {
		o = DefaultCleanOptions()
	}
	selection := o.Selection
	if o.Present != "" {
		if err := h.Flag(gomin.FlagFix, o.Present, true); err != nil {
			return nil, gomin.Decorate(err, "CleanOB")
		}
		defer func() {
			if ferr := h.Flag(gomin.FlagFix, o.Present, false); ferr != nil && err == nil {
				err = gomin.Decorate(ferr, "CleanOB")
			}
		}()
		if err := h.Flag(gomin.FlagFix, selection, false); err != nil {
			return nil, gomin.Decorate(err, "CleanOB")
		}
		selection = fmt.Sprintf("(%s)|(%s)", selection, o.Present)
	}
	ob := DefaultOBOptions()
	ob.Selection = selection
	ob.State = o.State
	ob.ForceField = cleanForceField(o.Method)
	ob.Steps = cleanSteps
	ob.Engine = o.Engine
	ob.Command = o.Command
	ob.Guard = o.Guard
	ob.Logger = o.Logger
	ob.Out = o.Out
	if res, err = MinimizeOB(h, ob); err != nil {
		return nil, gomin.Decorate(err, "CleanOB")
	}
	return res, nil
}

//cleanForceField maps the clean method to a force field name.
func cleanForceField(method string) string {
	if method == "mmff" {
		return string(mm.MMFF94)
	}
	return method
}
