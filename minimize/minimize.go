/*
 * minimize.go, part of gomin.
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
	"os"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/mm"
)

//Result contains the outcome of a minimization.
type Result struct {
	Energy    float64
	Unit      string
	Converged bool
}

func (R *Result) String() string {
	return fmt.Sprintf("Energy: %8.2f %s", R.Energy, R.Unit)
}

//job is what the engine adapters have in common.
type job struct {
	engine    string
	command   []string
	selection string
	state     int
	name      string
	quiet     bool
	calc      *mm.Calc
	guard     *GuardOptions
	logger    *slog.Logger
	out       io.Writer
}

//loggerSetter is implemented by the engines that can log.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

//run selects the atoms, guards them against collapsed coordinates, minimizes them with the
//engine and puts the result back in h. The temporary selection is always deleted.
func run(h gomin.Host, J *job, caller string) (res *Result, err error) {
	log := J.logger
	if log == nil {
		log = slog.Default()
	}
	sele := h.UnusedName("_sele")
	natoms, err := h.Select(sele, J.selection, gomin.AllStates)
	defer func() {
		if derr := h.Delete(sele); derr != nil && err == nil {
			err = gomin.Decorate(derr, caller)
		}
	}()
	if err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	if natoms == 0 {
		return nil, gomin.NewError(gomin.ErrEmptySelection, "empty selection: "+J.selection, caller)
	}
	if moved, err := RandomizeIfCollapsed(h, sele, J.state, J.guard); err != nil {
		return nil, gomin.Decorate(err, caller)
	} else if moved {
		log.Info("coordinates were collapsed and have been randomized", "selection", J.selection)
	}
	rec, err := h.Export(sele, J.state)
	if err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	if J.calc.Fixed, err = FixedIndexes(h, sele, J.state); err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	m, err := mm.New(J.engine, J.command...)
	if err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			log.Warn("engine did not close cleanly", "engine", J.engine, "error", cerr)
		}
	}()
	if l, ok := m.(loggerSetter); ok {
		l.SetLogger(log)
	}
	if err := m.Setup(rec, J.calc); err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	log.Debug("minimizing", "engine", J.engine, "forcefield", J.calc.ForceField, "atoms", natoms, "fixed", J.calc.Fixed.Len(), "steps", J.calc.Steps)
	res = new(Result)
	if res.Converged, err = m.Step(J.calc.Steps); err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	if !res.Converged {
		log.Warn("minimization did not converge", "error", gomin.NewError(gomin.ErrNotConverged, fmt.Sprintf("not converged after %d steps", J.calc.Steps), caller))
	}
	if res.Energy, res.Unit, err = m.Energy(); err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	minimized, err := m.Coordinates()
	if err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	if err := NewReconciler(log).LoadOrUpdate(h, minimized, J.name, sele, J.state); err != nil {
		return nil, gomin.Decorate(err, caller)
	}
	if !J.quiet {
		out := J.out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintf(out, " %s\n", res)
	}
	log.Info("minimization finished", "engine", J.engine, "energy", res.Energy, "unit", res.Unit, "converged", res.Converged)
	return res, nil
}
