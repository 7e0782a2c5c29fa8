/*
 * reconcile.go, part of gomin.
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
	"errors"
	"log/slog"
	"sync"

	"github.com/rmera/gomin"
)

//reconcileMu makes the reconciliation a single critical section for the whole process,
//even when several hosts are in use.
var reconcileMu sync.Mutex

//Reconciler puts minimized structures back in a Host.
type Reconciler struct {
	Logger     *slog.Logger
	XFitCycles int //cycles for the robust fit, if the host offers one.
	FitCycles  int //cycles for the plain fit.
}

//NewReconciler returns a Reconciler with 100 robust-fit cycles and 5 fallback ones.
//A nil logger means slog.Default().
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{Logger: logger, XFitCycles: 100, FitCycles: 5}
}

func (R *Reconciler) logger() *slog.Logger {
	if R.Logger == nil {
		return slog.Default()
	}
	return R.Logger
}

//LoadOrUpdate loads rec, the minimized structure of the atoms in sele, and superimposes it on
//sele, at the given state. If name is not empty, the structure stays as the object name,
//replacing any old object with that name. Otherwise (update mode), the coordinates of the
//fitted structure are copied into the atoms of sele and the temporary object is deleted.
//A failed fit is logged and the structure is used unaligned.
func (R *Reconciler) LoadOrUpdate(h gomin.Host, rec gomin.Record, name, sele string, state int) (err error) {
	reconcileMu.Lock()
	defer reconcileMu.Unlock()
	h.Lock()
	defer h.Unlock()
	update := name == ""
	if update {
		name = h.UnusedName("_minimized")
		defer func() {
			if derr := h.Delete(name); derr != nil {
				err = errors.Join(err, gomin.Decorate(derr, "LoadOrUpdate"))
			}
		}()
	} else if err := h.Delete(name); err != nil {
		return gomin.Decorate(err, "LoadOrUpdate")
	}
	if err := h.Load(rec, name, 1); err != nil {
		return gomin.Decorate(err, "LoadOrUpdate")
	}
	R.fit(h, name, sele, state)
	if update {
		if err := h.Update(sele, name, state, 1); err != nil {
			return gomin.Decorate(err, "LoadOrUpdate")
		}
	}
	return nil
}

//fit superimposes the state 1 of mobile onto target. The robust fit is
//preferred. Failures are only logged.
func (R *Reconciler) fit(h gomin.Host, mobile, target string, state int) {
	log := R.logger()
	if x, ok := h.(gomin.XFitter); ok {
		rmsd, err := x.XFit(mobile, target, 1, state, R.XFitCycles)
		if err == nil {
			log.Debug("structure superimposed", "method", "xfit", "rmsd", rmsd)
			return
		}
		log.Warn("xfit failed", "error", gomin.WrapError(gomin.ErrFit, err, "XFit"))
	}
	rmsd, err := h.Fit(mobile, target, 1, state, R.FitCycles)
	if err != nil {
		log.Warn("fit failed, the structure is not aligned", "error", gomin.WrapError(gomin.ErrFit, err, "Fit"))
		return
	}
	log.Debug("structure superimposed", "method", "fit", "rmsd", rmsd)
}
