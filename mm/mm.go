/*
 * mm.go, part of gomin.
 *
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
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package mm

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rmera/gomin"
)

//Minimizer is a force field engine, ready to minimize one structure.
//The methods are meant to be called in order: Setup, Step (maybe several times),
//Energy and/or Coordinates, Close.
type Minimizer interface {

	//Setup reads the structure in rec and prepares the force field
	//and the constraints according to Q.
	Setup(rec gomin.Record, Q *Calc) error

	//Step runs up to n minimization steps. It returns true if the
	//convergence criterion was met.
	Step(n int) (converged bool, err error)

	//Energy returns the current energy and its unit.
	Energy() (float64, string, error)

	//Coordinates returns the current structure, with the same atoms
	//given to Setup, in the same order.
	Coordinates() (gomin.Record, error)

	//Close releases the engine. The Minimizer can not be used after this call.
	Close() error
}

//Calc contains the settings for one minimization, independently of the
//engine used. Note that not all engines use all the settings.
type Calc struct {
	ForceField   string
	Steps        int
	Convergence  float64
	Cutoff       bool //use non-bonded cutoffs.
	CutVDW       float64
	CutElec      float64
	Fixed        gomin.FixedMask //0-based, the engines translate them as needed.
	AddHydrogens bool            //add hydrogens for the calculation, and remove them afterwards.
	Verbose      bool
}

//SetDefaults sets reasonable defaults for all the settings except for the force field and
//the fixed atoms.
func (Q *Calc) SetDefaults() {
	Q.Steps = 500
	Q.Convergence = 1e-4
	Q.Cutoff = false
	Q.CutVDW = 6.0
	Q.CutElec = 8.0
	Q.AddHydrogens = true
}

//Factory returns a new Minimizer, which will run the given command.
//An empty command means the engine's default.
type Factory func(command []string) (Minimizer, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

//Register makes the engine name available to New. Registering
//the same name twice replaces the previous factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

//Unregister removes the engine name.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

//New returns a Minimizer for the engine name, that will run command, or the
//engine's default command, if none is given.
func New(name string, command ...string) (Minimizer, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, gomin.NewError(gomin.ErrEngineUnavailable, fmt.Sprintf("engine %q not available (available: %v)", name, Engines()), "mm.New")
	}
	m, err := f(command)
	if err != nil {
		return nil, gomin.Decorate(err, "mm.New")
	}
	return m, nil
}

//Engines returns the names of the registered engines, sorted.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ret := make([]string, 0, len(registry))
	for k := range registry {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}
