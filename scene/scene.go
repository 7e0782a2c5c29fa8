/*
 * scene.go, part of gomin.
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

package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/align"
	"github.com/rmera/gomin/molfile"
	v3 "github.com/rmera/gomin/v3"
)

//Object is a molecule in the scene, with one or more states (sets of coordinates).
type Object struct {
	Name    string
	Top     *gomin.Topology
	States  []*v3.Matrix
	Current int //0-based index of the current state.
	Enabled bool
}

//Scene is an in-memory implementation of gomin.Host and gomin.XFitter.
//All its methods are safe for concurrent use. The host lock (Lock/Unlock)
//is not taken by the methods themselves.
type Scene struct {
	lock sync.Mutex //the host lock.

	mu         sync.RWMutex //protects everything below.
	objects    []*Object    //in creation order.
	byName     map[string]*Object
	selections map[string]selection
	reserved   map[string]bool //names returned by UnusedName.
	journal    []Entry
}

//New returns an empty scene.
func New() *Scene {
	return &Scene{
		byName:     make(map[string]*Object),
		selections: make(map[string]selection),
		reserved:   make(map[string]bool),
	}
}

//Lock acquires the host lock.
func (S *Scene) Lock() { S.lock.Lock() }

//Unlock releases the host lock.
func (S *Scene) Unlock() { S.lock.Unlock() }

//AddObject adds an enabled object called name, with the topology top and the given states,
//replacing any previous object with that name. The topology is not copied.
func (S *Scene) AddObject(name string, top *gomin.Topology, states ...*v3.Matrix) error {
	if len(states) == 0 {
		return fmt.Errorf("AddObject: object %s needs at least one state", name)
	}
	for i, v := range states {
		if v.NVecs() != top.Len() {
			return fmt.Errorf("AddObject: state %d of %s has %d coordinates for %d atoms", i+1, name, v.NVecs(), top.Len())
		}
	}
	S.mu.Lock()
	defer S.mu.Unlock()
	if _, ok := S.selections[name]; ok {
		return fmt.Errorf("AddObject: %s is the name of a selection", name)
	}
	S.addObject(&Object{Name: name, Top: top, States: states, Enabled: true})
	return nil
}

//addObject adds o, replacing an object with the same name. The caller must hold the data lock.
func (S *Scene) addObject(o *Object) {
	if _, ok := S.byName[o.Name]; ok {
		S.deleteObject(o.Name)
	}
	S.objects = append(S.objects, o)
	S.byName[o.Name] = o
	S.record("load", o.Name)
}

func (S *Scene) deleteObject(name string) {
	S.objects = slices.DeleteFunc(S.objects, func(o *Object) bool { return o.Name == name })
	delete(S.byName, name)
	for _, sel := range S.selections {
		delete(sel, name)
	}
	S.record("delete", name)
}

//Enable enables or disables the object name.
func (S *Scene) Enable(name string, on bool) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	o, ok := S.byName[name]
	if !ok {
		return fmt.Errorf("Enable: no object %s", name)
	}
	o.Enabled = on
	return nil
}

//SetState sets the current state of the object name (1-based).
func (S *Scene) SetState(name string, state int) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	o, ok := S.byName[name]
	if !ok {
		return fmt.Errorf("SetState: no object %s", name)
	}
	if state < 1 || state > len(o.States) {
		return fmt.Errorf("SetState: object %s has no state %d", name, state)
	}
	o.Current = state - 1
	return nil
}

//Topology returns a copy of the topology of the object name.
func (S *Scene) Topology(name string) (*gomin.Topology, error) {
	S.mu.RLock()
	defer S.mu.RUnlock()
	o, ok := S.byName[name]
	if !ok {
		return nil, fmt.Errorf("Topology: no object %s", name)
	}
	return o.Top.Copy(), nil
}

//NStates returns the number of states of the object name, or 0 if there is no such object.
func (S *Scene) NStates(name string) int {
	S.mu.RLock()
	defer S.mu.RUnlock()
	o, ok := S.byName[name]
	if !ok {
		return 0
	}
	return len(o.States)
}

//Selections returns the names of the named selections.
func (S *Scene) Selections() []string {
	S.mu.RLock()
	defer S.mu.RUnlock()
	ret := make([]string, 0, len(S.selections))
	for k := range S.selections {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

/*****The gomin.Host methods****/

//Names returns the names of all objects in the scene, in creation order.
func (S *Scene) Names() []string {
	S.mu.RLock()
	defer S.mu.RUnlock()
	ret := make([]string, 0, len(S.objects))
	for _, o := range S.objects {
		ret = append(ret, o.Name)
	}
	return ret
}

//UnusedName returns prefix followed by a 2-digit number, such that
//the name is not used in the scene and it has not been returned before.
func (S *Scene) UnusedName(prefix string) string {
	S.mu.Lock()
	defer S.mu.Unlock()
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%02d", prefix, i)
		_, isobj := S.byName[name]
		_, issel := S.selections[name]
		if !isobj && !issel && !S.reserved[name] {
			S.reserved[name] = true
			return name
		}
	}
}

//Select creates the selection name with the atoms in expr.
func (S *Scene) Select(name, expr string, state int) (int, error) {
	S.mu.Lock()
	defer S.mu.Unlock()
	if _, ok := S.byName[name]; ok {
		return 0, fmt.Errorf("Select: %s is the name of an object", name)
	}
	sel, err := S.eval(expr)
	if err != nil {
		return 0, fmt.Errorf("Select: %w", err)
	}
	S.selections[name] = sel
	S.record("select", name)
	return sel.count(), nil
}

//eval evaluates a selection expression. The caller must hold the data lock.
func (S *Scene) eval(expr string) (selection, error) {
	p := &parser{S: S, tokens: tokenize(expr)}
	sel, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q in selection expression %q", p.tokens[p.pos], expr)
	}
	return sel, nil
}

//Delete deletes the object or selection name. Deleting a name that doesn't
//exist is not an error.
func (S *Scene) Delete(name string) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	if _, ok := S.byName[name]; ok {
		S.deleteObject(name)
	}
	if _, ok := S.selections[name]; ok {
		delete(S.selections, name)
		S.record("delete", name)
	}
	return nil
}

//stateIndexes returns the 0-based indexes of the states of o that state refers to.
//When all is false, AllStates is taken as the current state.
func stateIndexes(o *Object, state int, all bool) ([]int, error) {
	switch {
	case state == gomin.AllStates && all:
		ret := make([]int, len(o.States))
		for i := range ret {
			ret[i] = i
		}
		return ret, nil
	case state == gomin.AllStates || state == gomin.CurrentState:
		return []int{o.Current}, nil
	case state >= 1 && state <= len(o.States):
		return []int{state - 1}, nil
	}
	return nil, fmt.Errorf("object %s has no state %d", o.Name, state)
}

//each calls f for each object with selected atoms, in creation order.
func (S *Scene) each(sel selection, f func(o *Object, idx []int) error) error {
	for _, o := range S.objects {
		idx := sel.indexes(o.Name)
		if len(idx) == 0 {
			continue
		}
		if err := f(o, idx); err != nil {
			return err
		}
	}
	return nil
}

//coords returns the coordinates of the atoms in sel. The caller must hold the data lock.
func (S *Scene) coords(sel selection, state int) (*v3.Matrix, error) {
	ret := v3.Zeros(sel.count())
	n := 0
	err := S.each(sel, func(o *Object, idx []int) error {
		st, err := stateIndexes(o, state, false)
		if err != nil {
			return err
		}
		for _, i := range idx {
			ret.SetVec(n, o.States[st[0]].Vec(i))
			n++
		}
		return nil
	})
	return ret, err
}

//setCoords puts coords in the atoms of sel. With AllStates, every state is set.
//The caller must hold the data lock.
func (S *Scene) setCoords(sel selection, coords *v3.Matrix, state int) error {
	if coords.NVecs() != sel.count() {
		return fmt.Errorf("%d coordinates for %d atoms", coords.NVecs(), sel.count())
	}
	n := 0
	return S.each(sel, func(o *Object, idx []int) error {
		sts, err := stateIndexes(o, state, true)
		if err != nil {
			return err
		}
		for _, i := range idx {
			for _, st := range sts {
				o.States[st].SetVec(i, coords.Vec(n))
			}
			n++
		}
		return nil
	})
}

//Coords returns the coordinates of the atoms in sele.
//AllStates gives the current state.
func (S *Scene) Coords(sele string, state int) (*v3.Matrix, error) {
	S.mu.RLock()
	defer S.mu.RUnlock()
	sel, err := S.eval(sele)
	if err != nil {
		return nil, fmt.Errorf("Coords: %w", err)
	}
	ret, err := S.coords(sel, state)
	if err != nil {
		return nil, fmt.Errorf("Coords: %w", err)
	}
	return ret, nil
}

//LoadCoords replaces the coordinates of the atoms in sele.
func (S *Scene) LoadCoords(coords *v3.Matrix, sele string, state int) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	sel, err := S.eval(sele)
	if err != nil {
		return fmt.Errorf("LoadCoords: %w", err)
	}
	if err := S.setCoords(sel, coords, state); err != nil {
		return fmt.Errorf("LoadCoords: %w", err)
	}
	S.record("coords", sele)
	return nil
}

//AtomFlags returns the flags of the atoms in sele.
func (S *Scene) AtomFlags(sele string, state int) ([]uint32, error) {
	S.mu.RLock()
	defer S.mu.RUnlock()
	sel, err := S.eval(sele)
	if err != nil {
		return nil, fmt.Errorf("AtomFlags: %w", err)
	}
	ret := make([]uint32, 0, sel.count())
	S.each(sel, func(o *Object, idx []int) error {
		for _, i := range idx {
			ret = append(ret, o.Top.Atom(i).Flags)
		}
		return nil
	})
	return ret, nil
}

//Flag sets or clears the bits in flag for the atoms in sele.
func (S *Scene) Flag(flag uint32, sele string, set bool) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	sel, err := S.eval(sele)
	if err != nil {
		return fmt.Errorf("Flag: %w", err)
	}
	S.each(sel, func(o *Object, idx []int) error {
		for _, i := range idx {
			at := o.Top.Atom(i)
			if set {
				at.Flags |= flag
			} else {
				at.Flags &^= flag
			}
		}
		return nil
	})
	S.record("flag", sele)
	return nil
}

//Export returns a molfile Record with the atoms in sele, and the bonds among them.
func (S *Scene) Export(sele string, state int) (gomin.Record, error) {
	S.mu.RLock()
	defer S.mu.RUnlock()
	sel, err := S.eval(sele)
	if err != nil {
		return gomin.Record{}, fmt.Errorf("Export: %w", err)
	}
	coords, err := S.coords(sel, state)
	if err != nil {
		return gomin.Record{}, fmt.Errorf("Export: %w", err)
	}
	atoms := make([]*gomin.Atom, 0, sel.count())
	var bonds []*gomin.Bond
	err = S.each(sel, func(o *Object, idx []int) error {
		offset := len(atoms)
		newindex := make(map[int]int, len(idx))
		for j, i := range idx {
			newindex[i] = offset + j
			atoms = append(atoms, o.Top.Atom(i).Copy())
		}
		for _, b := range o.Top.Bonds {
			n1, ok1 := newindex[b.At1]
			n2, ok2 := newindex[b.At2]
			if ok1 && ok2 {
				bonds = append(bonds, &gomin.Bond{At1: n1, At2: n2, Order: b.Order})
			}
		}
		return nil
	})
	if err != nil {
		return gomin.Record{}, fmt.Errorf("Export: %w", err)
	}
	charge := 0
	for _, at := range atoms {
		charge += at.Charge
	}
	rec, err := molfile.ToRecord(gomin.NewTopology(charge, atoms, bonds), coords, sele)
	if err != nil {
		return gomin.Record{}, fmt.Errorf("Export: %w", err)
	}
	return rec, nil
}

//Load creates the object name from rec. If an object with that name and the same number
//of atoms exists, the coordinates are put in its state state instead (a new state is
//added if state is one more than the number of states of the object).
func (S *Scene) Load(rec gomin.Record, name string, state int) error {
	top, coords, err := molfile.FromRecord(rec)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}
	S.mu.Lock()
	defer S.mu.Unlock()
	if _, ok := S.selections[name]; ok {
		return fmt.Errorf("Load: %s is the name of a selection", name)
	}
	if o, ok := S.byName[name]; ok && o.Top.Len() == top.Len() && state >= 1 {
		if state <= len(o.States) {
			o.States[state-1] = coords
		} else if state == len(o.States)+1 {
			o.States = append(o.States, coords)
		} else {
			return fmt.Errorf("Load: object %s has no state %d", name, state)
		}
		S.record("load", name)
		return nil
	}
	for _, at := range top.Atoms {
		at.MolName = name
	}
	S.addObject(&Object{Name: name, Top: top, States: []*v3.Matrix{coords}, Enabled: true})
	return nil
}

//fitter is either align.Fit or align.LOVO
type fitter func(test, templa *v3.Matrix, o *align.Options) (*align.Result, error)

func (S *Scene) fit(f fitter, op, mobile, target string, mobileState, targetState, cycles int) (float64, error) {
	S.mu.Lock()
	defer S.mu.Unlock()
	msel, err := S.eval(mobile)
	if err != nil {
		return 0, err
	}
	tsel, err := S.eval(target)
	if err != nil {
		return 0, err
	}
	mc, err := S.coords(msel, mobileState)
	if err != nil {
		return 0, err
	}
	tc, err := S.coords(tsel, targetState)
	if err != nil {
		return 0, err
	}
	if mc.NVecs() == 0 || mc.NVecs() != tc.NVecs() {
		return 0, fmt.Errorf("atom count mismatch: %d (mobile) and %d (target)", mc.NVecs(), tc.NVecs())
	}
	o := align.DefaultOptions()
	o.Cycles(cycles)
	r, err := f(mc, tc, o)
	if err != nil {
		return 0, err
	}
	//All the states of the mobile objects are moved.
	S.each(msel, func(ob *Object, _ []int) error {
		for i, st := range ob.States {
			ob.States[i] = r.Apply(st)
		}
		return nil
	})
	S.record(op, mobile)
	return r.RMSD, nil
}

//Fit superimposes the atoms in mobile onto those in target, pairing them in order,
//with up to cycles outlier rejection cycles. All the states of the
//objects in mobile are moved.
func (S *Scene) Fit(mobile, target string, mobileState, targetState, cycles int) (float64, error) {
	rmsd, err := S.fit(align.Fit, "fit", mobile, target, mobileState, targetState, cycles)
	if err != nil {
		return 0, fmt.Errorf("Fit: %w", err)
	}
	return rmsd, nil
}

//XFit is like Fit, but uses the LOVO trimmed superposition, with up to
//cycles iterations.
func (S *Scene) XFit(mobile, target string, mobileState, targetState, cycles int) (float64, error) {
	rmsd, err := S.fit(align.LOVO, "xfit", mobile, target, mobileState, targetState, cycles)
	if err != nil {
		return 0, fmt.Errorf("XFit: %w", err)
	}
	return rmsd, nil
}

//Update copies the coordinates of the atoms of source into those of target, pairing them in order.
func (S *Scene) Update(target, source string, targetState, sourceState int) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	tsel, err := S.eval(target)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	ssel, err := S.eval(source)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	sc, err := S.coords(ssel, sourceState)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if err := S.setCoords(tsel, sc, targetState); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	S.record("update", target)
	return nil
}

//compile-time checks
var _ gomin.Host = (*Scene)(nil)
var _ gomin.XFitter = (*Scene)(nil)
