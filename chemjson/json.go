/*
 * json.go, part of gomin.
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


package chemjson

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rmera/gomin"
	v3 "github.com/rmera/gomin/v3"
)

//Coords is the line format for the coordinates of one atom.
type Coords struct {
	Coords []float64
}

//Bonds is the line format for the bonds of a molecule.
type Bonds struct {
	Bonds []*gomin.Bond
}

//Error is an error that can be sent to the plugin as a JSON line.
//The In* fields tell the stage of the run where the error happened.
type Error struct {
	deco          []string
	IsError       bool //false only for the zero value.
	InOptions     bool
	InSelections  bool
	InProcess     bool
	InPostProcess bool
	Selection     string //the offending selection, if any.
	State         int
	Atom          int
	Function      string //the Go function that failed.
	Kind          string //the kind of goMin error, if any.
	Message       string
}

func (J *Error) Error() string {
	return J.Message
}

//Decorate adds dec to the functions the error has gone through, and returns them.
func (J *Error) Decorate(dec string) []string {
	if dec != "" {
		J.deco = append(J.deco, dec)
	}
	return J.deco
}

//Critical returns false only for the errors that are just warnings.
func (J *Error) Critical() bool {
	return J.Kind != gomin.ErrFit.Error() && J.Kind != gomin.ErrNotConverged.Error()
}

//Marshal serializes the error. It panics if that fails, which would be a bug.
func (J *Error) Marshal() []byte {
	ret, err := json.Marshal(J)
	if err != nil {
		panic(fmt.Sprintf("chemjson: can't marshal error %q: %v", J.Message, err))
	}
	return ret
}

//Send writes the serialized error, followed by a newline, to out.
func (J *Error) Send(out io.Writer) error {
	_, err := fmt.Fprintf(out, "%s\n", J.Marshal())
	return err
}

//Info is the last line sent to the plugin after a successful run.
type Info struct {
	Molecules         int
	FramesPerMolecule []int
	AtomsPerMolecule  []int
	FloatInfo         [][]float64
	StringInfo        [][]string
	IntInfo           [][]int
	BoolInfo          [][]bool
	Energies          []float64
	Units             []string
	Converged         []bool
}

//Send writes the info as one JSON line to out.
func (J *Info) Send(out io.Writer) *Error {
	if err := json.NewEncoder(out).Encode(J); err != nil {
		return NewError("postprocess", "Info.Send", err)
	}
	return nil
}

//Options is the first line the plugin sends. It names the command to run,
//its arguments, and the molecules that follow, one per selection.
type Options struct {
	Command       string            //minimize_ob, minimize_rdkit or clean_ob
	Args          map[string]string //arguments for the command, as strings.
	SelNames      []string
	AtomsPerSel   []int
	StatesPerSel  []int
	BondsPerSel   []bool //missing values mean false.
	StringOptions [][]string
	IntOptions    [][]int
	BoolOptions   [][]bool
	FloatOptions  [][]float64
}

//Bonds returns true if the bonds of the ith selection are sent.
func (O *Options) Bonds(i int) bool {
	return i < len(O.BondsPerSel) && O.BondsPerSel[i]
}

//the goMin error kinds, to fill Error.Kind
var kinds = []error{gomin.ErrEmptySelection, gomin.ErrEngineUnavailable, gomin.ErrStructureImport,
	gomin.ErrEngine, gomin.ErrFit, gomin.ErrNotConverged, gomin.ErrArgument, gomin.ErrHost}

//NewError returns an Error for err, which happened in function during
//the stage where: options, selection, process or postprocess.
func NewError(where, function string, err error) *Error {
	jerr := &Error{IsError: true, Function: function, Message: err.Error()}
	switch where {
	case "options":
		jerr.InOptions = true
	case "selection":
		jerr.InSelections = true
	case "postprocess":
		jerr.InPostProcess = true
	default:
		jerr.InProcess = true
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			jerr.Kind = k.Error()
			break
		}
	}
	return jerr
}

//lines reads one JSON value per line from r. The first error is kept,
//and all later reads fail with it.
type lines struct {
	r     *bufio.Reader
	where string
	fn    string
	err   *Error
}

//next decodes the next line into v. what describes v for the error message.
func (L *lines) next(v any, what string) bool {
	if L.err != nil {
		return false
	}
	line, err := L.r.ReadBytes('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err == nil {
		err = json.Unmarshal(line, v)
	}
	if err != nil {
		L.err = NewError(L.where, L.fn, fmt.Errorf("reading %s: %w", what, err))
		return false
	}
	return true
}

//fail sets the error, unless there is one already.
func (L *lines) fail(err error) {
	if L.err == nil {
		L.err = NewError(L.where, L.fn, err)
	}
}

//vec reads the coordinates of the ith atom (0-based).
func (L *lines) vec(i int) []float64 {
	var c Coords
	if !L.next(&c, fmt.Sprintf("the coordinates of atom %d", i+1)) {
		return nil
	}
	if len(c.Coords) != 3 {
		L.fail(fmt.Errorf("atom %d has %d coordinates", i+1, len(c.Coords)))
		return nil
	}
	return c.Coords
}

//matrix returns the coordinates in raw as a matrix.
func (L *lines) matrix(raw []float64) *v3.Matrix {
	if L.err != nil {
		return nil
	}
	m, err := v3.NewMatrix(raw)
	if err != nil {
		L.fail(err)
		return nil
	}
	return m
}

//DecodeOptions reads the options line.
func DecodeOptions(stdin *bufio.Reader) (*Options, *Error) {
	L := &lines{r: stdin, where: "options", fn: "DecodeOptions"}
	ret := new(Options)
	if !L.next(ret, "the options") {
		return nil, L.err
	}
	if len(ret.AtomsPerSel) != len(ret.SelNames) || len(ret.StatesPerSel) != len(ret.SelNames) {
		L.fail(fmt.Errorf("%d selections, but %d atom counts and %d state counts", len(ret.SelNames), len(ret.AtomsPerSel), len(ret.StatesPerSel)))
		return nil, L.err
	}
	for i, name := range ret.SelNames {
		if ret.AtomsPerSel[i] < 0 || ret.StatesPerSel[i] < 1 {
			L.fail(fmt.Errorf("selection %s: %d atoms and %d states", name, ret.AtomsPerSel[i], ret.StatesPerSel[i]))
			L.err.Selection = name
			return nil, L.err
		}
	}
	return ret, nil
}

//DecodeMolecule reads a molecule with atomnumber atoms and the given number of frames.
//Each atom line is followed by the line with its coordinates in the first frame.
//If bonds is true, a bonds line follows. The other frames come last, one line per atom.
//The charge of the topology is the sum of the atomic charges.
func DecodeMolecule(stream *bufio.Reader, atomnumber, frames int, bonds bool) (*gomin.Topology, []*v3.Matrix, *Error) {
	L := &lines{r: stream, where: "selection", fn: "DecodeMolecule"}
	if atomnumber < 0 || frames < 1 {
		L.fail(fmt.Errorf("can't read %d atoms in %d frames", atomnumber, frames))
		return nil, nil, L.err
	}
	atoms := make([]*gomin.Atom, atomnumber)
	raw := make([]float64, 0, 3*atomnumber)
	charge := 0
	for i := range atoms {
		atoms[i] = new(gomin.Atom)
		if !L.next(atoms[i], fmt.Sprintf("atom %d", i+1)) {
			return nil, nil, L.err
		}
		charge += atoms[i].Charge
		v := L.vec(i)
		if v == nil {
			return nil, nil, L.err
		}
		raw = append(raw, v...)
	}
	first := L.matrix(raw)
	if first == nil {
		return nil, nil, L.err
	}
	mol := gomin.NewTopology(charge, atoms, nil)
	if bonds {
		b, jerr := DecodeBonds(stream, atomnumber)
		if jerr != nil {
			jerr.Decorate("DecodeMolecule")
			return nil, nil, jerr
		}
		mol.Bonds = b
	}
	coordset := make([]*v3.Matrix, 1, max(frames, 1))
	coordset[0] = first
	for i := 1; i < frames; i++ {
		c, jerr := DecodeCoords(stream, atomnumber)
		if jerr != nil {
			jerr.Message = fmt.Sprintf("frame %d: %s", i+1, jerr.Message)
			jerr.State = i + 1
			return mol, coordset, jerr
		}
		coordset = append(coordset, c)
	}
	return mol, coordset, nil
}

//DecodeBonds reads one line with the bonds of a molecule with atomnumber atoms.
func DecodeBonds(stream *bufio.Reader, atomnumber int) ([]*gomin.Bond, *Error) {
	L := &lines{r: stream, where: "selection", fn: "DecodeBonds"}
	b := new(Bonds)
	if !L.next(b, "the bonds") {
		return nil, L.err
	}
	for _, v := range b.Bonds {
		if v == nil || v.At1 < 0 || v.At2 < 0 || v.At1 >= atomnumber || v.At2 >= atomnumber || v.At1 == v.At2 {
			L.fail(fmt.Errorf("invalid bond %v for %d atoms", v, atomnumber))
			return nil, L.err
		}
	}
	return b.Bonds, nil
}

//DecodeCoords reads atomnumber coordinate lines into a matrix.
func DecodeCoords(stream *bufio.Reader, atomnumber int) (*v3.Matrix, *Error) {
	L := &lines{r: stream, where: "selection", fn: "DecodeCoords"}
	if atomnumber < 0 {
		L.fail(fmt.Errorf("can't read %d atoms", atomnumber))
		return nil, L.err
	}
	raw := make([]float64, 0, 3*atomnumber)
	for i := 0; i < atomnumber; i++ {
		v := L.vec(i)
		if v == nil {
			return nil, L.err
		}
		raw = append(raw, v...)
	}
	c := L.matrix(raw)
	if c == nil {
		return nil, L.err
	}
	return c, nil
}

//SendMolecule writes mol with the frames in coordset to out, in the format DecodeMolecule reads.
//If bonds is not nil, it is written after the first frame.
func SendMolecule(mol gomin.Atomer, coordset []*v3.Matrix, bonds []*gomin.Bond, out io.Writer) *Error {
	const funcname = "SendMolecule"
	if len(coordset) == 0 {
		return NewError("postprocess", funcname, fmt.Errorf("no coordinates to send"))
	}
	if mol.Len() != coordset[0].NVecs() {
		return NewError("postprocess", funcname, fmt.Errorf("%d atoms but %d coordinates", mol.Len(), coordset[0].NVecs()))
	}
	enc := json.NewEncoder(out)
	for i := 0; i < mol.Len(); i++ {
		if err := enc.Encode(mol.Atom(i)); err != nil {
			return NewError("postprocess", funcname, err)
		}
		if err := encodeVec(coordset[0], i, enc); err != nil {
			return NewError("postprocess", funcname, err)
		}
	}
	if bonds != nil {
		if err := enc.Encode(&Bonds{Bonds: bonds}); err != nil {
			return NewError("postprocess", funcname, err)
		}
	}
	for _, coords := range coordset[1:] {
		if jerr := EncodeCoords(coords, enc); jerr != nil {
			jerr.Decorate(funcname)
			return jerr
		}
	}
	return nil
}

//EncodeAtoms writes one line per atom of mol. A nil mol writes nothing.
func EncodeAtoms(mol gomin.Atomer, enc *json.Encoder) *Error {
	if mol == nil {
		return nil
	}
	for i := 0; i < mol.Len(); i++ {
		if err := enc.Encode(mol.Atom(i)); err != nil {
			return NewError("postprocess", "EncodeAtoms", err)
		}
	}
	return nil
}

//EncodeCoords writes one line per row of coords.
func EncodeCoords(coords *v3.Matrix, enc *json.Encoder) *Error {
	for i := 0; i < coords.NVecs(); i++ {
		if err := encodeVec(coords, i, enc); err != nil {
			return NewError("postprocess", "EncodeCoords", err)
		}
	}
	return nil
}

func encodeVec(coords *v3.Matrix, i int, enc *json.Encoder) error {
	v := coords.Vec(i)
	return enc.Encode(Coords{Coords: v[:]})
}
