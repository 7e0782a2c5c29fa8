/*
 * molfile.go, part of gomin.
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

package molfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/gomin"
	v3 "github.com/rmera/gomin/v3"
)

//The V2000 format can't hold more atoms or bonds than this.
const maxV2000 = 999

//Write writes the atoms and bonds in top, with the coordinates coords, to w as an MDL V2000 molfile.
//Formal charges are written both in the atom block and in "M  CHG" lines.
//Molecules with more than 999 atoms or bonds are written in the V3000 format.
func Write(w io.Writer, top *gomin.Topology, coords *v3.Matrix, title string) error {
	n := top.Len()
	if coords.NVecs() != n {
		return Error{fmt.Sprintf("%d atoms but %d coordinates", n, coords.NVecs()), title, []string{"Write"}, true}
	}
	b := bufio.NewWriter(w)
	title = strings.ReplaceAll(title, "\n", " ")
	if n > maxV2000 || len(top.Bonds) > maxV2000 {
		return writeV3000(b, top, coords, title)
	}
	fmt.Fprintf(b, "%s\n  gomin             3D\n\n", title)
	fmt.Fprintf(b, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", n, len(top.Bonds))
	charged := make([]int, 0, 8)
	for i := 0; i < n; i++ {
		at := top.Atom(i)
		c := coords.Vec(i)
		symbol := at.Symbol
		if symbol == "" {
			symbol = "*"
		}
		fmt.Fprintf(b, "%10.4f%10.4f%10.4f %-3s 0%3d  0  0  0  0  0  0  0  0  0  0\n", c[0], c[1], c[2], symbol, chargeCode(at.Charge))
		if at.Charge != 0 {
			charged = append(charged, i)
		}
	}
	for _, v := range top.Bonds {
		if v.At1 < 0 || v.At1 >= n || v.At2 < 0 || v.At2 >= n {
			return Error{fmt.Sprintf("bond %d-%d out of range", v.At1, v.At2), title, []string{"Write"}, true}
		}
		fmt.Fprintf(b, "%3d%3d%3d  0  0  0  0\n", v.At1+1, v.At2+1, v.Order)
	}
	for len(charged) > 0 {
		l := min(len(charged), 8)
		fmt.Fprintf(b, "M  CHG%3d", l)
		for _, i := range charged[:l] {
			fmt.Fprintf(b, " %3d %3d", i+1, top.Atom(i).Charge)
		}
		b.WriteString("\n")
		charged = charged[l:]
	}
	b.WriteString("M  END\n")
	return b.Flush()
}

//Read reads the first molecule from an MDL V2000 or V3000 molfile (or SD file).
//It returns the topology, with atom names equal to the element symbols, and the coordinates.
func Read(r io.Reader) (*gomin.Topology, *v3.Matrix, error) {
	sc := bufio.NewScanner(r)
	var title string
	for i := 0; i < 3; i++ {
		if !sc.Scan() {
			return nil, nil, Error{"unexpected end of file in header", "", []string{"Read"}, true}
		}
		if i == 0 {
			title = strings.TrimSpace(sc.Text())
		}
	}
	if !sc.Scan() {
		return nil, nil, Error{"missing counts line", title, []string{"Read"}, true}
	}
	counts := sc.Text()
	if strings.Contains(counts, "V3000") {
		return readV3000(sc, title)
	}
	natoms, err1 := strconv.Atoi(field(counts, 0, 3))
	nbonds, err2 := strconv.Atoi(field(counts, 3, 6))
	if err1 != nil || err2 != nil || natoms < 0 || nbonds < 0 {
		return nil, nil, Error{fmt.Sprintf("malformed counts line: %q", counts), title, []string{"Read"}, true}
	}
	atoms := make([]*gomin.Atom, natoms)
	coords := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		if !sc.Scan() {
			return nil, nil, Error{fmt.Sprintf("atom block ended after %d of %d atoms", i, natoms), title, []string{"Read"}, true}
		}
		line := sc.Text()
		var c [3]float64
		for j := range c {
			f, err := strconv.ParseFloat(field(line, 10*j, 10*(j+1)), 64)
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("bad coordinate in atom %d: %s", i+1, err.Error()), title, []string{"Read"}, true}
			}
			c[j] = f
		}
		coords.SetVec(i, c)
		symbol := field(line, 31, 34)
		charge := 0
		if code, err := strconv.Atoi(field(line, 36, 39)); err == nil {
			charge = codeCharge(code)
		}
		atoms[i] = &gomin.Atom{Name: symbol, ID: i + 1, Symbol: symbol, Charge: charge, MolName: title}
	}
	bonds := make([]*gomin.Bond, 0, nbonds)
	for i := 0; i < nbonds; i++ {
		if !sc.Scan() {
			return nil, nil, Error{fmt.Sprintf("bond block ended after %d of %d bonds", i, nbonds), title, []string{"Read"}, true}
		}
		line := sc.Text()
		a1, err1 := strconv.Atoi(field(line, 0, 3))
		a2, err2 := strconv.Atoi(field(line, 3, 6))
		order, err3 := strconv.Atoi(field(line, 6, 9))
		if err1 != nil || err2 != nil || err3 != nil || a1 < 1 || a2 < 1 || a1 > natoms || a2 > natoms {
			return nil, nil, Error{fmt.Sprintf("malformed bond line: %q", line), title, []string{"Read"}, true}
		}
		bonds = append(bonds, &gomin.Bond{At1: a1 - 1, At2: a2 - 1, Order: order})
	}
	//The properties block. If there are "M  CHG" lines, they replace the charges in the atom block.
	chgseen := false
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "M  END") || strings.HasPrefix(line, "$$$$") {
			break
		}
		if !strings.HasPrefix(line, "M  CHG") {
			continue
		}
		if !chgseen {
			for _, at := range atoms {
				at.Charge = 0
			}
			chgseen = true
		}
		f := strings.Fields(line[6:])
		if len(f) == 0 {
			continue
		}
		for j := 1; j+1 < len(f); j += 2 {
			idx, err1 := strconv.Atoi(f[j])
			chg, err2 := strconv.Atoi(f[j+1])
			if err1 != nil || err2 != nil || idx < 1 || idx > natoms {
				return nil, nil, Error{fmt.Sprintf("malformed charge line: %q", line), title, []string{"Read"}, true}
			}
			atoms[idx-1].Charge = chg
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, Error{err.Error(), title, []string{"Read"}, true}
	}
	total := 0
	for _, at := range atoms {
		total += at.Charge
	}
	return gomin.NewTopology(total, atoms, bonds), coords, nil
}

//String returns the molfile for top and coords as a string.
func String(top *gomin.Topology, coords *v3.Matrix, title string) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, top, coords, title); err != nil {
		return "", errDecorate(err, "String")
	}
	return sb.String(), nil
}

//Parse reads a molfile from a string.
func Parse(s string) (*gomin.Topology, *v3.Matrix, error) {
	top, coords, err := Read(strings.NewReader(s))
	return top, coords, errDecorate(err, "Parse")
}

//ToRecord returns a molfile Record for top and coords.
func ToRecord(top *gomin.Topology, coords *v3.Matrix, title string) (gomin.Record, error) {
	s, err := String(top, coords, title)
	if err != nil {
		return gomin.Record{}, errDecorate(err, "ToRecord")
	}
	return gomin.MolRecord(s), nil
}

//FromRecord reads the structure in rec, which has to be a molfile Record.
func FromRecord(rec gomin.Record) (*gomin.Topology, *v3.Matrix, error) {
	if rec.Format != gomin.FormatMol {
		return nil, nil, Error{fmt.Sprintf("unsupported record format %q", rec.Format), "", []string{"FromRecord"}, true}
	}
	top, coords, err := Parse(rec.Data)
	return top, coords, errDecorate(err, "FromRecord")
}

//field returns the trimmed content of the columns [a,b) of line,
//or an empty string if the line is too short.
func field(line string, a, b int) string {
	if a >= len(line) {
		return ""
	}
	b = min(b, len(line))
	return strings.TrimSpace(line[a:b])
}

//chargeCode returns the atom-block charge code for a formal charge.
//Charges out of the [-3,3] range can only be given in "M  CHG" lines.
func chargeCode(charge int) int {
	if charge == 0 || charge < -3 || charge > 3 {
		return 0
	}
	return 4 - charge
}

func codeCharge(code int) int {
	if code < 1 || code > 7 || code == 4 { //4 is a doublet radical, not a charge.
		return 0
	}
	return 4 - code
}
