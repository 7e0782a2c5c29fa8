/*
 * v3000.go, part of gomin.
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
	"strconv"
	"strings"

	"github.com/rmera/gomin"
	v3 "github.com/rmera/gomin/v3"
)

//writeV3000 writes top and coords as an MDL V3000 molfile, the extended format
//used for molecules that don't fit in V2000. Charges go in the CHG atom property.
func writeV3000(b *bufio.Writer, top *gomin.Topology, coords *v3.Matrix, title string) error {
	n := top.Len()
	fmt.Fprintf(b, "%s\n  gomin             3D\n\n", title)
	b.WriteString("  0  0  0     0  0            999 V3000\n")
	b.WriteString("M  V30 BEGIN CTAB\n")
	fmt.Fprintf(b, "M  V30 COUNTS %d %d 0 0 0\n", n, len(top.Bonds))
	b.WriteString("M  V30 BEGIN ATOM\n")
	for i := 0; i < n; i++ {
		at := top.Atom(i)
		c := coords.Vec(i)
		symbol := at.Symbol
		if symbol == "" {
			symbol = "*"
		}
		fmt.Fprintf(b, "M  V30 %d %s %.4f %.4f %.4f 0", i+1, symbol, c[0], c[1], c[2])
		if at.Charge != 0 {
			fmt.Fprintf(b, " CHG=%d", at.Charge)
		}
		b.WriteString("\n")
	}
	b.WriteString("M  V30 END ATOM\n")
	if len(top.Bonds) > 0 {
		b.WriteString("M  V30 BEGIN BOND\n")
		for i, v := range top.Bonds {
			if v.At1 < 0 || v.At1 >= n || v.At2 < 0 || v.At2 >= n {
				return Error{fmt.Sprintf("bond %d-%d out of range", v.At1, v.At2), title, []string{"writeV3000", "Write"}, true}
			}
			fmt.Fprintf(b, "M  V30 %d %d %d %d\n", i+1, v.Order, v.At1+1, v.At2+1)
		}
		b.WriteString("M  V30 END BOND\n")
	}
	b.WriteString("M  V30 END CTAB\nM  END\n")
	return b.Flush()
}

//v30Lines returns the content of the "M  V30" lines up to "M  END", with
//continued lines (ending in "-") joined.
func v30Lines(sc *bufio.Scanner) ([]string, error) {
	var ret []string
	cont := ""
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "M  END") {
			return ret, nil
		}
		if !strings.HasPrefix(line, "M  V30 ") {
			continue
		}
		content := strings.TrimRight(line[7:], " ")
		if strings.HasSuffix(content, "-") {
			cont += strings.TrimSuffix(content, "-")
			continue
		}
		ret = append(ret, cont+content)
		cont = ""
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("missing M  END")
}

//readV3000 reads the connection table of a V3000 molfile, after the counts line.
func readV3000(sc *bufio.Scanner, title string) (*gomin.Topology, *v3.Matrix, error) {
	fail := func(format string, a ...any) (*gomin.Topology, *v3.Matrix, error) {
		return nil, nil, Error{fmt.Sprintf(format, a...), title, []string{"readV3000", "Read"}, true}
	}
	lines, err := v30Lines(sc)
	if err != nil {
		return fail("%s", err.Error())
	}
	natoms, nbonds := -1, -1
	var atoms []*gomin.Atom
	var raw []float64
	var bonds []*gomin.Bond
	index := make(map[int]int) //atom index in the file -> position.
	block := ""
	for _, l := range lines {
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		switch {
		case f[0] == "COUNTS":
			if len(f) < 3 {
				return fail("malformed counts line: %q", l)
			}
			var err1, err2 error
			natoms, err1 = strconv.Atoi(f[1])
			nbonds, err2 = strconv.Atoi(f[2])
			if err1 != nil || err2 != nil || natoms < 0 || nbonds < 0 {
				return fail("malformed counts line: %q", l)
			}
			atoms = make([]*gomin.Atom, 0, natoms)
			raw = make([]float64, 0, 3*natoms)
			bonds = make([]*gomin.Bond, 0, nbonds)
		case f[0] == "BEGIN" && len(f) > 1:
			block = f[1]
		case f[0] == "END":
			block = ""
		case block == "ATOM":
			if natoms < 0 {
				return fail("atom block before the counts line")
			}
			if len(f) < 5 {
				return fail("malformed atom line: %q", l)
			}
			idx, err := strconv.Atoi(f[0])
			if err != nil {
				return fail("malformed atom line: %q", l)
			}
			var c [3]float64
			for j := range c {
				if c[j], err = strconv.ParseFloat(f[2+j], 64); err != nil {
					return fail("bad coordinate in atom %d: %s", len(atoms)+1, err.Error())
				}
			}
			charge := 0
			for _, prop := range f[5:] {
				if v, ok := strings.CutPrefix(prop, "CHG="); ok {
					if charge, err = strconv.Atoi(v); err != nil {
						return fail("bad charge in atom %d: %q", len(atoms)+1, prop)
					}
				}
			}
			index[idx] = len(atoms)
			atoms = append(atoms, &gomin.Atom{Name: f[1], ID: len(atoms) + 1, Symbol: f[1], Charge: charge, MolName: title})
			raw = append(raw, c[:]...)
		case block == "BOND":
			if len(f) < 4 {
				return fail("malformed bond line: %q", l)
			}
			order, err1 := strconv.Atoi(f[1])
			a1, err2 := strconv.Atoi(f[2])
			a2, err3 := strconv.Atoi(f[3])
			i1, ok1 := index[a1]
			i2, ok2 := index[a2]
			if err1 != nil || err2 != nil || err3 != nil || !ok1 || !ok2 {
				return fail("malformed bond line: %q", l)
			}
			bonds = append(bonds, &gomin.Bond{At1: i1, At2: i2, Order: order})
		}
	}
	if natoms < 0 {
		return fail("missing counts line")
	}
	if len(atoms) != natoms || len(bonds) != nbonds {
		return fail("%d atoms and %d bonds read, but the counts line has %d and %d", len(atoms), len(bonds), natoms, nbonds)
	}
	coords := v3.Zeros(natoms)
	for i := range atoms {
		coords.SetVec(i, [3]float64{raw[3*i], raw[3*i+1], raw[3*i+2]})
	}
	total := 0
	for _, at := range atoms {
		total += at.Charge
	}
	return gomin.NewTopology(total, atoms, bonds), coords, nil
}
