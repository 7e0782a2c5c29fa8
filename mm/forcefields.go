/*
 * forcefields.go, part of gomin.
 *
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
 *
 */

package mm

import (
	"strings"

	"github.com/rmera/gomin"
)

//ForceField is the name of a force field, as the engines know it.
type ForceField string

const (
	GAFF     ForceField = "GAFF"
	MMFF94s  ForceField = "MMFF94s"
	MMFF94   ForceField = "MMFF94"
	UFF      ForceField = "UFF"
	Ghemical ForceField = "Ghemical"
)

//The force fields supported by each engine.
var (
	OBForceFields    = []ForceField{GAFF, MMFF94s, MMFF94, UFF, Ghemical}
	RDKitForceFields = []ForceField{MMFF94s, MMFF94, UFF}
)

//The default force field for each engine.
const (
	OBDefault    = UFF
	RDKitDefault = MMFF94
)

//ParseOBForceField returns the Open Babel force field called name (case-insensitive).
//An empty name gives the default, UFF.
func ParseOBForceField(name string) (ForceField, error) {
	if name == "" {
		return OBDefault, nil
	}
	for _, v := range OBForceFields {
		if strings.EqualFold(name, string(v)) {
			return v, nil
		}
	}
	return "", gomin.NewError(gomin.ErrEngineUnavailable, "unknown forcefield: "+name+" (Open Babel supports GAFF, MMFF94s, MMFF94, UFF and Ghemical)", "ParseOBForceField")
}

//ParseRDKitForceField returns the RDKit force field called name. Names starting with
//"MMFF" are MMFF variants. An empty name gives the default, MMFF94.
func ParseRDKitForceField(name string) (ForceField, error) {
	switch {
	case name == "":
		return RDKitDefault, nil
	case strings.HasPrefix(name, "MMFF"):
		for _, v := range RDKitForceFields {
			if name == string(v) {
				return v, nil
			}
		}
	case name == string(UFF):
		return UFF, nil
	}
	return "", gomin.NewError(gomin.ErrEngineUnavailable, "unknown forcefield: "+name, "ParseRDKitForceField")
}

//IsMMFF returns true for the MMFF variants.
func (F ForceField) IsMMFF() bool {
	return strings.HasPrefix(string(F), "MMFF")
}
