/*
 * fixed.go, part of gomin.
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
	"github.com/rmera/gomin"
)

//FixedIndexes returns the positions, within sele, of the atoms with the fix flag
//in the given state. An empty selection gives an empty mask.
func FixedIndexes(h gomin.Host, sele string, state int) (gomin.FixedMask, error) {
	flags, err := h.AtomFlags(sele, state)
	if err != nil {
		return gomin.FixedMask{}, gomin.Decorate(err, "FixedIndexes")
	}
	fixed := make([]int, 0, len(flags))
	for i, f := range flags {
		if f&gomin.FlagFix != 0 {
			fixed = append(fixed, i)
		}
	}
	return gomin.NewFixedMask(fixed...), nil
}
