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

package gomin

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

//FixedMask is the set of 0-based positions, within one selection, of the atoms
//that must not move during a minimization. A FixedMask is not modified after
//it is built. The zero value is an empty mask.
type FixedMask struct {
	rb *roaring.Bitmap
}

//NewFixedMask returns a mask with the given positions. Negative positions panic.
func NewFixedMask(indexes ...int) FixedMask {
	rb := roaring.New()
	for _, v := range indexes {
		if v < 0 {
			panic("NewFixedMask: negative atom index")
		}
		rb.Add(uint32(v))
	}
	rb.RunOptimize()
	return FixedMask{rb: rb}
}

//Len returns the number of fixed positions.
func (F FixedMask) Len() int {
	if F.rb == nil {
		return 0
	}
	return int(F.rb.GetCardinality())
}

//Contains returns true if position i is fixed.
func (F FixedMask) Contains(i int) bool {
	if F.rb == nil || i < 0 {
		return false
	}
	return F.rb.Contains(uint32(i))
}

//All iterates over the fixed positions in increasing order.
func (F FixedMask) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		if F.rb == nil {
			return
		}
		it := F.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

//Indexes returns the fixed positions, sorted, shifted by offset. Use
//an offset of 1 for programs that count atoms from 1.
func (F FixedMask) Indexes(offset ...int) []int {
	off := 0
	if len(offset) > 0 {
		off = offset[0]
	}
	ret := make([]int, 0, F.Len())
	for i := range F.All() {
		ret = append(ret, i+off)
	}
	return ret
}

//Max returns the largest fixed position, or -1 for an empty mask.
func (F FixedMask) Max() int {
	if F.Len() == 0 {
		return -1
	}
	return int(F.rb.Maximum())
}
