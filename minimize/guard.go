/*
 * guard.go, part of gomin.
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
	"math"
	"math/rand/v2"

	"github.com/rmera/gomin"
	v3 "github.com/rmera/gomin/v3"
	"gonum.org/v1/gonum/stat/distuv"
)

//GuardOptions controls the randomization of collapsed coordinates.
type GuardOptions struct {
	//Coordinates count as collapsed when the sum of the standard deviations
	//along the 3 axes is not larger than Threshold.
	Threshold float64
	Jitter    float64 //each coordinate gets a random displacement in [-Jitter, Jitter)
	Fancy     bool    //put the atoms in a circle before the random displacement.
	Src       rand.Source
}

//DefaultGuardOptions returns the default options: a threshold of 0.001, a jitter of 0.5,
//the circle arrangement and the global random source.
func DefaultGuardOptions() *GuardOptions {
	return &GuardOptions{Threshold: 1e-3, Jitter: 0.5, Fancy: true}
}

//Decollapse spreads coords, in place, if all the points are at the same place.
//With the Fancy option, point i is first moved by N^(1/3)*(sin(2*pi*i/N), cos(2*pi*i/N), 0),
//which puts the points in a circle. Then, every coordinate gets a random displacement.
//It returns true if coords was modified. Less than 2 points are never modified.
//A nil o means DefaultGuardOptions().
func Decollapse(coords *v3.Matrix, o *GuardOptions) bool {
	if o == nil {
		o = DefaultGuardOptions()
	}
	n := coords.NVecs()
	if n < 2 || coords.StdDevSum() > o.Threshold {
		return false
	}
	if o.Fancy {
		width := math.Cbrt(float64(n))
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(i) / float64(n)
			coords.Set(i, 0, coords.At(i, 0)+math.Sin(angle)*width)
			coords.Set(i, 1, coords.At(i, 1)+math.Cos(angle)*width)
		}
	}
	jitter := distuv.Uniform{Min: -o.Jitter, Max: o.Jitter, Src: o.Src}
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			coords.Set(i, j, coords.At(i, j)+jitter.Rand())
		}
	}
	return true
}

//RandomizeIfCollapsed applies Decollapse to the coordinates of sele in the given state, and
//puts them back in the host if they changed. It returns whether they did.
func RandomizeIfCollapsed(h gomin.Host, sele string, state int, o *GuardOptions) (bool, error) {
	coords, err := h.Coords(sele, state)
	if err != nil {
		return false, gomin.Decorate(err, "RandomizeIfCollapsed")
	}
	if !Decollapse(coords, o) {
		return false, nil
	}
	if err := h.LoadCoords(coords, sele, state); err != nil {
		return false, gomin.Decorate(err, "RandomizeIfCollapsed")
	}
	return true, nil
}
