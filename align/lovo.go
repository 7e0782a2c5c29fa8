/*
 * lovo.go, part of gomin.
 *
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
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
 *
 */

package align

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/rmera/gomin/v3"
)

//LOVO superimposes test on templa using only the o.Fraction() best fitting pairs (but never less
//than o.MinimumN()). The set of pairs is chosen iteratively: after each superposition, the pairs with
//the smallest deviations are taken for the next one, until the set doesn't change, or o.Cycles()
//iterations have been done.
//If you use this function in your research, please cite the reference for the LOVO alignment method:
//10.1371/journal.pone.0119264.
func LOVO(test, templa *v3.Matrix, o *Options) (*Result, error) {
	if o == nil {
		o = DefaultOptions()
	}
	n := test.NVecs()
	if n != templa.NVecs() {
		return nil, fmt.Errorf("LOVO: mismatched number of pairs, %d and %d", n, templa.NVecs())
	}
	//we first do one iteration aligning the whole thing.
	T, rmsd, err := Super(test, templa)
	if err != nil {
		return nil, fmt.Errorf("LOVO: %w", err)
	}
	nbest := int(math.Ceil(o.Fraction() * float64(n)))
	nbest = max(nbest, o.MinimumN())
	nbest = min(nbest, n)
	indexesold := allIndexes(n)
	var itercount int
	for itercount < o.Cycles() {
		indexes := bestPairs(deviations(T.Apply(test), templa), nbest)
		if itercount > 0 && sameElementsInt(indexes, indexesold) {
			break //converged
		}
		itercount++
		indexesold = indexes
		T, rmsd, err = Super(subset(test, indexes), subset(templa, indexes))
		if err != nil {
			return nil, fmt.Errorf("LOVO: %w", err)
		}
	}
	return &Result{Transform: T, RMSD: rmsd, Used: indexesold, Iterations: itercount}, nil
}

//bestPairs returns the indexes of the n smallest values in dev, sorted by index.
func bestPairs(dev []float64, n int) []int {
	idx := allIndexes(len(dev))
	sort.SliceStable(idx, func(i, j int) bool { return dev[idx[i]] < dev[idx[j]] })
	ret := idx[:n]
	sort.Ints(ret)
	return ret
}

//helper functions

//returns true if t1 and t2 have the same elements
//(whether or not in the same order) and false otherwise.
func sameElementsInt(t1, t2 []int) bool {
	if len(t1) != len(t2) {
		return false
	}
	for _, v := range t1 {
		if !isInInt(v, t2) {
			return false
		}
	}
	return true

}

//isInInt returns true if test is in container, false otherwise.
func isInInt(test int, container []int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
