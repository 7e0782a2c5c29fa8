/*
 * super.go, part of gomin.
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

	v3 "github.com/rmera/gomin/v3"
	"gonum.org/v1/gonum/mat"
)

//Transform is a rigid body transformation. To apply it to a set of coordinates,
//From is subtracted from each vector, the result is multiplied by Rot and To is added.
type Transform struct {
	Rot  *mat.Dense //3x3, acts on row vectors from the right.
	From [3]float64
	To   [3]float64
}

//Identity returns a Transform that does nothing.
func Identity() *Transform {
	return &Transform{Rot: eye3()}
}

//Apply returns a transformed copy of coords.
func (T *Transform) Apply(coords *v3.Matrix) *v3.Matrix {
	n := coords.NVecs()
	ret := v3.Zeros(n)
	if n == 0 {
		return ret
	}
	for i := 0; i < n; i++ {
		c := coords.Vec(i)
		var r [3]float64
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[j] += (c[k] - T.From[k]) * T.Rot.At(k, j)
			}
			r[j] += T.To[j]
		}
		ret.SetVec(i, r)
	}
	return ret
}

//Super returns the transformation that superimposes the vectors in test on the
//vectors in templa (least squares, pairing the ith vector of each), and the RMSD of the superposition.
//Reflections are never returned: if the best orthogonal matrix is not a proper rotation, the
//best proper rotation is used instead.
func Super(test, templa *v3.Matrix) (*Transform, float64, error) {
	n := test.NVecs()
	if n == 0 {
		return nil, 0, fmt.Errorf("Super: no pairs to superimpose")
	}
	if n != templa.NVecs() {
		return nil, 0, fmt.Errorf("Super: ill-formed matrices, %d and %d vectors", n, templa.NVecs())
	}
	ctest := test.Centroid()
	ctempla := templa.Centroid()
	p := v3.Zeros(n)
	p.SubVec(test, ctest)
	q := v3.Zeros(n)
	q.SubVec(templa, ctempla)
	//covariance matrix
	H := mat.NewDense(3, 3, nil)
	H.Mul(p.Dense.T(), q.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, 0, fmt.Errorf("Super: SVD factorization failed")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	D := eye3()
	if mat.Det(&U)*mat.Det(&V) < 0 {
		D.Set(2, 2, -1)
	}
	var ud mat.Dense
	ud.Mul(&U, D)
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(&ud, V.T())
	T := &Transform{Rot: rot, From: ctest.Vec(0), To: ctempla.Vec(0)}
	rmsd, err := RMSD(T.Apply(test), templa)
	if err != nil {
		return nil, 0, err
	}
	return T, rmsd, nil
}

//RMSD returns the RSMD (root of the mean square deviation) for the sets of cartesian
//coordinates in test and template.
func RMSD(test, templa *v3.Matrix) (float64, error) {
	n := test.NVecs()
	if n == 0 || n != templa.NVecs() {
		return 0, fmt.Errorf("RMSD: ill-formed matrices, %d and %d vectors", n, templa.NVecs())
	}
	var sum float64
	for _, d := range deviations(test, templa) {
		sum += d * d
	}
	return math.Sqrt(sum / float64(n)), nil
}

//deviations returns the distance between each pair of vectors in a and b.
func deviations(a, b *v3.Matrix) []float64 {
	ret := make([]float64, a.NVecs())
	for i := range ret {
		va, vb := a.Vec(i), b.Vec(i)
		var s float64
		for j := 0; j < 3; j++ {
			s += (va[j] - vb[j]) * (va[j] - vb[j])
		}
		ret[i] = math.Sqrt(s)
	}
	return ret
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

//subset returns the vectors of A with the given indexes.
func subset(A *v3.Matrix, indexes []int) *v3.Matrix {
	ret := v3.Zeros(len(indexes))
	ret.SomeVecs(A, indexes)
	return ret
}

//Result contains the information returned by Fit and LOVO.
type Result struct {
	*Transform
	RMSD       float64 //over the pairs used for the last superposition.
	Used       []int   //indexes of the pairs used for the last superposition.
	Iterations int
}

//String returns a string representation of the Result.
func (R *Result) String() string {
	return fmt.Sprintf("RMSD: %6.3f, pairs used: %d, iterations: %d", R.RMSD, len(R.Used), R.Iterations)
}

//Fit superimposes test on templa, with up to o.Cycles() outlier rejection cycles.
//In each cycle, the pairs deviating by more than o.Cutoff() times the RMSD are left out
//and the superposition is repeated with the rest. The cycles stop when no pair
//is rejected, or when rejecting would leave less than o.MinimumN() pairs.
func Fit(test, templa *v3.Matrix, o *Options) (*Result, error) {
	if o == nil {
		o = DefaultOptions()
	}
	n := test.NVecs()
	if n != templa.NVecs() {
		return nil, fmt.Errorf("Fit: mismatched number of pairs, %d and %d", n, templa.NVecs())
	}
	used := allIndexes(n)
	T, rmsd, err := Super(test, templa)
	if err != nil {
		return nil, fmt.Errorf("Fit: %w", err)
	}
	iter := 0
	for ; iter < o.Cycles(); iter++ {
		if rmsd < exactFit {
			break
		}
		dev := deviations(subset(T.Apply(test), used), subset(templa, used))
		keep := make([]int, 0, len(used))
		for i, d := range dev {
			if d <= o.Cutoff()*rmsd {
				keep = append(keep, used[i])
			}
		}
		if len(keep) == len(used) || len(keep) < o.MinimumN() {
			break
		}
		used = keep
		T, rmsd, err = Super(subset(test, used), subset(templa, used))
		if err != nil {
			return nil, fmt.Errorf("Fit: %w", err)
		}
	}
	return &Result{Transform: T, RMSD: rmsd, Used: used, Iterations: iter}, nil
}

//Fits with a smaller RMSD are not refined further.
const exactFit = 1e-8

func allIndexes(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}
