/*
 * helpers_test.go, part of gomin.
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
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/mm"
	"github.com/rmera/gomin/molfile"
	"github.com/rmera/gomin/scene"
	v3 "github.com/rmera/gomin/v3"
	"github.com/stretchr/testify/require"
)

//molecule returns n bonded carbons with the given coordinates, or a zig-zag if data is nil.
func molecule(Te *testing.T, n int, data []float64) (*gomin.Topology, *v3.Matrix) {
	atoms := make([]*gomin.Atom, n)
	var bonds []*gomin.Bond
	zigzag := data == nil
	for i := range atoms {
		atoms[i] = &gomin.Atom{Name: "C", ID: i + 1, Symbol: "C"}
		if zigzag {
			data = append(data, 1.5*float64(i), 0.9*float64(i%2), 0.2*float64(i%3))
		}
		if i > 0 {
			bonds = append(bonds, &gomin.Bond{At1: i - 1, At2: i, Order: 1})
		}
	}
	coords, err := v3.NewMatrix(data)
	require.NoError(Te, err)
	return gomin.NewTopology(0, atoms, bonds), coords
}

func newScene(Te *testing.T, objects map[string]int) *scene.Scene {
	S := scene.New()
	for name, n := range objects {
		top, c := molecule(Te, n, nil)
		require.NoError(Te, S.AddObject(name, top, c))
	}
	return S
}

var stubCount atomic.Int64

//stub is a Minimizer that doesn't minimize. By default, it returns the structure it got.
type stub struct {
	mu        sync.Mutex
	setup     func(rec gomin.Record, Q *mm.Calc) error
	move      [3]float64 //added to all the coordinates returned.
	converged bool
	calcs     []mm.Calc
	in        []gomin.Record
	out       []gomin.Record
	closed    int
}

func newStub() *stub {
	return &stub{converged: true}
}

//register makes the stub available as an engine, and returns the engine name.
func (S *stub) register(Te *testing.T) string {
	name := fmt.Sprintf("stub%d", stubCount.Add(1))
	mm.Register(name, func(command []string) (mm.Minimizer, error) {
		return &stubRun{S: S}, nil
	})
	Te.Cleanup(func() { mm.Unregister(name) })
	return name
}

//stubRun is one minimization with a stub.
type stubRun struct {
	S   *stub
	rec gomin.Record
}

func (R *stubRun) Setup(rec gomin.Record, Q *mm.Calc) error {
	R.S.mu.Lock()
	R.S.calcs = append(R.S.calcs, *Q)
	R.S.in = append(R.S.in, rec)
	f := R.S.setup
	R.S.mu.Unlock()
	R.rec = rec
	if f != nil {
		return f(rec, Q)
	}
	return nil
}

func (R *stubRun) Step(n int) (bool, error) {
	return R.S.converged, nil
}

func (R *stubRun) Energy() (float64, string, error) {
	return 1.5, "kcal/mol", nil
}

func (R *stubRun) Coordinates() (gomin.Record, error) {
	top, coords, err := molfile.FromRecord(R.rec)
	if err != nil {
		return gomin.Record{}, err
	}
	for i := 0; i < coords.NVecs(); i++ {
		v := coords.Vec(i)
		coords.SetVec(i, [3]float64{v[0] + R.S.move[0], v[1] + R.S.move[1], v[2] + R.S.move[2]})
	}
	rec, err := molfile.ToRecord(top, coords, "stub")
	if err != nil {
		return gomin.Record{}, err
	}
	R.S.mu.Lock()
	R.S.out = append(R.S.out, rec)
	R.S.mu.Unlock()
	return rec, nil
}

func (R *stubRun) Close() error {
	R.S.mu.Lock()
	R.S.closed++
	R.S.mu.Unlock()
	return nil
}

//recorder is a slog.Handler that keeps the records.
type recorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (R *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (R *recorder) Handle(_ context.Context, r slog.Record) error {
	R.mu.Lock()
	defer R.mu.Unlock()
	R.records = append(R.records, r.Clone())
	return nil
}

func (R *recorder) WithAttrs([]slog.Attr) slog.Handler { return R }
func (R *recorder) WithGroup(string) slog.Handler { return R }

//count returns the number of records with the given level.
func (R *recorder) count(level slog.Level) int {
	R.mu.Lock()
	defer R.mu.Unlock()
	n := 0
	for _, r := range R.records {
		if r.Level == level {
			n++
		}
	}
	return n
}

//errorsAt returns the "error" attributes of the records with the given level.
func (R *recorder) errorsAt(level slog.Level) []error {
	R.mu.Lock()
	defer R.mu.Unlock()
	var ret []error
	for _, r := range R.records {
		if r.Level != level {
			continue
		}
		r.Attrs(func(a slog.Attr) bool {
			if err, ok := a.Value.Any().(error); ok && a.Key == "error" {
				ret = append(ret, err)
			}
			return true
		})
	}
	return ret
}

var quietLogger = slog.New(slog.DiscardHandler)
