/*
 * min.go, part of gomin.
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

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/config"
	"github.com/rmera/gomin/minimize"
	"github.com/rmera/gomin/mm"
	"github.com/rmera/gomin/molfile"
	"github.com/rmera/gomin/scene"
	"golang.org/x/sync/errgroup"
)

const minUsage = `Usage:
  gomin min [options] FILE...

Minimizes each molfile (which can be compressed with gzip or zstd), and
writes the result to NAME_min.mol (keeping the compression).
The files are minimized concurrently.

Options:
`

//minFlags are the options of the min command.
type minFlags struct {
	common
	engine  string
	ff      string
	steps   int
	conv    float64
	cutoff  bool
	name    string
	fix     string
	jobs    int
	quiet   bool
	outName string
}

func minCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gomin min", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usageFunc(fs, stderr, minUsage)
	f := new(minFlags)
	f.register(fs)
	fs.StringVar(&f.engine, "engine", "openbabel", "Engine: openbabel or rdkit. Other engines take the openbabel settings.")
	fs.StringVar(&f.ff, "ff", "", "Force field. The default is taken from the configuration.")
	fs.IntVar(&f.steps, "steps", 0, "Minimization steps. The default is taken from the configuration.")
	fs.Float64Var(&f.conv, "conv", 1e-4, "Convergence criterion (openbabel only).")
	fs.BoolVar(&f.cutoff, "cutoff", false, "Use non-bonded cutoffs (openbabel only).")
	fs.StringVar(&f.name, "name", "", "Keep the original structure, and put the minimized one in a new object with this name. The output is the new object, fitted onto the original.")
	fs.StringVar(&f.fix, "fix", "", "Atoms that must not move, as 1-based IDs, for instance 1+3-5.")
	fs.IntVar(&f.jobs, "j", runtime.NumCPU(), "Maximum number of concurrent minimizations.")
	fs.BoolVar(&f.quiet, "q", false, "Don't print the energies.")
	fs.StringVar(&f.outName, "o", "", "Output file. Only valid with one input file.")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return &ExitError{Code: 2, Message: "no input files"}
	}
	if f.outName != "" && len(files) > 1 {
		return &ExitError{Code: 2, Message: "-o can only be used with one input file"}
	}
	if !slices.Contains(mm.Engines(), f.engine) {
		return &ExitError{Code: 2, Message: fmt.Sprintf("engine %q not available (available: %v)", f.engine, mm.Engines())}
	}
	C, logger, err := f.load(stderr)
	if err != nil {
		return err
	}

	S := scene.New()
	objects := make([]string, len(files))
	used := make(map[string]bool)
	for i, file := range files {
		top, coords, err := molfile.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		objects[i] = objectName(file, used)
		if err := S.AddObject(objects[i], top, coords); err != nil {
			return err
		}
	}

	results := make([]*minimize.Result, len(files))
	var g errgroup.Group
	g.SetLimit(max(1, f.jobs))
	for i, file := range files {
		g.Go(func() error {
			obj := objects[i]
			if f.fix != "" {
				if err := S.Flag(gomin.FlagFix, obj+"/"+f.fix, true); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			}
			target := ""
			if f.name != "" {
				target = f.name
				if len(files) > 1 {
					target = fmt.Sprintf("%s_%d", f.name, i+1)
				}
			}
			res, err := f.minimize(S, C, logger, obj, target)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			if target != "" {
				obj = target
			}
			return writeObject(S, obj, f.output(file))
		})
	}
	err = g.Wait()
	if !f.quiet {
		for i, res := range results {
			if res != nil {
				fmt.Fprintf(stdout, "%s -> %s %s\n", files[i], f.output(files[i]), res)
			}
		}
	}
	if err != nil {
		logger.Error("minimization failed", "error", err)
		return &ExitError{Code: 1}
	}
	return nil
}

//minimize minimizes the object obj with the chosen engine.
func (f *minFlags) minimize(S *scene.Scene, C *config.Config, logger *slog.Logger, obj, target string) (*minimize.Result, error) {
	eng := C.Engine(f.engine)
	if eng == nil {
		eng = &config.Engine{Name: f.engine}
	}
	ff, steps := eng.ForceField, eng.Steps
	if f.ff != "" {
		ff = f.ff
	}
	if f.steps > 0 {
		steps = f.steps
	}
	if f.engine == "rdkit" {
		o := minimize.DefaultRDKitOptions()
		o.Selection, o.Name = obj, target
		if ff != "" {
			o.ForceField = ff
		}
		if steps > 0 {
			o.Steps = steps
		}
		o.Command = eng.Command
		o.Guard = C.GuardOptions()
		o.Logger = logger
		return minimize.MinimizeRDKit(S, o)
	}
	o := minimize.DefaultOBOptions()
	o.Selection, o.Name = obj, target
	o.Engine = f.engine
	if ff != "" {
		o.ForceField = ff
	}
	if steps > 0 {
		o.Steps = steps
	}
	o.Convergence = f.conv
	o.Cutoff = f.cutoff
	o.Command = eng.Command
	o.Guard = C.GuardOptions()
	o.Logger = logger
	return minimize.MinimizeOB(S, o)
}

//output returns the name of the output file for the input file.
func (f *minFlags) output(file string) string {
	if f.outName != "" {
		return f.outName
	}
	name := molfile.Trim(file) + "_min.mol"
	if c := molfile.Compression(file); c != "" {
		name += "." + c
	}
	return name
}

var notInName = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

//objectName returns a name for the object read from file, valid in selections
//and not in used. The name is added to used.
func objectName(file string, used map[string]bool) string {
	base := notInName.ReplaceAllString(filepath.Base(molfile.Trim(file)), "_")
	switch base {
	case "", "all", "none", "enabled", "or":
		base = "mol_" + base
	}
	name := base
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	used[name] = true
	return name
}

//writeObject writes the current state of the object obj to the file name.
func writeObject(S *scene.Scene, obj, name string) error {
	top, err := S.Topology(obj)
	if err != nil {
		return err
	}
	coords, err := S.Coords(obj, gomin.CurrentState)
	if err != nil {
		return err
	}
	return molfile.WriteFile(name, top, coords)
}
