/*
 * pipe.go, part of gomin.
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
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rmera/gomin"
	"github.com/rmera/gomin/chemjson"
	"github.com/rmera/gomin/config"
	"github.com/rmera/gomin/minimize"
	"github.com/rmera/gomin/scene"
	v3 "github.com/rmera/gomin/v3"
)

const pipeUsage = `Usage:
  gomin pipe [options]

Reads a command and its molecules as JSON lines from the standard input,
runs the command, and writes the resulting molecules, followed by an
information line, to the standard output. Errors are written to the
standard output as a JSON line, and logs to the standard error.

Options:
`

//engineMap is a flag of the form command=engine[,command=engine...]
type engineMap map[string]string

func (e engineMap) String() string {
	s := make([]string, 0, len(e))
	for k, v := range e {
		s = append(s, k+"="+v)
	}
	return strings.Join(s, ",")
}

func (e engineMap) Set(val string) error {
	for _, pair := range strings.Split(val, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" || v == "" {
			return fmt.Errorf("%q is not of the form command=engine", pair)
		}
		e[k] = v
	}
	return nil
}

func pipeCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gomin pipe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usageFunc(fs, stderr, pipeUsage)
	var c common
	c.register(fs)
	engines := make(engineMap)
	fs.Var(engines, "engine", "Engine to use for a command, as command=engine. Can be repeated.")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	C, logger, err := c.load(stderr)
	if err != nil {
		return err
	}
	if err := pipe(bufio.NewReader(stdin), stdout, stderr, C, logger, engines); err != nil {
		logger.Error("pipe command failed", "error", err)
		if serr := err.Send(stdout); serr != nil {
			return serr
		}
		return &ExitError{Code: 1}
	}
	return nil
}

//pipe runs one command read from in, and writes the results to out.
func pipe(in *bufio.Reader, out, stderr io.Writer, C *config.Config, logger *slog.Logger, engines engineMap) *chemjson.Error {
	o, jerr := chemjson.DecodeOptions(in)
	if jerr != nil {
		return jerr
	}
	command, ok := minimize.Commands()[o.Command]
	if !ok {
		return chemjson.NewError("options", "pipe", gomin.NewError(gomin.ErrArgument, fmt.Sprintf("unknown command %q, available: %v", o.Command, minimize.CommandNames()), "pipe"))
	}
	S := scene.New()
	for i, name := range o.SelNames {
		top, coordset, jerr := chemjson.DecodeMolecule(in, o.AtomsPerSel[i], o.StatesPerSel[i], o.Bonds(i))
		if jerr != nil {
			jerr.Selection = name
			return jerr
		}
		if err := S.AddObject(name, top, coordset...); err != nil {
			jerr := chemjson.NewError("selection", "pipe", err)
			jerr.Selection = name
			return jerr
		}
	}
	env := &minimize.Env{
		Logger:   logger,
		Out:      stderr,
		Guard:    C.GuardOptions(),
		Commands: C.Commands(),
		Engines:  engines,
	}
	cmdArgs := engineDefaults(o.Command, o.Args, C, engines)
	logger.Debug("running command", "command", o.Command, "args", cmdArgs)
	res, err := command(S, cmdArgs, env)
	if err != nil {
		return chemjson.NewError("process", o.Command, err)
	}
	info := &chemjson.Info{
		Energies:  []float64{res.Energy},
		Units:     []string{res.Unit},
		Converged: []bool{res.Converged},
	}
	for _, name := range S.Names() {
		top, err := S.Topology(name)
		if err != nil {
			return chemjson.NewError("postprocess", "pipe", err)
		}
		n := S.NStates(name)
		coordset := make([]*v3.Matrix, 0, n)
		for st := 1; st <= n; st++ {
			coords, err := S.Coords(name, st)
			if err != nil {
				return chemjson.NewError("postprocess", "pipe", err)
			}
			coordset = append(coordset, coords)
		}
		if jerr := chemjson.SendMolecule(top, coordset, nil, out); jerr != nil {
			return jerr
		}
		info.Molecules++
		info.AtomsPerMolecule = append(info.AtomsPerMolecule, top.Len())
		info.FramesPerMolecule = append(info.FramesPerMolecule, n)
		info.StringInfo = append(info.StringInfo, []string{name})
	}
	return info.Send(out)
}

//engineDefaults returns a copy of args with the force field and number of steps
//configured for the command's engine, unless args already sets them.
func engineDefaults(command string, args map[string]string, C *config.Config, engines engineMap) map[string]string {
	ret := make(map[string]string, len(args)+2)
	for k, v := range args {
		ret[k] = v
	}
	if command == "clean_ob" {
		return ret
	}
	name := strings.TrimPrefix(command, "minimize_")
	if name == "ob" {
		name = "openbabel"
	}
	if e, ok := engines[command]; ok {
		name = e
	}
	eng := C.Engine(name)
	if eng == nil {
		return ret
	}
	if _, ok := ret["ff"]; !ok && eng.ForceField != "" {
		ret["ff"] = eng.ForceField
	}
	if _, ok := ret["nsteps"]; !ok && eng.Steps > 0 {
		ret["nsteps"] = strconv.Itoa(eng.Steps)
	}
	return ret
}
