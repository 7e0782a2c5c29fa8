/*
 * commands.go, part of gomin.
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
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/rmera/gomin"
)

//Env contains the settings of a command that don't come from its arguments.
type Env struct {
	Logger   *slog.Logger
	Out      io.Writer
	Guard    *GuardOptions
	Commands map[string][]string //driver command for each engine name.
	Engines  map[string]string   //engine name for each command, if not the default one.
}

//Command runs a minimization with arguments given as strings, the way a host
//passes them. Numbers and booleans (including 0 and 1) are parsed.
type Command func(h gomin.Host, args map[string]string, env *Env) (*Result, error)

//Commands returns the available commands: minimize_ob, minimize_rdkit and clean_ob.
func Commands() map[string]Command {
	return map[string]Command{
		"minimize_ob":    minimizeOBCommand,
		"minimize_rdkit": minimizeRDKitCommand,
		"clean_ob":       cleanOBCommand,
	}
}

//CommandNames returns the names of the available commands, sorted.
func CommandNames() []string {
	ret := make([]string, 0, 3)
	for k := range Commands() {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

//args reads the string arguments of a command. The first error is kept, and
//later reads do nothing.
type args struct {
	m      map[string]string
	used   map[string]bool
	caller string
	err    error
}

func newArgs(m map[string]string, caller string) *args {
	return &args{m: m, used: make(map[string]bool, len(m)), caller: caller}
}

func (A *args) get(key string) (string, bool) {
	v, ok := A.m[key]
	A.used[key] = true
	return strings.TrimSpace(v), ok && A.err == nil
}

func (A *args) fail(key, val string, err error) {
	A.err = gomin.NewError(gomin.ErrArgument, fmt.Sprintf("bad value %q for %s: %s", val, key, err), A.caller)
}

func (A *args) getStr(key string, def string) string {
	if v, ok := A.get(key); ok {
		return v
	}
	return def
}

func (A *args) getInt(key string, def int) int {
	v, ok := A.get(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		A.fail(key, v, err)
		return def
	}
	return i
}

func (A *args) getFloat(key string, def float64) float64 {
	v, ok := A.get(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		A.fail(key, v, err)
		return def
	}
	return f
}

func (A *args) getBool(key string, def bool) bool {
	v, ok := A.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		A.fail(key, v, err)
		return def
	}
	return b
}

//done returns the first error found, or an error for any argument that was not read.
func (A *args) done() error {
	if A.err != nil {
		return A.err
	}
	var unknown []string
	for k := range A.m {
		if !A.used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return gomin.NewError(gomin.ErrArgument, "unknown arguments: "+strings.Join(unknown, ", "), A.caller)
	}
	return nil
}

//apply copies the environment into the options of a command.
func (E *Env) apply(command string, engine *string, cmd *[]string, guard **GuardOptions, logger **slog.Logger, out *io.Writer) {
	if E == nil {
		return
	}
	if e := E.Engines[command]; e != "" {
		*engine = e
	}
	*cmd = E.Commands[*engine]
	if E.Guard != nil {
		*guard = E.Guard
	}
	*logger = E.Logger
	*out = E.Out
}

func minimizeOBCommand(h gomin.Host, m map[string]string, env *Env) (*Result, error) {
	o := DefaultOBOptions()
	A := newArgs(m, "minimize_ob")
	o.Selection = A.getStr("selection", o.Selection)
	o.State = A.getInt("state", o.State)
	o.ForceField = A.getStr("ff", o.ForceField)
	o.Steps = A.getInt("nsteps", o.Steps)
	o.Convergence = A.getFloat("conv", o.Convergence)
	o.Cutoff = A.getBool("cutoff", o.Cutoff)
	o.CutVDW = A.getFloat("cut_vdw", o.CutVDW)
	o.CutElec = A.getFloat("cut_elec", o.CutElec)
	o.Name = A.getStr("name", o.Name)
	o.Quiet = A.getBool("quiet", o.Quiet)
	if err := A.done(); err != nil {
		return nil, err
	}
	env.apply("minimize_ob", &o.Engine, &o.Command, &o.Guard, &o.Logger, &o.Out)
	return MinimizeOB(h, o)
}

func minimizeRDKitCommand(h gomin.Host, m map[string]string, env *Env) (*Result, error) {
	o := DefaultRDKitOptions()
	A := newArgs(m, "minimize_rdkit")
	o.Selection = A.getStr("selection", o.Selection)
	o.State = A.getInt("state", o.State)
	o.ForceField = A.getStr("ff", o.ForceField)
	o.Steps = A.getInt("nsteps", o.Steps)
	o.Name = A.getStr("name", o.Name)
	o.Quiet = A.getBool("quiet", o.Quiet)
	if err := A.done(); err != nil {
		return nil, err
	}
	env.apply("minimize_rdkit", &o.Engine, &o.Command, &o.Guard, &o.Logger, &o.Out)
	return MinimizeRDKit(h, o)
}

func cleanOBCommand(h gomin.Host, m map[string]string, env *Env) (*Result, error) {
	o := DefaultCleanOptions()
	A := newArgs(m, "clean_ob")
	o.Selection = A.getStr("selection", "")
	o.Present = A.getStr("present", o.Present)
	o.State = A.getInt("state", o.State)
	o.Fix = A.getStr("fix", o.Fix)
	o.Restrain = A.getStr("restrain", o.Restrain)
	o.Method = A.getStr("method", o.Method)
	o.SaveUndo = A.getBool("save_undo", o.SaveUndo)
	o.Message = A.getStr("message", o.Message)
	if err := A.done(); err != nil {
		return nil, err
	}
	if o.Selection == "" {
		return nil, gomin.NewError(gomin.ErrArgument, "a selection is required", "clean_ob")
	}
	env.apply("clean_ob", &o.Engine, &o.Command, &o.Guard, &o.Logger, &o.Out)
	return CleanOB(h, o)
}
