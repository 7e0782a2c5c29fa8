/*
 * config.go, part of gomin.
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

//Package config reads the goMin configuration file, written in HCL:
//
//	log { level = "info"  format = "text" }
//	guard { threshold = 0.001  jitter = 0.5  fancy = true }
//	engine "openbabel" { command = ["python3", "-u"]  forcefield = "UFF"  steps = 500 }
//	engine "rdkit" { command = [env.CONDA_PREFIX + "/bin/python", "-u"] }
//
//All blocks and attributes are optional. The environment variables are available
//as env.NAME.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rmera/gomin/minimize"
	"github.com/rmera/gomin/mm"
	"github.com/zclconf/go-cty/cty"
)

//DefaultFile is the name of the configuration file looked for by the gomin program.
const DefaultFile = "gomin.hcl"

//Config is the goMin configuration.
type Config struct {
	Log     *Log      `hcl:"log,block"`
	Guard   *Guard    `hcl:"guard,block"`
	Engines []*Engine `hcl:"engine,block"`
}

//Log configures the logger.
type Log struct {
	Level  string `hcl:"level,optional"`  //debug, info, warn or error
	Format string `hcl:"format,optional"` //text or json
}

//Guard configures the randomization of collapsed coordinates. Seed makes the
//randomization reproducible.
type Guard struct {
	Threshold *float64 `hcl:"threshold,optional"`
	Jitter    *float64 `hcl:"jitter,optional"`
	Fancy     *bool    `hcl:"fancy,optional"`
	Seed      *int64   `hcl:"seed,optional"`
}

//Engine configures a force field engine.
type Engine struct {
	Name       string   `hcl:"name,label"`
	Command    []string `hcl:"command,optional"`
	ForceField string   `hcl:"forcefield,optional"`
	Steps      int      `hcl:"steps,optional"`
}

//Default returns the default configuration.
func Default() *Config {
	g := minimize.DefaultGuardOptions()
	fancy := g.Fancy
	return &Config{
		Log:   &Log{Level: "info", Format: "text"},
		Guard: &Guard{Threshold: &g.Threshold, Jitter: &g.Jitter, Fancy: &fancy},
		Engines: []*Engine{
			{Name: "openbabel", Command: []string{"python3", "-u"}, ForceField: string(mm.OBDefault), Steps: 500},
			{Name: "rdkit", Command: []string{"python3", "-u"}, ForceField: string(mm.RDKitDefault), Steps: 200},
		},
	}
}

//Load reads the configuration file name. A file that doesn't exist gives the
//default configuration.
func Load(name string) (*Config, error) {
	src, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return Parse(src, name)
}

//evalContext exposes the environment variables as env.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" && hcl.ValidIdentifier(k) {
			vars[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)}}
}

//Parse parses src, the contents of the configuration file filename, on top of the defaults.
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", filename, diags)
	}
	read := new(Config)
	if diags := gohcl.DecodeBody(file.Body, evalContext(), read); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration file %s: %w", filename, diags)
	}
	C := Default()
	C.merge(read)
	if err := C.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration file %s: %w", filename, err)
	}
	return C, nil
}

//merge puts the values set in read over those in C.
func (C *Config) merge(read *Config) {
	if read.Log != nil {
		if read.Log.Level != "" {
			C.Log.Level = read.Log.Level
		}
		if read.Log.Format != "" {
			C.Log.Format = read.Log.Format
		}
	}
	if g := read.Guard; g != nil {
		if g.Threshold != nil {
			C.Guard.Threshold = g.Threshold
		}
		if g.Jitter != nil {
			C.Guard.Jitter = g.Jitter
		}
		if g.Fancy != nil {
			C.Guard.Fancy = g.Fancy
		}
		if g.Seed != nil {
			C.Guard.Seed = g.Seed
		}
	}
	for _, e := range read.Engines {
		def := C.Engine(e.Name)
		if def == nil {
			C.Engines = append(C.Engines, e)
			continue
		}
		if len(e.Command) > 0 {
			def.Command = e.Command
		}
		if e.ForceField != "" {
			def.ForceField = e.ForceField
		}
		if e.Steps != 0 {
			def.Steps = e.Steps
		}
	}
}

var (
	levels  = []string{"debug", "info", "warn", "error"}
	formats = []string{"text", "json"}
)

//Validate checks the values in the configuration.
func (C *Config) Validate() error {
	var errs []error
	if !slices.Contains(levels, C.Log.Level) {
		errs = append(errs, fmt.Errorf("log level %q is not one of %s", C.Log.Level, strings.Join(levels, ", ")))
	}
	if !slices.Contains(formats, C.Log.Format) {
		errs = append(errs, fmt.Errorf("log format %q is not one of %s", C.Log.Format, strings.Join(formats, ", ")))
	}
	if *C.Guard.Threshold < 0 {
		errs = append(errs, fmt.Errorf("guard threshold can't be negative"))
	}
	if *C.Guard.Jitter < 0 {
		errs = append(errs, fmt.Errorf("guard jitter can't be negative"))
	}
	names := make(map[string]bool)
	for _, e := range C.Engines {
		if names[e.Name] {
			errs = append(errs, fmt.Errorf("engine %s configured twice", e.Name))
		}
		names[e.Name] = true
		if e.Steps < 0 {
			errs = append(errs, fmt.Errorf("engine %s: steps can't be negative", e.Name))
		}
		var err error
		switch e.Name {
		case "openbabel":
			_, err = mm.ParseOBForceField(e.ForceField)
		case "rdkit":
			_, err = mm.ParseRDKitForceField(e.ForceField)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("engine %s: %w", e.Name, err))
		}
	}
	return errors.Join(errs...)
}

//Engine returns the configuration for the engine name, or nil if there is none.
func (C *Config) Engine(name string) *Engine {
	for _, e := range C.Engines {
		if e.Name == name {
			return e
		}
	}
	return nil
}

//Commands returns the driver command of each engine.
func (C *Config) Commands() map[string][]string {
	ret := make(map[string][]string, len(C.Engines))
	for _, e := range C.Engines {
		if len(e.Command) > 0 {
			ret[e.Name] = e.Command
		}
	}
	return ret
}

//GuardOptions returns the options for the randomization of collapsed coordinates.
func (C *Config) GuardOptions() *minimize.GuardOptions {
	o := minimize.DefaultGuardOptions()
	o.Threshold = *C.Guard.Threshold
	o.Jitter = *C.Guard.Jitter
	o.Fancy = *C.Guard.Fancy
	if C.Guard.Seed != nil {
		o.Src = rand.NewPCG(uint64(*C.Guard.Seed), 0)
	}
	return o
}

//Level returns the configured log level.
func (C *Config) Level() slog.Level {
	switch C.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

//Logger returns a logger that writes to w with the configured level and format.
func (C *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: C.Level()}
	if C.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
