/*
 * flags.go, part of gomin.
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
	"strings"

	"github.com/rmera/gomin/config"
)

//common are the flags shared by the commands.
type common struct {
	configFile string
	logLevel   string
	logFormat  string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", config.DefaultFile, "Configuration file. If it doesn't exist, the defaults are used.")
	fs.StringVar(&c.logLevel, "log-level", "", "Logging level: debug, info, warn or error. Overrides the configuration file.")
	fs.StringVar(&c.logFormat, "log-format", "", "Log format: text or json. Overrides the configuration file.")
}

//load reads the configuration, applies the logging flags and returns it,
//with a logger that writes to stderr.
func (c *common) load(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	C, err := config.Load(c.configFile)
	if err != nil {
		return nil, nil, &ExitError{Code: 2, Message: err.Error()}
	}
	if c.logLevel != "" {
		C.Log.Level = strings.ToLower(c.logLevel)
	}
	if c.logFormat != "" {
		C.Log.Format = strings.ToLower(c.logFormat)
	}
	if err := C.Validate(); err != nil {
		return nil, nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return C, C.Logger(stderr), nil
}

//parse parses args, turning the flag errors into ExitErrors. It returns
//false if the program should just exit (the help was requested).
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, nil
		}
		return false, &ExitError{Code: 2, Message: err.Error()}
	}
	return true, nil
}

//usageFunc returns a usage function that prints text and the flag defaults.
func usageFunc(fs *flag.FlagSet, out io.Writer, text string) func() {
	return func() {
		fmt.Fprint(out, text)
		fs.PrintDefaults()
	}
}
