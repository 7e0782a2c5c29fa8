/*
 * main.go, part of gomin.
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

//gomin minimizes molecules with Open Babel or RDKit.
//
//	gomin min [flags] FILE...   minimizes molfiles (plain, .gz or .zst)
//	gomin pipe [flags]          talks to a visualization program plugin through standard input/output
//	gomin engines               lists the available engines
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rmera/gomin/minimize"
	"github.com/rmera/gomin/mm"
)

//ExitError is an error with the exit code the program should return.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const usage = `gomin - force field minimizations with Open Babel or RDKit.

Usage:
  gomin min [options] FILE...
  gomin pipe [options]
  gomin engines

Run gomin COMMAND -h for the options of each command.
`

//run is the whole program, with its inputs and outputs as arguments.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return &ExitError{Code: 2}
	}
	switch args[0] {
	case "min":
		return minCommand(args[1:], stdout, stderr)
	case "pipe":
		return pipeCommand(args[1:], stdin, stdout, stderr)
	case "engines":
		fmt.Fprintf(stdout, "engines: %s\ncommands: %s\n", strings.Join(mm.Engines(), ", "), strings.Join(minimize.CommandNames(), ", "))
		return nil
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", args[0])}
}
