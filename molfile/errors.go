/*
 * errors.go, part of gomin.
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

package molfile

import "fmt"

//Error is the error type for the molfile package.
type Error struct {
	message  string
	fileName string //the file (or molecule title) that had the problem.
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	if err.fileName == "" {
		return err.message
	}
	return fmt.Sprintf("%s (%s)", err.message, err.fileName)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//FileName returns the name of the file for which the error was raised.
func (err Error) FileName() string { return err.fileName }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//errDecorate adds dec to the decoration of err, if err is an Error.
func errDecorate(err error, dec string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(dec)
		return e
	}
	return err
}
