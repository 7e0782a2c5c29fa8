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

package gomin

import (
	"errors"
	"fmt"
	"strings"
)

//The kinds of errors in goMin. Use errors.Is to check an error against them.
//ErrFit and ErrNotConverged are not critical: the minimization goes on and
//they only get logged.
var (
	ErrEmptySelection    = errors.New("empty selection")
	ErrEngineUnavailable = errors.New("force field engine unavailable")
	ErrStructureImport   = errors.New("structure rejected by the engine")
	ErrEngine            = errors.New("force field engine failure")
	ErrHost              = errors.New("host error")
	ErrArgument          = errors.New("invalid argument")
	ErrFit               = errors.New("superposition failed")
	ErrNotConverged      = errors.New("minimization did not converge")
)

//Error is the error type returned by goMin functions. The Decorate method allows to add
//the names of the functions the error goes through, without changing its type or
//wrapping it around something else.
type Error struct {
	kind    error
	message string
	deco    []string
	cause   error
}

//NewError returns an error of the given kind (one of the Err* variables), with
//message, raised in the function caller.
func NewError(kind error, message, caller string) *Error {
	err := &Error{kind: kind, message: message}
	err.Decorate(caller)
	return err
}

//WrapError is like NewError, but keeps cause in the chain, so errors.As and
//errors.Is also work on it.
func WrapError(kind error, cause error, caller string) *Error {
	err := NewError(kind, cause.Error(), caller)
	err.cause = cause
	return err
}

//Error implements the error interface.
func (err *Error) Error() string {
	if err.message == "" {
		return err.kind.Error()
	}
	return err.message
}

//Unwrap returns the kind of the error, and the cause, if any.
func (err *Error) Unwrap() []error {
	if err.cause == nil {
		return []error{err.kind}
	}
	return []error{err.kind, err.cause}
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice. An empty string just returns the slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical returns whether the error should stop a minimization.
func (err *Error) Critical() bool {
	return !errors.Is(err.kind, ErrFit) && !errors.Is(err.kind, ErrNotConverged)
}

//Trace returns the message preceded by the decoration trail, innermost function first.
func (err *Error) Trace() string {
	return fmt.Sprintf("%s: %s", strings.Join(err.deco, ": "), err.Error())
}

//Decorate adds caller to err, if it is a goMin Error. Other errors are wrapped into
//an Error of the kind ErrHost. A nil err gives nil.
func Decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return WrapError(ErrHost, err, caller)
}
