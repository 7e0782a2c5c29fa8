/*
 * session.go, part of gomin.
 *
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
 *
 */

package mm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/rmera/gomin"
)

//caller is something that can run the methods of an engine driver.
type caller interface {
	Call(method string, params, result any) error
	Close() error
}

type request struct {
	Method string
	Params any
}

//DriverError is an error reported by an engine driver. Kind is
//"unavailable", "import" or anything else for other failures.
type DriverError struct {
	Kind    string
	Message string
}

type response struct {
	Result json.RawMessage
	Error  *DriverError
}

//kindOf maps a driver error kind to the goMin error kinds.
func kindOf(kind string) error {
	switch kind {
	case "unavailable":
		return gomin.ErrEngineUnavailable
	case "import":
		return gomin.ErrStructureImport
	default:
		return gomin.ErrEngine
	}
}

//Session is a running engine driver: an external process reading
//one JSON request per line from its standard input, and answering each with
//one JSON line in its standard output. A Session is safe for concurrent use,
//but calls are serialized.
type Session struct {
	name   string
	cmd    *exec.Cmd
	in     io.WriteCloser
	enc    *json.Encoder
	out    *bufio.Reader
	stderr *tail
	logger *slog.Logger
	mu       sync.Mutex
	closed   bool
	answered bool //the driver has answered at least one call.
}

//StartSession runs command with the extra arguments "-c" and script, which is how Python interpreters
//take a program. name is only used in messages. A nil logger means slog.Default().
func StartSession(name string, logger *slog.Logger, script string, command ...string) (*Session, error) {
	if len(command) == 0 {
		return nil, gomin.NewError(gomin.ErrEngineUnavailable, "no command given for the "+name+" driver", "StartSession")
	}
	if logger == nil {
		logger = slog.Default()
	}
	args := append(append([]string{}, command[1:]...), "-c", script)
	S := &Session{name: name, cmd: exec.Command(command[0], args...), stderr: newTail(4096), logger: logger}
	S.cmd.Stderr = S.stderr
	var err error
	if S.in, err = S.cmd.StdinPipe(); err != nil {
		return nil, gomin.WrapError(gomin.ErrEngineUnavailable, err, "StartSession")
	}
	stdout, err := S.cmd.StdoutPipe()
	if err != nil {
		return nil, gomin.WrapError(gomin.ErrEngineUnavailable, err, "StartSession")
	}
	if err = S.cmd.Start(); err != nil {
		return nil, gomin.NewError(gomin.ErrEngineUnavailable, fmt.Sprintf("can't run the %s driver with %q: %s", name, strings.Join(command, " "), err), "StartSession")
	}
	S.enc = json.NewEncoder(S.in)
	S.out = bufio.NewReaderSize(stdout, 1<<16)
	logger.Debug("engine driver started", "engine", name, "command", command[0], "pid", S.cmd.Process.Pid)
	return S, nil
}

//Call runs method in the driver, with the given parameters, and decodes
//the answer into result, unless result is nil.
func (S *Session) Call(method string, params, result any) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	if S.closed {
		return gomin.NewError(gomin.ErrEngine, "call to a closed "+S.name+" session", "Session.Call")
	}
	S.logger.Debug("engine call", "engine", S.name, "method", method)
	if err := S.enc.Encode(request{Method: method, Params: params}); err != nil {
		return S.died(err, method)
	}
	line, err := S.out.ReadBytes('\n')
	if err != nil {
		return S.died(err, method)
	}
	S.answered = true
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return gomin.NewError(gomin.ErrEngine, fmt.Sprintf("malformed answer from the %s driver to %s: %s", S.name, method, err), "Session.Call")
	}
	if resp.Error != nil {
		return gomin.NewError(kindOf(resp.Error.Kind), resp.Error.Message, method)
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return gomin.NewError(gomin.ErrEngine, fmt.Sprintf("unexpected result from the %s driver to %s: %s", S.name, method, err), "Session.Call")
	}
	return nil
}

//died returns the error for a driver that stopped answering, and ends the session.
//A driver that never answered is taken as unavailable, one that stops
//later as a failed engine. The caller must hold S.mu.
func (S *Session) died(err error, method string) error {
	S.closed = true
	S.in.Close()
	werr := S.cmd.Wait() //also waits for the last of the driver's stderr.
	S.logger.Debug("engine driver died", "engine", S.name, "method", method, "error", werr)
	msg := fmt.Sprintf("the %s driver stopped during %s: %s", S.name, method, err)
	if t := strings.TrimSpace(S.stderr.String()); t != "" {
		msg += ". Driver output: " + t
	}
	kind := gomin.ErrEngineUnavailable
	if S.answered {
		kind = gomin.ErrEngine
	}
	return gomin.NewError(kind, msg, "Session.Call")
}

//Close ends the driver, by closing its input, and waits for it to exit.
func (S *Session) Close() error {
	S.mu.Lock()
	defer S.mu.Unlock()
	if S.closed {
		return nil
	}
	S.closed = true
	S.in.Close()
	err := S.cmd.Wait()
	S.logger.Debug("engine driver finished", "engine", S.name, "error", err)
	if err != nil {
		return gomin.WrapError(gomin.ErrEngine, err, "Session.Close")
	}
	return nil
}

//tail keeps the last bytes written to it.
type tail struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTail(max int) *tail {
	return &tail{max: max}
}

func (T *tail) Write(p []byte) (int, error) {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.buf = append(T.buf, p...)
	if over := len(T.buf) - T.max; over > 0 {
		T.buf = T.buf[over:]
	}
	return len(p), nil
}

func (T *tail) String() string {
	T.mu.Lock()
	defer T.mu.Unlock()
	return string(T.buf)
}
