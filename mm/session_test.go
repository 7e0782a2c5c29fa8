/*
 * session_test.go, part of gomin.
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
	"os"
	"testing"

	"github.com/rmera/gomin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//TestHelperProcess is not a real test. It is the fake driver run by the Session tests.
func TestHelperProcess(Te *testing.T) {
	if os.Getenv("GOMIN_HELPER_PROCESS") != "1" {
		return
	}
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		var req struct {
			Method string
			Params json.RawMessage
		}
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			os.Exit(3)
		}
		switch req.Method {
		case "echo":
			fmt.Printf("{\"Result\": %s}\n", req.Params)
		case "reject":
			fmt.Println(`{"Error": {"Kind": "import", "Message": "Please check bond orders and formal charges."}}`)
		case "missing":
			fmt.Println(`{"Error": {"Kind": "unavailable", "Message": "forcefield setup failed"}}`)
		case "garbage":
			fmt.Println("not json")
		case "die":
			fmt.Fprintln(os.Stderr, "driver crashed")
			os.Exit(2)
		default:
			fmt.Println(`{"Result": {}}`)
		}
	}
	os.Exit(0)
}

func helperSession(Te *testing.T) *Session {
	Te.Setenv("GOMIN_HELPER_PROCESS", "1")
	S, err := StartSession("fake", nil, "unused script", os.Args[0], "-test.run=^TestHelperProcess$", "--")
	require.NoError(Te, err)
	return S
}

func TestSession(Te *testing.T) {
	S := helperSession(Te)
	var res struct {
		IDs []int
		Mol string
	}
	require.NoError(Te, S.Call("echo", map[string]any{"IDs": []int{4, 5}, "Mol": "x"}, &res))
	assert.Equal(Te, []int{4, 5}, res.IDs)
	assert.Equal(Te, "x", res.Mol)
	require.NoError(Te, S.Call("anything", nil, nil))

	err := S.Call("reject", nil, nil)
	assert.ErrorIs(Te, err, gomin.ErrStructureImport)
	assert.Contains(Te, err.Error(), "formal charges")
	err = S.Call("missing", nil, nil)
	assert.ErrorIs(Te, err, gomin.ErrEngineUnavailable)
	err = S.Call("garbage", nil, nil)
	assert.ErrorIs(Te, err, gomin.ErrEngine)

	require.NoError(Te, S.Close())
	require.NoError(Te, S.Close())
	assert.Error(Te, S.Call("echo", nil, nil))
}

func TestSessionDies(Te *testing.T) {
	S := helperSession(Te)
	err := S.Call("die", nil, nil)
	assert.ErrorIs(Te, err, gomin.ErrEngineUnavailable)
	assert.ErrorContains(Te, err, "driver crashed")
	assert.NoError(Te, S.Close())

	//after a successful call, the engine failed, it is not missing.
	S = helperSession(Te)
	require.NoError(Te, S.Call("setup", nil, nil))
	err = S.Call("die", nil, nil)
	assert.ErrorIs(Te, err, gomin.ErrEngine)
	assert.NotErrorIs(Te, err, gomin.ErrEngineUnavailable)
	assert.ErrorContains(Te, err, "driver crashed")
	assert.Error(Te, S.Call("echo", nil, nil))
	assert.NoError(Te, S.Close())
}

func TestSessionNoCommand(Te *testing.T) {
	_, err := StartSession("none", nil, "")
	assert.ErrorIs(Te, err, gomin.ErrEngineUnavailable)
	_, err = StartSession("none", nil, "", "/this/program/does/not/exist")
	assert.ErrorIs(Te, err, gomin.ErrEngineUnavailable)
}

func TestTail(Te *testing.T) {
	t := newTail(4)
	t.Write([]byte("abc"))
	t.Write([]byte("def"))
	assert.Equal(Te, "cdef", t.String())
}
