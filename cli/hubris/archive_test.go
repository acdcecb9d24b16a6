//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
package hubris

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArchive = `
name: gimlet
symbols:
  HIFFY_TEXT: {addr: 0x20000000, size: 2048}
  HIFFY_KICK: {addr: 0x20001400, size: 4}
functions:
  - name: QspiReadStatus
  - name: QspiSectorErase
    args: [{name: addr, type: u32}]
    errors: {1: BadAddress}
`

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "hubris")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	fn := filepath.Join(dir, "archive.yaml")
	require.NoError(t, ioutil.WriteFile(fn, []byte(testArchive), 0644))

	a, err := Load(fn)
	require.NoError(t, err)
	assert.Equal(t, "gimlet", a.Name)
	assert.Equal(t, fn, a.Path())
	require.Len(t, a.Functions, 2)
	assert.Equal(t, "QspiSectorErase", a.Functions[1].Name)
	assert.Equal(t, []FunctionArg{{Name: "addr", Type: "u32"}}, a.Functions[1].Args)
	assert.Equal(t, "BadAddress", a.Functions[1].Errors[1])
	assert.Equal(t, []string{"HIFFY_KICK", "HIFFY_TEXT"}, a.SymbolNames())

	s, err := a.LookupSymbol("HIFFY_TEXT")
	require.NoError(t, err)
	assert.Equal(t, Symbol{Addr: 0x20000000, Size: 2048}, s)
	assert.Equal(t, "0x20000000+2048", s.String())

	_, err = a.LookupSymbol("HIFFY_DATA")
	assert.True(t, errors.IsNotFound(err), "%s", err)

	_, err = Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{
		"functions: [{name: A}, {name: A}]",
		"functions: [{args: []}]",
		"bogus: 1",
		"symbols: [1, 2]",
	} {
		_, err := Parse([]byte(s))
		assert.Errorf(t, err, "%q", s)
	}
}
