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
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "hifctl-config")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	fn := filepath.Join(dir, "config.ini")
	require.NoError(t, ioutil.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestApply(t *testing.T) {
	fn := writeConfig(t, `
[other]
archive = nope.yaml

[hifctl]
archive = build/archive.yaml
swd-clock = 1000000
timeout = 250
`)
	fs := flag.NewFlagSet("config-test", flag.ContinueOnError)
	archive := fs.String("archive", "", "")
	clock := fs.Uint32("swd-clock", 4000000, "")
	timeout := fs.Uint32("timeout", 5000, "")
	require.NoError(t, fs.Parse([]string{"--timeout=100"}))

	require.NoError(t, Apply(fs, fn))
	assert.Equal(t, "build/archive.yaml", *archive)
	assert.Equal(t, uint32(1000000), *clock)
	assert.Equal(t, uint32(100), *timeout)
}

func TestApplyNoSection(t *testing.T) {
	fn := writeConfig(t, "[other]\nswd-clock = 1\n")
	fs := flag.NewFlagSet("config-test", flag.ContinueOnError)
	clock := fs.Uint32("swd-clock", 4000000, "")
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, Apply(fs, fn))
	assert.Equal(t, uint32(4000000), *clock)
}

func TestApplyBadValue(t *testing.T) {
	fn := writeConfig(t, "[hifctl]\nswd-clock = fast\n")
	fs := flag.NewFlagSet("config-test", flag.ContinueOnError)
	fs.Uint32("swd-clock", 4000000, "")
	require.NoError(t, fs.Parse(nil))
	err := Apply(fs, fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--swd-clock")
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(os.TempDir(), "hifctl-does-not-exist.ini"))
	assert.Error(t, err)
}
