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
package flagenv

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("flagenv-test", pflag.ContinueOnError)

	var myFlag1, myFlag2, myFlag3, myFlag4 string
	fs.StringVar(&myFlag1, "my-flag1", "def1", "")
	fs.StringVar(&myFlag2, "my-flag2", "def2", "")
	fs.StringVar(&myFlag3, "my-flag3", "def3", "")
	fs.StringVar(&myFlag4, "my-flag4", "def4", "")
	require.NoError(t, fs.Parse([]string{"--my-flag1=cl1", "--my-flag2="}))

	os.Setenv("FLAGENV_TEST_MY_FLAG1", "env1")
	os.Setenv("FLAGENV_TEST_MY_FLAG2", "env2")
	os.Setenv("FLAGENV_TEST_MY_FLAG3", "env3")
	defer func() {
		os.Unsetenv("FLAGENV_TEST_MY_FLAG1")
		os.Unsetenv("FLAGENV_TEST_MY_FLAG2")
		os.Unsetenv("FLAGENV_TEST_MY_FLAG3")
	}()
	require.NoError(t, ParseFlagSet(fs, "FLAGENV_TEST_"))

	assert.Equal(t, "cl1", myFlag1)
	assert.Equal(t, "", myFlag2)
	assert.Equal(t, "env3", myFlag3)
	assert.Equal(t, "def4", myFlag4)
	assert.True(t, fs.Changed("my-flag3"))
	assert.False(t, fs.Changed("my-flag4"))
}

func TestSetFromPrecedence(t *testing.T) {
	fs := pflag.NewFlagSet("flagenv-test", pflag.ContinueOnError)
	timeout := fs.Uint32("timeout", 5000, "")
	archive := fs.String("archive", "", "")
	progress := fs.Bool("progress", false, "")
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, SetFrom(fs, MapLookup(map[string]string{"timeout": "100"})))
	require.NoError(t, SetFrom(fs, MapLookup(map[string]string{
		"timeout":  "200",
		"archive":  "build.yaml",
		"progress": "true",
	})))
	assert.Equal(t, uint32(100), *timeout)
	assert.Equal(t, "build.yaml", *archive)
	assert.True(t, *progress)
}

func TestSetFromInvalid(t *testing.T) {
	fs := pflag.NewFlagSet("flagenv-test", pflag.ContinueOnError)
	fs.Uint32("timeout", 5000, "")
	require.NoError(t, fs.Parse(nil))
	err := SetFrom(fs, MapLookup(map[string]string{"timeout": "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "HIFCTL_SWD_CLOCK", EnvName("swd-clock", "HIFCTL_"))
}
