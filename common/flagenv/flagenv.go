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
// Package flagenv fills flags that were not given on the command line
// from other sources: environment variables and config files.
package flagenv

import (
	"fmt"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

// Lookup returns the value for the flag with the given name, if the source has one.
type Lookup func(name string) (string, bool)

// ParseFlagSet sets every flag not set explicitly from the environment
// variable named envPrefix + the uppercased flag name, with dashes replaced by underscores.
//
// It should be called after Parse is called for the given FlagSet.
func ParseFlagSet(fs *pflag.FlagSet, envPrefix string) error {
	return SetFrom(fs, EnvLookup(envPrefix))
}

// The same as ParseFlagSet, but operates on a default FlagSet: pflag.CommandLine
func Parse(envPrefix string) error {
	return ParseFlagSet(pflag.CommandLine, envPrefix)
}

// SetFrom sets all non-set flags for which lookup returns a value.
// Flags set this way count as set, so sources applied later do not override them.
func SetFrom(fs *pflag.FlagSet, lookup Lookup) error {
	// pflag does not tell a flag set to its default value from one that was
	// not set at all, so collect all names and drop the ones that were set.
	nonset := make(map[string]*pflag.Flag)
	fs.VisitAll(func(f *pflag.Flag) {
		nonset[f.Name] = f
	})
	fs.Visit(func(f *pflag.Flag) {
		delete(nonset, f.Name)
	})
	for name, f := range nonset {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return errors.Annotatef(err, "invalid value %q for --%s", v, f.Name)
		}
	}
	return nil
}

// EnvLookup looks flags up in the environment. Empty variables are ignored.
func EnvLookup(envPrefix string) Lookup {
	return func(name string) (string, bool) {
		v := os.Getenv(EnvName(name, envPrefix))
		return v, v != ""
	}
}

// MapLookup looks flags up in a map keyed by flag name.
func MapLookup(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func EnvName(flagName, envPrefix string) string {
	flagName = strings.ToUpper(flagName)
	flagName = strings.Replace(flagName, "-", "_", -1)
	return fmt.Sprint(envPrefix, flagName)
}
