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
// Package config reads flag defaults from an ini file:
//
//	[hifctl]
//	archive = build/archive.yaml
//	swd-clock = 1000000
package config

import (
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/hifctl/common/flagenv"
)

const Section = "hifctl"

// DefaultPath is the config file used when none is given explicitly.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hifctl", "config.ini")
}

// Load returns the key/value pairs of the hifctl section of the file.
func Load(path string) (map[string]string, error) {
	cf, err := ini.Load(path)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load config %s", path)
	}
	sec, err := cf.GetSection(Section)
	if err != nil {
		// No section, no defaults.
		return map[string]string{}, nil
	}
	res := sec.KeysHash()
	for k := range res {
		if flag.Lookup(k) == nil {
			glog.V(1).Infof("%s: unknown key %q in [%s]", path, k, Section)
		}
	}
	return res, nil
}

// Apply sets flags that were not set yet from the config file at path.
// If path is empty, the default file is used if it exists.
func Apply(fs *flag.FlagSet, path string) error {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	kv, err := Load(path)
	if err != nil {
		return errors.Trace(err)
	}
	glog.V(1).Infof("Using config %s (%d keys)", path, len(kv))
	return errors.Annotatef(flagenv.SetFrom(fs, flagenv.MapLookup(kv)), "%s", path)
}
