// Copyright 2026 The Vista Authors
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

// Package config defines the ambient, non-algebraic YAML-driven wiring of
// §4.10: store backend selection, warm-cache capacity, and log level/format.
// Nothing in filter, treeengine, history or store imports this package --
// only a host's composition root does.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StoreBackend selects which store.Store implementation the composition
// root should construct.
type StoreBackend string

const (
	// BackendMemory selects memstore.
	BackendMemory StoreBackend = "memory"
	// BackendGit selects gitstore.
	BackendGit StoreBackend = "git"
)

// Config is the root of the YAML configuration file (§6.4).
type Config struct {
	Store struct {
		Backend StoreBackend `yaml:"backend"`
		// Path is the on-disk git repository path; only meaningful when
		// Backend is BackendGit.
		Path string `yaml:"path"`
	} `yaml:"store"`

	Cache struct {
		// WarmCapacity is the number of (FilterId, CommitId) entries the
		// process-wide golang-lru/v2 warm cache holds. Zero disables it.
		WarmCapacity int `yaml:"warm_capacity"`
	} `yaml:"cache"`

	Log struct {
		// Level is a logrus level name: "debug", "info", "warn", "error".
		Level string `yaml:"level"`
		// Format is "text" or "json", passed to logrus's formatter choice.
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns an all-defaults Config usable without any file on disk:
// an in-memory store, a modest warm cache, and info-level text logging.
func Default() *Config {
	c := &Config{}
	c.Store.Backend = BackendMemory
	c.Cache.WarmCapacity = 4096
	c.Log.Level = "info"
	c.Log.Format = "text"
	return c
}

// Load reads and validates the YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "config: parsing %s", path)
	}
	if err := c.validate(); err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendGit:
		if c.Store.Path == "" {
			return errors.New("store.path is required when store.backend is \"git\"")
		}
	case "":
		c.Store.Backend = BackendMemory
	default:
		return errors.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Cache.WarmCapacity < 0 {
		return errors.New("cache.warm_capacity must not be negative")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	return nil
}
