// Copyright 2024 The Cockroach Authors
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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "hashstat.toml")
	require.NoError(t, os.WriteFile(file, []byte(contents), 0o644))
	return file
}

func TestParseConfigFromFile(t *testing.T) {
	cfg, err := parseConfigFromFile("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
	require.NoError(t, cfg.validate())

	file := writeConfig(t, `
kind = "open"
capacity = 53
hash = "xxhash"

[log]
level = "debug"
format = "json"
`)
	cfg, err = parseConfigFromFile(file)
	require.NoError(t, err)
	require.Equal(t, &Config{
		Kind:     "open",
		Capacity: 53,
		Hash:     "xxhash",
		Log:      LogConfig{Level: "debug", Format: "json"},
	}, cfg)
	require.NoError(t, cfg.validate())

	// Unset keys keep their defaults.
	cfg, err = parseConfigFromFile(writeConfig(t, `hash = "positional"`))
	require.NoError(t, err)
	require.Equal(t, kindChain, cfg.Kind)
	require.Equal(t, 11, cfg.Capacity)
	require.Equal(t, "positional", cfg.Hash)

	_, err = parseConfigFromFile(writeConfig(t, `kind = `))
	require.Error(t, err)
	_, err = parseConfigFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		mutate func(c *Config)
		err    string
	}{
		{func(c *Config) { c.Kind = "cuckoo" }, `unknown table kind "cuckoo"`},
		{func(c *Config) { c.Capacity = 0 }, "capacity must be positive"},
		{func(c *Config) { c.Hash = "md5" }, `unknown hash function "md5"`},
		{func(c *Config) { c.Log.Level = "loud" }, `invalid log level "loud"`},
		{func(c *Config) { c.Log.Format = "xml" }, `unknown log format "xml"`},
	}
	for _, c := range testCases {
		t.Run(c.err, func(t *testing.T) {
			cfg := defaultConfig()
			c.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), c.err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := newLogger(LogConfig{Level: "warn", Format: format})
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
	_, err := newLogger(LogConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}
