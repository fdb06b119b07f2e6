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
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/hashmap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	kindOpen  = "open"
	kindChain = "chain"
)

// Config is the hashstat configuration, usually read from a toml file.
type Config struct {
	// Kind selects the table implementation: "open" or "chain".
	Kind string `toml:"kind"`
	// Capacity is the initial table capacity. It is rounded up to a prime.
	Capacity int `toml:"capacity"`
	// Hash names the hash function: "sum", "positional", or "xxhash".
	Hash string    `toml:"hash"`
	Log  LogConfig `toml:"log"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Kind:     kindChain,
		Capacity: 11,
		Hash:     "sum",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// parseConfigFromFile returns the default configuration overlaid with the
// contents of file. An empty file name yields the defaults.
func parseConfigFromFile(file string) (*Config, error) {
	cfg := defaultConfig()
	if file == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(file, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config from %s", file)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Kind {
	case kindOpen, kindChain:
	default:
		return errors.Newf("unknown table kind %q", c.Kind)
	}
	if c.Capacity < 1 {
		return errors.Newf("capacity must be positive, got %d", c.Capacity)
	}
	if _, err := c.hashFunc(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.Newf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func (c *Config) hashFunc() (hashmap.HashFunc[string], error) {
	switch c.Hash {
	case "sum":
		return hashmap.StringSum, nil
	case "positional":
		return hashmap.StringPositional, nil
	case "xxhash":
		return hashmap.XXHash, nil
	default:
		return nil, errors.Newf("unknown hash function %q", c.Hash)
	}
}

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}
