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

// hashstat loads the words of its input into a hash table and reports the
// table's shape along with the most frequent word(s).
//
//	hashstat [-cfg hashstat.toml] [-kind open|chain] [-capacity n] [-hash sum|positional|xxhash] [file ...]
//
// Words are read from the named files, or from stdin if there are none.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/hashmap"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("cfg", "", "toml configuration file")
	kind       = flag.String("kind", "", "table kind (open or chain), overrides the configuration")
	capacity   = flag.Int("capacity", 0, "initial table capacity, overrides the configuration")
	hashName   = flag.String("hash", "", "hash function (sum, positional or xxhash), overrides the configuration")
)

func main() {
	flag.Parse()
	if err := run(flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hashstat: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := parseConfigFromFile(*configFile)
	if err != nil {
		return err
	}
	if *kind != "" {
		cfg.Kind = *kind
	}
	if *capacity != 0 {
		cfg.Capacity = *capacity
	}
	if *hashName != "" {
		cfg.Hash = *hashName
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	words, err := readWords(args, stdin)
	if err != nil {
		return err
	}
	logger.Debug("read input", zap.Int("words", len(words)), zap.Strings("files", args))

	st, err := count(cfg, words, logger)
	if err != nil {
		return err
	}
	st.write(stdout)
	return nil
}

// readWords returns the whitespace separated words of files, or of stdin if
// files is empty.
func readWords(files []string, stdin io.Reader) ([]string, error) {
	if len(files) == 0 {
		return scanWords(stdin, "stdin")
	}
	var words []string
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open input")
		}
		w, err := scanWords(f, name)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		words = append(words, w...)
	}
	return words, nil
}

func scanWords(r io.Reader, name string) ([]string, error) {
	var words []string
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	for s.Scan() {
		words = append(words, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", name)
	}
	return words, nil
}

// counter is the subset of the table API hashstat needs. Both OpenMap and
// ChainMap implement it.
type counter interface {
	Put(key string, value int)
	Get(key string) (int, bool)
	Len() int
	Capacity() int
	LoadFactor() float64
	All(yield func(key string, value int) bool)
}

type stats struct {
	kind       string
	words      int
	distinct   int
	capacity   int
	empty      int
	loadFactor float64
	modes      []string
	frequency  int
}

// count tallies words in the table selected by cfg.
func count(cfg *Config, words []string, logger *zap.Logger) (stats, error) {
	hash, err := cfg.hashFunc()
	if err != nil {
		return stats{}, err
	}

	var c counter
	var empty func() int
	switch cfg.Kind {
	case kindOpen:
		m := hashmap.NewOpenMap[string, int](cfg.Capacity, hash, hashmap.WithLogger[string, int](logger))
		c, empty = m, m.EmptyCount
	case kindChain:
		m := hashmap.NewChainMap[string, int](cfg.Capacity, hash, hashmap.WithLogger[string, int](logger))
		c, empty = m, m.EmptyBuckets
	default:
		return stats{}, errors.Newf("unknown table kind %q", cfg.Kind)
	}

	for _, w := range words {
		n, _ := c.Get(w)
		c.Put(w, n+1)
	}

	st := stats{
		kind:       cfg.Kind,
		words:      len(words),
		distinct:   c.Len(),
		capacity:   c.Capacity(),
		empty:      empty(),
		loadFactor: c.LoadFactor(),
	}
	c.All(func(_ string, n int) bool {
		st.frequency = max(st.frequency, n)
		return true
	})
	c.All(func(w string, n int) bool {
		if n == st.frequency {
			st.modes = append(st.modes, w)
		}
		return true
	})
	return st, nil
}

func (st stats) write(w io.Writer) {
	fmt.Fprintf(w, "table:       %s\n", st.kind)
	fmt.Fprintf(w, "words:       %d\n", st.words)
	fmt.Fprintf(w, "distinct:    %d\n", st.distinct)
	fmt.Fprintf(w, "capacity:    %d\n", st.capacity)
	fmt.Fprintf(w, "empty:       %d\n", st.empty)
	fmt.Fprintf(w, "load factor: %.2f\n", st.loadFactor)
	fmt.Fprintf(w, "frequency:   %d\n", st.frequency)
	for _, m := range st.modes {
		fmt.Fprintf(w, "mode:        %s\n", m)
	}
}
