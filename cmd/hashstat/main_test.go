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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCount(t *testing.T) {
	words := strings.Fields("2 4 2 6 8 4 1 3 4 5 7 3 3 2")
	for _, kind := range []string{kindOpen, kindChain} {
		for _, hash := range []string{"sum", "positional", "xxhash"} {
			t.Run(kind+"/"+hash, func(t *testing.T) {
				cfg := defaultConfig()
				cfg.Kind = kind
				cfg.Hash = hash
				st, err := count(cfg, words, zap.NewNop())
				require.NoError(t, err)
				require.Equal(t, 14, st.words)
				require.Equal(t, 8, st.distinct)
				require.Equal(t, 3, st.frequency)
				require.ElementsMatch(t, []string{"2", "3", "4"}, st.modes)
				require.Equal(t, float64(st.distinct)/float64(st.capacity), st.loadFactor)
			})
		}
	}
}

func TestCountGrowth(t *testing.T) {
	var words []string
	for i := 0; i < 150; i++ {
		words = append(words, "str"+strings.Repeat("x", i%7)+string(rune('a'+i%26)))
	}

	cfg := defaultConfig()
	cfg.Kind = kindOpen
	cfg.Capacity = 53
	st, err := count(cfg, words, zap.NewNop())
	require.NoError(t, err)
	require.Less(t, st.loadFactor, 0.75)
	require.Equal(t, st.capacity-st.distinct, st.empty)
}

func TestReadWords(t *testing.T) {
	words, err := readWords(nil, strings.NewReader("apple apple\ngrape\tmelon  peach\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"apple", "apple", "grape", "melon", "peach"}, words)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("one two"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("three\n"), 0o644))
	words, err = readWords([]string{a, b}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two", "three"}, words)

	_, err = readWords([]string{filepath.Join(dir, "missing.txt")}, nil)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	file := writeConfig(t, `
kind = "open"
capacity = 20
hash = "positional"

[log]
level = "error"
format = "json"
`)
	defer func(old string) { *configFile = old }(*configFile)
	*configFile = file

	var out bytes.Buffer
	err := run(nil, strings.NewReader("apple apple grape melon peach"), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "table:       open\n")
	require.Contains(t, out.String(), "words:       5\n")
	require.Contains(t, out.String(), "distinct:    4\n")
	require.Contains(t, out.String(), "capacity:    23\n")
	require.Contains(t, out.String(), "frequency:   2\n")
	require.Contains(t, out.String(), "mode:        apple\n")

	*configFile = writeConfig(t, `kind = "cuckoo"`)
	err = run(nil, strings.NewReader(""), &out)
	require.Error(t, err)
}
