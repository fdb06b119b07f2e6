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

package hashmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindMode(t *testing.T) {
	testCases := []struct {
		seq       []string
		modes     []string
		frequency int
	}{
		{
			seq:       []string{"apple", "apple", "grape", "melon", "peach"},
			modes:     []string{"apple"},
			frequency: 2,
		},
		{
			seq:       []string{"melon", "apple", "peach", "grape", "melon"},
			modes:     []string{"melon"},
			frequency: 2,
		},
		{
			seq:       []string{"one", "two", "three", "four", "five"},
			modes:     []string{"one", "two", "three", "four", "five"},
			frequency: 1,
		},
		{
			seq:       []string{"2", "4", "2", "6", "8", "4", "1", "3", "4", "5", "7", "3", "3", "2"},
			modes:     []string{"2", "3", "4"},
			frequency: 3,
		},
		{
			seq:       nil,
			modes:     nil,
			frequency: 0,
		},
	}
	for _, c := range testCases {
		t.Run("", func(t *testing.T) {
			modes, frequency := FindModeStrings(c.seq)
			require.ElementsMatch(t, c.modes, modes)
			require.Equal(t, c.frequency, frequency)
		})
	}
}

func TestFindModeOrder(t *testing.T) {
	// Ties are reported in the counting table's order, not input order. With
	// 11 buckets "a" (97) lands in bucket 9, "b" in 10 and "c" in 0.
	seq := []string{"b", "a", "c", "a", "b", "c"}
	modes, frequency := FindMode(seq, StringSum)
	require.Equal(t, 2, frequency)
	require.Equal(t, []string{"c", "a", "b"}, modes)
}

func TestFindModeInts(t *testing.T) {
	// Enough distinct values to force the counting table to grow.
	var seq []int
	for i := 0; i < 100; i++ {
		seq = append(seq, i)
	}
	seq = append(seq, 42, 17, 42, 17)
	modes, frequency := FindMode(seq, IntHash)
	require.Equal(t, 3, frequency)
	require.Equal(t, []int{17, 42}, modes)
}
