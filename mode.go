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

// FindMode returns the most frequent element(s) of seq and their frequency.
// Occurrences are counted in a ChainMap; ties are all reported, in the
// counting table's iteration order rather than the order of seq. An empty seq
// has no modes and a frequency of 0.
func FindMode[K comparable](seq []K, hash HashFunc[K]) (modes []K, frequency int) {
	counts := NewChainMap[K, int](defaultCapacity, hash)
	for _, k := range seq {
		if n, ok := counts.Get(k); ok {
			counts.Put(k, n+1)
		} else {
			counts.Put(k, 1)
		}
	}

	counts.All(func(_ K, n int) bool {
		frequency = max(frequency, n)
		return true
	})
	counts.All(func(k K, n int) bool {
		if n == frequency {
			modes = append(modes, k)
		}
		return true
	})
	return modes, frequency
}

// FindModeStrings is FindMode for strings hashed with StringSum.
func FindModeStrings(seq []string) (modes []string, frequency int) {
	return FindMode(seq, StringSum)
}
