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

import "github.com/cespare/xxhash/v2"

// HashFunc maps a key to a hash value. Tables reduce the value modulo their
// capacity, so the function need not know anything about the table.
type HashFunc[K comparable] func(key K) uint64

// StringSum hashes a string as the sum of its code points. The result does
// not depend on character order: anagrams collide.
func StringSum(key string) uint64 {
	var h uint64
	for _, r := range key {
		h += uint64(r)
	}
	return h
}

// StringPositional hashes a string as the sum of its code points weighted by
// their 1-based position, so that anagrams usually land in different
// buckets.
func StringPositional(key string) uint64 {
	var h, i uint64
	for _, r := range key {
		i++
		h += i * uint64(r)
	}
	return h
}

// XXHash hashes a string with xxhash64.
func XXHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// IntHash is the identity hash for int keys.
func IntHash(key int) uint64 {
	return uint64(key)
}

// Uint64Hash is the identity hash for uint64 keys.
func Uint64Hash(key uint64) uint64 {
	return key
}
