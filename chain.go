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
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// ChainMap is an unordered map from keys to values which resolves collisions
// by separate chaining: each of its prime number of buckets holds the entries
// hashing to it in insertion order.
//
// A ChainMap is NOT goroutine-safe.
type ChainMap[K comparable, V any] struct {
	config[K, V]
	hash    HashFunc[K]
	buckets [][]Slot[K, V]
	// The number of buckets (always prime).
	capacity int
	// The number of entries across all buckets.
	used int
}

// NewChainMap constructs a new ChainMap with initialCapacity rounded up to a
// prime number of buckets (and at least 3).
func NewChainMap[K comparable, V any](
	initialCapacity int, hash HashFunc[K], options ...option[K, V],
) *ChainMap[K, V] {
	m := &ChainMap[K, V]{hash: hash}
	m.adjust("chainmap", options)
	m.capacity = NextPrime(initialCapacity)
	m.buckets = make([][]Slot[K, V], m.capacity)
	m.checkInvariants()
	return m
}

// bucket returns the index of the bucket for hash value h.
func (m *ChainMap[K, V]) bucket(h uint64) int {
	return int(h % uint64(m.capacity))
}

// Put inserts an entry into the map, overwriting the value if an entry with
// the same key already exists. New entries are appended to the tail of their
// bucket's chain.
func (m *ChainMap[K, V]) Put(key K, value V) {
	if m.used >= m.capacity {
		m.resize(2 * m.capacity)
	}

	b := m.bucket(m.hash(key))
	chain := m.buckets[b]
	for i := range chain {
		if chain[i].key == key {
			chain[i].value = value
			m.checkInvariants()
			return
		}
	}
	m.buckets[b] = append(chain, Slot[K, V]{key: key, value: value})
	m.used++
	m.checkInvariants()
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present.
func (m *ChainMap[K, V]) Get(key K) (value V, ok bool) {
	chain := m.buckets[m.bucket(m.hash(key))]
	for i := range chain {
		if chain[i].key == key {
			return chain[i].value, true
		}
	}
	return value, false
}

// Contains returns true if the key is present in the map.
func (m *ChainMap[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove removes the entry corresponding to the specified key from the map.
// It is a noop to remove a non-existent key.
func (m *ChainMap[K, V]) Remove(key K) {
	b := m.bucket(m.hash(key))
	chain := m.buckets[b]
	i := slices.IndexFunc(chain, func(s Slot[K, V]) bool {
		return s.key == key
	})
	if i < 0 {
		return
	}
	// Build a new chain rather than shifting in place: iterators may hold the
	// old one.
	if len(chain) == 1 {
		m.buckets[b] = nil
	} else {
		m.buckets[b] = slices.Concat(chain[:i], chain[i+1:])
	}
	m.used = max(m.used-1, 0)
	m.checkInvariants()
}

// Resize rebuilds the map with the specified number of buckets, rounded up to
// a prime. It is a noop if newCapacity is less than 1. If the requested
// capacity would leave the map at or above its maximum load of 1, the
// capacity is doubled until it does not.
func (m *ChainMap[K, V]) Resize(newCapacity int) {
	if newCapacity < 1 {
		return
	}
	m.resize(newCapacity)
}

// resize re-inserts every entry into a fresh set of buckets, in old bucket
// order and then chain order. The re-insertion bypasses Put and so can never
// trigger a nested resize.
func (m *ChainMap[K, V]) resize(newCapacity int) {
	newCapacity = primeCapacity(newCapacity)
	for m.used > 0 && m.used-1 >= newCapacity {
		newCapacity = NextPrime(2 * newCapacity)
	}

	oldBuckets, oldCapacity, oldUsed := m.buckets, m.capacity, m.used
	m.capacity = newCapacity
	m.buckets = make([][]Slot[K, V], newCapacity)
	m.used = 0
	for _, chain := range oldBuckets {
		for _, s := range chain {
			b := m.bucket(m.hash(s.key))
			m.buckets[b] = append(m.buckets[b], s)
			m.used++
		}
	}

	m.logger.Debug("resize",
		zap.Int("capacity", oldCapacity),
		zap.Int("new-capacity", newCapacity),
		zap.Int("len", oldUsed))
	m.checkInvariants()
}

// Clear deletes all entries from the map resulting in an empty map with the
// same number of buckets.
func (m *ChainMap[K, V]) Clear() {
	m.logger.Debug("clear", zap.Int("capacity", m.capacity), zap.Int("len", m.used))
	m.buckets = make([][]Slot[K, V], m.capacity)
	m.used = 0
	m.checkInvariants()
}

// All calls yield sequentially for each key and value present in the map, in
// bucket order and then chain order. If yield returns false, All stops the
// iteration. The map can be mutated during iteration, though there is no
// guarantee that the mutations will be visible to the iteration.
func (m *ChainMap[K, V]) All(yield func(key K, value V) bool) {
	// Chains are never shifted in place, so copying the bucket headers is
	// enough to snapshot the map.
	buckets := slices.Clone(m.buckets)
	for _, chain := range buckets {
		for i := range chain {
			if !yield(chain[i].key, chain[i].value) {
				return
			}
		}
	}
}

// Entries returns the entries of the map in bucket order and then chain
// order.
func (m *ChainMap[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, m.used)
	m.All(func(k K, v V) bool {
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
		return true
	})
	return entries
}

// Iter returns an iterator over a snapshot of the map's entries.
func (m *ChainMap[K, V]) Iter() *Iterator[K, V] {
	return newIterator(m.Entries())
}

// Len returns the number of entries in the map.
func (m *ChainMap[K, V]) Len() int {
	return m.used
}

// Capacity returns the number of buckets in the map.
func (m *ChainMap[K, V]) Capacity() int {
	return m.capacity
}

// LoadFactor returns Len()/Capacity(), the average chain length.
func (m *ChainMap[K, V]) LoadFactor() float64 {
	return float64(m.used) / float64(m.capacity)
}

// EmptyBuckets returns the number of buckets with an empty chain.
func (m *ChainMap[K, V]) EmptyBuckets() int {
	var n int
	for _, chain := range m.buckets {
		if len(chain) == 0 {
			n++
		}
	}
	return n
}

func (m *ChainMap[K, V]) checkInvariants() {
	if invariants {
		if !IsPrime(m.capacity) || len(m.buckets) != m.capacity {
			panic(fmt.Sprintf("invariant failed: capacity=%d len(buckets)=%d",
				m.capacity, len(m.buckets)))
		}
		if m.used > 0 && m.used-1 >= m.capacity {
			panic(fmt.Sprintf("invariant failed: %d entries overload capacity %d\n%s",
				m.used, m.capacity, m.debugString()))
		}

		seen := make(map[K]struct{})
		var used int
		for b, chain := range m.buckets {
			for _, s := range chain {
				if h := m.bucket(m.hash(s.key)); h != b {
					panic(fmt.Sprintf("invariant failed: %v in bucket %d, but hashes to %d\n%s",
						s.key, b, h, m.debugString()))
				}
				if _, ok := seen[s.key]; ok {
					panic(fmt.Sprintf("invariant failed: %v present twice\n%s", s.key, m.debugString()))
				}
				seen[s.key] = struct{}{}
				used++
			}
		}
		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d entries, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
	}
}

func (m *ChainMap[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d\n", m.capacity, m.used)
	for b, chain := range m.buckets {
		if len(chain) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", b)
		for _, s := range chain {
			fmt.Fprintf(&buf, " %v", s.key)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
