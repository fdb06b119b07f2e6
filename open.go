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

// Package hashmap implements hash tables over flat slot arrays with two
// collision resolution strategies: open addressing with quadratic probing
// (OpenMap) and separate chaining (ChainMap).
//
// # Capacities
//
// Both tables keep a prime capacity C and reduce hash(key) modulo C to find a
// key's home slot. A prime modulus spreads keys well even when the hash
// function is weak (the character-sum hashes in this package are), and it is
// what makes quadratic probing work: for prime C the offsets
//
//	home + i^2 (mod C), i = 0, 1, ..., (C-1)/2
//
// are pairwise distinct, so a probe examines (C+1)/2 different slots before
// repeating itself. OpenMap grows whenever its load reaches 1/2 (checked
// before an insertion), which guarantees that fewer than (C+1)/2 slots are
// occupied and therefore that every insert finds a free slot along its probe
// sequence. ChainMap grows when its load reaches 1.
//
// # Deletion
//
// OpenMap deletes by tombstoning: the slot's control byte becomes ctrlDeleted
// while its key and value are left in place until a later insert reuses the
// slot. Lookups continue past tombstones and stop at the first empty slot.
// Marking the slot empty instead would cut the probe sequence of every key
// that was inserted after it along the same path. Tombstones are reclaimed by
// resizing, which re-inserts only live entries into a fresh array.
//
// ChainMap deletes by removing the entry from its bucket's chain.
//
// # Iteration
//
// All, Entries, and Iter operate on a snapshot of the table so that iteration
// never observes a half-resized table and never shares cursor state with the
// map.
//
// Maps are NOT goroutine-safe.
package hashmap

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// defaultCapacity is the capacity of the counting table built by FindMode.
	defaultCapacity = 11

	ctrlEmpty   ctrl = 0
	ctrlDeleted ctrl = 1
	ctrlFull    ctrl = 2
)

// Each slot in an OpenMap has a control byte recording one of three states:
// empty (never used since the last resize or clear), deleted (a tombstone),
// or full.
type ctrl uint8

func (c ctrl) String() string {
	switch c {
	case ctrlEmpty:
		return "empty"
	case ctrlDeleted:
		return "deleted"
	case ctrlFull:
		return "full"
	default:
		return fmt.Sprintf("ctrl(%d)", uint8(c))
	}
}

// OpenMap is an unordered map from keys to values with Put, Get, Remove, and
// All operations. Collisions are resolved with quadratic probing over a
// prime sized slot array.
//
// An OpenMap is NOT goroutine-safe.
type OpenMap[K comparable, V any] struct {
	config[K, V]
	hash HashFunc[K]
	// ctrls and slots are capacity in length.
	ctrls []ctrl
	slots []Slot[K, V]
	// The total number of slots (always prime).
	capacity int
	// The number of full slots (i.e. the number of elements in the map).
	used int
	// The number of tombstones. Tracked so that resizes can report how many
	// slots they reclaim.
	deleted int
}

// NewOpenMap constructs a new OpenMap. The capacity is initialCapacity rounded
// up to a prime (and at least 3). The zero value for an OpenMap is not
// usable.
func NewOpenMap[K comparable, V any](
	initialCapacity int, hash HashFunc[K], options ...option[K, V],
) *OpenMap[K, V] {
	m := &OpenMap[K, V]{hash: hash}
	m.adjust("openmap", options)
	m.capacity = NextPrime(initialCapacity)
	m.alloc()
	m.checkInvariants()
	return m
}

// alloc replaces ctrls and slots with fresh all-empty arrays of m.capacity
// elements.
func (m *OpenMap[K, V]) alloc() {
	m.slots = m.allocator.AllocSlots(m.capacity)
	m.ctrls = unsafeConvertSlice[ctrl](m.allocator.AllocControls(m.capacity))
	for i := range m.ctrls {
		m.ctrls[i] = ctrlEmpty
	}
	m.used = 0
	m.deleted = 0
}

func (m *OpenMap[K, V]) free(ctrls []ctrl, slots []Slot[K, V]) {
	if len(slots) > 0 {
		m.allocator.FreeSlots(slots)
		m.allocator.FreeControls(unsafeConvertSlice[uint8](ctrls))
	}
}

// Close closes the map, releasing any memory back to its configured
// allocator. It is unnecessary to close a map using the default allocator. It
// is invalid to use a map after it has been closed, though Close itself is
// idempotent.
func (m *OpenMap[K, V]) Close() {
	if m.allocator == nil {
		return
	}
	m.free(m.ctrls, m.slots)
	m.ctrls, m.slots = nil, nil
	m.capacity = 0
	m.used = 0
	m.deleted = 0
	m.allocator = nil
}

// Put inserts an entry into the map, overwriting the value if an entry with
// the same key already exists.
func (m *OpenMap[K, V]) Put(key K, value V) {
	// The load check precedes the search, even for keys that are already
	// present, so that the load observed by any insert is below 1/2.
	if 2*m.used >= m.capacity {
		m.resize(2 * m.capacity)
	} else if 4*(m.used+m.deleted) >= 3*m.capacity {
		// Tombstones have consumed most of the empty slots that end probe
		// walks. Rebuilding at the same capacity drops them.
		m.resize(m.capacity)
	}

	// Walk the probe sequence looking for the key. Tombstones do not stop
	// the walk (the key may live beyond one) but the first one seen is where
	// a new entry goes; otherwise the new entry takes the empty slot that
	// ended the walk.
	h := m.hash(key)
	target := -1
	seq := makeProbeSeq(h, m.capacity)
probe:
	for ; seq.index < m.capacity; seq = seq.next() {
		i := seq.offset
		switch m.ctrls[i] {
		case ctrlEmpty:
			if target < 0 {
				target = i
			}
			break probe
		case ctrlDeleted:
			if target < 0 {
				target = i
			}
		default:
			if slot := &m.slots[i]; slot.key == key {
				slot.value = value
				m.checkInvariants()
				return
			}
		}
	}

	if target < 0 {
		panic(fmt.Sprintf("invariant failed: no free slot for %v (%s)\n%s", key, seq, m.debugString()))
	}
	if m.ctrls[target] == ctrlDeleted {
		m.deleted--
	}
	m.slots[target] = Slot[K, V]{key: key, value: value}
	m.ctrls[target] = ctrlFull
	m.used++
	m.checkInvariants()
}

// uncheckedPut inserts an entry known not to be in the table into the first
// empty or deleted slot of its probe sequence. It never resizes: callers
// guarantee the table has room.
func (m *OpenMap[K, V]) uncheckedPut(h uint64, key K, value V) {
	seq := makeProbeSeq(h, m.capacity)
	for ; seq.index < m.capacity; seq = seq.next() {
		i := seq.offset
		if m.ctrls[i] == ctrlFull {
			continue
		}
		if m.ctrls[i] == ctrlDeleted {
			m.deleted--
		}
		m.slots[i] = Slot[K, V]{key: key, value: value}
		m.ctrls[i] = ctrlFull
		m.used++
		return
	}
	panic(fmt.Sprintf("invariant failed: no free slot for %v (%s)\n%s", key, seq, m.debugString()))
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present.
func (m *OpenMap[K, V]) Get(key K) (value V, ok bool) {
	if i := m.find(key); i >= 0 {
		return m.slots[i].value, true
	}
	return value, false
}

// Contains returns true if the key is present in the map.
func (m *OpenMap[K, V]) Contains(key K) bool {
	return m.find(key) >= 0
}

// find returns the index of the full slot holding key, or -1. The walk ends
// at the first empty slot, or after capacity steps if the probe sequence
// holds no empty slot at all (every free slot on it is a tombstone).
func (m *OpenMap[K, V]) find(key K) int {
	if m.used == 0 {
		return -1
	}
	h := m.hash(key)
	for seq := makeProbeSeq(h, m.capacity); seq.index < m.capacity; seq = seq.next() {
		i := seq.offset
		switch m.ctrls[i] {
		case ctrlEmpty:
			return -1
		case ctrlFull:
			if m.slots[i].key == key {
				return i
			}
		}
	}
	return -1
}

// Remove removes the entry corresponding to the specified key from the map.
// The slot becomes a tombstone. It is a noop to remove a non-existent key.
func (m *OpenMap[K, V]) Remove(key K) {
	i := m.find(key)
	if i < 0 {
		return
	}
	// The stale key and value stay in the slot until it is reused.
	m.ctrls[i] = ctrlDeleted
	m.used--
	m.deleted++
	m.checkInvariants()
}

// Resize rebuilds the map with the specified capacity, rounded up to a prime.
// It is a noop if newCapacity is smaller than the number of entries. If the
// requested capacity would leave the map at or above its maximum load, the
// capacity is doubled until it does not. Tombstones are discarded.
func (m *OpenMap[K, V]) Resize(newCapacity int) {
	if newCapacity < m.used {
		return
	}
	m.resize(newCapacity)
}

// resize allocates a new slot array of (at least) newCapacity and
// uncheckedPuts every live entry of the old array into it, in old slot order.
func (m *OpenMap[K, V]) resize(newCapacity int) {
	newCapacity = primeCapacity(newCapacity)
	// Re-inserting the i'th entry must observe a load below 1/2, the same
	// growth schedule Put follows.
	for m.used > 0 && 2*(m.used-1) >= newCapacity {
		newCapacity = NextPrime(2 * newCapacity)
	}

	oldCtrls, oldSlots := m.ctrls, m.slots
	oldCapacity, oldUsed, oldDeleted := m.capacity, m.used, m.deleted
	m.capacity = newCapacity
	m.alloc()

	for i := range oldCtrls {
		if oldCtrls[i] != ctrlFull {
			continue
		}
		s := &oldSlots[i]
		m.uncheckedPut(m.hash(s.key), s.key, s.value)
	}
	m.free(oldCtrls, oldSlots)

	m.logger.Debug("resize",
		zap.Int("capacity", oldCapacity),
		zap.Int("new-capacity", newCapacity),
		zap.Int("len", oldUsed),
		zap.Int("tombstones", oldDeleted))
	m.checkInvariants()
}

// Clear deletes all entries from the map resulting in an empty map with the
// same capacity.
func (m *OpenMap[K, V]) Clear() {
	oldCtrls, oldSlots := m.ctrls, m.slots
	m.logger.Debug("clear", zap.Int("capacity", m.capacity), zap.Int("len", m.used))
	m.alloc()
	m.free(oldCtrls, oldSlots)
	m.checkInvariants()
}

// All calls yield sequentially for each key and value present in the map, in
// slot order. If yield returns false, All stops the iteration. The map can be
// mutated during iteration, though there is no guarantee that the mutations
// will be visible to the iteration.
func (m *OpenMap[K, V]) All(yield func(key K, value V) bool) {
	// Snapshot the controls and slots so that iteration remains valid if the
	// map is resized or cleared during iteration.
	ctrls, slots := m.ctrls, m.slots
	for i := range ctrls {
		if ctrls[i] != ctrlFull {
			continue
		}
		if !yield(slots[i].key, slots[i].value) {
			return
		}
	}
}

// Entries returns the live entries of the map in slot order.
func (m *OpenMap[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, m.used)
	m.All(func(k K, v V) bool {
		entries = append(entries, Entry[K, V]{Key: k, Value: v})
		return true
	})
	return entries
}

// Iter returns an iterator over a snapshot of the map's entries.
func (m *OpenMap[K, V]) Iter() *Iterator[K, V] {
	return newIterator(m.Entries())
}

// Len returns the number of entries in the map.
func (m *OpenMap[K, V]) Len() int {
	return m.used
}

// Capacity returns the number of slots in the map.
func (m *OpenMap[K, V]) Capacity() int {
	return m.capacity
}

// LoadFactor returns Len()/Capacity().
func (m *OpenMap[K, V]) LoadFactor() float64 {
	return float64(m.used) / float64(m.capacity)
}

// EmptyCount returns the number of slots that are empty or tombstoned, i.e.
// available to a future insert.
func (m *OpenMap[K, V]) EmptyCount() int {
	return m.capacity - m.used
}

func (m *OpenMap[K, V]) checkInvariants() {
	if invariants {
		if !IsPrime(m.capacity) {
			panic(fmt.Sprintf("invariant failed: capacity %d is not prime", m.capacity))
		}
		if len(m.ctrls) != m.capacity || len(m.slots) != m.capacity {
			panic(fmt.Sprintf("invariant failed: capacity=%d but len(ctrls)=%d len(slots)=%d",
				m.capacity, len(m.ctrls), len(m.slots)))
		}
		if m.used > 0 && 2*(m.used-1) >= m.capacity {
			panic(fmt.Sprintf("invariant failed: %d entries overload capacity %d\n%s",
				m.used, m.capacity, m.debugString()))
		}

		// For every full slot, verify we can retrieve the key using Get and
		// that no key is stored twice. Count the number of used and deleted
		// slots.
		seen := make(map[K]int)
		var used int
		var deleted int
		for i := range m.ctrls {
			switch c := m.ctrls[i]; c {
			case ctrlEmpty:
			case ctrlDeleted:
				deleted++
			case ctrlFull:
				s := &m.slots[i]
				if j, ok := seen[s.key]; ok {
					panic(fmt.Sprintf("invariant failed: slot(%d) and slot(%d) both hold %v\n%s",
						j, i, s.key, m.debugString()))
				}
				seen[s.key] = i
				if j := m.find(s.key); j != i {
					panic(fmt.Sprintf("invariant failed: slot(%d): %v found at %d\n%s",
						i, s.key, j, m.debugString()))
				}
				used++
			default:
				panic(fmt.Sprintf("invariant failed: slot(%d): unexpected %s", i, c))
			}
		}

		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
		if deleted != m.deleted {
			panic(fmt.Sprintf("invariant failed: found %d deleted slots, but deleted count is %d\n%s",
				deleted, m.deleted, m.debugString()))
		}
	}
}

func (m *OpenMap[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  deleted=%d\n", m.capacity, m.used, m.deleted)
	for i := range m.ctrls {
		switch c := m.ctrls[i]; c {
		case ctrlEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case ctrlDeleted:
			fmt.Fprintf(&buf, "  %4d: deleted [%v]\n", i, m.slots[i].key)
		default:
			s := &m.slots[i]
			fmt.Fprintf(&buf, "  %4d: %v [h=%d]\n", i, s.key, m.hash(s.key)%uint64(m.capacity))
		}
	}
	return buf.String()
}

// probeSeq maintains the state for a quadratic probe sequence of the form
//
//	p(i) := (hash + i^2) mod capacity
//
// Successive squares differ by 2i-1, so the offset is advanced incrementally
// rather than squaring the index. For a prime capacity the first
// (capacity+1)/2 offsets are distinct; after that the sequence revisits
// slots, which is why walks are cut off after capacity steps.
type probeSeq struct {
	capacity int
	offset   int
	index    int
}

func makeProbeSeq(hash uint64, capacity int) probeSeq {
	return probeSeq{
		capacity: capacity,
		offset:   int(hash % uint64(capacity)),
		index:    0,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	s.offset = (s.offset + 2*s.index - 1) % s.capacity
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("capacity=%d offset=%d index=%d", s.capacity, s.offset, s.index)
}
