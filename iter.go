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

// Slot holds a key and value.
type Slot[K comparable, V any] struct {
	key   K
	value V
}

// Entry is a key/value pair produced by Entries and Iterator.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Iterator is a cursor over a snapshot of a map's entries. It holds no
// reference to the map, so any number of iterators may be open at once and
// the map may be mutated while they are in use.
type Iterator[K comparable, V any] struct {
	entries []Entry[K, V]
	pos     int
}

func newIterator[K comparable, V any](entries []Entry[K, V]) *Iterator[K, V] {
	return &Iterator[K, V]{entries: entries}
}

// Next returns the next entry, or ok=false once the snapshot is exhausted.
func (it *Iterator[K, V]) Next() (e Entry[K, V], ok bool) {
	if it.pos >= len(it.entries) {
		return e, false
	}
	e = it.entries[it.pos]
	it.pos++
	return e, true
}

// Remaining returns the number of entries Next has yet to return.
func (it *Iterator[K, V]) Remaining() int {
	return len(it.entries) - it.pos
}
