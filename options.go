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
	"unsafe"

	"go.uber.org/zap"
)

// config holds the settings shared by OpenMap and ChainMap.
type config[K comparable, V any] struct {
	logger    *zap.Logger
	allocator Allocator[K, V]
}

func (c *config[K, V]) adjust(name string, options []option[K, V]) {
	for _, op := range options {
		op.apply(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named(name)
	if c.allocator == nil {
		c.allocator = defaultAllocator[K, V]{}
	}
}

// option provide an interface to do work on a map while it is being created.
type option[K comparable, V any] interface {
	apply(c *config[K, V])
}

type loggerOption[K comparable, V any] struct {
	logger *zap.Logger
}

func (op loggerOption[K, V]) apply(c *config[K, V]) {
	c.logger = op.logger
}

// WithLogger sets the zap logger used to report resizes and clears. Maps log
// nothing by default.
func WithLogger[K comparable, V any](logger *zap.Logger) option[K, V] {
	return loggerOption[K, V]{logger}
}

// Allocator specifies an interface for allocating and releasing the slot and
// control arrays used by an OpenMap. The default allocator utilizes Go's
// builtin make() and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that slots and
// controls be freed then OpenMap.Close must be called in order to ensure
// FreeSlots and FreeControls are called.
type Allocator[K comparable, V any] interface {
	// AllocSlots should return a slice equivalent to make([]Slot[K,V], n).
	AllocSlots(n int) []Slot[K, V]

	// AllocControls should return a slice equivalent to make([]uint8, n).
	AllocControls(n int) []uint8

	// FreeSlots can optional release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by AllocSlots.
	FreeSlots(v []Slot[K, V])

	// FreeControls can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocControls.
	FreeControls(v []uint8)
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocSlots(n int) []Slot[K, V] {
	return make([]Slot[K, V], n)
}

func (defaultAllocator[K, V]) AllocControls(n int) []uint8 {
	return make([]uint8, n)
}

func (defaultAllocator[K, V]) FreeSlots(v []Slot[K, V]) {
}

func (defaultAllocator[K, V]) FreeControls(v []uint8) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(c *config[K, V]) {
	c.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for an
// OpenMap[K,V]. ChainMap grows its chains with append and ignores it.
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}

func unsafeConvertSlice[Dest any, Src any](s []Src) []Dest {
	return unsafe.Slice((*Dest)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}
