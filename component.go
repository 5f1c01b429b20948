package bitecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Frequency describes how common a component is expected to be, on a
// scale of 1 (rare) to 9 (ubiquitous). It determines chunk capacity:
// more frequent components get larger chunks.
type Frequency int

const (
	FreqRare Frequency = iota + 1
	Freq2
	Freq3
	Freq4
	Freq5
	Freq6
	Freq7
	Freq8
	Frequent
)

// FrequencyAdjust is added to a component's Frequency to obtain its
// chunk shift: a chunk holds 1 << (frequency + FrequencyAdjust)
// components.
const FrequencyAdjust = 5

// Deleter destroys count components starting at begin. It runs when an
// entity is destroyed or a component removed, before the slot is
// recycled.
type Deleter func(begin unsafe.Pointer, count int)

// Relocater moves count components from src to dst during a registry
// merge. Components without one are moved with a plain byte copy.
type Relocater func(src unsafe.Pointer, count int, dst unsafe.Pointer)

// ComponentMeta is the fixed-size descriptor a component id is defined
// with. Typesize 0 declares a tag component: presence is tracked in the
// entity bitmask, but no storage is allocated.
type ComponentMeta struct {
	Typesize  uintptr
	Frequency Frequency
	Deleter   Deleter
	Relocater Relocater
}

// boundIDs maps component types to their user-chosen ids, in the manner
// of a compile-time id lookup. Bindings are package-global: a type means
// the same id in every Registry, which is what makes CloneSettings and
// MergeFrom coherent.
var (
	boundIDs   = make(map[reflect.Type]int, 64)
	boundTypes = make(map[int]reflect.Type, 64)
)

// Bind associates component type T with a user-chosen id in
// [0, MaxComponents). It panics on an out-of-range id, on rebinding T to
// a different id, and on binding two types to one id. Binding the same
// pair twice is a no-op.
func Bind[T any](id int) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if id < 0 || id >= MaxComponents {
		panic(fmt.Sprintf("bitecs: component id %d out of range [0, %d)", id, MaxComponents))
	}
	if prev, ok := boundIDs[typ]; ok && prev != id {
		panic(fmt.Sprintf("bitecs: component type %s already bound to id %d", typ, prev))
	}
	if prev, ok := boundTypes[id]; ok && prev != typ {
		panic(fmt.Sprintf("bitecs: component id %d already bound to type %s", id, prev))
	}
	boundIDs[typ] = id
	boundTypes[id] = typ
}

// ID returns the bound id for component type T. It panics if T was
// never bound.
func ID[T any]() int {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	id, ok := boundIDs[typ]
	if !ok {
		panic(fmt.Sprintf("bitecs: component type %s not bound", typ))
	}
	return id
}

// TryID returns the bound id for component type T and whether one
// exists.
func TryID[T any]() (int, bool) {
	id, ok := boundIDs[reflect.TypeOf((*T)(nil)).Elem()]
	return id, ok
}

// ResetBindings clears all type-to-id bindings. Useful in tests that
// re-declare component sets.
func ResetBindings() {
	boundIDs = make(map[reflect.Type]int, 64)
	boundTypes = make(map[int]reflect.Type, 64)
}

// metaFor derives a ComponentMeta from T: size from the type, tag
// detection for empty structs, no deleter or relocater (Go values are
// bit-movable and garbage collected unless the caller says otherwise).
func metaFor[T any](freq Frequency) ComponentMeta {
	var zero T
	return ComponentMeta{
		Typesize:  unsafe.Sizeof(zero),
		Frequency: freq,
	}
}
