package bitecs

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Entity is one record of the packed entity table. Bits and Dict hold
// the entity's component bitmask in SparseMask encoding, Generation
// tags the slot against stale handles, and Flags carry user-controlled
// filter bits. A destroyed slot has Dict == all-ones.
//
// Callbacks and Deref expose records of the live table: treat Bits,
// Dict and Generation as read-only there; Flags may be mutated.
type Entity struct {
	Bits       Mask128
	Dict       uint64
	Generation uint32
	Flags      uint32
}

// Mask returns the entity's component bitmask.
func (e *Entity) Mask() SparseMask {
	return SparseMask{Bits: e.Bits, Dict: e.Dict}
}

// Alive reports whether the record is not a tombstone.
func (e *Entity) Alive() bool {
	return e.Dict != tombstoneDict
}

// EntityPtr is a weak handle to an entity: a dense table index plus the
// generation the slot had when the handle was issued. It stays cheap to
// copy and never owns anything; Deref validates it.
type EntityPtr struct {
	Generation uint32
	Index      uint32
}

// CallbackContext describes the batch a Callback is invoked with.
// Entities is a window of the registry's entity table covering the
// batch; it is valid only for the duration of the call.
type CallbackContext struct {
	// BeginIndex is the entity index of the first record of the batch.
	BeginIndex int
	// Entities holds the batch's entity records. Only Flags may be
	// written through it.
	Entities []Entity
}

// Ptr builds the weak handle for the i-th entity of the batch.
func (c *CallbackContext) Ptr(i int) EntityPtr {
	return EntityPtr{
		Generation: c.Entities[i].Generation,
		Index:      uint32(c.BeginIndex + i),
	}
}

// Callback is the batched dispatch interface shared by entity creation
// and system runs. ptrs holds one in-chunk pointer per requested
// component, in the order the component ids were passed; tag components
// contribute nil. count is the batch length. Closures carry any state
// the callback needs.
type Callback func(ctx *CallbackContext, ptrs []unsafe.Pointer, count int)

// Registry owns the entity table, the free-index list and every
// component arena. All operations assume exclusive access; a Registry
// is single-threaded by contract.
type Registry struct {
	entities       []Entity
	free           freeList
	components     [MaxComponents]*componentArena
	totalFree      int
	generation     uint32
	cleanupPending bool
	scratchIDs     []int
	id             uuid.UUID
	log            zerolog.Logger
}

// NewRegistry creates an empty registry with no components defined.
func NewRegistry() *Registry {
	return &Registry{
		generation: 1,
		id:         uuid.New(),
		log:        zerolog.Nop(),
	}
}

// Count returns the number of alive entities.
func (r *Registry) Count() int {
	return len(r.entities) - r.totalFree
}

// Capacity returns the allocated size of the entity table.
func (r *Registry) Capacity() int {
	return cap(r.entities)
}

// DefineComponent registers a component id with its descriptor.
// Duplicate definitions fail without side effect. The frequency must be
// in [1, 9]; violating that is a programming error and panics.
func (r *Registry) DefineComponent(id int, meta ComponentMeta) error {
	if id < 0 || id >= MaxComponents {
		return eris.Wrapf(ErrCapacityExceeded, "component id %d", id)
	}
	if meta.Frequency < FreqRare || meta.Frequency > Frequent {
		panic(fmt.Sprintf("bitecs: frequency %d out of range [1, 9]", meta.Frequency))
	}
	if r.components[id] != nil {
		return eris.Wrapf(ErrDuplicateComponent, "component id %d", id)
	}
	r.components[id] = newArena(meta)
	r.logDefine(id, meta)
	return nil
}

// CheckComponents reports whether every id in comps is defined.
func (r *Registry) CheckComponents(comps []int) bool {
	for _, id := range comps {
		if id < 0 || id >= MaxComponents || r.components[id] == nil {
			return false
		}
	}
	return true
}

// queryOf builds the sparse mask for a component list. The list may be
// unsorted; duplicates panic (through MaskFromArray).
func queryOf(comps []int) (SparseMask, bool) {
	sorted := slices.Clone(comps)
	slices.Sort(sorted)
	return MaskFromArray(sorted)
}

// arenasOf resolves comps to arenas preserving the caller's order, so
// callback pointer order matches the component list as passed.
func (r *Registry) arenasOf(comps []int) []*componentArena {
	arenas := make([]*componentArena, len(comps))
	for i, id := range comps {
		arenas[i] = r.components[id]
	}
	return arenas
}

// CreateEntities creates count entities carrying the listed components
// and invokes populate over the fresh slots in chunk-aligned batches.
// Every slot receives the same bitmask, zero flags and the registry's
// current generation. populate may be nil, leaving components
// zero-valued.
//
// Allocation prefers recycled index ranges; when the table is
// fragmented (three times more free slots than requested but no range
// long enough) the request is halved and satisfied in two passes
// instead of growing the table.
func (r *Registry) CreateEntities(comps []int, count int, populate Callback) error {
	if count <= 0 {
		return nil
	}
	if !r.CheckComponents(comps) {
		return eris.Wrapf(ErrNotDefined, "component list %v", comps)
	}
	mask, ok := queryOf(comps)
	if !ok {
		return eris.Wrapf(ErrCapacityExceeded, "component list %v", comps)
	}
	return r.createRange(r.arenasOf(comps), mask, count, populate)
}

func (r *Registry) createRange(arenas []*componentArena, mask SparseMask, count int, populate Callback) error {
	index, ok := r.free.take(count)
	if ok {
		r.totalFree -= count
	} else {
		if count > 1 && r.totalFree >= 3*count {
			// Fragmented table: splitting the request keeps reusing
			// freed ranges instead of growing the table forever.
			half := count / 2
			if err := r.createRange(arenas, mask, half, populate); err != nil {
				return err
			}
			return r.createRange(arenas, mask, count-half, populate)
		}
		index = len(r.entities)
		r.growTable(count)
	}
	for _, a := range arenas {
		a.reserve(index, count)
	}
	for i := index; i < index+count; i++ {
		r.entities[i] = Entity{
			Bits:       mask.Bits,
			Dict:       mask.Dict,
			Generation: r.generation,
		}
	}
	ptrs := make([]unsafe.Pointer, len(arenas))
	cursor, remaining := index, count
	for remaining > 0 {
		smallest := remaining
		for _, a := range arenas {
			if t := a.tail(cursor, remaining); t < smallest {
				smallest = t
			}
		}
		for i, a := range arenas {
			ptrs[i], _ = a.addRange(cursor, smallest)
		}
		if populate != nil {
			ctx := CallbackContext{
				BeginIndex: cursor,
				Entities:   r.entities[cursor : cursor+smallest],
			}
			populate(&ctx, ptrs, smallest)
		}
		cursor += smallest
		remaining -= smallest
	}
	return nil
}

// growTable extends the entity table by count slots, growing capacity
// geometrically.
func (r *Registry) growTable(count int) {
	need := len(r.entities) + count
	if cap(r.entities) < need {
		oldCap := cap(r.entities)
		grown := make([]Entity, len(r.entities), grownCap(oldCap, need))
		copy(grown, r.entities)
		r.entities = grown
		r.logGrow(oldCap, cap(r.entities))
	}
	r.entities = r.entities[:need]
}

// Deref validates a weak handle and returns the entity record, or nil
// for a stale handle or tombstone. The pointer is valid only until the
// next mutating registry operation.
func (r *Registry) Deref(ptr EntityPtr) *Entity {
	idx := int(ptr.Index)
	if idx >= len(r.entities) {
		return nil
	}
	e := &r.entities[idx]
	if e.Dict == tombstoneDict || e.Generation != ptr.Generation {
		return nil
	}
	return e
}

// Destroy destroys the entity behind ptr: deleters run on each present
// component, the slot becomes a tombstone and its index returns to the
// free list. Stale handles are a no-op. The registry generation is
// bumped so the reused index hands out distinguishable handles.
func (r *Registry) Destroy(ptr EntityPtr) {
	e := r.Deref(ptr)
	if e == nil {
		return
	}
	r.generation++
	r.destroyRun(int(ptr.Index), 1, e.Mask())
}

// DestroyBatch destroys every valid handle in ptrs, tolerating stale
// and duplicate entries. The generation is bumped once for the whole
// call. Contiguous same-shape runs in the input are destroyed together
// so deleters fire over whole slices; the result does not depend on
// input order.
func (r *Registry) DestroyBatch(ptrs []EntityPtr) {
	r.generation++
	i := 0
	for i < len(ptrs) {
		e := r.Deref(ptrs[i])
		if e == nil {
			i++
			continue
		}
		begin := int(ptrs[i].Index)
		shape := e.Mask()
		n := 1
		for i+n < len(ptrs) {
			next := r.Deref(ptrs[i+n])
			if next == nil || int(ptrs[i+n].Index) != begin+n ||
				next.Dict != shape.Dict || next.Bits != shape.Bits {
				break
			}
			n++
		}
		r.destroyRun(begin, n, shape)
		i += n
	}
}

// destroyRun reclaims count same-shape slots starting at index: per
// present component, deleters fire over chunk slices and liveness
// drops; the records become tombstones and the range goes to the free
// list.
func (r *Registry) destroyRun(index, count int, shape SparseMask) {
	ranks := RanksOf(shape.Dict)
	r.scratchIDs = shape.IntoArray(&ranks, r.scratchIDs[:0])
	for _, id := range r.scratchIDs {
		a := r.components[id]
		if a == nil {
			continue
		}
		if a.destroyRange(index, count) {
			r.cleanupPending = true
		}
	}
	for i := index; i < index+count; i++ {
		r.entities[i].Bits = Mask128{}
		r.entities[i].Dict = tombstoneDict
	}
	r.free.add(index, count)
	r.totalFree += count
}

// AddComponent adds component id to the entity and returns a writable
// pointer to the fresh slot for initialization. It returns (nil, false)
// on a stale handle, an undefined id, a full bitmask, or when the
// component is already present. A successfully added tag component
// reports (nil, true). A failed add leaves the entity untouched.
func (r *Registry) AddComponent(ptr EntityPtr, id int) (unsafe.Pointer, bool) {
	e := r.Deref(ptr)
	if e == nil {
		return nil, false
	}
	if id < 0 || id >= MaxComponents || r.components[id] == nil {
		return nil, false
	}
	mask := e.Mask()
	if mask.Get(id) {
		return nil, false
	}
	if !mask.Set(id, true) {
		return nil, false
	}
	p, _ := r.components[id].addRange(int(ptr.Index), 1)
	e.Bits = mask.Bits
	e.Dict = mask.Dict
	return p, true
}

// RemoveComponent removes component id from the entity, invoking its
// deleter. It returns false on a stale handle or when the component is
// not present. Emptying a chunk marks the registry for cleanup.
func (r *Registry) RemoveComponent(ptr EntityPtr, id int) bool {
	e := r.Deref(ptr)
	if e == nil {
		return false
	}
	if id < 0 || id >= MaxComponents || r.components[id] == nil {
		return false
	}
	mask := e.Mask()
	if !mask.Get(id) {
		return false
	}
	if r.components[id].destroyRange(int(ptr.Index), 1) {
		r.cleanupPending = true
	}
	mask.Set(id, false)
	e.Bits = mask.Bits
	e.Dict = mask.Dict
	return true
}

// GetComponent returns the in-chunk pointer for component id on the
// entity, or nil when the handle is stale or the component absent. Tag
// components always yield nil; use the typed layer to test presence.
// The pointer is valid only until the next mutating registry operation.
func (r *Registry) GetComponent(ptr EntityPtr, id int) unsafe.Pointer {
	e := r.Deref(ptr)
	if e == nil {
		return nil
	}
	if id < 0 || id >= MaxComponents || r.components[id] == nil {
		return nil
	}
	mask := e.Mask()
	if !mask.Get(id) {
		return nil
	}
	p, _ := r.components[id].selectRange(int(ptr.Index), 1)
	return p
}
