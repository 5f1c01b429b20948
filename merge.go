package bitecs

import (
	"github.com/rotisserie/eris"
)

// CloneSettings defines this registry's component metadata on out,
// entities excluded. A fresh clone can then be populated independently
// (a background loader, typically) and merged back with MergeFrom.
func (r *Registry) CloneSettings(out *Registry) error {
	for id := 0; id < MaxComponents; id++ {
		a := r.components[id]
		if a == nil {
			continue
		}
		if err := out.DefineComponent(id, a.meta); err != nil {
			return eris.Wrapf(err, "cloning component %d", id)
		}
	}
	return nil
}

// sameMeta compares the descriptor fields that must agree for two
// registries to exchange components. Callbacks are not comparable and
// intentionally not part of the check.
func sameMeta(a, b ComponentMeta) bool {
	return a.Typesize == b.Typesize && a.Frequency == b.Frequency
}

// MergeFrom moves every entity of other into this registry, appending
// their records past the current table end and relocating component
// values chunk slice by chunk slice (Relocater when the component has
// one, byte copy otherwise). Both registries must define exactly the
// same components; otherwise nothing is touched and
// ErrArchitectureMismatch is returned.
//
// Source free ranges carry over at their offset positions, so recycled
// source indexes stay recyclable after the merge. other is left empty
// with its cleanup flag set; its chunks await its next Cleanup.
func (r *Registry) MergeFrom(other *Registry) error {
	for id := 0; id < MaxComponents; id++ {
		a, b := r.components[id], other.components[id]
		if (a == nil) != (b == nil) {
			return eris.Wrapf(ErrArchitectureMismatch, "component %d defined on one side only", id)
		}
		if a != nil && !sameMeta(a.meta, b.meta) {
			return eris.Wrapf(ErrArchitectureMismatch, "component %d metadata differs", id)
		}
	}
	// keep handing out generations above anything the moved records
	// carry, so handles issued by other stay stale in r
	if other.generation > r.generation {
		r.generation = other.generation
	}
	srcCount := len(other.entities)
	if srcCount == 0 {
		return nil
	}
	base := len(r.entities)
	r.growTable(srcCount)
	copy(r.entities[base:], other.entities)

	for id := 0; id < MaxComponents; id++ {
		if r.components[id] != nil {
			r.mergeComponent(other, id, base)
		}
	}

	for node := other.free.head; node != nil; node = node.next {
		r.free.add(base+node.index, node.count)
	}
	r.totalFree += other.totalFree
	moved := srcCount - other.totalFree

	other.entities = other.entities[:0]
	other.free = freeList{}
	other.totalFree = 0
	other.dropChunks()
	other.cleanupPending = true

	r.logMerge(other, moved)
	return nil
}

// mergeComponent moves one component's values from other into r. Runs
// of source entities carrying the component are found with the same
// match/miss scans systems use, then each run moves in slices bounded
// by both the source and destination chunk tails, so destination
// liveness counts only components actually present.
func (r *Registry) mergeComponent(other *Registry, id, base int) {
	src, dst := other.components[id], r.components[id]
	if src.isTag() {
		return
	}
	var query SparseMask
	query.Set(id, true)
	ranks := RanksOf(query.Dict)
	cursor := 0
	for {
		cursor = queryMatch(cursor, &query, &ranks, other.entities, 0)
		if cursor >= len(other.entities) {
			return
		}
		miss := queryMiss(cursor+1, &query, &ranks, other.entities, 0)
		idx, remaining := cursor, miss-cursor
		for remaining > 0 {
			n := min(src.tail(idx, remaining), dst.tail(base+idx, remaining))
			sp, _ := src.selectRange(idx, n)
			dp, _ := dst.addRange(base+idx, n)
			if dst.meta.Relocater != nil {
				dst.meta.Relocater(sp, n, dp)
			} else {
				memCopy(dp, sp, uintptr(n)*dst.meta.Typesize)
			}
			idx += n
			remaining -= n
		}
		cursor = miss
	}
}

// dropChunks zeroes liveness on every remaining chunk so the next
// Cleanup releases them. Used after a merge has moved the values out.
func (r *Registry) dropChunks() {
	for id := 0; id < MaxComponents; id++ {
		a := r.components[id]
		if a == nil {
			continue
		}
		for _, c := range a.chunks {
			if c != nil {
				c.nalives = 0
			}
		}
	}
}
