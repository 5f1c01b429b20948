package bitecs

import "unsafe"

// chunk is one fixed-capacity storage block of an arena. nalives counts
// the components currently present in it; a chunk at zero is reclaimed
// by Cleanup, not freed eagerly.
//
// Layout: data is a flat byte array of capacity*typesize, indexed by the
// low bits of the entity index. There is no per-slot metadata; presence
// is tracked by the entity bitmasks.
type chunk struct {
	data    []byte
	nalives int
}

// componentArena stores one component type as a sparse vector of
// chunks indexed by entity_index >> shift. Chunks are allocated lazily
// on first write.
type componentArena struct {
	chunks []*chunk
	meta   ComponentMeta
	shift  uint
}

func newArena(meta ComponentMeta) *componentArena {
	return &componentArena{
		meta:  meta,
		shift: uint(int(meta.Frequency) + FrequencyAdjust),
	}
}

// capacity is the number of components one chunk holds.
func (a *componentArena) capacity() int {
	return 1 << a.shift
}

// isTag reports whether the arena's component carries no data.
func (a *componentArena) isTag() bool {
	return a.meta.Typesize == 0
}

// reserve grows the chunk vector to cover every index in
// [index, index+count), preserving existing chunk pointers. No chunks
// are allocated.
func (a *componentArena) reserve(index, count int) {
	if a.isTag() || count <= 0 {
		return
	}
	lastChunk := (index + count - 1) >> a.shift
	if lastChunk < len(a.chunks) {
		return
	}
	a.chunks = extendSlice(a.chunks, lastChunk+1-len(a.chunks))
}

// tail returns how many slots remain in index's chunk, starting at
// index. Every add/select loop advances by at most this much, so each
// iteration touches exactly one chunk. Tag arenas never bound a batch.
func (a *componentArena) tail(index, count int) int {
	if a.isTag() {
		return count
	}
	avail := a.capacity() - index&(a.capacity()-1)
	return min(avail, count)
}

// addRange makes [index, index+count) writable, allocating the target
// chunk if absent, and counts the added components live. It returns the
// in-chunk pointer and how many slots were taken from the first chunk
// touched; callers loop until count is exhausted. Tag arenas take the
// whole range at once with a nil pointer.
func (a *componentArena) addRange(index, count int) (unsafe.Pointer, int) {
	if a.isTag() {
		return nil, count
	}
	a.reserve(index, count)
	chunkIdx := index >> a.shift
	c := a.chunks[chunkIdx]
	if c == nil {
		c = &chunk{data: make([]byte, a.capacity()*int(a.meta.Typesize))}
		a.chunks[chunkIdx] = c
	}
	offset := index & (a.capacity() - 1)
	added := min(count, a.capacity()-offset)
	c.nalives += added
	begin := offset * int(a.meta.Typesize)
	end := (offset + added) * int(a.meta.Typesize)
	// recycled slots may hold bytes of a previous occupant
	clear(c.data[begin:end])
	return unsafe.Pointer(&c.data[begin]), added
}

// selectRange resolves [index, index+count) against existing chunks
// with the same slicing as addRange, without touching liveness. The
// chunk must exist for non-tag arenas.
func (a *componentArena) selectRange(index, count int) (unsafe.Pointer, int) {
	if a.isTag() {
		return nil, count
	}
	c := a.chunks[index>>a.shift]
	offset := index & (a.capacity() - 1)
	taken := min(count, a.capacity()-offset)
	return unsafe.Pointer(&c.data[offset*int(a.meta.Typesize)]), taken
}

// destroyRange deletes the components in [index, index+count),
// invoking the deleter per chunk slice and decrementing liveness. It
// reports whether any chunk dropped to zero alive components.
func (a *componentArena) destroyRange(index, count int) bool {
	if a.isTag() {
		return false
	}
	emptied := false
	for count > 0 {
		c := a.chunks[index>>a.shift]
		offset := index & (a.capacity() - 1)
		taken := min(count, a.capacity()-offset)
		if a.meta.Deleter != nil {
			a.meta.Deleter(unsafe.Pointer(&c.data[offset*int(a.meta.Typesize)]), taken)
		}
		c.nalives -= taken
		if c.nalives == 0 {
			emptied = true
		}
		index += taken
		count -= taken
	}
	return emptied
}
