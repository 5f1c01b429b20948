package bitecs

import "unsafe"

// SystemStep is the re-entrant state of one system run. Each Step call
// performs one match-miss-dispatch round and reports whether more work
// may remain, which lets callers time-slice long scans. Step never
// yields inside a callback invocation.
type SystemStep struct {
	reg     *Registry
	system  Callback
	arenas  []*componentArena
	ptrs    []unsafe.Pointer
	query   SparseMask
	ranks   Ranks
	flags   uint32
	cursor  int
	invalid bool
}

// NewSystemStep prepares a system run over entities carrying every
// component in comps and all bits of flags. The component list may be
// given in any order; callback pointers follow that order. An empty or
// undefined component list yields a step with no work.
//
// The step's cursor survives registry mutations only as an index;
// callers that interleave mutations with Step get batches reflecting
// the table as it is when Step runs.
func (r *Registry) NewSystemStep(comps []int, flags uint32, system Callback) *SystemStep {
	s := &SystemStep{reg: r, system: system, flags: flags}
	if len(comps) == 0 || !r.CheckComponents(comps) {
		s.invalid = true
		return s
	}
	query, ok := queryOf(comps)
	if !ok {
		s.invalid = true
		return s
	}
	s.query = query
	s.ranks = RanksOf(query.Dict)
	s.arenas = r.arenasOf(comps)
	s.ptrs = make([]unsafe.Pointer, len(comps))
	return s
}

// Step advances to the next run of matching entities and dispatches it
// to the callback in chunk-aligned batches. It returns false when the
// scan is exhausted.
func (s *SystemStep) Step() bool {
	if s.invalid {
		return false
	}
	entts := s.reg.entities
	s.cursor = queryMatch(s.cursor, &s.query, &s.ranks, entts, s.flags)
	if s.cursor >= len(entts) {
		return false
	}
	miss := queryMiss(s.cursor+1, &s.query, &s.ranks, entts, s.flags)
	for s.cursor < miss {
		remaining := miss - s.cursor
		smallest := remaining
		for _, a := range s.arenas {
			if t := a.tail(s.cursor, remaining); t < smallest {
				smallest = t
			}
		}
		for i, a := range s.arenas {
			s.ptrs[i], _ = a.selectRange(s.cursor, smallest)
		}
		ctx := CallbackContext{
			BeginIndex: s.cursor,
			Entities:   entts[s.cursor : s.cursor+smallest],
		}
		s.system(&ctx, s.ptrs, smallest)
		s.cursor += smallest
	}
	return s.cursor < len(entts)
}

// DestroyMatching destroys every entity carrying all listed components
// and all bits of flags, reusing the run discovery of RunSystem so
// deleters fire over whole chunk slices. It returns the number of
// entities destroyed.
func (r *Registry) DestroyMatching(comps []int, flags uint32) int {
	if len(comps) == 0 || !r.CheckComponents(comps) {
		return 0
	}
	query, ok := queryOf(comps)
	if !ok {
		return 0
	}
	ranks := RanksOf(query.Dict)
	r.generation++
	destroyed := 0
	cursor := 0
	for {
		cursor = queryMatch(cursor, &query, &ranks, r.entities, flags)
		if cursor >= len(r.entities) {
			return destroyed
		}
		miss := queryMiss(cursor+1, &query, &ranks, r.entities, flags)
		// a matched run may still mix entity shapes; split it so each
		// destroyRun expands one mask
		for cursor < miss {
			shape := r.entities[cursor].Mask()
			end := cursor + 1
			for end < miss && r.entities[end].Dict == shape.Dict && r.entities[end].Bits == shape.Bits {
				end++
			}
			r.destroyRun(cursor, end-cursor, shape)
			destroyed += end - cursor
			cursor = end
		}
	}
}

// RunSystem walks the whole entity table in ascending index order,
// invoking system over every run of entities that carry all listed
// components and all bits of flags. Batches are truncated to chunk
// boundaries so component pointers stay dense within each call.
func (r *Registry) RunSystem(comps []int, flags uint32, system Callback) {
	step := r.NewSystemStep(comps, flags, system)
	for step.Step() {
	}
}
