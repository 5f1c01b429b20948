// Package bitecs implements a sparse-bitmask Entity-Component-System
// runtime built around fast archetype filtering over a packed entity
// table.
//
// Features:
//   - Two-level sparse bitmasks addressing up to 2048 component ids,
//     with at most 4 active id groups per entity.
//   - Per-component chunked arenas, frequency-tuned chunk sizes, lazily
//     allocated and reclaimed off the hot path.
//   - Linear match/miss scans that dispatch systems over contiguous
//     runs of matching entities with chunk-aligned pointers.
//   - Weak generation-checked entity handles.
//   - Clone-settings + merge for populating a registry in the
//     background and moving it into the primary one.
//
// A Registry is single-threaded: all operations assume exclusive
// access. Component pointers returned by Add, Get and system callbacks
// are valid only until the next mutating registry operation.
package bitecs
