package bitecs

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneSettings(t *testing.T) {
	r := newTestRegistry(t)
	clone := NewRegistry()
	require.NoError(t, r.CloneSettings(clone))
	assert.True(t, clone.CheckComponents([]int{7, 40, 101, 303, 1003}))
	assert.Equal(t, 0, clone.Count())

	// cloning onto a registry that already defines a component fails
	again := NewRegistry()
	require.NoError(t, Define[position](again, Freq3))
	assert.ErrorIs(t, r.CloneSettings(again), ErrDuplicateComponent)
}

func TestMergeAccumulates(t *testing.T) {
	r := newTestRegistry(t)
	loader := NewRegistry()
	require.NoError(t, r.CloneSettings(loader))

	total := 0
	for _, c := range scenarioCounts {
		for k := 0; k < c; k++ {
			_, err := Entt2(loader, position{X: float32(k)}, velocity{})
			require.NoError(t, err)
			_, err = Entt2(loader, marker{}, position{X: float32(k)})
			require.NoError(t, err)
		}
		appended := 2 * c

		count := 0
		RunSystem(loader, 0, func(EntityPtr, *position) { count++ })
		require.Equal(t, appended, count)

		require.NoError(t, r.MergeFrom(loader))
		total += appended

		count = 0
		RunSystem(loader, 0, func(EntityPtr, *position) { count++ })
		assert.Equal(t, 0, count)
		assert.Equal(t, 0, loader.Count())

		count = 0
		RunSystem(r, 0, func(EntityPtr, *position) { count++ })
		assert.Equal(t, total, count)
	}
}

func TestMergePreservesValues(t *testing.T) {
	r := newTestRegistry(t)
	loader := NewRegistry()
	require.NoError(t, r.CloneSettings(loader))

	_, err := Entt2(r, position{1, 1}, velocity{1, 1})
	require.NoError(t, err)
	require.NoError(t, Entts2(loader, 100, func(e EntityPtr, p *position, v *velocity) {
		p.X = float32(e.Index)
		v.VX = float64(e.Index) * 2
	}))

	require.NoError(t, r.MergeFrom(loader))
	assert.Equal(t, 101, r.Count())

	seen, mismatches := 0, 0
	RunSystem2(r, 0, func(e EntityPtr, p *position, v *velocity) {
		seen++
		if e.Index == 0 {
			return // the pre-merge entity
		}
		src := e.Index - 1 // loader indexes started at 0
		if p.X != float32(src) || v.VX != float64(src)*2 {
			mismatches++
		}
	})
	assert.Equal(t, 101, seen)
	assert.Equal(t, 0, mismatches)
}

func TestMergeUsesRelocater(t *testing.T) {
	ResetBindings()
	Bind[health](7)
	relocated := 0
	meta := metaFor[health](FreqRare)
	meta.Relocater = func(src unsafe.Pointer, count int, dst unsafe.Pointer) {
		memCopy(dst, src, uintptr(count)*unsafe.Sizeof(health{}))
		relocated += count
	}
	r := NewRegistry()
	require.NoError(t, DefineWithMeta[health](r, meta))
	loader := NewRegistry()
	require.NoError(t, r.CloneSettings(loader))

	require.NoError(t, Entts(loader, 50, func(e EntityPtr, h *health) {
		h.Current = int32(e.Index)
	}))
	require.NoError(t, r.MergeFrom(loader))
	assert.Equal(t, 50, relocated)

	sum := int32(0)
	RunSystem(r, 0, func(_ EntityPtr, h *health) { sum += h.Current })
	assert.Equal(t, int32(49*50/2), sum)
}

func TestMergeArchitectureMismatch(t *testing.T) {
	r := newTestRegistry(t)

	missing := NewRegistry()
	require.NoError(t, Define[position](missing, Freq3))
	assert.ErrorIs(t, r.MergeFrom(missing), ErrArchitectureMismatch)
	assert.ErrorIs(t, missing.MergeFrom(r), ErrArchitectureMismatch)

	// same ids, different frequency
	differing := NewRegistry()
	require.NoError(t, differing.DefineComponent(101, ComponentMeta{Typesize: 8, Frequency: Freq5}))
	require.NoError(t, differing.DefineComponent(303, ComponentMeta{Typesize: 16, Frequency: Freq5}))
	require.NoError(t, differing.DefineComponent(1003, ComponentMeta{Typesize: 0, Frequency: Frequent}))
	require.NoError(t, differing.DefineComponent(7, ComponentMeta{Typesize: 8, Frequency: FreqRare}))
	require.NoError(t, differing.DefineComponent(40, ComponentMeta{Typesize: 4, Frequency: Freq2}))
	assert.ErrorIs(t, r.MergeFrom(differing), ErrArchitectureMismatch)
	assert.Equal(t, 0, r.Count())
}

func TestMergeCarriesFreeRanges(t *testing.T) {
	r := newTestRegistry(t)
	loader := NewRegistry()
	require.NoError(t, r.CloneSettings(loader))

	var ptrs []EntityPtr
	require.NoError(t, Entts(loader, 5, func(e EntityPtr, _ *position) {
		ptrs = append(ptrs, e)
	}))
	loader.Destroy(ptrs[2])
	require.Equal(t, 4, loader.Count())

	require.NoError(t, r.MergeFrom(loader))
	assert.Equal(t, 4, r.Count())

	// destroyed source handles stay invalid, and the freed slot is
	// reused at its offset position
	assert.Nil(t, r.Deref(EntityPtr{Generation: ptrs[2].Generation, Index: ptrs[2].Index}))
	e, err := Entt(r, position{})
	require.NoError(t, err)
	assert.Equal(t, ptrs[2].Index, e.Index)
	assert.Equal(t, 5, r.Count())
}

func TestMergeLeavesLoaderReusable(t *testing.T) {
	r := newTestRegistry(t)
	loader := NewRegistry()
	require.NoError(t, r.CloneSettings(loader))

	require.NoError(t, Entts(loader, 10, func(EntityPtr, *position) {}))
	require.NoError(t, r.MergeFrom(loader))

	// loader chunks are reclaimable after the merge
	job := loader.PrepareCleanup()
	assert.False(t, job.Empty())
	loader.Cleanup(job)

	// and the loader can be filled again for the next merge
	require.NoError(t, Entts(loader, 7, func(EntityPtr, *position) {}))
	require.NoError(t, r.MergeFrom(loader))
	assert.Equal(t, 17, r.Count())
}
