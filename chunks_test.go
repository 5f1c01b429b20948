package bitecs

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaCapacity(t *testing.T) {
	a := newArena(ComponentMeta{Typesize: 8, Frequency: Freq3})
	assert.Equal(t, 1<<(3+FrequencyAdjust), a.capacity())

	a = newArena(ComponentMeta{Typesize: 8, Frequency: Frequent})
	assert.Equal(t, 1<<(9+FrequencyAdjust), a.capacity())
}

func TestArenaAddRangeSlicesPerChunk(t *testing.T) {
	a := newArena(ComponentMeta{Typesize: 4, Frequency: FreqRare}) // capacity 64
	cap := a.capacity()

	ptr, added := a.addRange(cap-10, 30)
	require.NotNil(t, ptr)
	assert.Equal(t, 10, added, "add stops at the chunk boundary")
	assert.Equal(t, 10, a.chunks[0].nalives)

	_, added = a.addRange(cap, 20)
	assert.Equal(t, 20, added)
	assert.Equal(t, 20, a.chunks[1].nalives)
	assert.Equal(t, 10, a.chunks[0].nalives)
}

func TestArenaLazyChunks(t *testing.T) {
	a := newArena(ComponentMeta{Typesize: 4, Frequency: FreqRare})
	cap := a.capacity()

	_, added := a.addRange(cap*3, 1)
	assert.Equal(t, 1, added)
	require.Len(t, a.chunks, 4)
	assert.Nil(t, a.chunks[0])
	assert.Nil(t, a.chunks[1])
	assert.Nil(t, a.chunks[2])
	assert.NotNil(t, a.chunks[3])
}

func TestArenaSelectRange(t *testing.T) {
	a := newArena(ComponentMeta{Typesize: 8, Frequency: FreqRare})
	base, added := a.addRange(5, 3)
	require.Equal(t, 3, added)

	ptr, taken := a.selectRange(6, 10)
	assert.Equal(t, 10, taken)

	_, taken = a.selectRange(6, 1000)
	assert.Equal(t, a.capacity()-6, taken, "select stops at the chunk boundary")
	want := unsafe.Pointer(uintptr(base) + 8)
	assert.Equal(t, want, ptr)
}

func TestArenaTagComponent(t *testing.T) {
	a := newArena(ComponentMeta{Typesize: 0, Frequency: Frequent})
	ptr, added := a.addRange(0, 100000)
	assert.Nil(t, ptr)
	assert.Equal(t, 100000, added, "tags take the whole range in one step")

	ptr, taken := a.selectRange(12345, 777)
	assert.Nil(t, ptr)
	assert.Equal(t, 777, taken)
	assert.Empty(t, a.chunks)
	assert.False(t, a.destroyRange(0, 100000))
}

func TestArenaDestroyRange(t *testing.T) {
	deleted := 0
	a := newArena(ComponentMeta{
		Typesize:  4,
		Frequency: FreqRare,
		Deleter: func(_ unsafe.Pointer, count int) {
			deleted += count
		},
	})
	cap := a.capacity()
	a.addRange(0, cap)
	a.addRange(cap, 10)

	emptied := a.destroyRange(cap-5, 15)
	assert.True(t, emptied, "second chunk drops to zero")
	assert.Equal(t, 15, deleted)
	assert.Equal(t, cap-5, a.chunks[0].nalives)
	assert.Equal(t, 0, a.chunks[1].nalives)

	emptied = a.destroyRange(0, 1)
	assert.False(t, emptied)
}
