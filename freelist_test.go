package bitecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ranges collects the list contents for assertions, head first.
func (l *freeList) ranges() [][2]int {
	var out [][2]int
	for node := l.head; node != nil; node = node.next {
		out = append(out, [2]int{node.index, node.count})
	}
	return out
}

func TestFreeListTakeSplits(t *testing.T) {
	var l freeList
	l.add(10, 8)

	idx, ok := l.take(3)
	require.True(t, ok)
	assert.Equal(t, 10, idx)
	assert.Equal(t, [][2]int{{13, 5}}, l.ranges())

	idx, ok = l.take(5)
	require.True(t, ok)
	assert.Equal(t, 13, idx)
	assert.Nil(t, l.head)

	_, ok = l.take(1)
	assert.False(t, ok)
}

func TestFreeListTakeFirstFit(t *testing.T) {
	var l freeList
	l.add(0, 2)
	l.add(10, 6)
	// head is the most recently linked node
	idx, ok := l.take(4)
	require.True(t, ok)
	assert.Equal(t, 10, idx)

	_, ok = l.take(4)
	assert.False(t, ok)
	idx, ok = l.take(2)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestFreeListCoalesce(t *testing.T) {
	var l freeList
	l.add(10, 2)
	l.add(12, 3) // appends onto {10,2}
	assert.Equal(t, [][2]int{{10, 5}}, l.ranges())

	l.add(7, 3) // prepends onto {10,5}
	assert.Equal(t, [][2]int{{7, 8}}, l.ranges())

	l.add(20, 2)
	l.add(15, 5) // bridges {7,8} and {20,2}
	assert.Equal(t, [][2]int{{7, 15}}, l.ranges())
}

func TestFreeListDisjointRanges(t *testing.T) {
	var l freeList
	l.add(0, 1)
	l.add(5, 1)
	l.add(10, 1)
	assert.Len(t, l.ranges(), 3)

	idx, ok := l.take(1)
	require.True(t, ok)
	assert.Equal(t, 10, idx)
}
