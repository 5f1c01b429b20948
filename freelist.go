package bitecs

// freeRange is one node of the free-index list: a run of count freed
// entity-table slots starting at index.
type freeRange struct {
	prev, next *freeRange
	index      int
	count      int
}

// freeList tracks freed entity-index ranges as a doubly-linked list.
// Adjacent ranges coalesce on insert; allocation takes the first range
// large enough.
type freeList struct {
	head *freeRange
}

// take finds the first range of size >= count, splits it if larger, and
// returns the starting index.
func (l *freeList) take(count int) (int, bool) {
	for node := l.head; node != nil; node = node.next {
		if node.count > count {
			index := node.index
			node.index += count
			node.count -= count
			return index, true
		}
		if node.count == count {
			l.unlink(node)
			return node.index, true
		}
	}
	return 0, false
}

// add inserts a freed range, merging with the range ending at its start
// and the range starting at its end. A range bridging both collapses
// three nodes into one. Otherwise a new node is linked at the head.
func (l *freeList) add(index, count int) {
	var before, after *freeRange
	for node := l.head; node != nil; node = node.next {
		if node.index+node.count == index {
			before = node
		}
		if index+count == node.index {
			after = node
		}
	}
	switch {
	case before != nil && after != nil:
		before.count += count + after.count
		l.unlink(after)
	case before != nil:
		before.count += count
	case after != nil:
		after.index = index
		after.count += count
	default:
		node := &freeRange{index: index, count: count, next: l.head}
		if l.head != nil {
			l.head.prev = node
		}
		l.head = node
	}
}

func (l *freeList) unlink(node *freeRange) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	node.prev, node.next = nil, nil
}
