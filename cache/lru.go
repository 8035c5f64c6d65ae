package cache

const noWay = -1

// way is one slot of a set. prev and next link the slots into a recency list
// by index.
type way struct {
	tag  uint64
	prev int
	next int
}

// lruSet holds up to len(ways) tags. head is the most recently used slot and
// tail the least recently used one. Slots are never reallocated, so eviction
// reuses the tail slot in place.
type lruSet struct {
	ways  []way
	index map[uint64]int
	head  int
	tail  int
	used  int
}

func newLRUSet(associativity int) lruSet {
	return lruSet{
		ways:  make([]way, associativity),
		index: make(map[uint64]int, associativity),
		head:  noWay,
		tail:  noWay,
	}
}

func (s *lruSet) lookup(tag uint64) (int, bool) {
	i, ok := s.index[tag]
	return i, ok
}

// touch makes slot i the most recently used.
func (s *lruSet) touch(i int) {
	if s.head == i {
		return
	}

	s.unlink(i)
	s.pushFront(i)
}

// insert places tag at the MRU end, evicting the LRU tag when the set is
// full. It must only be called for a tag that is not resident.
func (s *lruSet) insert(tag uint64) (evicted uint64, didEvict bool) {
	var i int
	if s.used < len(s.ways) {
		i = s.used
		s.used++
	} else {
		i = s.tail
		evicted = s.ways[i].tag
		didEvict = true
		s.unlink(i)
		delete(s.index, evicted)
	}

	s.ways[i].tag = tag
	s.pushFront(i)
	s.index[tag] = i

	return evicted, didEvict
}

func (s *lruSet) unlink(i int) {
	prev, next := s.ways[i].prev, s.ways[i].next

	if prev != noWay {
		s.ways[prev].next = next
	} else {
		s.head = next
	}

	if next != noWay {
		s.ways[next].prev = prev
	} else {
		s.tail = prev
	}
}

func (s *lruSet) pushFront(i int) {
	s.ways[i].prev = noWay
	s.ways[i].next = s.head

	if s.head != noWay {
		s.ways[s.head].prev = i
	}
	s.head = i

	if s.tail == noWay {
		s.tail = i
	}
}

// tags lists resident tags from most to least recently used.
func (s *lruSet) tags() []uint64 {
	out := make([]uint64, 0, s.used)
	for i := s.head; i != noWay; i = s.ways[i].next {
		out = append(out, s.ways[i].tag)
	}

	return out
}

func (s *lruSet) reset() {
	clear(s.index)
	s.head = noWay
	s.tail = noWay
	s.used = 0
}
