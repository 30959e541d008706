package ecs

// freeList is a FIFO ring of free slot indices. The slot that has been free
// the longest is handed out first.
type freeList struct {
	buf  []uint32
	head int
	size int
}

func (q *freeList) Len() int { return q.size }

func (q *freeList) Push(idx uint32) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = idx
	q.size++
}

func (q *freeList) Pop() (uint32, bool) {
	if q.size == 0 {
		return 0, false
	}
	idx := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return idx, true
}

// Reserve makes room for n queued indices without further allocation.
func (q *freeList) Reserve(n int) {
	for len(q.buf) < n {
		q.grow()
	}
}

func (q *freeList) Reset() {
	q.head = 0
	q.size = 0
}

func (q *freeList) grow() {
	n := len(q.buf) * 2
	if n == 0 {
		n = 16
	}
	buf := make([]uint32, n)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
