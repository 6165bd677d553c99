package crashreport

import "sync"

// ringBuffer is a bounded, thread-safe buffer for pending reports.
// When full, the oldest reports are dropped to make room for new ones.
type ringBuffer struct {
	mu       sync.Mutex
	reports  []Report
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &ringBuffer{
		reports:  make([]Report, capacity),
		capacity: capacity,
	}
}

// enqueue adds a report, dropping the oldest if necessary.
func (b *ringBuffer) enqueue(r Report) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
	}

	b.reports[b.head] = r
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// dequeueBatch removes up to n reports from the buffer.
func (b *ringBuffer) dequeueBatch(n int) []Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	out := make([]Report, n)
	for i := 0; i < n; i++ {
		out[i] = b.reports[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return out
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *ringBuffer) droppedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
