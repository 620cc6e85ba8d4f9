package bus

import "sync"

// replayRing is a bounded buffer holding the most recent envelopes so late
// subscribers catch up before going live. When full, the oldest envelope is
// dropped to make room.
type replayRing struct {
	mu       sync.Mutex
	items    []Envelope
	head     int // next write position
	tail     int // oldest item
	count    int
	capacity int
}

func newReplayRing(capacity int) *replayRing {
	if capacity <= 0 {
		capacity = 10 // default replay depth
	}
	return &replayRing{
		items:    make([]Envelope, capacity),
		capacity: capacity,
	}
}

// add appends an envelope, dropping the oldest if necessary.
func (r *replayRing) add(env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count >= r.capacity {
		r.tail = (r.tail + 1) % r.capacity
		r.count--
	}
	r.items[r.head] = env
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// snapshot returns the buffered envelopes oldest first.
func (r *replayRing) snapshot() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Envelope, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(r.tail+i)%r.capacity]
	}
	return out
}

func (r *replayRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
