package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplayRing_DropOldest(t *testing.T) {
	r := newReplayRing(3)
	for i := uint64(1); i <= 5; i++ {
		r.add(Envelope{Seq: i})
	}

	assert.Equal(t, 3, r.len())
	snap := r.snapshot()
	assert.Equal(t, []uint64{3, 4, 5}, []uint64{snap[0].Seq, snap[1].Seq, snap[2].Seq})
}

func TestReplayRing_SnapshotOfPartialFill(t *testing.T) {
	r := newReplayRing(4)
	r.add(Envelope{Seq: 1})
	r.add(Envelope{Seq: 2})

	snap := r.snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, uint64(1), snap[0].Seq)
	assert.Equal(t, uint64(2), snap[1].Seq)
}

func TestReplayRing_ZeroCapacityGetsDefault(t *testing.T) {
	r := newReplayRing(0)
	for i := uint64(1); i <= 15; i++ {
		r.add(Envelope{Seq: i})
	}
	assert.Equal(t, 10, r.len())
	assert.Equal(t, uint64(6), r.snapshot()[0].Seq)
}
