package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBacklogSnapshotBeforeFull(t *testing.T) {
	b := NewBacklog(5)
	b.Add(Event{SeqNum: 1})
	b.Add(Event{SeqNum: 2})

	snap := b.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, int64(1), snap[0].SeqNum)
	assert.Equal(t, int64(2), snap[1].SeqNum)
	assert.Equal(t, 2, b.Len())
}

func TestBacklogOverwritesOldestWhenFull(t *testing.T) {
	b := NewBacklog(3)
	for i := int64(1); i <= 5; i++ {
		b.Add(Event{SeqNum: i})
	}

	snap := b.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, []int64{3, 4, 5}, []int64{snap[0].SeqNum, snap[1].SeqNum, snap[2].SeqNum})
	assert.Equal(t, 3, b.Len())
}

func TestBacklogSince(t *testing.T) {
	b := NewBacklog(10)
	for i := int64(1); i <= 5; i++ {
		b.Add(Event{SeqNum: i})
	}

	since := b.Since(3)
	assert.Len(t, since, 2)
	assert.Equal(t, int64(4), since[0].SeqNum)
	assert.Equal(t, int64(5), since[1].SeqNum)
}

func TestBacklogNeverBlocksOnOverflow(t *testing.T) {
	b := NewBacklog(2)
	done := make(chan struct{})
	go func() {
		for i := int64(0); i < 1000; i++ {
			b.Add(Event{SeqNum: i})
		}
		close(done)
	}()
	<-done
	assert.Equal(t, 2, b.Len())
}
