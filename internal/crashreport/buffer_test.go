package crashreport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_FIFO(t *testing.T) {
	b := newRingBuffer(4)
	for i := 0; i < 3; i++ {
		b.enqueue(Report{Message: fmt.Sprintf("r%d", i)})
	}

	batch := b.dequeueBatch(2)
	assert.Len(t, batch, 2)
	assert.Equal(t, "r0", batch[0].Message)
	assert.Equal(t, "r1", batch[1].Message)
	assert.Equal(t, 1, b.len())
}

func TestRingBuffer_OverflowDropsOldest(t *testing.T) {
	b := newRingBuffer(2)
	b.enqueue(Report{Message: "r0"})
	b.enqueue(Report{Message: "r1"})
	b.enqueue(Report{Message: "r2"})

	assert.Equal(t, int64(1), b.droppedCount())

	batch := b.dequeueBatch(10)
	assert.Len(t, batch, 2)
	assert.Equal(t, "r1", batch[0].Message)
	assert.Equal(t, "r2", batch[1].Message)
}

func TestRingBuffer_EmptyDequeue(t *testing.T) {
	b := newRingBuffer(2)
	assert.Nil(t, b.dequeueBatch(5))
}
