package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	items := make([]int, 60)
	for i := range items {
		items[i] = i
	}

	batches := Chunk(items, DYNAMODB_BATCH_SIZE)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 25)
	assert.Len(t, batches[2], 10)
	assert.Equal(t, 59, batches[2][9])
}

func TestChunkEdgeCases(t *testing.T) {
	assert.Nil(t, Chunk([]string{}, 5))
	assert.Nil(t, Chunk([]string{"a"}, 0))
	assert.Equal(t, [][]string{{"a", "b"}}, Chunk([]string{"a", "b"}, 5))
}
