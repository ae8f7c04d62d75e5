package ingestion

import (
	"fmt"
	"testing"

	"github.com/poiesic/indexit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeActions(n int) []core.WriteAction {
	actions := make([]core.WriteAction, n)
	for i := range actions {
		actions[i] = core.WriteAction{
			Meta: core.ActionMeta{Op: core.OpIndex, ID: fmt.Sprintf("doc-%d", i), Index: "books-v1-1"},
			Doc:  core.Record{"id": fmt.Sprintf("doc-%d", i)},
		}
	}
	return actions
}

func TestChunks_CeilCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{n: 1, size: 10, want: 1},
		{n: 10, size: 10, want: 1},
		{n: 11, size: 10, want: 2},
		{n: 25000, size: 10000, want: 3},
		{n: 30000, size: 10000, want: 3},
	}

	for _, tt := range tests {
		chunks := Chunks(makeActions(tt.n), tt.size)
		assert.Len(t, chunks, tt.want, "n=%d size=%d", tt.n, tt.size)
	}
}

func TestChunks_Empty(t *testing.T) {
	assert.Nil(t, Chunks(nil, 10))
	assert.Nil(t, Chunks([]core.WriteAction{}, 10))
}

func TestChunks_SmallBatchSingleChunk(t *testing.T) {
	actions := makeActions(5)
	chunks := Chunks(actions, 10000)

	require.Len(t, chunks, 1)
	assert.Equal(t, actions, chunks[0])
}

func TestChunks_ReconstructsOriginal(t *testing.T) {
	actions := makeActions(47)
	chunks := Chunks(actions, 10)

	var rebuilt []core.WriteAction
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 10)
		rebuilt = append(rebuilt, chunk...)
	}
	assert.Equal(t, actions, rebuilt, "concatenated chunks must equal the input sequence")
}
