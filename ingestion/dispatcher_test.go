package ingestion

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/indexit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingWriter tracks how many Write calls are in flight simultaneously.
type countingWriter struct {
	mu       sync.Mutex
	calls    [][]core.WriteAction
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (w *countingWriter) Write(_ context.Context, actions []core.WriteAction) int {
	cur := w.inFlight.Add(1)
	for {
		seen := w.maxSeen.Load()
		if cur <= seen || w.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if w.delay > 0 {
		time.Sleep(w.delay)
	}

	w.mu.Lock()
	w.calls = append(w.calls, actions)
	w.mu.Unlock()

	w.inFlight.Add(-1)
	return len(actions)
}

func TestNewDispatcher_Validation(t *testing.T) {
	w := &countingWriter{}

	_, err := NewDispatcher(nil, 10, 2)
	assert.ErrorIs(t, err, ErrChunkWriterRequired)

	_, err = NewDispatcher(w, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = NewDispatcher(w, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidMaxInFlight)
}

func TestDispatch_RespectsInFlightCap(t *testing.T) {
	w := &countingWriter{delay: 10 * time.Millisecond}
	d, err := NewDispatcher(w, 1000, 2)
	require.NoError(t, err)
	defer d.Release()

	written := d.Dispatch(context.Background(), makeActions(25000))

	assert.Equal(t, 25000, written)
	assert.Len(t, w.calls, 25, "25000 actions at chunk size 1000")
	assert.LessOrEqual(t, w.maxSeen.Load(), int32(2), "never more than 2 bulk calls outstanding")
	assert.GreaterOrEqual(t, w.maxSeen.Load(), int32(2), "the cap should actually be used")
}

func TestDispatch_ThreeChunksScenario(t *testing.T) {
	w := &countingWriter{delay: 5 * time.Millisecond}
	d, err := NewDispatcher(w, 10000, 2)
	require.NoError(t, err)
	defer d.Release()

	written := d.Dispatch(context.Background(), makeActions(25000))

	assert.Equal(t, 25000, written)
	assert.Len(t, w.calls, 3)
	assert.LessOrEqual(t, w.maxSeen.Load(), int32(2))
}

func TestDispatch_SequentialWhenCapIsOne(t *testing.T) {
	w := &countingWriter{}
	d, err := NewDispatcher(w, 10, 1)
	require.NoError(t, err)
	defer d.Release()

	actions := makeActions(47)
	written := d.Dispatch(context.Background(), actions)

	assert.Equal(t, 47, written)
	require.Len(t, w.calls, 5)
	assert.Equal(t, int32(1), w.maxSeen.Load())

	// With a cap of 1 chunks complete in submission order, so concatenating
	// the calls reconstructs the batch exactly.
	var rebuilt []core.WriteAction
	for _, call := range w.calls {
		rebuilt = append(rebuilt, call...)
	}
	assert.Equal(t, actions, rebuilt)
}

func TestDispatch_EmptyBatch(t *testing.T) {
	w := &countingWriter{}
	d, err := NewDispatcher(w, 10, 2)
	require.NoError(t, err)
	defer d.Release()

	assert.Zero(t, d.Dispatch(context.Background(), nil))
	assert.Empty(t, w.calls)
}

// doublingTransformer duplicates every action, standing in for a one-to-many
// enrichment.
type doublingTransformer struct {
	calls atomic.Int32
	extra map[string]any
}

func (tr *doublingTransformer) Transform(actions []core.WriteAction, extra map[string]any) []core.WriteAction {
	tr.calls.Add(1)
	tr.extra = extra
	out := make([]core.WriteAction, 0, 2*len(actions))
	for _, a := range actions {
		out = append(out, a, a)
	}
	return out
}

func TestDispatch_TransformRunsOncePerChunk(t *testing.T) {
	w := &countingWriter{}
	tr := &doublingTransformer{}
	extra := map[string]any{"region": "eu"}

	d, err := NewDispatcher(w, 10, 1, WithTransform(tr, extra))
	require.NoError(t, err)
	defer d.Release()

	written := d.Dispatch(context.Background(), makeActions(25))

	assert.Equal(t, int32(3), tr.calls.Load(), "one transform per chunk")
	assert.Equal(t, 50, written, "transform output is what gets written")
	assert.Equal(t, extra, tr.extra)
}
