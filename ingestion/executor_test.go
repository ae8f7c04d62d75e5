package ingestion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/poiesic/indexit/cluster"
	"github.com/poiesic/indexit/cluster/mock"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memJournal collects entries in memory for assertions.
type memJournal struct {
	entries []*journal.Entry
}

func (j *memJournal) Append(_ context.Context, entry *journal.Entry) error {
	j.entries = append(j.entries, entry)
	return nil
}

func (j *memJournal) ForEach(_ context.Context, fn func(*journal.Entry) error) error {
	for _, entry := range j.entries {
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

func (j *memJournal) Close() error { return nil }

func TestNewExecutor_RequiresClient(t *testing.T) {
	_, err := NewExecutor(nil)
	assert.ErrorIs(t, err, ErrClusterClientRequired)
}

func TestExecutorWrite_EmptyGroupIsNoop(t *testing.T) {
	client := mock.NewClient()
	e, err := NewExecutor(client)
	require.NoError(t, err)

	written := e.Write(context.Background(), nil)

	assert.Zero(t, written)
	assert.Empty(t, client.BulkCalls, "no request for an empty group")
}

func TestExecutorWrite_AllAccepted(t *testing.T) {
	client := mock.NewClient()
	e, err := NewExecutor(client)
	require.NoError(t, err)

	written := e.Write(context.Background(), makeActions(5))

	assert.Equal(t, 5, written)
	require.Len(t, client.BulkCalls, 1)
	assert.Len(t, client.BulkCalls[0].Actions, 5)
}

func TestExecutorWrite_TransportFailureSwallowed(t *testing.T) {
	client := mock.NewClient()
	client.BulkFunc = func(context.Context, []core.WriteAction) ([]cluster.BulkItem, error) {
		return nil, errors.New("connection refused")
	}
	e, err := NewExecutor(client)
	require.NoError(t, err)

	written := e.Write(context.Background(), makeActions(3))

	assert.Zero(t, written, "the group is given up")
	assert.Len(t, client.BulkCalls, 1, "no retry by default")
	assert.Empty(t, client.SingleWrites)
}

func TestExecutorWrite_TransportRetryWhenConfigured(t *testing.T) {
	var attempts atomic.Int32
	client := mock.NewClient()
	client.BulkFunc = func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("connection reset")
		}
		items := make([]cluster.BulkItem, len(actions))
		for k, action := range actions {
			items[k] = cluster.BulkItem{ID: action.Meta.ID, Status: 201}
		}
		return items, nil
	}
	e, err := NewExecutor(client, WithTransportRetry(3, time.Millisecond))
	require.NoError(t, err)

	written := e.Write(context.Background(), makeActions(4))

	assert.Equal(t, 4, written)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestExecutorWrite_RateLimitedItemRetriedOnce(t *testing.T) {
	client := mock.NewClient()
	client.BulkFunc = func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
		items := make([]cluster.BulkItem, len(actions))
		for k, action := range actions {
			items[k] = cluster.BulkItem{ID: action.Meta.ID, Status: 201}
		}
		items[1].Status = http.StatusTooManyRequests
		items[1].Error = &cluster.ItemError{Type: "es_rejected_execution_exception", Reason: "queue full"}
		return items, nil
	}
	j := &memJournal{}
	e, err := NewExecutor(client, WithJournal(j))
	require.NoError(t, err)

	actions := makeActions(3)
	written := e.Write(context.Background(), actions)

	assert.Equal(t, 3, written, "retried document counts as accepted")
	require.Len(t, client.SingleWrites, 1)
	assert.Equal(t, actions[1].Meta.ID, client.SingleWrites[0].ID)
	assert.Equal(t, actions[1].Meta.Index, client.SingleWrites[0].Index)
	assert.Equal(t, actions[1].Doc, client.SingleWrites[0].Doc)
	assert.Empty(t, j.entries, "a successful retry is not journaled")
}

func TestExecutorWrite_FailedRetryJournaled(t *testing.T) {
	client := mock.NewClient()
	client.BulkFunc = func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
		return []cluster.BulkItem{{ID: actions[0].Meta.ID, Status: http.StatusTooManyRequests}}, nil
	}
	client.IndexDocumentFunc = func(context.Context, string, string, core.Record) error {
		return errors.New("still overloaded")
	}
	j := &memJournal{}
	e, err := NewExecutor(client, WithJournal(j))
	require.NoError(t, err)

	actions := makeActions(1)
	written := e.Write(context.Background(), actions)

	assert.Zero(t, written)
	assert.Len(t, client.SingleWrites, 1, "exactly one retry, never more")
	require.Len(t, j.entries, 1)
	assert.Equal(t, actions[0].Meta.ID, j.entries[0].ID)
	assert.Equal(t, http.StatusTooManyRequests, j.entries[0].Status)
}

func TestExecutorWrite_RejectedItemJournaledNotRetried(t *testing.T) {
	client := mock.NewClient()
	client.BulkFunc = func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
		items := make([]cluster.BulkItem, len(actions))
		for k, action := range actions {
			items[k] = cluster.BulkItem{ID: action.Meta.ID, Status: 201}
		}
		items[0].Status = http.StatusBadRequest
		items[0].Error = &cluster.ItemError{Type: "mapper_parsing_exception", Reason: "failed to parse field"}
		return items, nil
	}
	j := &memJournal{}
	e, err := NewExecutor(client, WithJournal(j))
	require.NoError(t, err)

	actions := makeActions(2)
	written := e.Write(context.Background(), actions)

	assert.Equal(t, 1, written, "the rest of the group still lands")
	assert.Empty(t, client.SingleWrites, "content failures are never retried")
	require.Len(t, j.entries, 1)
	assert.Equal(t, actions[0].Meta.ID, j.entries[0].ID)
	assert.Equal(t, http.StatusBadRequest, j.entries[0].Status)
	assert.Contains(t, j.entries[0].Reason, "mapper_parsing_exception")
	assert.Equal(t, actions[0].Doc, j.entries[0].Doc)
}

func TestExecutorWrite_ConflictDoesNotAbort(t *testing.T) {
	client := mock.NewClient()
	client.BulkFunc = func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
		items := make([]cluster.BulkItem, len(actions))
		for k, action := range actions {
			items[k] = cluster.BulkItem{ID: action.Meta.ID, Status: 201}
		}
		items[2].Status = http.StatusConflict
		items[2].Error = &cluster.ItemError{Type: "version_conflict_engine_exception", Reason: "document already exists"}
		return items, nil
	}
	e, err := NewExecutor(client)
	require.NoError(t, err)

	written := e.Write(context.Background(), makeActions(5))

	assert.Equal(t, 4, written)
	assert.Empty(t, client.SingleWrites, "conflicts are not timing failures")
}

func TestExecutorWrite_ItemCountMismatchTolerated(t *testing.T) {
	client := mock.NewClient()
	client.BulkFunc = func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
		return []cluster.BulkItem{{ID: actions[0].Meta.ID, Status: 201}}, nil
	}
	e, err := NewExecutor(client)
	require.NoError(t, err)

	written := e.Write(context.Background(), makeActions(3))

	assert.Equal(t, 1, written, "only correlated items are counted")
}

func TestTruncate(t *testing.T) {
	short := "small failure"
	assert.Equal(t, short, truncate(short))

	long := make([]byte, maxErrorDetail+100)
	for i := range long {
		long[i] = 'x'
	}
	got := truncate(string(long))
	assert.Len(t, got, maxErrorDetail+len("...(truncated)"))
	assert.Contains(t, got, "truncated")
}

func TestTruncate_RuneBoundary(t *testing.T) {
	long := strings.Repeat("é", maxErrorDetail)

	got := truncate(long)

	assert.True(t, utf8.ValidString(got), "cut must land on a rune boundary")
	assert.Less(t, len(got), len(long))
	assert.Contains(t, got, "truncated")
}
