package indexit

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/poiesic/indexit/cluster/mock"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ingestion"
	"github.com/poiesic/indexit/rollover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	records []core.Record
	pos     int
}

func (s *fixedSource) Next(_ context.Context, max int) ([]core.Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	end := min(s.pos+max, len(s.records))
	group := s.records[s.pos:end]
	s.pos = end
	if s.pos == len(s.records) {
		return group, io.EOF
	}
	return group, nil
}

func (s *fixedSource) Close() error { return nil }

func newFixedSource(n int) *fixedSource {
	s := &fixedSource{}
	for i := 0; i < n; i++ {
		s.records = append(s.records, core.Record{"isbn": fmt.Sprintf("isbn-%d", i)})
	}
	return s
}

func TestNewLoader_Validation(t *testing.T) {
	client := mock.NewClient()

	_, err := NewLoader(client, newFixedSource(1), rollover.NewConfig("", "7"), "isbn", core.RunModeStaging)
	assert.ErrorIs(t, err, rollover.ErrAliasRequired)

	_, err = NewLoader(client, newFixedSource(1), rollover.NewConfig("books", "7"), "", core.RunModeStaging)
	assert.ErrorIs(t, err, ingestion.ErrIdentifierColumnRequired)
}

func TestLoader_StagingRunThenPromote(t *testing.T) {
	client := mock.NewClient()
	loader, err := NewLoader(client, newFixedSource(12), rollover.NewConfig("books", "7"), "isbn", core.RunModeStaging,
		WithIngestionConfig(&ingestion.Config{ChunkSize: 5, MaxInFlight: 2, TransportRetries: 1, TransportRetryDelay: 1}))
	require.NoError(t, err)
	defer loader.Release()

	ctx := context.Background()
	stats, err := loader.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 12, stats.Consumed)
	assert.Equal(t, 12, stats.Indexed)
	assert.True(t, strings.HasPrefix(stats.Generation, "books-v7-"))
	assert.Empty(t, client.AliasUpdates, "staging run leaves the alias alone")

	require.NoError(t, loader.Promote(ctx, stats.Generation))

	require.Len(t, client.AliasUpdates, 1)
	assert.Equal(t, stats.Generation, client.AliasUpdates[0].Add[0].Index)
}

func TestLoader_Generations(t *testing.T) {
	client := mock.NewClient()
	client.IndexNamesFunc = func(_ context.Context, pattern string) ([]string, error) {
		assert.Equal(t, "books-v*", pattern)
		return []string{"books-v7-1700000100", "books-v6-1700000000"}, nil
	}

	loader, err := NewLoader(client, newFixedSource(1), rollover.NewConfig("books", "7"), "isbn", core.RunModeStaging)
	require.NoError(t, err)
	defer loader.Release()

	names, err := loader.Generations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"books-v6-1700000000", "books-v7-1700000100"}, names)
}
