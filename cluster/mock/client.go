package mock

import (
	"context"
	"sync"

	"github.com/poiesic/indexit/cluster"
	"github.com/poiesic/indexit/core"
)

// Client is a test double for cluster.Client.
// It allows custom behavior injection via function fields and records every
// call so tests can assert on ordering and payloads. The zero value succeeds
// on every operation.
type Client struct {
	mu sync.Mutex

	// CreateIndexFunc is called by CreateIndex if set.
	CreateIndexFunc func(ctx context.Context, name string, body map[string]any) error

	// BulkFunc is called by Bulk if set. If nil, every action is reported
	// accepted with status 201.
	BulkFunc func(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error)

	// IndexDocumentFunc is called by IndexDocument if set.
	IndexDocumentFunc func(ctx context.Context, index, id string, doc core.Record) error

	// AliasedIndicesFunc is called by AliasedIndices if set.
	AliasedIndicesFunc func(ctx context.Context, alias string) ([]string, error)

	// UpdateAliasesFunc is called by UpdateAliases if set.
	UpdateAliasesFunc func(ctx context.Context, add, remove []cluster.AliasBinding) error

	// UpdateSettingsFunc is called by UpdateSettings if set.
	UpdateSettingsFunc func(ctx context.Context, index string, settings map[string]any) error

	// IndexNamesFunc is called by IndexNames if set.
	IndexNamesFunc func(ctx context.Context, pattern string) ([]string, error)

	// DeleteIndicesFunc is called by DeleteIndices if set.
	DeleteIndicesFunc func(ctx context.Context, names ...string) error

	// Recorded calls, in order.
	CreatedIndices  []CreateIndexCall
	BulkCalls       []BulkCall
	SingleWrites    []SingleWriteCall
	AliasUpdates    []AliasUpdateCall
	SettingsUpdates []SettingsUpdateCall
	DeletedIndices  [][]string
}

var _ cluster.Client = (*Client)(nil)

// CreateIndexCall records one CreateIndex invocation.
type CreateIndexCall struct {
	Name string
	Body map[string]any
}

// BulkCall records one Bulk invocation.
type BulkCall struct {
	Actions []core.WriteAction
}

// SingleWriteCall records one IndexDocument invocation.
type SingleWriteCall struct {
	Index string
	ID    string
	Doc   core.Record
}

// AliasUpdateCall records one UpdateAliases invocation.
type AliasUpdateCall struct {
	Add    []cluster.AliasBinding
	Remove []cluster.AliasBinding
}

// SettingsUpdateCall records one UpdateSettings invocation.
type SettingsUpdateCall struct {
	Index    string
	Settings map[string]any
}

// NewClient creates a mock client that succeeds on every operation.
func NewClient() *Client {
	return &Client{}
}

func (m *Client) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	m.mu.Lock()
	m.CreatedIndices = append(m.CreatedIndices, CreateIndexCall{Name: name, Body: body})
	m.mu.Unlock()

	if m.CreateIndexFunc != nil {
		return m.CreateIndexFunc(ctx, name, body)
	}
	return nil
}

func (m *Client) Bulk(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
	m.mu.Lock()
	m.BulkCalls = append(m.BulkCalls, BulkCall{Actions: actions})
	m.mu.Unlock()

	if m.BulkFunc != nil {
		return m.BulkFunc(ctx, actions)
	}

	items := make([]cluster.BulkItem, len(actions))
	for k, action := range actions {
		items[k] = cluster.BulkItem{ID: action.Meta.ID, Status: 201}
	}
	return items, nil
}

func (m *Client) IndexDocument(ctx context.Context, index, id string, doc core.Record) error {
	m.mu.Lock()
	m.SingleWrites = append(m.SingleWrites, SingleWriteCall{Index: index, ID: id, Doc: doc})
	m.mu.Unlock()

	if m.IndexDocumentFunc != nil {
		return m.IndexDocumentFunc(ctx, index, id, doc)
	}
	return nil
}

func (m *Client) AliasedIndices(ctx context.Context, alias string) ([]string, error) {
	if m.AliasedIndicesFunc != nil {
		return m.AliasedIndicesFunc(ctx, alias)
	}
	return nil, nil
}

func (m *Client) UpdateAliases(ctx context.Context, add, remove []cluster.AliasBinding) error {
	m.mu.Lock()
	m.AliasUpdates = append(m.AliasUpdates, AliasUpdateCall{Add: add, Remove: remove})
	m.mu.Unlock()

	if m.UpdateAliasesFunc != nil {
		return m.UpdateAliasesFunc(ctx, add, remove)
	}
	return nil
}

func (m *Client) UpdateSettings(ctx context.Context, index string, settings map[string]any) error {
	m.mu.Lock()
	m.SettingsUpdates = append(m.SettingsUpdates, SettingsUpdateCall{Index: index, Settings: settings})
	m.mu.Unlock()

	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(ctx, index, settings)
	}
	return nil
}

func (m *Client) IndexNames(ctx context.Context, pattern string) ([]string, error) {
	if m.IndexNamesFunc != nil {
		return m.IndexNamesFunc(ctx, pattern)
	}
	return nil, nil
}

func (m *Client) DeleteIndices(ctx context.Context, names ...string) error {
	m.mu.Lock()
	m.DeletedIndices = append(m.DeletedIndices, names)
	m.mu.Unlock()

	if m.DeleteIndicesFunc != nil {
		return m.DeleteIndicesFunc(ctx, names...)
	}
	return nil
}
