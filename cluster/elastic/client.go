// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package elastic

import (
	"context"
	"fmt"

	elastic "github.com/olivere/elastic/v7"
	"github.com/poiesic/indexit/cluster"
	"github.com/poiesic/indexit/core"
)

// Client implements cluster.Client against an Elasticsearch 7.x cluster.
type Client struct {
	es *elastic.Client
}

var _ cluster.Client = (*Client)(nil)

// Option configures the underlying Elasticsearch client.
type Option func(*options)

type options struct {
	username string
	password string
	sniff    bool
}

// WithBasicAuth sets basic authentication credentials.
func WithBasicAuth(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithSniffing enables node sniffing. Off by default so the client works
// against clusters behind a load balancer or a single reachable node.
func WithSniffing() Option {
	return func(o *options) {
		o.sniff = true
	}
}

// Connect creates a client for the cluster at url.
func Connect(url string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetSniff(o.sniff),
	}
	if o.username != "" {
		clientOpts = append(clientOpts, elastic.SetBasicAuth(o.username, o.password))
	}

	es, err := elastic.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to cluster at %s: %w", url, err)
	}
	return &Client{es: es}, nil
}

// CreateIndex creates an index, optionally with mappings and settings.
func (c *Client) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	svc := c.es.CreateIndex(name)
	if body != nil {
		svc = svc.BodyJson(body)
	}
	resp, err := svc.Do(ctx)
	if err != nil {
		return err
	}
	if !resp.Acknowledged {
		return fmt.Errorf("create index %s: %w", name, cluster.ErrNotAcknowledged)
	}
	return nil
}

// Bulk writes all actions in a single _bulk request. The returned items are
// aligned with the submitted actions: olivere preserves response order, one
// item per action.
func (c *Client) Bulk(ctx context.Context, actions []core.WriteAction) ([]cluster.BulkItem, error) {
	bulk := c.es.Bulk()
	for _, action := range actions {
		bulk = bulk.Add(elastic.NewBulkIndexRequest().
			Index(action.Meta.Index).
			Id(action.Meta.ID).
			Doc(action.Doc))
	}

	resp, err := bulk.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Items) != len(actions) {
		return nil, fmt.Errorf("%w: sent %d, received %d",
			cluster.ErrItemCountMismatch, len(actions), len(resp.Items))
	}

	items := make([]cluster.BulkItem, len(resp.Items))
	for k, raw := range resp.Items {
		// Each response entry is keyed by the action type.
		item, ok := raw[core.OpIndex]
		if !ok {
			return nil, fmt.Errorf("%w: item %d has no %q result",
				cluster.ErrItemCountMismatch, k, core.OpIndex)
		}
		items[k] = cluster.BulkItem{
			ID:     item.Id,
			Status: item.Status,
		}
		if item.Error != nil {
			items[k].Error = &cluster.ItemError{
				Type:   item.Error.Type,
				Reason: item.Error.Reason,
			}
		}
	}
	return items, nil
}

// IndexDocument writes a single document.
func (c *Client) IndexDocument(ctx context.Context, index, id string, doc core.Record) error {
	_, err := c.es.Index().
		Index(index).
		Id(id).
		BodyJson(doc).
		Do(ctx)
	return err
}

// AliasedIndices returns the indices currently bound to the alias.
func (c *Client) AliasedIndices(ctx context.Context, alias string) ([]string, error) {
	resp, err := c.es.Aliases().Alias(alias).Do(ctx)
	if err != nil {
		if elastic.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.IndicesByAlias(alias), nil
}

// UpdateAliases applies all add and remove bindings in one _aliases call,
// which the cluster executes atomically.
func (c *Client) UpdateAliases(ctx context.Context, add, remove []cluster.AliasBinding) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}

	svc := c.es.Alias()
	for _, b := range remove {
		svc = svc.Action(elastic.NewAliasRemoveAction(b.Alias).Index(b.Index))
	}
	for _, b := range add {
		svc = svc.Action(elastic.NewAliasAddAction(b.Alias).Index(b.Index))
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return err
	}
	if !resp.Acknowledged {
		return fmt.Errorf("update aliases: %w", cluster.ErrNotAcknowledged)
	}
	return nil
}

// UpdateSettings updates dynamic settings on an existing index.
func (c *Client) UpdateSettings(ctx context.Context, index string, settings map[string]any) error {
	resp, err := c.es.IndexPutSettings(index).
		BodyJson(map[string]any{"index": settings}).
		Do(ctx)
	if err != nil {
		return err
	}
	if !resp.Acknowledged {
		return fmt.Errorf("update settings on %s: %w", index, cluster.ErrNotAcknowledged)
	}
	return nil
}

// IndexNames returns the indices whose names match the pattern.
func (c *Client) IndexNames(ctx context.Context, pattern string) ([]string, error) {
	rows, err := c.es.CatIndices().Index(pattern).Columns("index").Do(ctx)
	if err != nil {
		if elastic.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Index)
	}
	return names, nil
}

// DeleteIndices deletes the named indices.
func (c *Client) DeleteIndices(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	resp, err := c.es.DeleteIndex(names...).Do(ctx)
	if err != nil {
		return err
	}
	if !resp.Acknowledged {
		return fmt.Errorf("delete indices: %w", cluster.ErrNotAcknowledged)
	}
	return nil
}
