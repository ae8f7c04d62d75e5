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


package ingestion

import (
	"context"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/poiesic/indexit/cluster"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/journal"
)

// maxErrorDetail bounds error text in log records so a failing cluster
// cannot flood the logs with full response payloads.
const maxErrorDetail = 512

// Executor sends one group of write actions as a single bulk request and
// classifies the fallout per item.
//
// Failure policy: a transport-level failure of the whole request is logged
// and the group is given up (optionally after backoff-retry when configured);
// an item rejected with 429 gets one synchronous single-document retry; any
// other rejected item is assumed to need a content fix, so it is logged with
// its document and journaled, never retried.
type Executor struct {
	client              cluster.Client
	journal             journal.Journal
	transportRetries    int
	transportRetryDelay time.Duration
	logger              *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithJournal records rejected documents for manual remediation.
func WithJournal(j journal.Journal) ExecutorOption {
	return func(e *Executor) {
		if j != nil {
			e.journal = j
		}
	}
}

// WithTransportRetry sets how many attempts a transport-failed bulk request
// gets, with exponential backoff starting at baseDelay. attempts of 1 keeps
// the stock policy: one attempt, no retry.
func WithTransportRetry(attempts int, baseDelay time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.transportRetries = attempts
		e.transportRetryDelay = baseDelay
	}
}

// WithExecutorLogger sets a custom logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an executor writing through the given cluster client.
func NewExecutor(client cluster.Client, opts ...ExecutorOption) (*Executor, error) {
	if client == nil {
		return nil, ErrClusterClientRequired
	}

	e := &Executor{
		client:              client,
		journal:             journal.Nop{},
		transportRetries:    1,
		transportRetryDelay: 1 * time.Second,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.transportRetries < 1 {
		return nil, ErrInvalidMaxAttempts
	}
	e.logger = e.logger.With("component", "executor")

	return e, nil
}

// Write issues one bulk request for the group and returns how many documents
// the cluster accepted. An empty group is a no-op: no request is issued.
// Write never fails the run; everything that goes wrong is logged.
func (e *Executor) Write(ctx context.Context, actions []core.WriteAction) int {
	if len(actions) == 0 {
		return 0
	}

	var items []cluster.BulkItem
	err := RetryWithBackoff(ctx, func() error {
		var bulkErr error
		items, bulkErr = e.client.Bulk(ctx, actions)
		return bulkErr
	}, e.transportRetries, e.transportRetryDelay)
	if err != nil {
		// Whole-request failure. The group is lost; a cluster-wide outage
		// surfaces through log volume, not by aborting the load.
		e.logger.Error("bulk request failed, giving up on group",
			"index", actions[0].Meta.Index,
			"actions", len(actions),
			"err", truncate(err.Error()))
		return 0
	}

	if len(items) != len(actions) {
		e.logger.Error("bulk response item count mismatch",
			"sent", len(actions), "received", len(items))
		if len(items) > len(actions) {
			items = items[:len(actions)]
		}
	}

	written := 0
	for k, item := range items {
		action := actions[k]
		switch {
		case item.Error == nil && item.Status < 300:
			written++
		case item.Status == http.StatusTooManyRequests:
			if e.retryOne(ctx, action) {
				written++
			}
		default:
			e.logger.Error("bulk item rejected",
				"index", action.Meta.Index,
				"id", action.Meta.ID,
				"status", item.Status,
				"reason", truncate(itemReason(item)),
				"doc", map[string]string(action.Doc))
			e.record(ctx, action, item.Status, itemReason(item))
		}
	}
	return written
}

// retryOne re-sends a rate-limited document as a single synchronous write.
// Best effort: its own failure is logged and journaled, never retried again.
func (e *Executor) retryOne(ctx context.Context, action core.WriteAction) bool {
	e.logger.Debug("retrying rate-limited document",
		"index", action.Meta.Index, "id", action.Meta.ID)

	if err := e.client.IndexDocument(ctx, action.Meta.Index, action.Meta.ID, action.Doc); err != nil {
		e.logger.Error("single-document retry failed",
			"index", action.Meta.Index,
			"id", action.Meta.ID,
			"err", truncate(err.Error()))
		e.record(ctx, action, http.StatusTooManyRequests, err.Error())
		return false
	}
	return true
}

// record journals a failed document. Journaling itself is best effort.
func (e *Executor) record(ctx context.Context, action core.WriteAction, status int, reason string) {
	entry := &journal.Entry{
		Index:    action.Meta.Index,
		ID:       action.Meta.ID,
		Status:   status,
		Reason:   truncate(reason),
		Doc:      action.Doc,
		FailedAt: time.Now().UTC(),
	}
	if err := e.journal.Append(ctx, entry); err != nil {
		e.logger.Error("error journaling failed document",
			"id", action.Meta.ID, "err", err)
	}
}

func itemReason(item cluster.BulkItem) string {
	if item.Error == nil {
		return ""
	}
	if item.Error.Type == "" {
		return item.Error.Reason
	}
	return item.Error.Type + ": " + item.Error.Reason
}

func truncate(s string) string {
	if len(s) <= maxErrorDetail {
		return s
	}
	// Back off to a rune boundary so the cut never produces invalid UTF-8.
	cut := maxErrorDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}
