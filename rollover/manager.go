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


package rollover

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/poiesic/indexit/cluster"
)

// Manager creates index generations and promotes them to the stable alias.
//
// A generation starts as a plain index with a unique name; readers keep
// resolving the alias to the previous generation while the new one loads.
// Finalize swaps the alias in one atomic action set and prunes old
// generations down to a single rollback copy.
type Manager struct {
	client cluster.Client
	config *Config
	now    func() time.Time
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets a custom logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// withClock overrides the clock used for generation names. Tests only.
func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a generation manager for the alias named in config.
func NewManager(client cluster.Client, config *Config, opts ...ManagerOption) (*Manager, error) {
	if client == nil {
		return nil, ErrClusterClientRequired
	}
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		client: client,
		config: config,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "rollover", "alias", config.Alias)

	return m, nil
}

// Create allocates a new generation: a uniquely named index carrying
// indexing-optimized transient settings (no periodic refresh, no replicas)
// with any configured mappings and settings layered on top. The new
// generation is not reachable through the alias until Finalize.
func (m *Manager) Create(ctx context.Context) (string, error) {
	name := GenerationName(m.config.Alias, m.config.Version, m.now())

	settings := map[string]any{
		"refresh_interval":   "-1",
		"number_of_replicas": 0,
	}
	maps.Copy(settings, m.config.Settings)

	body := map[string]any{"settings": map[string]any{"index": settings}}
	if m.config.Mappings != nil {
		body["mappings"] = m.config.Mappings
	}

	if err := m.client.CreateIndex(ctx, name, body); err != nil {
		return "", fmt.Errorf("creating generation %s: %w", name, err)
	}

	m.logger.Info("created generation", "generation", name)
	return name, nil
}

// Finalize promotes a loaded generation: restore production settings, swap
// the alias over in one atomic action set, and prune old generations,
// keeping exactly one prior generation as a manual rollback target.
//
// Finalizing a generation the alias already points at is a no-op with
// respect to the binding; pruning still runs.
func (m *Manager) Finalize(ctx context.Context, generation string) error {
	bound, err := m.client.AliasedIndices(ctx, m.config.Alias)
	if err != nil {
		return fmt.Errorf("resolving alias %s: %w", m.config.Alias, err)
	}

	settings := map[string]any{
		"refresh_interval":   m.config.RefreshInterval,
		"number_of_replicas": m.config.Replicas,
	}
	if err := m.client.UpdateSettings(ctx, generation, settings); err != nil {
		return fmt.Errorf("restoring settings on %s: %w", generation, err)
	}

	add := []cluster.AliasBinding{{Index: generation, Alias: m.config.Alias}}
	var remove []cluster.AliasBinding
	for _, index := range bound {
		if index == generation {
			continue
		}
		remove = append(remove, cluster.AliasBinding{Index: index, Alias: m.config.Alias})
	}
	if err := m.client.UpdateAliases(ctx, add, remove); err != nil {
		return fmt.Errorf("swapping alias %s to %s: %w", m.config.Alias, generation, err)
	}
	superseded := make([]string, len(remove))
	for i, b := range remove {
		superseded[i] = b.Index
	}
	m.logger.Info("alias swapped", "generation", generation, "superseded", superseded)

	return m.prune(ctx, generation)
}

// Generations returns every generation of this alias present on the
// cluster, oldest first.
func (m *Manager) Generations(ctx context.Context) ([]string, error) {
	names, err := m.client.IndexNames(ctx, GenerationPrefix(m.config.Alias)+"*")
	if err != nil {
		return nil, fmt.Errorf("listing generations of %s: %w", m.config.Alias, err)
	}
	SortGenerations(names)
	return names, nil
}

// prune deletes old generations, retaining the single most recent one
// besides current as a rollback copy.
func (m *Manager) prune(ctx context.Context, current string) error {
	names, err := m.Generations(ctx)
	if err != nil {
		return err
	}

	var older []string
	for _, name := range names {
		if name != current {
			older = append(older, name)
		}
	}
	if len(older) <= 1 {
		return nil
	}

	doomed := older[:len(older)-1]
	if err := m.client.DeleteIndices(ctx, doomed...); err != nil {
		return fmt.Errorf("pruning generations: %w", err)
	}
	m.logger.Info("pruned old generations",
		"deleted", doomed, "rollback", older[len(older)-1])
	return nil
}
