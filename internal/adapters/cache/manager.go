// Package cache implements deterministic cache-key derivation and
// lookup/store on top of the artifact store.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ResultCache = (*Manager)(nil)

// Manager implements ports.ResultCache. It owns no state of its own; the
// artifact registry is the single source of truth.
type Manager struct {
	store  ports.ArtifactStore
	logger ports.Logger
}

// NewManager creates a cache manager over the given store.
func NewManager(store ports.ArtifactStore, logger ports.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// DeriveKey hashes the structural fingerprint and the model identifier into a
// deterministic key. The fingerprint excludes data values, so structurally
// identical inputs collapse to the same key across runs.
func (m *Manager) DeriveKey(fp domain.Fingerprint, modelID string) string {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(fp.Kind)
	_, _ = hasher.Write([]byte{0})
	for _, token := range fp.Shape {
		_, _ = hasher.WriteString(token)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator
	_, _ = hasher.WriteString(modelID)

	return fmt.Sprintf("%016x", hasher.Sum64())
}

// Lookup scans the registry for entries with a matching type and cache key.
// Multiple entries can exist for the same key if writers raced; the entry
// with the lowest registry sequence wins (first writer wins). A candidate is
// only a hit if its bytes are actually present in the store: a stale registry
// entry degrades to a miss with a warning, never an error.
func (m *Manager) Lookup(key string, typ domain.ArtifactType) (domain.ArtifactID, bool) {
	if key == "" {
		return "", false
	}

	// List is ordered by insertion sequence, so the first match is the
	// first writer.
	for _, entry := range m.store.List() {
		if entry.Metadata.Type != typ || entry.Metadata.CacheKey != key {
			continue
		}
		if !m.store.Exists(entry.ID) {
			m.logger.Warn(fmt.Sprintf(
				"registry entry %s for cache key %s has no stored object, treating as miss",
				entry.ID.Short(), key,
			))
			continue
		}
		return entry.ID, true
	}
	return "", false
}

// Store serializes the payload and writes it tagged with the cache key.
func (m *Manager) Store(key string, payload any, md domain.Metadata) (domain.ArtifactID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", zerr.Wrap(err, "failed to serialize cache payload")
	}

	md.CacheKey = key
	id, err := m.store.Put(data, md)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to store cache entry"), "cache_key", key)
	}
	return id, nil
}
