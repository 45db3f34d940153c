// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/weft/internal/core/domain"

// ArtifactStore defines the interface for content-addressed artifact storage.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactStore interface {
	// Put stores the given bytes and metadata and returns the content digest.
	// Storing identical content is idempotent: the existing identifier is
	// returned and neither the object nor the registry entry is rewritten.
	Put(data []byte, md domain.Metadata) (domain.ArtifactID, error)

	// Get returns the bytes for the given identifier. It returns
	// domain.ErrNotFound if the object is absent and domain.ErrCorruption if
	// the stored bytes no longer match the declared identifier.
	Get(id domain.ArtifactID) ([]byte, error)

	// Exists reports whether the object's bytes are present in the store.
	Exists(id domain.ArtifactID) bool

	// Stat returns the registry entry for the given identifier.
	// Returns domain.ErrNotFound if the registry has no entry.
	Stat(id domain.ArtifactID) (*domain.Entry, error)

	// List returns a snapshot of all registry entries ordered by insertion
	// sequence. Consulted by the cache manager and the integrity validator.
	List() []domain.Entry
}
