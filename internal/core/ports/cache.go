package ports

import "go.trai.ch/weft/internal/core/domain"

// ResultCache defines deterministic cache-key derivation and lookup/store over
// the artifact store.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ResultCache interface {
	// DeriveKey derives a deterministic key from a structural fingerprint and
	// the computing model's identifier. Pure: identical arguments always yield
	// the identical key.
	DeriveKey(fp domain.Fingerprint, modelID string) string

	// Lookup resolves a key to an artifact of the given type. A hit is only
	// declared after re-verifying the artifact exists in the store; registry
	// divergence silently degrades to a miss.
	Lookup(key string, typ domain.ArtifactType) (domain.ArtifactID, bool)

	// Store serializes the payload and writes it tagged with the cache key.
	Store(key string, payload any, md domain.Metadata) (domain.ArtifactID, error)
}
