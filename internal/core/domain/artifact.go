// Package domain contains the core domain models for the provenance-tracked
// pipeline: artifacts, tasks, completions and the dependency relation between
// stored artifacts.
package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// ArtifactID is the content digest of an artifact, lowercase hex SHA-256.
// Identical content always yields the identical identifier.
type ArtifactID string

// Short returns a truncated identifier suitable for log output.
func (id ArtifactID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12])
}

// ArtifactType tags the schema variant of an artifact's metadata.
type ArtifactType string

const (
	// TypeRaw is an ingested input blob with no derivation history.
	TypeRaw ArtifactType = "raw"
	// TypeAnalysis is the result of a first-tier analysis task.
	TypeAnalysis ArtifactType = "analysis"
	// TypeSynthesis is the aggregation of a run's analyses into one account.
	TypeSynthesis ArtifactType = "synthesis"
	// TypeDerivedMetrics is a cached derived-metrics result, addressable by
	// cache key.
	TypeDerivedMetrics ArtifactType = "derived-metrics"
	// TypeReview is a peer-review result (opening or response).
	TypeReview ArtifactType = "review"
	// TypeModeration is the final moderation result of a run.
	TypeModeration ArtifactType = "moderation"
	// TypeAuditTrail is the ordered event log of a pipeline run, committed as
	// an ordinary artifact for reproducibility.
	TypeAuditTrail ArtifactType = "audit-trail"
)

// Valid reports whether t is a known artifact type.
func (t ArtifactType) Valid() bool {
	switch t {
	case TypeRaw, TypeAnalysis, TypeSynthesis, TypeDerivedMetrics, TypeReview, TypeModeration, TypeAuditTrail:
		return true
	}
	return false
}

// Metadata carries the schema variant of an artifact. The registry validates it
// at the store boundary so downstream consumers never see a malformed variant.
type Metadata struct {
	Type ArtifactType `json:"type"`

	// CacheKey is set on cacheable derived results; it is the symbolic alias
	// the cache manager resolves to this artifact.
	CacheKey string `json:"cache_key,omitzero"`

	// Dependencies is the provenance record: every artifact this one was
	// computed from. Each listed identifier must resolve to a stored object.
	Dependencies []ArtifactID `json:"dependencies,omitzero"`

	// ModelID identifies the model that produced a derived result.
	ModelID string `json:"model_id,omitzero"`

	TaskID string `json:"task_id,omitzero"`
	RunID  string `json:"run_id,omitzero"`

	// Stage holds free-form per-stage metadata, opaque to the store.
	Stage map[string]string `json:"stage,omitzero"`
}

// Validate checks the per-variant schema. Required fields differ by type.
func (m *Metadata) Validate() error {
	if !m.Type.Valid() {
		return zerr.With(zerr.Wrap(ErrInvalidMetadata, "unknown artifact type"), "artifact_type", string(m.Type))
	}

	switch m.Type {
	case TypeRaw:
		// No derivation history required.
	case TypeDerivedMetrics:
		if m.CacheKey == "" {
			return missingField("cache_key")
		}
		if m.ModelID == "" {
			return missingField("model_id")
		}
	case TypeAuditTrail:
		if m.RunID == "" {
			return missingField("run_id")
		}
	case TypeAnalysis, TypeSynthesis, TypeReview, TypeModeration:
		if m.TaskID == "" {
			return missingField("task_id")
		}
		if m.RunID == "" {
			return missingField("run_id")
		}
	}

	return nil
}

// Entry is a registry row: an artifact identifier plus its metadata and the
// bookkeeping the cache manager and validator rely on.
type Entry struct {
	ID       ArtifactID `json:"id"`
	Metadata Metadata   `json:"metadata"`
	Size     int64      `json:"size"`

	// Seq is the registry insertion sequence. It is the tie-break for cache
	// lookups when multiple entries share a cache key: lowest wins.
	Seq       uint64    `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

func missingField(field string) error {
	return zerr.With(zerr.Wrap(ErrInvalidMetadata, "missing required field"), "missing_field", field)
}
