package domain

import "go.trai.ch/zerr"

var (
	// ErrNotFound is returned when a referenced artifact is absent from the store.
	ErrNotFound = zerr.New("artifact not found")

	// ErrCorruption is returned when a stored object's recomputed digest does not
	// match its declared identifier. It is distinct from ErrNotFound: the bytes
	// are present, they are just wrong.
	ErrCorruption = zerr.New("artifact corrupted")

	// ErrCycleDetected is returned when the dependency relation across artifacts
	// is not acyclic.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidMetadata is returned when artifact metadata fails schema
	// validation at the store boundary.
	ErrInvalidMetadata = zerr.New("invalid artifact metadata")

	// ErrTaskFailure records that a pipeline stage raised during processing.
	ErrTaskFailure = zerr.New("task failure")

	// ErrUnknownTaskType is returned when no stage logic is registered for a
	// claimed task's type.
	ErrUnknownTaskType = zerr.New("unknown task type")

	// ErrPartialCompletion is returned when a tier barrier's bounded wait
	// expired before all expected completion records arrived.
	ErrPartialCompletion = zerr.New("partial completion")

	// ErrIntegrityCheckFailed is returned by the verify flow when the integrity
	// report contains a fatal violation class.
	ErrIntegrityCheckFailed = zerr.New("integrity check failed")

	// ErrPipelineFailed is returned when a pipeline run did not complete.
	ErrPipelineFailed = zerr.New("pipeline execution failed")

	// ErrNoDocuments is returned when a run is started with an empty corpus.
	ErrNoDocuments = zerr.New("no corpus documents configured")
)

// Store-level failures, kept separate from the artifact taxonomy above.
var (
	ErrStoreReadFailed      = zerr.New("failed to read from store")
	ErrStoreWriteFailed     = zerr.New("failed to write to store")
	ErrStoreCreateFailed    = zerr.New("failed to create store directory")
	ErrStoreMarshalFailed   = zerr.New("failed to marshal store entry")
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal store entry")

	ErrStreamAppendFailed = zerr.New("failed to append to stream")
)
