package ports

import (
	"context"

	"go.trai.ch/weft/internal/core/domain"
)

// StageResult is what a stage hands back to the worker. Either Data plus
// Metadata for the worker to persist, or ArtifactID when the stage already
// resolved an existing artifact (a cache hit).
type StageResult struct {
	ArtifactID domain.ArtifactID
	Data       []byte
	Metadata   domain.Metadata

	// Stage is free-form metadata copied onto the completion record.
	Stage map[string]string
}

// StageLogic is a pipeline stage: arbitrary per-task-type computation that
// consumes and produces artifacts. Errors are caught at the worker boundary
// and converted into failed completion records.
//
//go:generate go run go.uber.org/mock/mockgen -source=stage.go -destination=mocks/mock_stage.go -package=mocks
type StageLogic interface {
	Process(ctx context.Context, task *domain.Task) (*StageResult, error)
}

// StageFunc adapts a function to the StageLogic interface.
type StageFunc func(ctx context.Context, task *domain.Task) (*StageResult, error)

// Process calls f.
func (f StageFunc) Process(ctx context.Context, task *domain.Task) (*StageResult, error) {
	return f(ctx, task)
}
