// Package stages holds the built-in pipeline stage logic. Stages are the only
// place that knows how prompts are assembled; the orchestrator routes to them
// by task type alone.
package stages

import (
	"context"
	"strconv"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Task types routed to the built-in stages.
const (
	TaskAnalysis       domain.TaskType = "analysis"
	TaskSynthesis      domain.TaskType = "synthesis"
	TaskReviewOpening  domain.TaskType = "review-opening"
	TaskReviewResponse domain.TaskType = "review-response"
	TaskModeration     domain.TaskType = "moderation"
)

// Registry receives the stage bindings, keyed by task type.
type Registry interface {
	Register(t domain.TaskType, logic ports.StageLogic)
}

// Stages bundles the built-in stage logic and its collaborators.
type Stages struct {
	store   ports.ArtifactStore
	cache   ports.ResultCache
	gateway ports.Gateway
	logger  ports.Logger
	modelID string
}

// New creates the built-in stages.
func New(
	store ports.ArtifactStore,
	cache ports.ResultCache,
	gateway ports.Gateway,
	logger ports.Logger,
	modelID string,
) *Stages {
	return &Stages{
		store:   store,
		cache:   cache,
		gateway: gateway,
		logger:  logger,
		modelID: modelID,
	}
}

// RegisterAll binds every built-in stage to its task type.
func (s *Stages) RegisterAll(r Registry) {
	r.Register(TaskAnalysis, ports.StageFunc(s.Analyze))
	r.Register(TaskSynthesis, ports.StageFunc(s.Synthesize))
	r.Register(TaskReviewOpening, ports.StageFunc(s.ReviewOpening))
	r.Register(TaskReviewResponse, ports.StageFunc(s.ReviewResponse))
	r.Register(TaskModeration, ports.StageFunc(s.Moderate))
}

// readInputs loads every input artifact of a task.
func (s *Stages) readInputs(task *domain.Task) ([]string, error) {
	texts := make([]string, 0, len(task.Inputs))
	for _, id := range task.Inputs {
		data, err := s.store.Get(id)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read task input"), "artifact_id", string(id))
		}
		texts = append(texts, string(data))
	}
	return texts, nil
}

// complete calls the gateway with the run's model.
func (s *Stages) complete(ctx context.Context, prompt string) (string, error) {
	return s.gateway.Complete(ctx, prompt, ports.CompletionParams{Model: s.modelID})
}

func joinSections(header string, sections []string) string {
	var b strings.Builder
	b.WriteString(header)
	for i, section := range sections {
		b.WriteString("\n\n--- section ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(" ---\n")
		b.WriteString(section)
	}
	return b.String()
}
