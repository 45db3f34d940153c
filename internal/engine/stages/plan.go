package stages

import (
	"encoding/json"

	"go.trai.ch/weft/internal/core/domain"
)

// Tier numbers of the built-in pipeline.
const (
	TierAnalysis   = 1
	TierSynthesis  = 2
	TierReview     = 3
	TierModeration = 4
)

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// All payload types marshal; a failure here is a programming error.
		panic(err)
	}
	return data
}

// AnalysisTasks builds the tier-1 fan-out: spec.Analysts independent tasks
// over the run's input artifacts.
func AnalysisTasks(spec *domain.PipelineSpec) []*domain.Task {
	tasks := make([]*domain.Task, 0, spec.Analysts)
	for i := 0; i < spec.Analysts; i++ {
		tasks = append(tasks, &domain.Task{
			Type:    TaskAnalysis,
			RunID:   spec.RunID,
			Tier:    TierAnalysis,
			Inputs:  spec.Inputs,
			Payload: mustMarshal(AnalysisPayload{Slot: i}),
		})
	}
	return tasks
}

// SynthesisTask builds the single tier-2 task over all tier-1 results.
func SynthesisTask(spec *domain.PipelineSpec, analyses []domain.ArtifactID) *domain.Task {
	return &domain.Task{
		Type:    TaskSynthesis,
		RunID:   spec.RunID,
		Tier:    TierSynthesis,
		Inputs:  analyses,
		Payload: mustMarshal(struct{}{}),
	}
}

// OpeningTasks builds the first half of tier 3: one opening review per
// reviewer, each reading the synthesis.
func OpeningTasks(spec *domain.PipelineSpec, synthesis domain.ArtifactID) []*domain.Task {
	tasks := make([]*domain.Task, 0, spec.Reviewers)
	for i := 0; i < spec.Reviewers; i++ {
		tasks = append(tasks, &domain.Task{
			Type:    TaskReviewOpening,
			RunID:   spec.RunID,
			Tier:    TierReview,
			Inputs:  []domain.ArtifactID{synthesis},
			Payload: mustMarshal(ReviewPayload{Reviewer: i}),
		})
	}
	return tasks
}

// ResponseTasks builds the second half of tier 3: one response per reviewer,
// each referencing the synthesis and every opening artifact.
func ResponseTasks(spec *domain.PipelineSpec, synthesis domain.ArtifactID, openings []domain.ArtifactID) []*domain.Task {
	inputs := append([]domain.ArtifactID{synthesis}, openings...)
	tasks := make([]*domain.Task, 0, spec.Reviewers)
	for i := 0; i < spec.Reviewers; i++ {
		tasks = append(tasks, &domain.Task{
			Type:    TaskReviewResponse,
			RunID:   spec.RunID,
			Tier:    TierReview,
			Inputs:  inputs,
			Payload: mustMarshal(ReviewPayload{Reviewer: i}),
		})
	}
	return tasks
}

// ModerationTask builds the single tier-4 task over all tier-3 artifacts.
func ModerationTask(spec *domain.PipelineSpec, reviews []domain.ArtifactID) *domain.Task {
	return &domain.Task{
		Type:    TaskModeration,
		RunID:   spec.RunID,
		Tier:    TierModeration,
		Inputs:  reviews,
		Payload: mustMarshal(struct{}{}),
	}
}
