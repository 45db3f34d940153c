package stages

import (
	"context"
	"encoding/json"
	"strconv"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// ReviewPayload is the tier-3 task body.
type ReviewPayload struct {
	Reviewer int `json:"reviewer"`
}

// reviewResult is the persisted tier-3 output, for both phases.
type reviewResult struct {
	Reviewer int    `json:"reviewer"`
	Phase    string `json:"phase"`
	Text     string `json:"text"`
	ModelID  string `json:"model_id"`
}

// ReviewOpening produces a reviewer's opening statement on the synthesis.
func (s *Stages) ReviewOpening(ctx context.Context, task *domain.Task) (*ports.StageResult, error) {
	return s.review(ctx, task, "opening",
		"Review the following account and state your principal objections and endorsements.")
}

// ReviewResponse produces a reviewer's response. The task's inputs reference
// the synthesis and the opening-tier artifacts it responds to.
func (s *Stages) ReviewResponse(ctx context.Context, task *domain.Task) (*ports.StageResult, error) {
	return s.review(ctx, task, "response",
		"Respond to the opening reviews below, conceding or rebutting each point.")
}

func (s *Stages) review(ctx context.Context, task *domain.Task, phase, header string) (*ports.StageResult, error) {
	var payload ReviewPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return nil, zerr.Wrap(err, "invalid review payload")
	}

	texts, err := s.readInputs(task)
	if err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, joinSections(header, texts))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(reviewResult{
		Reviewer: payload.Reviewer,
		Phase:    phase,
		Text:     text,
		ModelID:  s.modelID,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal review result")
	}

	return &ports.StageResult{
		Data: data,
		Metadata: domain.Metadata{
			Type:         domain.TypeReview,
			Dependencies: task.Inputs,
			ModelID:      s.modelID,
			TaskID:       task.ID,
			RunID:        task.RunID,
		},
		Stage: map[string]string{
			"phase":    phase,
			"reviewer": strconv.Itoa(payload.Reviewer),
		},
	}, nil
}
