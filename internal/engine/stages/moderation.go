package stages

import (
	"context"
	"encoding/json"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// moderationResult is the persisted tier-4 output.
type moderationResult struct {
	Text     string `json:"text"`
	Reviewed int    `json:"reviewed"`
	ModelID  string `json:"model_id"`
}

// Moderate consumes all tier-3 review artifacts and produces the final
// moderation artifact of the run.
func (s *Stages) Moderate(ctx context.Context, task *domain.Task) (*ports.StageResult, error) {
	texts, err := s.readInputs(task)
	if err != nil {
		return nil, err
	}

	prompt := joinSections("Weigh the reviews below and deliver a final adjudication.", texts)
	text, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(moderationResult{Text: text, Reviewed: len(texts), ModelID: s.modelID})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal moderation result")
	}

	return &ports.StageResult{
		Data: data,
		Metadata: domain.Metadata{
			Type:         domain.TypeModeration,
			Dependencies: task.Inputs,
			ModelID:      s.modelID,
			TaskID:       task.ID,
			RunID:        task.RunID,
		},
		Stage: map[string]string{"phase": "moderation"},
	}, nil
}
