package stages

import (
	"context"
	"encoding/json"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// synthesisResult is the persisted tier-2 output.
type synthesisResult struct {
	Text    string `json:"text"`
	Sources int    `json:"sources"`
	ModelID string `json:"model_id"`
}

// Synthesize aggregates all tier-1 results into a single artifact.
func (s *Stages) Synthesize(ctx context.Context, task *domain.Task) (*ports.StageResult, error) {
	texts, err := s.readInputs(task)
	if err != nil {
		return nil, err
	}

	prompt := joinSections("Synthesize the following analyses into one coherent account.", texts)
	text, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(synthesisResult{Text: text, Sources: len(texts), ModelID: s.modelID})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal synthesis result")
	}

	return &ports.StageResult{
		Data: data,
		Metadata: domain.Metadata{
			Type:         domain.TypeSynthesis,
			Dependencies: task.Inputs,
			ModelID:      s.modelID,
			TaskID:       task.ID,
			RunID:        task.RunID,
		},
		Stage: map[string]string{"phase": "synthesis"},
	}, nil
}
