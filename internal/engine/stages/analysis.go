package stages

import (
	"context"
	"encoding/json"
	"strconv"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// AnalysisPayload is the tier-1 task body.
type AnalysisPayload struct {
	Slot  int    `json:"slot"`
	Focus string `json:"focus,omitzero"`
}

// derivedMetrics is the cacheable pre-computation an analysis task performs
// over its inputs. The cache key depends on the payload's structural shape
// and the model, not on the document bytes, so structurally identical runs
// reuse it.
type derivedMetrics struct {
	InputCount int    `json:"input_count"`
	TotalBytes int    `json:"total_bytes"`
	ModelID    string `json:"model_id"`
}

// analysisResult is the persisted tier-1 output.
type analysisResult struct {
	Slot    int    `json:"slot"`
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Analyze runs one tier-1 analysis task: derive (or reuse) metrics over the
// inputs, prompt the gateway, persist the result with full provenance.
func (s *Stages) Analyze(ctx context.Context, task *domain.Task) (*ports.StageResult, error) {
	var payload AnalysisPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return nil, zerr.Wrap(err, "invalid analysis payload")
	}

	texts, err := s.readInputs(task)
	if err != nil {
		return nil, err
	}

	metricsID, err := s.deriveMetrics(task, texts)
	if err != nil {
		return nil, err
	}

	prompt := joinSections("Analyze the following documents and report the salient patterns.", texts)
	text, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(analysisResult{Slot: payload.Slot, Text: text, ModelID: s.modelID})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal analysis result")
	}

	return &ports.StageResult{
		Data: data,
		Metadata: domain.Metadata{
			Type:         domain.TypeAnalysis,
			Dependencies: append(append([]domain.ArtifactID{}, task.Inputs...), metricsID),
			ModelID:      s.modelID,
			TaskID:       task.ID,
			RunID:        task.RunID,
		},
		Stage: map[string]string{"slot": strconv.Itoa(payload.Slot)},
	}, nil
}

// deriveMetrics computes the derived-metrics artifact for the task's inputs,
// consulting the cache first. The fingerprint is taken over the payload's
// structure, so runs with the same shape share the entry regardless of values.
func (s *Stages) deriveMetrics(task *domain.Task, texts []string) (domain.ArtifactID, error) {
	fp, err := domain.FingerprintJSON(string(task.Type), task.Payload)
	if err != nil {
		return "", err
	}
	key := s.cache.DeriveKey(fp, s.modelID)

	if id, ok := s.cache.Lookup(key, domain.TypeDerivedMetrics); ok {
		return id, nil
	}

	total := 0
	for _, t := range texts {
		total += len(t)
	}
	metrics := derivedMetrics{
		InputCount: len(texts),
		TotalBytes: total,
		ModelID:    s.modelID,
	}

	id, err := s.cache.Store(key, metrics, domain.Metadata{
		Type:         domain.TypeDerivedMetrics,
		Dependencies: task.Inputs,
		ModelID:      s.modelID,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
