package orchestrator

import (
	"context"
	"encoding/json"
	"errors"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

func unmarshalRecord(rec ports.Record, v any) error {
	return json.Unmarshal(rec.Data, v)
}

func marshalTrail(runID string, events []domain.AuditEvent) ([]byte, error) {
	data, err := json.Marshal(struct {
		RunID  string              `json:"run_id"`
		Events []domain.AuditEvent `json:"events"`
	}{RunID: runID, Events: events})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal audit trail")
	}
	return data, nil
}

// RunWorker is a single-threaded consumer loop: claim one task, run its stage
// logic, publish exactly one completion record. It returns nil when ctx is
// cancelled. Stage failures never escape: they become failed completion
// records so one failing task cannot crash sibling workers.
func (o *Orchestrator) RunWorker(ctx context.Context) error {
	for {
		rec, err := o.tasks.Claim(ctx, workerGroup)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return zerr.Wrap(err, "failed to claim task")
		}

		var task domain.Task
		if err := unmarshalRecord(*rec, &task); err != nil {
			o.logger.Warn("skipping malformed task record: " + err.Error())
			continue
		}

		o.processTask(ctx, &task)
	}
}

// processTask runs the stage and publishes the completion record. Ordering of
// side effects matters: the result artifact is written before the completion
// record announcing it, so a crash between the two leaves no completed claim
// for a missing artifact.
func (o *Orchestrator) processTask(ctx context.Context, task *domain.Task) {
	ctx, span := o.tracer.Start(ctx, "task."+string(task.Type))
	defer span.End()
	span.SetAttribute("task_id", task.ID)
	span.SetAttribute("tier", task.Tier)

	task.Status = domain.StatusClaimed
	trail := o.Trail(task.RunID)
	trail.Record(domain.AuditEvent{
		Kind:   domain.EventClaimed,
		TaskID: task.ID,
		Tier:   task.Tier,
	})

	logic, ok := o.stage(task.Type)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrUnknownTaskType, "no stage registered"),
			"task_type", string(task.Type))
		span.RecordError(err)
		o.publishFailure(task, err)
		return
	}

	result, err := logic.Process(ctx, task)
	if err != nil {
		wrapped := zerr.With(zerr.Wrap(err, domain.ErrTaskFailure.Error()), "task_id", task.ID)
		span.RecordError(wrapped)
		o.logger.Error(wrapped)
		o.publishFailure(task, err)
		return
	}

	artifactID := result.ArtifactID
	if artifactID == "" {
		artifactID, err = o.store.Put(result.Data, result.Metadata)
		if err != nil {
			span.RecordError(err)
			o.logger.Error(err)
			o.publishFailure(task, err)
			return
		}
	}

	task.Status = domain.StatusSucceeded
	o.publishCompletion(task, domain.Completion{
		OriginalTaskID:   task.ID,
		ResultArtifactID: artifactID,
		Status:           domain.CompletionCompleted,
		TaskType:         task.Type,
		Stage:            result.Stage,
	})

	trail.Record(domain.AuditEvent{
		Kind:       domain.EventCompleted,
		TaskID:     task.ID,
		ArtifactID: artifactID,
		Tier:       task.Tier,
	})
}

func (o *Orchestrator) publishFailure(task *domain.Task, cause error) {
	task.Status = domain.StatusFailed
	o.publishCompletion(task, domain.Completion{
		OriginalTaskID: task.ID,
		Status:         domain.CompletionFailed,
		TaskType:       task.Type,
		Error:          cause.Error(),
	})

	o.Trail(task.RunID).Record(domain.AuditEvent{
		Kind:   domain.EventFailed,
		TaskID: task.ID,
		Tier:   task.Tier,
		Detail: cause.Error(),
	})
}

func (o *Orchestrator) publishCompletion(task *domain.Task, c domain.Completion) {
	if _, err := o.done.Append(c); err != nil {
		// The barrier will time out on this task and surface partial
		// completion; nothing more useful can be done here.
		o.logger.Error(zerr.With(zerr.Wrap(err, "failed to publish completion"), "task_id", task.ID))
	}
}
