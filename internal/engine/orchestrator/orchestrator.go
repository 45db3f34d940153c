// Package orchestrator implements task enqueue/claim/complete over the task
// and done streams, and the tier barrier that gates multi-tier fan-out.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stream names used by the orchestrator.
const (
	TaskStreamName = "tasks"
	DoneStreamName = "done"
)

// workerGroup is the consumer group shared by all workers of a process, so
// the stream arbitrates which worker claims which task.
const workerGroup = "workers"

// barrierPoll bounds how long a barrier wait sleeps between scans of the done
// stream.
const barrierPoll = 25 * time.Millisecond

// Orchestrator routes tasks to registered stage logic and enforces cross-tier
// ordering purely by completion counting. It is free of any stage-specific
// vocabulary: task types are opaque routing keys.
type Orchestrator struct {
	tasks  ports.Stream
	done   ports.Stream
	store  ports.ArtifactStore
	logger ports.Logger
	tracer ports.Tracer

	mu     sync.RWMutex
	stages map[domain.TaskType]ports.StageLogic
	trails map[string]*domain.AuditTrail
}

// New creates an Orchestrator over the given streams and store.
func New(
	tasks ports.Stream,
	done ports.Stream,
	store ports.ArtifactStore,
	logger ports.Logger,
	tracer ports.Tracer,
) *Orchestrator {
	return &Orchestrator{
		tasks:  tasks,
		done:   done,
		store:  store,
		logger: logger,
		tracer: tracer,
		stages: make(map[domain.TaskType]ports.StageLogic),
		trails: make(map[string]*domain.AuditTrail),
	}
}

// Register binds stage logic to a task type. Later registrations replace
// earlier ones.
func (o *Orchestrator) Register(t domain.TaskType, logic ports.StageLogic) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages[t] = logic
}

func (o *Orchestrator) stage(t domain.TaskType) (ports.StageLogic, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	logic, ok := o.stages[t]
	return logic, ok
}

// Trail returns the audit trail for a run, creating it on first use.
func (o *Orchestrator) Trail(runID string) *domain.AuditTrail {
	o.mu.Lock()
	defer o.mu.Unlock()

	trail, ok := o.trails[runID]
	if !ok {
		trail = domain.NewAuditTrail(runID)
		o.trails[runID] = trail
	}
	return trail
}

// Enqueue appends a task to the task stream and returns its identifier,
// assigning one if the caller left it empty.
func (o *Orchestrator) Enqueue(ctx context.Context, task *domain.Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Status = domain.StatusQueued

	if _, err := o.tasks.Append(task); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to enqueue task"), "task_id", task.ID)
	}

	o.Trail(task.RunID).Record(domain.AuditEvent{
		Kind:   domain.EventEnqueued,
		TaskID: task.ID,
		Tier:   task.Tier,
		Detail: string(task.Type),
	})
	return task.ID, nil
}

// WaitTier blocks until a completion record has been observed for every
// expected task, deduplicated by original task id so a worker or network
// retry is not double-counted. The wait is bounded: on expiry the collected
// completions are returned together with domain.ErrPartialCompletion naming
// the stragglers. Completion counting is the only cross-tier ordering
// mechanism; the stream's native order among siblings is irrelevant.
func (o *Orchestrator) WaitTier(
	ctx context.Context,
	runID string,
	expect []string,
	timeout time.Duration,
) (map[string]domain.Completion, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	expected := make(map[string]bool, len(expect))
	for _, id := range expect {
		expected[id] = true
	}
	seen := make(map[string]domain.Completion, len(expect))

	for {
		records, err := o.done.Read(0)
		if err != nil {
			return seen, zerr.Wrap(err, "failed to read done stream")
		}

		for _, rec := range records {
			var c domain.Completion
			if err := unmarshalRecord(rec, &c); err != nil {
				o.logger.Warn("skipping malformed completion record: " + err.Error())
				continue
			}
			if !expected[c.OriginalTaskID] {
				continue
			}
			// First record per task id wins; duplicates are ignored.
			if _, dup := seen[c.OriginalTaskID]; !dup {
				seen[c.OriginalTaskID] = c
			}
		}

		if len(seen) == len(expect) {
			o.Trail(runID).Record(domain.AuditEvent{
				Kind:   domain.EventBarrierReleased,
				Detail: strings.Join(expect, ","),
			})
			return seen, nil
		}

		select {
		case <-ctx.Done():
			return seen, ctx.Err()
		case <-deadline.C:
			missing := make([]string, 0, len(expect))
			for _, id := range expect {
				if _, ok := seen[id]; !ok {
					missing = append(missing, id)
				}
			}
			o.Trail(runID).Record(domain.AuditEvent{
				Kind:   domain.EventBarrierTimeout,
				Detail: strings.Join(missing, ","),
			})
			return seen, zerr.With(zerr.Wrap(domain.ErrPartialCompletion, "tier barrier timed out"),
				"missing_tasks", strings.Join(missing, ","))
		case <-time.After(barrierPoll):
		}
	}
}

// RunTier enqueues a tier's tasks and waits for the barrier.
func (o *Orchestrator) RunTier(
	ctx context.Context,
	runID string,
	tasks []*domain.Task,
	timeout time.Duration,
) (map[string]domain.Completion, error) {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		id, err := o.Enqueue(ctx, task)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return o.WaitTier(ctx, runID, ids, timeout)
}

// FinalizeRun commits the run's ordered audit trail as an artifact.
func (o *Orchestrator) FinalizeRun(runID string) (domain.ArtifactID, error) {
	trail := o.Trail(runID)
	trail.Record(domain.AuditEvent{Kind: domain.EventRunFinalized})

	data, err := marshalTrail(runID, trail.Snapshot())
	if err != nil {
		return "", err
	}

	id, err := o.store.Put(data, domain.Metadata{
		Type:  domain.TypeAuditTrail,
		RunID: runID,
	})
	if err != nil {
		return "", zerr.Wrap(err, "failed to commit audit trail")
	}
	return id, nil
}
