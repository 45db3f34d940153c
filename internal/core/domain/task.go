package domain

import "encoding/json"

// TaskType identifies which stage logic processes a task. The orchestrator
// treats it as an opaque routing key; the vocabulary belongs to the stages.
type TaskType string

// TaskStatus represents the lifecycle state of a task.
// Queued -> Claimed -> Succeeded | Failed. Terminal states are final; there is
// no retry transition at this layer.
type TaskStatus string

const (
	// StatusQueued indicates the task is waiting on the task stream.
	StatusQueued TaskStatus = "Queued"
	// StatusClaimed indicates a worker has claimed the task.
	StatusClaimed TaskStatus = "Claimed"
	// StatusSucceeded indicates the task finished and its completion record
	// was published.
	StatusSucceeded TaskStatus = "Succeeded"
	// StatusFailed indicates the stage raised and a failed completion record
	// was published.
	StatusFailed TaskStatus = "Failed"
)

// Task is a unit of pipeline work. Status follows the task lifecycle: the
// orchestrator stamps Queued on enqueue, the claiming worker moves it to
// Claimed and then to its terminal state.
type Task struct {
	ID     string     `json:"id"`
	Type   TaskType   `json:"type"`
	RunID  string     `json:"run_id"`
	Tier   int        `json:"tier"`
	Status TaskStatus `json:"status,omitzero"`

	// Inputs references the artifacts this task consumes.
	Inputs []ArtifactID `json:"inputs,omitzero"`

	// Payload is the task-type-specific body, opaque to the orchestrator.
	Payload json.RawMessage `json:"payload,omitzero"`
}

// CompletionStatus is the terminal outcome carried by a completion record.
type CompletionStatus string

const (
	// CompletionCompleted marks a successful task.
	CompletionCompleted CompletionStatus = "completed"
	// CompletionFailed marks a task whose stage raised.
	CompletionFailed CompletionStatus = "failed"
)

// Completion correlates an original task with its result artifact. It is
// appended to the done stream exactly once per processed task, on the success
// or failure path, and always after the result artifact has been written.
type Completion struct {
	OriginalTaskID   string            `json:"original_task_id"`
	ResultArtifactID ArtifactID        `json:"result_artifact_id,omitzero"`
	Status           CompletionStatus  `json:"status"`
	TaskType         TaskType          `json:"task_type"`
	Error            string            `json:"error,omitzero"`
	Stage            map[string]string `json:"stage_metadata,omitzero"`
}
