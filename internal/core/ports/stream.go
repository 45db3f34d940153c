package ports

import (
	"context"
	"encoding/json"
)

// Record is one entry of an append-only stream. Seq is assigned by the log and
// is monotonically increasing within a stream.
type Record struct {
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
}

// Stream is a durable, ordered, replayable multi-consumer append-only log.
//
//go:generate go run go.uber.org/mock/mockgen -source=stream.go -destination=mocks/mock_stream.go -package=mocks
type Stream interface {
	// Append marshals v and appends it, returning the assigned sequence.
	Append(v any) (uint64, error)

	// Claim blocks until a record is available for the given consumer group
	// and claims it. Each record is claimed at most once per group. The wait
	// is a bounded-timeout poll that honors ctx cancellation.
	Claim(ctx context.Context, group string) (*Record, error)

	// Read returns all records with a sequence greater than after, without
	// claiming them. New consumers replay from zero.
	Read(after uint64) ([]Record, error)
}

// StreamProvider opens named streams.
type StreamProvider interface {
	// Stream returns the stream with the given name, creating it if needed.
	// Repeated calls with the same name return the same log.
	Stream(name string) (Stream, error)
}
