package ports

import "context"

// Span represents an in-flight trace span.
//
//go:generate go run go.uber.org/mock/mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Span interface {
	End()
	RecordError(err error)
	SetAttribute(key string, value any)
}

// Tracer starts spans around pipeline operations.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}
