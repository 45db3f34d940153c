package ports

import "context"

// CompletionParams tunes a single gateway call.
type CompletionParams struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Gateway is the language model collaborator. The orchestration core treats it
// strictly as an injected capability; provider errors are opaque.
//
//go:generate go run go.uber.org/mock/mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks
type Gateway interface {
	// Complete sends a prompt and returns the generated text.
	Complete(ctx context.Context, prompt string, params CompletionParams) (string, error)
}
