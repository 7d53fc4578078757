package repo

import "context"

// GenerateRequest bundles one generation call
type GenerateRequest struct {
	System      string  // system instruction (persona + contextual directives)
	User        string  // admitted message text
	Temperature float32 // sampling temperature
	MaxTokens   int     // bounded output length
}

// GeneratorRepo is the generation collaborator interface
// Any error or empty result means "no reply" to the caller
type GeneratorRepo interface {
	// Generate produces reply text for the request, trimmed
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}
