package ports

import "context"

// LLMClient interface for text-generation providers. Implementations return
// the raw model text; callers own any structure extraction.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
