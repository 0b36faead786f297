package embedder

import (
	"context"
	"fmt"
)

// Embedder turns text into fixed-dimension vectors, one per input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderError is a non-success answer from the embedding provider.
type ProviderError struct {
	Status     int
	StatusText string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider: %d %s", e.Status, e.StatusText)
}
