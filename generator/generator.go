package generator

import (
	"context"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NoResponse is returned verbatim when the provider answers with an
// empty choice list.
const NoResponse = "No response generated"

type Message struct {
	Role    string
	Content string
}

type Generator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ProviderError is a non-success answer from the completion provider.
// It propagates to the caller rather than being swallowed.
type ProviderError struct {
	Status     int
	StatusText string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion provider: %d %s", e.Status, e.StatusText)
}
