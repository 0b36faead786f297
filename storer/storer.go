package storer

import (
	"context"
	"time"
)

// Kinds of remembered text.
const (
	KindUserMessage         = "user_message"
	KindConversationSummary = "conversation_summary"
)

// Record is one memory entry as stored in the vector index. Entries are
// immutable once written; there is no update operation, only upsert by
// id and bulk delete.
type Record struct {
	Id        int64
	Text      string
	Kind      string
	Embedding []float32
	Score     float32
	CreatedAt time.Time
}

// Fields is the metadata attached to a vector at upsert time.
type Fields struct {
	Text      string
	Kind      string
	CreatedAt time.Time
}

// Storer wraps an external vector index. Query must degrade to an empty
// result on an empty index; callers treat "no memories" as a normal
// outcome.
type Storer interface {
	Upsert(ctx context.Context, id int64, vector []float32, fields Fields) error
	Query(ctx context.Context, vector []float32, limit int) ([]Record, error)
	Fetch(ctx context.Context, ids []int64) ([]Record, error)
	Delete(ctx context.Context, ids []int64) error
}
