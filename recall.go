package recall

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/w-h-a/recall/generator"
	"github.com/w-h-a/recall/storer"
)

const (
	defaultSystemPrompt = "You are a helpful assistant with long-term memory of past conversations. Answer concisely and use remembered context when it is relevant."

	summaryPrompt = "Summarize the following conversation in one short sentence, preserving the key facts about the user."
)

// Service orchestrates a chat turn: recall relevant memories, complete,
// reply, and persist the user's message in the background.
type Service struct {
	options Options
	writes  sync.WaitGroup
}

// Chat answers the user's text. Memory lookup is best-effort; a failed
// lookup degrades to an unaugmented prompt. The memory write never
// blocks or fails the user-visible turn.
func (s *Service) Chat(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return "", &ValidationError{Message: "message is required"}
	}

	memories := s.recall(ctx, trimmed)

	messages := []generator.Message{
		{Role: generator.RoleSystem, Content: s.options.SystemPrompt},
		{Role: generator.RoleUser, Content: buildPrompt(memories, trimmed)},
	}

	reply, err := s.options.Generator.Complete(ctx, messages)

	// the user's message is remembered whether or not the completion
	// succeeded
	s.persist(trimmed, storer.KindUserMessage)

	if err != nil {
		return "", err
	}

	return reply, nil
}

// Memorize condenses a conversation history into one sentence and
// stores it as a single memory entry. Returns the minted id and the
// summary text.
func (s *Service) Memorize(ctx context.Context, history []string) (int64, string, error) {
	if len(history) == 0 {
		return 0, "", &ValidationError{Message: "conversation history is required"}
	}

	messages := []generator.Message{
		{Role: generator.RoleSystem, Content: summaryPrompt},
		{Role: generator.RoleUser, Content: strings.Join(history, "\n")},
	}

	summary, err := s.options.Generator.Complete(ctx, messages)
	if err != nil {
		return 0, "", err
	}

	id, err := s.write(ctx, summary, storer.KindConversationSummary)
	if err != nil {
		return 0, "", err
	}

	return id, summary, nil
}

// ListMemories fetches every live entry by the true id range
// [1, current]. The second return value is the counter's current value.
func (s *Service) ListMemories(ctx context.Context) ([]storer.Record, int64, error) {
	current, err := s.options.Counter.Current(ctx)
	if err != nil {
		return nil, 0, err
	}

	if current == 0 {
		return []storer.Record{}, 0, nil
	}

	records, err := s.options.Storer.Fetch(ctx, idRange(current))
	if err != nil {
		return nil, 0, err
	}

	return records, current, nil
}

// Forget deletes the true live range [1, current] and resets the
// counter, after which ids restart at 1.
func (s *Service) Forget(ctx context.Context) ([]int64, error) {
	current, err := s.options.Counter.Current(ctx)
	if err != nil {
		return nil, err
	}

	ids := idRange(current)

	if len(ids) > 0 {
		if err := s.options.Storer.Delete(ctx, ids); err != nil {
			return nil, err
		}
	}

	if err := s.options.Counter.Reset(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}

// Close waits for in-flight background memory writes.
func (s *Service) Close() error {
	s.writes.Wait()
	return nil
}

func (s *Service) recall(ctx context.Context, text string) []storer.Record {
	vectors, err := s.options.Embedder.Embed(ctx, []string{text})
	if err != nil || len(vectors) == 0 {
		s.options.Logger.WarnContext(ctx, "memory lookup skipped: embed failed", "error", err)
		return nil
	}

	records, err := s.options.Storer.Query(ctx, vectors[0], s.options.TopK)
	if err != nil {
		s.options.Logger.WarnContext(ctx, "memory lookup skipped: query failed", "error", err)
		return nil
	}

	return records
}

// persist writes the text as a new memory entry on a detached goroutine
// with its own deadline. Failures are logged and swallowed.
func (s *Service) persist(text string, kind string) {
	s.writes.Add(1)

	go func() {
		defer s.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.options.WriteTimeout)
		defer cancel()

		if _, err := s.write(ctx, text, kind); err != nil {
			s.options.Logger.ErrorContext(ctx, "background memory write failed", "kind", kind, "error", err)
		}
	}()
}

func (s *Service) write(ctx context.Context, text string, kind string) (int64, error) {
	vectors, err := s.options.Embedder.Embed(ctx, []string{text})
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) == 0 {
		return 0, fmt.Errorf("embed: no vector returned")
	}

	// mint the id only after the embed succeeds so a failed embed
	// never burns or half-writes an id
	id, err := s.options.Counter.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}

	fields := storer.Fields{
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.options.Storer.Upsert(ctx, id, vectors[0], fields); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}

	return id, nil
}

func buildPrompt(memories []storer.Record, text string) string {
	if len(memories) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString("Relevant memories from previous conversations:\n")

	for i, rec := range memories {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec.Text))
	}

	b.WriteString("\nCurrent user message:\n")
	b.WriteString(text)

	return b.String()
}

func idRange(current int64) []int64 {
	if current < 1 {
		return nil
	}

	ids := make([]int64, 0, current)
	for id := int64(1); id <= current; id++ {
		ids = append(ids, id)
	}

	return ids
}

func New(opts ...Option) *Service {
	options := NewOptions(opts...)

	if options.Generator == nil {
		panic("generator is required")
	}

	if options.Embedder == nil {
		panic("embedder is required")
	}

	if options.Storer == nil {
		panic("storer is required")
	}

	if options.Counter == nil {
		panic("counter is required")
	}

	if len(strings.TrimSpace(options.SystemPrompt)) == 0 {
		options.SystemPrompt = defaultSystemPrompt
	}

	if options.TopK <= 0 {
		options.TopK = 3
	}

	return &Service{
		options: options,
	}
}
