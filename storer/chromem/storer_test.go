package chromem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/w-h-a/recall/storer"
)

func TestFetchSkipsUnknownIds(t *testing.T) {
	ctx := context.Background()

	s := NewStorer(storer.WithCollection("fetch-test"))

	require.NoError(t, s.Upsert(ctx, 1, []float32{1, 0, 0}, storer.Fields{
		Text:      "first",
		Kind:      storer.KindUserMessage,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Upsert(ctx, 2, []float32{0, 1, 0}, storer.Fields{
		Text:      "second",
		Kind:      storer.KindUserMessage,
		CreatedAt: time.Now().UTC(),
	}))

	records, err := s.Fetch(ctx, []int64{1, 2, 9})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.EqualValues(t, 1, records[0].Id)
	require.Equal(t, "first", records[0].Text)
	require.EqualValues(t, 2, records[1].Id)
}

func TestFetchStopsOnCanceledContext(t *testing.T) {
	s := NewStorer(storer.WithCollection("cancel-test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, []int64{1})
	require.ErrorIs(t, err, context.Canceled)
}
