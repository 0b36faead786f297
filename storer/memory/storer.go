package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/w-h-a/recall/storer"
)

type memoryStorer struct {
	options storer.Options
	records map[int64]storer.Record
	mtx     sync.RWMutex
}

func (s *memoryStorer) Upsert(ctx context.Context, id int64, vector []float32, fields storer.Fields) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cpy := make([]float32, len(vector))
	copy(cpy, vector)

	s.records[id] = storer.Record{
		Id:        id,
		Text:      fields.Text,
		Kind:      fields.Kind,
		Embedding: cpy,
		CreatedAt: fields.CreatedAt,
	}

	return nil
}

func (s *memoryStorer) Query(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]storer.Record, 0, len(s.records))

	for _, rec := range s.records {
		rec.Score = float32(storer.CosineSimilarity(vector, rec.Embedding))
		candidates = append(candidates, rec)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (s *memoryStorer) Fetch(ctx context.Context, ids []int64) ([]storer.Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	records := make([]storer.Record, 0, len(ids))

	for _, id := range ids {
		if rec, exists := s.records[id]; exists {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Id < records[j].Id
	})

	return records, nil
}

func (s *memoryStorer) Delete(ctx context.Context, ids []int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, id := range ids {
		delete(s.records, id)
	}

	return nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	s := &memoryStorer{
		options: options,
		records: map[int64]storer.Record{},
		mtx:     sync.RWMutex{},
	}

	return s
}
