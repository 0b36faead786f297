package chromem

import (
	"context"
	"sort"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/w-h-a/recall/storer"
)

// chromemStorer keeps the vector index in-process via chromem-go, a pure
// Go embedded vector database. Embeddings are always supplied by the
// caller, so the collection is created without an embedding func.
type chromemStorer struct {
	options    storer.Options
	collection *chromem.Collection
}

func (s *chromemStorer) Upsert(ctx context.Context, id int64, vector []float32, fields storer.Fields) error {
	return s.collection.AddDocument(ctx, chromem.Document{
		ID:      strconv.FormatInt(id, 10),
		Content: fields.Text,
		Metadata: map[string]string{
			"kind":       fields.Kind,
			"created_at": fields.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
		Embedding: vector,
	})
}

func (s *chromemStorer) Query(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	// chromem rejects queries asking for more results than stored docs
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, err
	}

	records := make([]storer.Record, 0, len(results))

	for _, result := range results {
		rec := toRecord(result.ID, result.Content, result.Metadata, result.Embedding)
		rec.Score = result.Similarity
		records = append(records, rec)
	}

	return records, nil
}

func (s *chromemStorer) Fetch(ctx context.Context, ids []int64) ([]storer.Record, error) {
	records := make([]storer.Record, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.collection.GetByID(ctx, strconv.FormatInt(id, 10))
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			// with a live context the only failure is an unknown id
			continue
		}

		records = append(records, toRecord(doc.ID, doc.Content, doc.Metadata, doc.Embedding))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Id < records[j].Id
	})

	return records, nil
}

func (s *chromemStorer) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	strIds := make([]string, 0, len(ids))
	for _, id := range ids {
		strIds = append(strIds, strconv.FormatInt(id, 10))
	}

	return s.collection.Delete(ctx, nil, nil, strIds...)
}

func toRecord(id string, content string, metadata map[string]string, embedding []float32) storer.Record {
	parsed, _ := strconv.ParseInt(id, 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, metadata["created_at"])

	return storer.Record{
		Id:        parsed,
		Text:      content,
		Kind:      metadata["kind"],
		Embedding: embedding,
		CreatedAt: createdAt,
	}
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = "memories"
	}

	db := chromem.NewDB()

	col, err := db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		panic(err)
	}

	s := &chromemStorer{
		options:    options,
		collection: col,
	}

	return s
}
