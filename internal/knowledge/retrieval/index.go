package retrieval

import (
	"context"

	"github.com/yungbote/gapmap-backend/internal/clients/pinecone"
	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/knowledge/store"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// Hit is a retrieved concept with its similarity score.
type Hit struct {
	Concept *types.Concept
	Score   float64
}

// Index answers nearest-neighbor queries over concept embeddings. When
// learnedOnly is set the search is restricted to concepts marked learned;
// zero hits in that mode is a valid outcome, not an error.
type Index interface {
	Search(ctx context.Context, queryVec []float32, limit int, learnedOnly bool) ([]Hit, error)
}

type index struct {
	log     *logger.Logger
	vectors pinecone.VectorStore
	store   store.ConceptStore
}

func NewIndex(log *logger.Logger, vectors pinecone.VectorStore, st store.ConceptStore) Index {
	return &index{
		log:     log.With("service", "RetrievalIndex"),
		vectors: vectors,
		store:   st,
	}
}

func (ix *index) Search(ctx context.Context, queryVec []float32, limit int, learnedOnly bool) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	if len(queryVec) == 0 {
		return []Hit{}, nil
	}

	var filter map[string]any
	if learnedOnly {
		filter = map[string]any{"learned": true}
	}

	matches, err := ix.vectors.QueryMatches(ctx, store.ConceptNamespace, queryVec, limit, filter)
	if err != nil {
		return nil, &kgerr.RetrievalError{Err: err}
	}
	if len(matches) == 0 {
		return []Hit{}, nil
	}

	vectorIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		vectorIDs = append(vectorIDs, m.ID)
	}

	rows, err := ix.store.GetByVectorIDs(ctx, vectorIDs)
	if err != nil {
		return nil, &kgerr.RetrievalError{Err: err}
	}

	byVectorID := map[string]*types.Concept{}
	for _, r := range rows {
		byVectorID[r.VectorID] = r
	}

	// Preserve index ranking; drop matches with no backing row (stale
	// vectors) and, in learned-only mode, rows the DB no longer marks
	// learned.
	out := make([]Hit, 0, len(matches))
	for _, m := range matches {
		row, ok := byVectorID[m.ID]
		if !ok {
			ix.log.Warn("vector match has no backing concept row", "vector_id", m.ID)
			continue
		}
		if learnedOnly && !row.IsLearned {
			continue
		}
		out = append(out, Hit{Concept: row, Score: m.Score})
	}
	return out, nil
}
