package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/gapmap-backend/internal/clients/pinecone"
	repos "github.com/yungbote/gapmap-backend/internal/data/repos/knowledge"
	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

type fakeVectors struct {
	matches    []pinecone.VectorMatch
	queryErr   error
	lastFilter map[string]any
}

func (f *fakeVectors) Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error {
	return nil
}

func (f *fakeVectors) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	f.lastFilter = filter
	return f.matches, f.queryErr
}

func (f *fakeVectors) SetMetadata(ctx context.Context, namespace, id string, metadata map[string]any) error {
	return nil
}

type fakeStore struct {
	rows []*types.Concept
}

func (s *fakeStore) UpsertConcept(ctx context.Context, name, description string, embedding []float32) (*types.Concept, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) CreateRelation(ctx context.Context, fromName, toName string, rt types.RelationType) (*types.ConceptRelation, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) GetByName(ctx context.Context, name string) (*types.Concept, error) {
	return nil, nil
}

func (s *fakeStore) GetByVectorIDs(ctx context.Context, vectorIDs []string) ([]*types.Concept, error) {
	want := map[string]bool{}
	for _, id := range vectorIDs {
		want[id] = true
	}
	var out []*types.Concept
	for _, r := range s.rows {
		if want[r.VectorID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) TopByDegree(ctx context.Context, limit int) ([]*repos.ConceptWithDegree, error) {
	return nil, nil
}

func (s *fakeStore) LearnedConcepts(ctx context.Context) ([]*types.Concept, error) { return nil, nil }

func (s *fakeStore) RelationsFor(ctx context.Context, conceptIDs []uuid.UUID) ([]*types.ConceptRelation, error) {
	return nil, nil
}

func (s *fakeStore) MarkLearned(ctx context.Context, name string, learned bool) (*types.Concept, error) {
	return nil, nil
}

func (s *fakeStore) Counts(ctx context.Context) (int64, int64, error) { return 0, 0, nil }

func testIndex(t *testing.T, vecs *fakeVectors, st *fakeStore) Index {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewIndex(log, vecs, st)
}

func TestSearchPreservesRankingAndScores(t *testing.T) {
	vecs := &fakeVectors{matches: []pinecone.VectorMatch{
		{ID: "concept:a", Score: 0.92},
		{ID: "concept:b", Score: 0.85},
	}}
	st := &fakeStore{rows: []*types.Concept{
		{VectorID: "concept:b", Name: "B"},
		{VectorID: "concept:a", Name: "A"},
	}}

	hits, err := testIndex(t, vecs, st).Search(context.Background(), []float32{1}, 10, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].Concept.Name != "A" || hits[0].Score != 0.92 {
		t.Fatalf("ranking broken: %+v", hits[0])
	}
	if vecs.lastFilter != nil {
		t.Fatalf("no filter expected for full search, got %v", vecs.lastFilter)
	}
}

func TestSearchLearnedOnly(t *testing.T) {
	vecs := &fakeVectors{matches: []pinecone.VectorMatch{
		{ID: "concept:a", Score: 0.9},
		{ID: "concept:b", Score: 0.8},
	}}
	// The index metadata can lag the DB; concept:b is no longer learned.
	st := &fakeStore{rows: []*types.Concept{
		{VectorID: "concept:a", Name: "A", IsLearned: true},
		{VectorID: "concept:b", Name: "B", IsLearned: false},
	}}

	hits, err := testIndex(t, vecs, st).Search(context.Background(), []float32{1}, 10, true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Concept.Name != "A" {
		t.Fatalf("learned-only cross-check failed: %+v", hits)
	}
	if vecs.lastFilter == nil || vecs.lastFilter["learned"] != true {
		t.Fatalf("learned filter not sent: %v", vecs.lastFilter)
	}
}

func TestSearchEmptyIsNotAnError(t *testing.T) {
	vecs := &fakeVectors{}
	hits, err := testIndex(t, vecs, &fakeStore{}).Search(context.Background(), []float32{1}, 10, true)
	if err != nil {
		t.Fatalf("empty learned-only search should not error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits = %v, want none", hits)
	}
}

func TestSearchDropsStaleVectors(t *testing.T) {
	vecs := &fakeVectors{matches: []pinecone.VectorMatch{
		{ID: "concept:gone", Score: 0.99},
		{ID: "concept:a", Score: 0.5},
	}}
	st := &fakeStore{rows: []*types.Concept{{VectorID: "concept:a", Name: "A"}}}

	hits, err := testIndex(t, vecs, st).Search(context.Background(), []float32{1}, 10, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Concept.Name != "A" {
		t.Fatalf("stale vector not dropped: %+v", hits)
	}
}

func TestSearchWrapsBackendFailure(t *testing.T) {
	vecs := &fakeVectors{queryErr: errors.New("index down")}
	_, err := testIndex(t, vecs, &fakeStore{}).Search(context.Background(), []float32{1}, 10, false)
	var rErr *kgerr.RetrievalError
	if !errors.As(err, &rErr) {
		t.Fatalf("want RetrievalError, got %v", err)
	}
}
