package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/gapmap-backend/internal/clients/pinecone"
	repos "github.com/yungbote/gapmap-backend/internal/data/repos/knowledge"
	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/pkg/dbctx"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// Namespace for concept vectors in the vector index.
const ConceptNamespace = "concepts"

// ConceptStore owns concept and relation persistence plus the vector index
// mirror. Rows in Postgres are the source of truth; the vector index holds a
// copy of each embedding under VectorID for similarity search.
type ConceptStore interface {
	UpsertConcept(ctx context.Context, name, description string, embedding []float32) (*types.Concept, error)
	CreateRelation(ctx context.Context, fromName, toName string, rt types.RelationType) (*types.ConceptRelation, error)

	GetByName(ctx context.Context, name string) (*types.Concept, error)
	GetByVectorIDs(ctx context.Context, vectorIDs []string) ([]*types.Concept, error)
	TopByDegree(ctx context.Context, limit int) ([]*repos.ConceptWithDegree, error)
	LearnedConcepts(ctx context.Context) ([]*types.Concept, error)
	RelationsFor(ctx context.Context, conceptIDs []uuid.UUID) ([]*types.ConceptRelation, error)

	MarkLearned(ctx context.Context, name string, learned bool) (*types.Concept, error)
	Counts(ctx context.Context) (concepts int64, relations int64, err error)
}

type conceptStore struct {
	log       *logger.Logger
	db        *gorm.DB
	concepts  repos.ConceptRepo
	relations repos.RelationRepo
	vectors   pinecone.VectorStore
}

func NewConceptStore(
	log *logger.Logger,
	db *gorm.DB,
	concepts repos.ConceptRepo,
	relations repos.RelationRepo,
	vectors pinecone.VectorStore,
) ConceptStore {
	return &conceptStore{
		log:       log.With("service", "ConceptStore"),
		db:        db,
		concepts:  concepts,
		relations: relations,
		vectors:   vectors,
	}
}

func (s *conceptStore) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

// UpsertConcept writes the row and mirrors the embedding into the vector
// index. Re-ingesting a known name updates description and embedding in place;
// learned state is never touched here.
func (s *conceptStore) UpsertConcept(ctx context.Context, name, description string, embedding []float32) (*types.Concept, error) {
	row := &types.Concept{
		NameKey:     types.NormalizeName(name),
		Name:        name,
		Description: description,
	}
	if err := row.SetEmbeddingVector(embedding); err != nil {
		return nil, &kgerr.PersistenceError{Concept: name, Err: err}
	}

	// Resolve existing row first so the vector ID stays stable across
	// re-ingestion.
	existing, err := s.concepts.GetByNameKey(s.dbc(ctx), row.NameKey)
	if err != nil {
		return nil, &kgerr.PersistenceError{Concept: name, Err: err}
	}
	if existing != nil && existing.VectorID != "" {
		row.VectorID = existing.VectorID
	} else {
		row.VectorID = "concept:" + uuid.NewString()
	}

	if err := s.concepts.UpsertByNameKey(s.dbc(ctx), row); err != nil {
		return nil, &kgerr.PersistenceError{Concept: name, Err: err}
	}

	saved, err := s.concepts.GetByNameKey(s.dbc(ctx), row.NameKey)
	if err != nil {
		return nil, &kgerr.PersistenceError{Concept: name, Err: err}
	}
	if saved == nil {
		return nil, &kgerr.PersistenceError{Concept: name, Err: gorm.ErrRecordNotFound}
	}

	if s.vectors != nil && len(embedding) > 0 {
		err := s.vectors.Upsert(ctx, ConceptNamespace, []pinecone.Vector{{
			ID:     saved.VectorID,
			Values: embedding,
			Metadata: map[string]any{
				"name_key": saved.NameKey,
				"learned":  saved.IsLearned,
			},
		}})
		if err != nil {
			return nil, &kgerr.PersistenceError{Concept: name, Err: err}
		}
	}

	return saved, nil
}

// CreateRelation resolves both endpoints by name. A missing endpoint is a
// MissingEndpointError so ingestion can skip it without aborting.
func (s *conceptStore) CreateRelation(ctx context.Context, fromName, toName string, rt types.RelationType) (*types.ConceptRelation, error) {
	fromKey := types.NormalizeName(fromName)
	toKey := types.NormalizeName(toName)

	rows, err := s.concepts.GetByNameKeys(s.dbc(ctx), []string{fromKey, toKey})
	if err != nil {
		return nil, &kgerr.PersistenceError{Concept: fromName, Err: err}
	}

	byKey := map[string]*types.Concept{}
	for _, r := range rows {
		byKey[r.NameKey] = r
	}

	from, ok := byKey[fromKey]
	if !ok {
		return nil, &kgerr.MissingEndpointError{From: fromName, To: toName, RelationType: string(rt), Missing: fromName}
	}
	to, ok := byKey[toKey]
	if !ok {
		return nil, &kgerr.MissingEndpointError{From: fromName, To: toName, RelationType: string(rt), Missing: toName}
	}

	rel := &types.ConceptRelation{
		FromConceptID: from.ID,
		ToConceptID:   to.ID,
		RelationType:  rt,
	}
	if err := s.relations.Upsert(s.dbc(ctx), rel); err != nil {
		return nil, &kgerr.PersistenceError{Concept: fromName, Err: err}
	}
	return rel, nil
}

func (s *conceptStore) GetByName(ctx context.Context, name string) (*types.Concept, error) {
	return s.concepts.GetByNameKey(s.dbc(ctx), types.NormalizeName(name))
}

func (s *conceptStore) GetByVectorIDs(ctx context.Context, vectorIDs []string) ([]*types.Concept, error) {
	return s.concepts.GetByVectorIDs(s.dbc(ctx), vectorIDs)
}

func (s *conceptStore) TopByDegree(ctx context.Context, limit int) ([]*repos.ConceptWithDegree, error) {
	return s.concepts.TopByDegree(s.dbc(ctx), limit)
}

func (s *conceptStore) LearnedConcepts(ctx context.Context) ([]*types.Concept, error) {
	return s.concepts.GetLearned(s.dbc(ctx))
}

func (s *conceptStore) RelationsFor(ctx context.Context, conceptIDs []uuid.UUID) ([]*types.ConceptRelation, error) {
	return s.relations.GetByConceptIDs(s.dbc(ctx), conceptIDs)
}

// MarkLearned flips learned state on the row and refreshes the vector
// metadata so learned-only retrieval can filter in the index.
func (s *conceptStore) MarkLearned(ctx context.Context, name string, learned bool) (*types.Concept, error) {
	now := time.Now().UTC()
	row, err := s.concepts.SetLearned(s.dbc(ctx), types.NormalizeName(name), learned, &now)
	if err != nil {
		return nil, &kgerr.PersistenceError{Concept: name, Err: err}
	}
	if row == nil {
		return nil, nil
	}

	if s.vectors != nil && row.VectorID != "" {
		err := s.vectors.SetMetadata(ctx, ConceptNamespace, row.VectorID, map[string]any{
			"name_key": row.NameKey,
			"learned":  row.IsLearned,
		})
		if err != nil {
			return nil, &kgerr.PersistenceError{Concept: name, Err: err}
		}
	}

	return row, nil
}

func (s *conceptStore) Counts(ctx context.Context) (int64, int64, error) {
	concepts, err := s.concepts.CountAll(s.dbc(ctx))
	if err != nil {
		return 0, 0, err
	}
	relations, err := s.relations.CountAll(s.dbc(ctx))
	if err != nil {
		return 0, 0, err
	}
	return concepts, relations, nil
}
