package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/pkg/dbctx"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// ConceptWithDegree pairs a concept with its relation degree at read time.
type ConceptWithDegree struct {
	types.Concept
	Degree int `gorm:"column:degree" json:"degree"`
}

type ConceptRepo interface {
	UpsertByNameKey(dbc dbctx.Context, row *types.Concept) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Concept, error)
	GetByNameKey(dbc dbctx.Context, key string) (*types.Concept, error)
	GetByNameKeys(dbc dbctx.Context, keys []string) ([]*types.Concept, error)
	GetByVectorIDs(dbc dbctx.Context, vectorIDs []string) ([]*types.Concept, error)
	GetLearned(dbc dbctx.Context) ([]*types.Concept, error)

	// TopByDegree returns concepts ranked by relation degree descending.
	// Ties break by name_key ascending. limit <= 0 returns all concepts.
	TopByDegree(dbc dbctx.Context, limit int) ([]*ConceptWithDegree, error)

	SetLearned(dbc dbctx.Context, key string, learned bool, at *time.Time) (*types.Concept, error)
	CountAll(dbc dbctx.Context) (int64, error)
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *conceptRepo) UpsertByNameKey(dbc dbctx.Context, row *types.Concept) error {
	if row == nil || row.NameKey == "" {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()

	assign := map[string]interface{}{
		"name":        row.Name,
		"description": row.Description,
		"updated_at":  row.UpdatedAt,
	}
	if len(row.Embedding) > 0 {
		assign["embedding"] = row.Embedding
	}
	if row.VectorID != "" {
		assign["vector_id"] = row.VectorID
	}

	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("name_key = ?", row.NameKey).
		Assign(assign).
		FirstOrCreate(row).Error
}

func (r *conceptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Concept, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Concept
	if err := r.tx(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conceptRepo) GetByNameKey(dbc dbctx.Context, key string) (*types.Concept, error) {
	if key == "" {
		return nil, nil
	}
	rows, err := r.GetByNameKeys(dbc, []string{key})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *conceptRepo) GetByNameKeys(dbc dbctx.Context, keys []string) ([]*types.Concept, error) {
	var out []*types.Concept
	if len(keys) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("name_key IN ?", keys).
		Order("name_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) GetByVectorIDs(dbc dbctx.Context, vectorIDs []string) ([]*types.Concept, error) {
	var out []*types.Concept
	if len(vectorIDs) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("vector_id IN ?", vectorIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) GetLearned(dbc dbctx.Context) ([]*types.Concept, error) {
	var out []*types.Concept
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("is_learned = ?", true).
		Order("name_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) TopByDegree(dbc dbctx.Context, limit int) ([]*ConceptWithDegree, error) {
	var out []*ConceptWithDegree
	q := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.Concept{}).
		Select("concept.*, COUNT(concept_relation.id) AS degree").
		Joins(`LEFT JOIN concept_relation ON (concept_relation.from_concept_id = concept.id OR concept_relation.to_concept_id = concept.id) AND concept_relation.deleted_at IS NULL`).
		Group("concept.id").
		Order("degree DESC, concept.name_key ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) SetLearned(dbc dbctx.Context, key string, learned bool, at *time.Time) (*types.Concept, error) {
	row, err := r.GetByNameKey(dbc, key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	updates := map[string]interface{}{
		"is_learned": learned,
		"learned_at": nil,
		"updated_at": time.Now().UTC(),
	}
	if learned {
		ts := time.Now().UTC()
		if at != nil {
			ts = at.UTC()
		}
		updates["learned_at"] = ts
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.Concept{}).
		Where("id = ?", row.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(dbc, row.ID)
}

func (r *conceptRepo) CountAll(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).Model(&types.Concept{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
