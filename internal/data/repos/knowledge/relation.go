package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/pkg/dbctx"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

type RelationRepo interface {
	Upsert(dbc dbctx.Context, row *types.ConceptRelation) error

	GetByConceptIDs(dbc dbctx.Context, conceptIDs []uuid.UUID) ([]*types.ConceptRelation, error)
	CountAll(dbc dbctx.Context) (int64, error)
}

type relationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationRepo(db *gorm.DB, baseLog *logger.Logger) RelationRepo {
	return &relationRepo{db: db, log: baseLog.With("repo", "RelationRepo")}
}

func (r *relationRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *relationRepo) Upsert(dbc dbctx.Context, row *types.ConceptRelation) error {
	if row == nil || row.FromConceptID == uuid.Nil || row.ToConceptID == uuid.Nil || row.RelationType == "" {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	return r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "from_concept_id"}, {Name: "to_concept_id"}, {Name: "relation_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *relationRepo) GetByConceptIDs(dbc dbctx.Context, conceptIDs []uuid.UUID) ([]*types.ConceptRelation, error) {
	// union: from in ids OR to in ids
	var out []*types.ConceptRelation
	if len(conceptIDs) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("from_concept_id IN ? OR to_concept_id IN ?", conceptIDs, conceptIDs).
		Order("relation_type ASC, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *relationRepo) CountAll(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).Model(&types.ConceptRelation{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
