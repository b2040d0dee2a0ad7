package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RelationType string

const (
	RelationPrerequisite RelationType = "prerequisite"
	RelationComponent    RelationType = "component"
	RelationRelated      RelationType = "related"
	RelationUses         RelationType = "uses"
	RelationManages      RelationType = "manages"
)

var RelationTypes = []RelationType{
	RelationPrerequisite,
	RelationComponent,
	RelationRelated,
	RelationUses,
	RelationManages,
}

func (t RelationType) Valid() bool {
	switch t {
	case RelationPrerequisite, RelationComponent, RelationRelated, RelationUses, RelationManages:
		return true
	}
	return false
}

// ConceptRelation is a directed, typed edge between two concepts, unique by
// (from, to, relation_type).
type ConceptRelation struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FromConceptID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_relation_triple,priority:1;index" json:"from_concept_id"`
	ToConceptID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_relation_triple,priority:2;index" json:"to_concept_id"`
	RelationType  RelationType   `gorm:"column:relation_type;not null;uniqueIndex:idx_relation_triple,priority:3" json:"relation_type"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptRelation) TableName() string { return "concept_relation" }
