package knowledge

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Concept struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	// NameKey is the normalized natural key: lowercased, whitespace-collapsed.
	NameKey     string         `gorm:"column:name_key;not null;uniqueIndex:idx_concept_name_key" json:"-"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Embedding   datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"-"` // []float32
	// Embeddings are mirrored into the vector index; keep the reference here.
	VectorID  string         `gorm:"column:vector_id;index" json:"vector_id,omitempty"`
	IsLearned bool           `gorm:"column:is_learned;not null;default:false" json:"is_learned"`
	LearnedAt *time.Time     `gorm:"column:learned_at" json:"learned_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Concept) TableName() string { return "concept" }

// NormalizeName produces the natural key for a concept name: trimmed,
// lowercased, inner whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// EmbedText is the canonical form handed to the embedding service. It must be
// reproduced exactly so re-embedding the same concept is comparable across runs.
func EmbedText(name, description string) string {
	return name + ": " + description
}

func (c *Concept) EmbeddingVector() []float32 {
	if len(c.Embedding) == 0 {
		return nil
	}
	var out []float32
	if err := json.Unmarshal(c.Embedding, &out); err != nil {
		return nil
	}
	return out
}

func (c *Concept) SetEmbeddingVector(v []float32) error {
	if len(v) == 0 {
		c.Embedding = nil
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Embedding = datatypes.JSON(raw)
	return nil
}
