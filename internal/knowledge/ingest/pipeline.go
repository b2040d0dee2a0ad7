package ingest

import (
	"context"
	"errors"

	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/knowledge/embed"
	"github.com/yungbote/gapmap-backend/internal/knowledge/extract"
	"github.com/yungbote/gapmap-backend/internal/knowledge/store"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// SkippedRelation records a relation dropped because an endpoint concept was
// never extracted.
type SkippedRelation struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Type    string `json:"type"`
	Missing string `json:"missing"`
}

type Result struct {
	ConceptCount     int               `json:"concept_count"`
	RelationCount    int               `json:"relation_count"`
	SkippedRelations []SkippedRelation `json:"skipped_relations"`
}

// Pipeline turns free text into persisted graph state: extract, embed,
// upsert concepts, then wire relations.
type Pipeline interface {
	Ingest(ctx context.Context, sourceText string) (*Result, error)
}

type pipeline struct {
	log       *logger.Logger
	extractor extract.Extractor
	embedder  embed.Embedder
	store     store.ConceptStore
}

func NewPipeline(
	log *logger.Logger,
	extractor extract.Extractor,
	embedder embed.Embedder,
	st store.ConceptStore,
) Pipeline {
	return &pipeline{
		log:       log.With("service", "IngestPipeline"),
		extractor: extractor,
		embedder:  embedder,
		store:     st,
	}
}

func (p *pipeline) Ingest(ctx context.Context, sourceText string) (*Result, error) {
	extraction, err := p.extractor.Extract(ctx, sourceText)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(extraction.Concepts))
	for i, c := range extraction.Concepts {
		texts[i] = types.EmbedText(c.Name, c.Description)
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	// Concept writes are fail-fast: a persistence failure aborts the run.
	for i, c := range extraction.Concepts {
		if _, err := p.store.UpsertConcept(ctx, c.Name, c.Description, vectors[i]); err != nil {
			return nil, err
		}
	}

	// Relations are best-effort against missing endpoints only; any other
	// failure still aborts.
	result := &Result{
		ConceptCount:     len(extraction.Concepts),
		SkippedRelations: []SkippedRelation{},
	}
	for _, r := range extraction.Relations {
		_, err := p.store.CreateRelation(ctx, r.From, r.To, r.Type)
		if err != nil {
			var missing *kgerr.MissingEndpointError
			if errors.As(err, &missing) {
				p.log.Warn("skipping relation with unknown endpoint",
					"from", r.From,
					"to", r.To,
					"type", string(r.Type),
					"missing", missing.Missing,
				)
				result.SkippedRelations = append(result.SkippedRelations, SkippedRelation{
					From:    r.From,
					To:      r.To,
					Type:    string(r.Type),
					Missing: missing.Missing,
				})
				continue
			}
			return nil, err
		}
		result.RelationCount++
	}

	p.log.Info("ingestion complete",
		"concepts", result.ConceptCount,
		"relations", result.RelationCount,
		"skipped_relations", len(result.SkippedRelations),
	)
	return result, nil
}
