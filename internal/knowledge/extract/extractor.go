package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/gapmap-backend/internal/clients/openai"
	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/knowledge/prompts"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// ExtractedConcept is a concept as returned by the extraction model, before
// persistence.
type ExtractedConcept struct {
	Name        string
	Description string
}

// ExtractedRelation refers to concepts by name; resolution to rows happens at
// persistence time.
type ExtractedRelation struct {
	From string
	To   string
	Type types.RelationType
}

type Extraction struct {
	Concepts  []ExtractedConcept
	Relations []ExtractedRelation
}

type Extractor interface {
	Extract(ctx context.Context, sourceText string) (*Extraction, error)
}

type extractor struct {
	log *logger.Logger
	ai  openai.Client
}

func NewExtractor(log *logger.Logger, ai openai.Client) Extractor {
	return &extractor{
		log: log.With("service", "ConceptExtractor"),
		ai:  ai,
	}
}

func (e *extractor) Extract(ctx context.Context, sourceText string) (*Extraction, error) {
	if strings.TrimSpace(sourceText) == "" {
		return nil, &kgerr.ExtractionError{Reason: "empty source text"}
	}

	p, err := prompts.Build(prompts.PromptConceptExtraction, prompts.Input{SourceText: sourceText})
	if err != nil {
		return nil, &kgerr.ExtractionError{Reason: "prompt build failed", Err: err}
	}

	obj, err := e.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, &kgerr.ExtractionError{Reason: "model call failed", Err: err}
	}

	out, err := parseExtraction(obj)
	if err != nil {
		return nil, err
	}

	e.log.Info("concept extraction complete",
		"concepts", len(out.Concepts),
		"relations", len(out.Relations),
	)
	return out, nil
}

// parseExtraction validates the model payload and dedupes concepts
// case-insensitively (first occurrence wins) and relations by their
// (from, to, type) triple.
func parseExtraction(obj map[string]any) (*Extraction, error) {
	rawConcepts, ok := obj["concepts"].([]any)
	if !ok {
		return nil, &kgerr.ExtractionError{Reason: "payload missing concepts array"}
	}
	rawRelations, ok := obj["relations"].([]any)
	if !ok {
		return nil, &kgerr.ExtractionError{Reason: "payload missing relations array"}
	}

	out := &Extraction{}
	seenConcepts := map[string]bool{}

	for i, rc := range rawConcepts {
		m, ok := rc.(map[string]any)
		if !ok {
			return nil, &kgerr.ExtractionError{Reason: fmt.Sprintf("concept %d is not an object", i)}
		}
		name := stringFromAny(m["name"])
		desc := stringFromAny(m["description"])
		if name == "" {
			return nil, &kgerr.ExtractionError{Reason: fmt.Sprintf("concept %d has empty name", i)}
		}
		if desc == "" {
			return nil, &kgerr.ExtractionError{Reason: fmt.Sprintf("concept %q has empty description", name)}
		}
		key := types.NormalizeName(name)
		if seenConcepts[key] {
			continue
		}
		seenConcepts[key] = true
		out.Concepts = append(out.Concepts, ExtractedConcept{Name: name, Description: desc})
	}

	if len(out.Concepts) == 0 {
		return nil, &kgerr.ExtractionError{Reason: "no concepts extracted"}
	}

	seenRelations := map[string]bool{}
	for i, rr := range rawRelations {
		m, ok := rr.(map[string]any)
		if !ok {
			return nil, &kgerr.ExtractionError{Reason: fmt.Sprintf("relation %d is not an object", i)}
		}
		from := stringFromAny(m["from"])
		to := stringFromAny(m["to"])
		rt := types.RelationType(stringFromAny(m["type"]))
		if from == "" || to == "" {
			return nil, &kgerr.ExtractionError{Reason: fmt.Sprintf("relation %d has empty endpoint", i)}
		}
		if !rt.Valid() {
			return nil, &kgerr.ExtractionError{Reason: fmt.Sprintf("relation %d has invalid type %q", i, string(rt))}
		}
		tripleKey := types.NormalizeName(from) + "|" + types.NormalizeName(to) + "|" + string(rt)
		if seenRelations[tripleKey] {
			continue
		}
		seenRelations[tripleKey] = true
		out.Relations = append(out.Relations, ExtractedRelation{From: from, To: to, Type: rt})
	}

	return out, nil
}

func stringFromAny(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
