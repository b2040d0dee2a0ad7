package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/gapmap-backend/internal/knowledge/prompts"
)

func (p *pipeline) generateQuestions(ctx context.Context, st State) (State, error) {
	seeds, err := p.store.TopByDegree(ctx, p.cfg.SeedCount)
	if err != nil {
		return st, err
	}
	if len(seeds) == 0 {
		return st, fmt.Errorf("no concepts in graph; ingest material first")
	}

	type seedJSON struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Degree      int    `json:"degree"`
	}
	seedList := make([]seedJSON, 0, len(seeds))
	for _, s := range seeds {
		seedList = append(seedList, seedJSON{
			Name:        s.Name,
			Description: s.Description,
			Degree:      s.Degree,
		})
	}
	seedsRaw, err := json.Marshal(seedList)
	if err != nil {
		return st, err
	}

	prompt, err := prompts.Build(prompts.PromptQuestionGeneration, prompts.Input{
		SeedConceptsJSON: string(seedsRaw),
		QuestionCount:    p.cfg.QuestionCount,
	})
	if err != nil {
		return st, err
	}

	obj, err := p.ai.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		return st, err
	}

	rawQuestions, ok := obj["questions"].([]any)
	if !ok {
		return st, fmt.Errorf("payload missing questions array")
	}
	questions := make([]string, 0, len(rawQuestions))
	for _, q := range rawQuestions {
		s, _ := q.(string)
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		questions = append(questions, s)
	}
	if len(questions) == 0 {
		return st, fmt.Errorf("model produced no usable questions")
	}
	// Fewer questions than requested is acceptable; more are truncated.
	if len(questions) > p.cfg.QuestionCount {
		questions = questions[:p.cfg.QuestionCount]
	}
	if len(questions) < p.cfg.QuestionCount {
		p.log.Warn("model produced fewer questions than requested",
			"requested", p.cfg.QuestionCount,
			"got", len(questions),
		)
	}

	next := st
	next.SeedConcepts = seeds
	next.Questions = questions
	return next, nil
}
