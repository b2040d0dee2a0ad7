package workflow

import (
	"context"
	"fmt"

	"github.com/yungbote/gapmap-backend/internal/clients/openai"
	"github.com/yungbote/gapmap-backend/internal/knowledge/embed"
	"github.com/yungbote/gapmap-backend/internal/knowledge/retrieval"
	"github.com/yungbote/gapmap-backend/internal/knowledge/store"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// Config tunes the gap analysis run. Zero values fall back to defaults.
type Config struct {
	SeedCount     int // top-degree concepts used to seed question generation
	QuestionCount int // questions generated per run
	RetrievalK    int // nearest neighbors retrieved per question
}

func (c Config) withDefaults() Config {
	if c.SeedCount <= 0 {
		c.SeedCount = 5
	}
	if c.QuestionCount <= 0 {
		c.QuestionCount = 3
	}
	if c.RetrievalK <= 0 {
		c.RetrievalK = 10
	}
	return c
}

// Pipeline runs the differential gap analysis: generate probe questions,
// answer them under full and learned-only knowledge, then grade the gap.
type Pipeline interface {
	Run(ctx context.Context) (*Report, error)
}

type stageFunc func(ctx context.Context, st State) (State, error)

type pipeline struct {
	log      *logger.Logger
	cfg      Config
	ai       openai.Client
	store    store.ConceptStore
	embedder embed.Embedder
	index    retrieval.Index
}

func NewPipeline(
	log *logger.Logger,
	cfg Config,
	ai openai.Client,
	st store.ConceptStore,
	embedder embed.Embedder,
	index retrieval.Index,
) Pipeline {
	return &pipeline{
		log:      log.With("service", "GapAnalysisPipeline"),
		cfg:      cfg.withDefaults(),
		ai:       ai,
		store:    st,
		embedder: embedder,
		index:    index,
	}
}

func (p *pipeline) Run(ctx context.Context) (*Report, error) {
	stages := []struct {
		name Stage
		fn   stageFunc
	}{
		{StageGenerateQuestions, p.generateQuestions},
		{StageSolveFullContext, p.solveFullContext},
		{StageSolveRestrictedContext, p.solveRestrictedContext},
		{StageEvaluate, p.evaluate},
	}

	st := State{}
	for _, stage := range stages {
		p.log.Info("stage starting", "stage", string(stage.name))
		next, err := stage.fn(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", string(stage.name), err)
		}
		st = next
		p.log.Info("stage complete", "stage", string(stage.name))
	}

	if st.Report == nil {
		return nil, fmt.Errorf("stage %s: produced no report", string(StageEvaluate))
	}
	return st.Report, nil
}
