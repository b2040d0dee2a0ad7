package workflow

import (
	"context"
	"strings"

	"github.com/yungbote/gapmap-backend/internal/knowledge/prompts"
	"github.com/yungbote/gapmap-backend/internal/knowledge/retrieval"
)

// unknownAnswer is returned for restricted questions when no learned concept
// was retrieved. It must read as an admission of ignorance so the grader
// scores it zero.
const unknownAnswer = "I do not know. None of the concepts I have learned cover this question."

func (p *pipeline) solveFullContext(ctx context.Context, st State) (State, error) {
	answers := make([]Answer, 0, len(st.Questions))
	for _, q := range st.Questions {
		hits, err := p.retrieve(ctx, q, false)
		if err != nil {
			return st, err
		}

		// An empty full-context retrieval still asks the model; the
		// expert may answer from general knowledge.
		contextBlock := renderContext(hits)
		if contextBlock == "" {
			contextBlock = "(no reference concepts retrieved)"
		}

		prompt, err := prompts.Build(prompts.PromptContextAnswer, prompts.Input{
			ContextBlock: contextBlock,
			Question:     q,
		})
		if err != nil {
			return st, err
		}
		text, err := p.ai.GenerateText(ctx, prompt.System, prompt.User)
		if err != nil {
			return st, err
		}

		answers = append(answers, Answer{
			Text:         strings.TrimSpace(text),
			ConceptNames: hitNames(hits),
		})
	}

	next := st
	next.FullAnswers = answers
	return next, nil
}

func (p *pipeline) solveRestrictedContext(ctx context.Context, st State) (State, error) {
	answers := make([]Answer, 0, len(st.Questions))
	for _, q := range st.Questions {
		hits, err := p.retrieve(ctx, q, true)
		if err != nil {
			return st, err
		}

		// Nothing learned covers the question: answer without a model
		// call. The learner persona has no knowledge to draw on.
		if len(hits) == 0 {
			answers = append(answers, Answer{
				Text:           unknownAnswer,
				ConceptNames:   []string{},
				ShortCircuited: true,
			})
			continue
		}

		prompt, err := prompts.Build(prompts.PromptLearnerAnswer, prompts.Input{
			ContextBlock: renderContext(hits),
			Question:     q,
		})
		if err != nil {
			return st, err
		}
		text, err := p.ai.GenerateText(ctx, prompt.System, prompt.User)
		if err != nil {
			return st, err
		}

		answers = append(answers, Answer{
			Text:         strings.TrimSpace(text),
			ConceptNames: hitNames(hits),
		})
	}

	next := st
	next.RestrictedAnswers = answers
	return next, nil
}

func (p *pipeline) retrieve(ctx context.Context, question string, learnedOnly bool) ([]retrieval.Hit, error) {
	vec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	return p.index.Search(ctx, vec, p.cfg.RetrievalK, learnedOnly)
}

func renderContext(hits []retrieval.Hit) string {
	var b strings.Builder
	for _, h := range hits {
		b.WriteString("- ")
		b.WriteString(h.Concept.Name)
		b.WriteString(": ")
		b.WriteString(h.Concept.Description)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func hitNames(hits []retrieval.Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Concept.Name)
	}
	return out
}
