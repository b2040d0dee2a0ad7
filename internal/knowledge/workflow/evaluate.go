package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/gapmap-backend/internal/knowledge/prompts"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
)

// evaluate grades each question in its own model call, in question order.
func (p *pipeline) evaluate(ctx context.Context, st State) (State, error) {
	grades := make([]QuestionGrade, 0, len(st.Questions))
	for i, question := range st.Questions {
		prompt, err := prompts.Build(prompts.PromptAnswerGrading, prompts.Input{
			Question:         question,
			FullAnswer:       st.FullAnswers[i].Text,
			RestrictedAnswer: st.RestrictedAnswers[i].Text,
		})
		if err != nil {
			return st, err
		}

		obj, err := p.ai.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
		if err != nil {
			return st, &kgerr.GradingParseError{QuestionIndex: i, Reason: "grading request failed", Err: err}
		}

		grade, err := parseGrade(obj, i)
		if err != nil {
			return st, err
		}
		grades = append(grades, grade)
	}

	next := st
	next.Grades = grades
	next.Report = buildReport(next)
	return next, nil
}

// parseGrade validates one grading payload: both scores present and within
// [0, 100].
func parseGrade(obj map[string]any, questionIndex int) (QuestionGrade, error) {
	full, ok := floatField(obj, "full_score")
	if !ok || full < 0 || full > 100 {
		return QuestionGrade{}, &kgerr.GradingParseError{QuestionIndex: questionIndex, Reason: "full_score outside [0,100]"}
	}
	restricted, ok := floatField(obj, "restricted_score")
	if !ok || restricted < 0 || restricted > 100 {
		return QuestionGrade{}, &kgerr.GradingParseError{QuestionIndex: questionIndex, Reason: "restricted_score outside [0,100]"}
	}

	grade := QuestionGrade{
		QuestionIndex:   questionIndex,
		FullScore:       full,
		RestrictedScore: restricted,
		MissingConcepts: []string{},
	}
	if raw, ok := obj["missing_concepts"].([]any); ok {
		for _, v := range raw {
			s, _ := v.(string)
			s = strings.TrimSpace(s)
			if s != "" {
				grade.MissingConcepts = append(grade.MissingConcepts, s)
			}
		}
	}
	if s, ok := obj["rationale"].(string); ok {
		grade.Rationale = strings.TrimSpace(s)
	}
	return grade, nil
}

func floatField(m map[string]any, key string) (float64, bool) {
	switch t := m[key].(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
