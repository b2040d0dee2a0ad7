package workflow

import (
	repos "github.com/yungbote/gapmap-backend/internal/data/repos/knowledge"
)

// Stage names identify workflow steps in logs and error envelopes.
type Stage string

const (
	StageGenerateQuestions      Stage = "GENERATE_QUESTIONS"
	StageSolveFullContext       Stage = "SOLVE_FULL_CONTEXT"
	StageSolveRestrictedContext Stage = "SOLVE_RESTRICTED_CONTEXT"
	StageEvaluate               Stage = "EVALUATE"
)

// Answer is one model (or canned) answer to a probe question.
type Answer struct {
	Text string `json:"text"`
	// ConceptNames are the retrieved concepts that backed the answer.
	ConceptNames []string `json:"concept_names"`
	// ShortCircuited marks a restricted answer produced without a model
	// call because retrieval found no learned concepts.
	ShortCircuited bool `json:"short_circuited"`
}

// QuestionGrade is the grader's verdict for one question.
type QuestionGrade struct {
	QuestionIndex   int      `json:"question_index"`
	FullScore       float64  `json:"full_score"`
	RestrictedScore float64  `json:"restricted_score"`
	MissingConcepts []string `json:"missing_concepts"`
	Rationale       string   `json:"rationale"`
}

// State is the workflow's accumulating snapshot. Each stage receives the
// prior state by value and returns a new one; stages never mutate what they
// were given.
type State struct {
	SeedConcepts      []*repos.ConceptWithDegree
	Questions         []string
	FullAnswers       []Answer
	RestrictedAnswers []Answer
	Grades            []QuestionGrade
	Report            *Report
}
