package prompts

type PromptName string

const (
	// Ingestion
	PromptConceptExtraction PromptName = "concept_extraction"

	// Gap analysis workflow
	PromptQuestionGeneration PromptName = "question_generation"
	PromptContextAnswer      PromptName = "context_answer"
	PromptLearnerAnswer      PromptName = "learner_answer"
	PromptAnswerGrading      PromptName = "answer_grading"
)
