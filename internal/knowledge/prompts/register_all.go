package prompts

// RegisterAll registers every prompt in the registry using RegisterSpec(Spec{...}).
func RegisterAll() {
	// ---------- Ingestion ----------

	RegisterSpec(Spec{
		Name:       PromptConceptExtraction,
		Version:    1,
		SchemaName: "concept_extraction",
		Schema:     ConceptExtractionSchema,
		System: `
You are building a concept graph from technical source material.
Extract the distinct concepts the text actually teaches and the relationships between them.
Do not invent concepts or relationships not grounded in the text.
Return JSON only.`,
		User: `
SOURCE_TEXT:
{{.SourceText}}

Output rules:
- concepts: each with a short canonical name and a one-to-three sentence description.
- Concept names are title-case noun phrases; no duplicates that differ only by case or spacing.
- relations: directed edges between concept names from the list above.
- type must be one of: prerequisite, component, related, uses, manages.
- "A prerequisite B" means A must be understood before B.
- Keep the graph sparse; only include relationships the text supports.`,
		Validators: []Validator{
			RequireNonEmpty("SourceText", func(in Input) string { return in.SourceText }),
		},
	})

	// ---------- Gap analysis workflow ----------

	RegisterSpec(Spec{
		Name:       PromptQuestionGeneration,
		Version:    1,
		SchemaName: "question_generation",
		Schema:     QuestionGenerationSchema,
		System: `
You are writing probe questions to measure understanding of a knowledge domain.
Questions must be answerable from the seed concepts and their descriptions.
Return JSON only.`,
		User: `
SEED_CONCEPTS_JSON (the most connected concepts in the graph):
{{.SeedConceptsJSON}}

Task:
- Write exactly {{.QuestionCount}} open-ended questions.
- Each question should probe understanding of one or more seed concepts.
- Favor questions whose answers require connecting concepts, not reciting definitions.
- Questions must stand alone; do not reference "the text" or "the list above".`,
		Validators: []Validator{
			RequireNonEmpty("SeedConceptsJSON", func(in Input) string { return in.SeedConceptsJSON }),
			RequirePositive("QuestionCount", func(in Input) int { return in.QuestionCount }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptContextAnswer,
		Version: 1,
		System: `
You are a domain expert answering a technical question.
Ground your answer in the reference concepts provided; where they are silent you may use general knowledge.
Answer in prose, three to six sentences.`,
		User: `
REFERENCE_CONCEPTS:
{{.ContextBlock}}

QUESTION:
{{.Question}}`,
		Validators: []Validator{
			RequireNonEmpty("Question", func(in Input) string { return in.Question }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptLearnerAnswer,
		Version: 1,
		System: `
You are simulating a learner who knows ONLY the concepts listed below and nothing else about the domain.
You must answer using only that knowledge. If the listed concepts do not cover the question,
say plainly that you do not know and name what you would need to learn.
Never draw on outside knowledge. Answer in prose, three to six sentences.`,
		User: `
KNOWN_CONCEPTS (the learner's entire knowledge):
{{.ContextBlock}}

QUESTION:
{{.Question}}`,
		Validators: []Validator{
			RequireNonEmpty("ContextBlock", func(in Input) string { return in.ContextBlock }),
			RequireNonEmpty("Question", func(in Input) string { return in.Question }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptAnswerGrading,
		Version:    1,
		SchemaName: "answer_grading",
		Schema:     AnswerGradingSchema,
		System: `
You are grading two answers to the same question: one written with full domain context,
one written by a learner restricted to a subset of concepts.
Score each answer from 0 to 100 for accuracy, logical coherence, and completeness combined.
An answer that admits ignorance scores 0. Return JSON only.`,
		User: `
QUESTION:
{{.Question}}

FULL_CONTEXT_ANSWER:
{{.FullAnswer}}

RESTRICTED_ANSWER:
{{.RestrictedAnswer}}

Task:
- full_score grades the full-context answer; restricted_score grades the restricted answer.
- missing_concepts: concept names the restricted answer needed but lacked; empty if none.
- rationale: one or two sentences comparing the answers.`,
		Validators: []Validator{
			RequireNonEmpty("Question", func(in Input) string { return in.Question }),
			RequireNonEmpty("FullAnswer", func(in Input) string { return in.FullAnswer }),
			RequireNonEmpty("RestrictedAnswer", func(in Input) string { return in.RestrictedAnswer }),
		},
	})
}
