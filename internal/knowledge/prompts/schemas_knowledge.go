package prompts

// ConceptExtractionSchema is the structured output for ingestion. Relation
// types mirror the closed set accepted by the graph layer.
func ConceptExtractionSchema() map[string]any {
	concept := ObjectSchema(map[string]any{
		"name":        StringSchema(),
		"description": StringSchema(),
	}, []string{"name", "description"})

	relation := ObjectSchema(map[string]any{
		"from": StringSchema(),
		"to":   StringSchema(),
		"type": EnumSchema("prerequisite", "component", "related", "uses", "manages"),
	}, []string{"from", "to", "type"})

	return ObjectSchema(map[string]any{
		"concepts":  ArraySchema(concept),
		"relations": ArraySchema(relation),
	}, []string{"concepts", "relations"})
}

func QuestionGenerationSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"questions": StringArraySchema(),
	}, []string{"questions"})
}

func AnswerGradingSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"full_score":       NumberSchema(),
		"restricted_score": NumberSchema(),
		"missing_concepts": StringArraySchema(),
		"rationale":        StringSchema(),
	}, []string{"full_score", "restricted_score", "missing_concepts", "rationale"})
}
