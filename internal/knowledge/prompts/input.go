package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Ingestion
	SourceText string

	// Question generation
	SeedConceptsJSON string
	QuestionCount    int

	// Answering
	Question     string
	ContextBlock string

	// Grading
	FullAnswer       string
	RestrictedAnswer string
}
