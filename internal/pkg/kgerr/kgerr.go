package kgerr

import "fmt"

// ExtractionError means the LLM extraction output was malformed or empty.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding service failed, including any one chunk
// of a batch. Chunk is the zero-based chunk index, -1 for single calls.
type EmbeddingError struct {
	Chunk int
	Err   error
}

func (e *EmbeddingError) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("embedding failed on chunk %d: %v", e.Chunk, e.Err)
	}
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// PersistenceError carries the concept name whose write failed.
type PersistenceError struct {
	Concept string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist concept %q: %v", e.Concept, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// MissingEndpointError means a relation references a concept that does not
// exist. It is recoverable only inside the ingestion relation loop.
type MissingEndpointError struct {
	From         string
	To           string
	RelationType string
	Missing      string
}

func (e *MissingEndpointError) Error() string {
	return fmt.Sprintf("relation (%s)-[%s]->(%s): unknown concept %q", e.From, e.RelationType, e.To, e.Missing)
}

// RetrievalError means the similarity search failed.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("similarity search failed: %v", e.Err) }

func (e *RetrievalError) Unwrap() error { return e.Err }

// GradingParseError means a grading response was not valid structured output.
type GradingParseError struct {
	QuestionIndex int
	Reason        string
	Err           error
}

func (e *GradingParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grading response for question %d: %s: %v", e.QuestionIndex, e.Reason, e.Err)
	}
	return fmt.Sprintf("grading response for question %d: %s", e.QuestionIndex, e.Reason)
}

func (e *GradingParseError) Unwrap() error { return e.Err }
