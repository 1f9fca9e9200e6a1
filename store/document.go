package store

// DocumentStatus indicates the outcome of the generation run that produced a
// document row.
type DocumentStatus string

const (
	DocumentCompleted DocumentStatus = "completed"
	DocumentFailed    DocumentStatus = "failed"
)

// Document is one generated academic document together with the request that
// produced it and its generation statistics.
type Document struct {
	UID           string
	Topic         string
	DocumentType  string
	AcademicLevel string
	ResearchAreas string
	Requirements  string
	Mode          string
	Status        DocumentStatus
	Content       string

	TargetWords      int
	WordsGenerated   int
	SentenceCount    int
	ParagraphCount   int
	PromptTokens     int
	CompletionTokens int

	DurationMs int64
	CreatedTs  int64
	UpdatedTs  int64
	ID         int32
}

// FindDocument filters document queries. Nil fields match everything.
type FindDocument struct {
	ID     *int32
	UID    *string
	Status *DocumentStatus
	Limit  *int
}

// DeleteDocument identifies a document to delete.
type DeleteDocument struct {
	UID string
}
