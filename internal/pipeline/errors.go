package pipeline

import "fmt"

// Category classifies where in the pipeline a run failed. It feeds the
// human-readable error detail stored on the document.
type Category string

const (
	CategoryInput      Category = "input"
	CategoryFetch      Category = "fetch"
	CategoryExtraction Category = "extraction"
	CategoryAnalysis   Category = "analysis"
	CategoryValidation Category = "validation"
	CategoryStorage    Category = "storage"
)

// categoryMessages map categories to the detail prefix shown to users.
var categoryMessages = map[Category]string{
	CategoryInput:      "Invalid request",
	CategoryFetch:      "Could not retrieve the page",
	CategoryExtraction: "No usable content found",
	CategoryAnalysis:   "Analysis failed",
	CategoryValidation: "Analysis produced no valid blocks",
	CategoryStorage:    "Could not save the result",
}

// Error is a categorized pipeline failure.
type Error struct {
	Category Category
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Detail renders the message persisted as the document's error detail.
func (e *Error) Detail() string {
	prefix, ok := categoryMessages[e.Category]
	if !ok {
		prefix = "Processing failed"
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func stageErr(category Category, err error) *Error {
	return &Error{Category: category, Err: err}
}
