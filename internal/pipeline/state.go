package pipeline

import (
	"fmt"

	"github.com/jonesrussell/docify/internal/domain"
)

// validTransitions is the document status machine. Failed is reachable
// from every non-terminal state; a failed document can only be reset to
// pending by an external retry.
var validTransitions = map[domain.Status][]domain.Status{
	domain.StatusPending: {
		domain.StatusScraping, // run started
		domain.StatusFailed,   // input validation rejected the document
	},
	domain.StatusScraping: {
		domain.StatusAnalyzing, // content extracted
		domain.StatusFailed,    // fetch or extraction error
	},
	domain.StatusAnalyzing: {
		domain.StatusCompleted, // result persisted
		domain.StatusFailed,    // analysis or validation error
	},
	domain.StatusCompleted: {},
	domain.StatusFailed: {
		domain.StatusPending, // external retry resets the run
	},
}

// ValidateTransition checks whether a status transition is allowed.
func ValidateTransition(from, to domain.Status) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source status: %s", from)
	}

	for _, status := range allowed {
		if status == to {
			return nil
		}
	}

	return fmt.Errorf("invalid status transition from %s to %s", from, to)
}

// CanRetry reports whether a document may be reset for another run.
func CanRetry(status domain.Status) bool {
	return status == domain.StatusFailed
}
