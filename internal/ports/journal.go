package ports

import (
	"context"
	"time"

	"liveRiskSizer/internal/domain"
)

// JournalEntry is a persisted risk assessment together with its storage
// identity and the time it was recorded.
type JournalEntry struct {
	ID         string // Time-sortable entry identifier
	RecordedAt time.Time
	Assessment domain.RiskAssessment
}

// AssessmentJournal stores the assessments produced over a session so sizing
// history can be reviewed offline.
type AssessmentJournal interface {
	// Append persists one assessment and returns its assigned identifier.
	Append(ctx context.Context, a *domain.RiskAssessment) (string, error)

	// Recent retrieves the most recent entries for a symbol, newest first,
	// up to limit. An empty symbol matches all symbols.
	Recent(ctx context.Context, symbol string, limit int) ([]*JournalEntry, error)
}
