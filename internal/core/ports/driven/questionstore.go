package driven

import (
	"context"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

// QuestionStore persists the log of answered questions.
type QuestionStore interface {
	// SaveQuestion appends a question log entry.
	SaveQuestion(ctx context.Context, log domain.QuestionLog) error

	// RecentQuestions returns up to limit entries, most recent first.
	RecentQuestions(ctx context.Context, limit int) ([]domain.QuestionLog, error)
}
