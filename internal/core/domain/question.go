package domain

import "time"

// QuestionLog records a single answered question for later review.
// Only the raw log is kept; aggregation happens elsewhere.
type QuestionLog struct {
	// ID is a random unique identifier.
	ID string

	// Question is the student's question text.
	Question string

	// Answer is the generated answer text.
	Answer string

	// ReferencedURLs are the resource links cited in the answer context.
	ReferencedURLs []string

	// AskedAt is when the question was asked.
	AskedAt time.Time
}
