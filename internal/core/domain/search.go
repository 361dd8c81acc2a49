package domain

// DefaultSearchLimit is the number of results returned when no limit is given.
const DefaultSearchLimit = 5

// SearchResult represents a single retrieval hit. It is transient and never
// persisted.
type SearchResult struct {
	// Content is the matched chunk text.
	Content string

	// Title is the parent content item's title.
	Title string

	// ResourceURL is the parent's course-platform link, if any.
	ResourceURL string

	// VideoURL is the parent's video link, if any.
	VideoURL string

	// Score is the cosine distance (1 - similarity). Lower is more relevant;
	// results are ordered by ascending score.
	Score float64
}

// Similarity returns the cosine similarity corresponding to the score.
func (r SearchResult) Similarity() float64 {
	return 1 - r.Score
}
