// Package splitter provides recursive character text splitting for course
// material. Bodies are cut into overlapping chunks at the coarsest separator
// that keeps segments under the target size, so chunk boundaries follow
// paragraph, line and sentence structure where possible.
package splitter

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultChunkOverlap = 200

// defaultSeparators is the separator priority order. The splitter descends
// to a finer separator only when a segment still exceeds the chunk size.
// The empty string is the raw character-cut fallback.
var defaultSeparators = []string{"\n\n", "\n", "。", "、", " ", ""}

// Splitter splits text into bounded, overlapping chunks.
// Splitting is pure and deterministic: the same body always yields the same
// chunks, which keeps derived chunk ids stable across re-ingestion.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators overrides the separator priority order.
func WithSeparators(separators []string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts text into chunks of at most the configured size, each chunk
// after the first beginning with the tail of its predecessor. Separators are
// kept attached to the end of the segment they terminate, so with overlap 0
// the chunks concatenate back to the original text byte-for-byte.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	segments := s.segment(text, 0)
	return s.merge(segments)
}

// segment recursively cuts text into pieces no larger than the chunk size,
// trying separators in priority order. Separators stay attached to the
// preceding piece so concatenating all segments reproduces the input.
func (s *Splitter) segment(text string, level int) []string {
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	if level >= len(s.separators) {
		return hardCut(text, s.chunkSize)
	}

	sep := s.separators[level]
	if sep == "" {
		return hardCut(text, s.chunkSize)
	}
	if !strings.Contains(text, sep) {
		return s.segment(text, level+1)
	}

	var segments []string
	for _, piece := range splitAfter(text, sep) {
		if runeLen(piece) <= s.chunkSize {
			segments = append(segments, piece)
			continue
		}
		segments = append(segments, s.segment(piece, level+1)...)
	}
	return segments
}

// merge greedily packs segments into chunks up to the chunk size, seeding
// each new chunk with the overlap tail of the previous one.
func (s *Splitter) merge(segments []string) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, seg := range segments {
		segLen := runeLen(seg)
		if currentLen > 0 && currentLen+segLen > s.chunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)

			// Seed the next chunk with the overlap tail, trimmed so the
			// tail plus the incoming segment still fits the chunk size.
			tail := overlapTail(chunk, s.overlap)
			if maxTail := s.chunkSize - segLen; runeLen(tail) > maxTail {
				tail = overlapTail(tail, maxTail)
			}

			current.Reset()
			current.WriteString(tail)
			currentLen = runeLen(tail)
		}
		current.WriteString(seg)
		currentLen += segLen
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// overlapTail returns the last n runes of text.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

// splitAfter splits text by sep, keeping sep attached to the preceding piece.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	// SplitAfter yields a trailing empty string when text ends with sep.
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// hardCut slices text into pieces of exactly size runes (the last piece may
// be shorter). Raw fallback when no separator can keep segments small enough.
func hardCut(text string, size int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)/size)+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// runeLen counts characters rather than bytes; chunk sizes are defined in
// characters so Japanese text is not penalised by UTF-8 width.
func runeLen(s string) int {
	return len([]rune(s))
}
