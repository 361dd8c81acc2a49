package driving

import (
	"context"
	"io"

	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
)

// TransferReport summarises a bulk transfer operation.
type TransferReport struct {
	// Items is the number of content items transferred.
	Items int

	// Chunks is the number of chunks transferred. Zero for export/import,
	// which operate on whole bodies.
	Chunks int

	// Failed lists keys that could not be transferred.
	Failed []string
}

// TransferService moves course content in and out of the knowledge base.
type TransferService interface {
	// Export writes the whole corpus as JSON to w.
	Export(ctx context.Context, w io.Writer) (TransferReport, error)

	// Import reads a JSON corpus from r and ingests every item, re-chunking
	// and re-embedding as it goes. Items that fail are skipped and reported.
	Import(ctx context.Context, r io.Reader) (TransferReport, error)

	// Migrate copies items and their stored embeddings from the current
	// store into dst without re-embedding. Existing items in dst under the
	// same keys are replaced.
	Migrate(ctx context.Context, dst driven.CourseStore) (TransferReport, error)
}
