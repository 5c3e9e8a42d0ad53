package driven

import "context"

// DocumentLoader extracts plain text from a document file.
// The core only ever receives already-extracted text.
type DocumentLoader interface {
	// Load returns the raw text of the document at path.
	// Fails with domain.ErrFileNotFound or domain.ErrUnsupportedFormat.
	Load(ctx context.Context, path string) (string, error)

	// SupportedExtensions returns the lower-case file extensions the loader accepts.
	SupportedExtensions() []string
}
