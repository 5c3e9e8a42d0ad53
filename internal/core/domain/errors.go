package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates there was no text to chunk.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoDocumentsLoaded indicates a query arrived before any document was loaded.
	ErrNoDocumentsLoaded = errors.New("no documents loaded")

	// ErrInvalidBudget indicates a context budget violates its invariants.
	ErrInvalidBudget = errors.New("invalid context budget")

	// Document loader errors.

	// ErrFileNotFound indicates the document path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates no loader handles the document's format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Backend errors.

	// ErrLLMUnavailable indicates no generation backend is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrBackendUnavailable indicates the generation backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendProtocol indicates the generation backend returned an unusable response.
	ErrBackendProtocol = errors.New("backend protocol error")

	// ErrCompactionFailed indicates history compaction failed and the history was left untouched.
	ErrCompactionFailed = errors.New("history compaction failed")
)
