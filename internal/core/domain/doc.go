// Package domain defines the core entities of the context window manager.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded document and its chunks
//   - Chunk: A bounded, immutable slice of a document
//   - ScoredChunk: A chunk ranked against a query
//   - Turn: One exchange in a conversation history
//   - ContextBudget: The limits that bound every assembled context
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
