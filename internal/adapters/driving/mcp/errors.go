// Package mcp provides an MCP (Model Context Protocol) server adapter for ctxwin.
// It lets AI assistants load documents and retrieve bounded, cited context
// blocks from them.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

// ErrEmptyLoadRequest is returned when load_document is called with neither a path nor text.
var ErrEmptyLoadRequest = errors.New("mcp: path or text is required")
