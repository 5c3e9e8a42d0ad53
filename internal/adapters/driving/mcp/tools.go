package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the loaded documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer            string           `json:"answer"`
	Confidence        string           `json:"confidence"`
	Sources           []CitationOutput `json:"sources"`
	ChunksUsed        int              `json:"chunks_used"`
	DocumentsSearched int              `json:"documents_searched"`
}

// CitationOutput identifies a chunk that was placed in a context.
type CitationOutput struct {
	Document   string  `json:"document"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"relevance_score"`
	Preview    string  `json:"preview"`
}

// AssembleContextInput is the input schema for the assemble_context tool.
type AssembleContextInput struct {
	Question string `json:"question" jsonschema:"the question to build a context block for"`
}

// AssembleContextOutput is the output schema for the assemble_context tool.
type AssembleContextOutput struct {
	Context    string           `json:"context"`
	Sources    []CitationOutput `json:"sources"`
	ChunksUsed int              `json:"chunks_used"`
}

// LoadDocumentInput is the input schema for the load_document tool.
type LoadDocumentInput struct {
	Path string `json:"path,omitempty" jsonschema:"path of a .txt, .md, .html, .docx or .pdf file to load"`
	Name string `json:"name,omitempty" jsonschema:"document name when loading inline text"`
	Text string `json:"text,omitempty" jsonschema:"inline text to load instead of a file"`
}

// DocumentOutput describes a loaded document.
type DocumentOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Chunks   int    `json:"chunks"`
	Words    int    `json:"words"`
	Chars    int    `json:"chars"`
	LoadedAt string `json:"loaded_at"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents   []DocumentOutput `json:"documents"`
	Count       int              `json:"count"`
	TotalChunks int              `json:"total_chunks"`
}

// ClearDocumentsInput is the input schema for the clear_documents tool.
type ClearDocumentsInput struct{}

// ClearDocumentsOutput is the output schema for the clear_documents tool.
type ClearDocumentsOutput struct {
	Cleared int `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the loaded documents, citing the chunks used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assemble_context",
		Description: "Build the bounded context block for a question without generating an answer",
	}, s.handleAssembleContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_document",
		Description: "Load a document from a file path or inline text",
	}, s.handleLoadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the loaded documents with their chunk and word counts",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_documents",
		Description: "Remove all loaded documents",
	}, s.handleClearDocuments)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Documents.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:            answer.Answer,
		Confidence:        answer.Confidence.String(),
		Sources:           toCitationOutputs(answer.Sources),
		ChunksUsed:        answer.ChunksUsed,
		DocumentsSearched: answer.DocumentsSearched,
	}, nil
}

func (s *Server) handleAssembleContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssembleContextInput,
) (*mcp.CallToolResult, AssembleContextOutput, error) {
	assembled, err := s.ports.Documents.AssembleContext(ctx, input.Question)
	if err != nil {
		return nil, AssembleContextOutput{}, err
	}

	return nil, AssembleContextOutput{
		Context:    assembled.Block,
		Sources:    toCitationOutputs(assembled.Citations),
		ChunksUsed: len(assembled.Chunks),
	}, nil
}

// handleLoadDocument loads a file when a path is given, otherwise inline text.
func (s *Server) handleLoadDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	var (
		doc *domain.Document
		err error
	)
	switch {
	case strings.TrimSpace(input.Path) != "":
		doc, err = s.ports.Documents.Load(ctx, input.Path)
	case input.Text != "":
		name := input.Name
		if name == "" {
			name = "inline"
		}
		doc, err = s.ports.Documents.LoadText(ctx, name, input.Text)
	default:
		return nil, DocumentOutput{}, ErrEmptyLoadRequest
	}
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	return nil, toDocumentOutput(doc), nil
}

func (s *Server) handleListDocuments(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs := s.ports.Documents.Documents()

	output := ListDocumentsOutput{
		Documents:   make([]DocumentOutput, len(docs)),
		Count:       len(docs),
		TotalChunks: s.ports.Documents.ChunkCount(),
	}
	for i, doc := range docs {
		output.Documents[i] = toDocumentOutput(doc)
	}

	return nil, output, nil
}

func (s *Server) handleClearDocuments(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ClearDocumentsInput,
) (*mcp.CallToolResult, ClearDocumentsOutput, error) {
	cleared := len(s.ports.Documents.Documents())
	s.ports.Documents.Clear()
	return nil, ClearDocumentsOutput{Cleared: cleared}, nil
}

func toCitationOutputs(citations []domain.Citation) []CitationOutput {
	out := make([]CitationOutput, len(citations))
	for i, c := range citations {
		out[i] = CitationOutput{
			Document:   c.Document,
			ChunkIndex: c.ChunkIndex,
			Score:      c.Score,
			Preview:    c.Preview,
		}
	}
	return out
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:       doc.ID,
		Name:     doc.Name,
		Path:     doc.Path,
		Chunks:   len(doc.Chunks),
		Words:    doc.WordCount(),
		Chars:    doc.CharCount(),
		LoadedAt: doc.LoadedAt.Format(time.RFC3339),
	}
}
