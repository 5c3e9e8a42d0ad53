// Package loader extracts plain text from document files.
//
// Each supported format is handled by an Extractor registered against one or
// more file extensions. The Loader picks the extractor from the path's
// extension and never inspects file contents to guess a format.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// DefaultMaxFileSize caps how much of a file is read.
const DefaultMaxFileSize int64 = 50 << 20

// Extractor converts the bytes of one document format to text.
type Extractor interface {
	// Extensions returns the lower-case extensions handled, including the dot.
	Extensions() []string

	// Extract returns the document text.
	Extract(data []byte) (string, error)
}

// Loader dispatches documents to extractors by file extension.
type Loader struct {
	extractors  map[string]Extractor
	maxFileSize int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxFileSize = n
		}
	}
}

// WithExtractor registers an extra extractor, replacing any existing
// extractor for the same extensions.
func WithExtractor(e Extractor) Option {
	return func(l *Loader) {
		l.register(e)
	}
}

// New creates a loader for plain text, Markdown, HTML, DOCX, and PDF files.
func New(opts ...Option) *Loader {
	l := &Loader{
		extractors:  make(map[string]Extractor),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, e := range []Extractor{
		NewPlainText(),
		NewMarkdown(),
		NewHTML(),
		NewDOCX(),
		NewPDF(),
	} {
		l.register(e)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) register(e Extractor) {
	for _, ext := range e.Extensions() {
		l.extractors[strings.ToLower(ext)] = e
	}
}

// SupportedExtensions returns the registered extensions in sorted order.
func (l *Loader) SupportedExtensions() []string {
	exts := make([]string, 0, len(l.extractors))
	for ext := range l.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads the file at path and returns its text.
// Windows line endings are normalised to "\n".
func (l *Loader) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := l.extractors[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s has extension %s", domain.ErrUnsupportedFormat, path, ext)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if info.Size() > l.maxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, path, info.Size(), l.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text, err := extractor.Extract(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	logger.Debug("Loaded %s (%s, %d bytes -> %d chars)", filepath.Base(path), ext, len(data), len(text))
	return text, nil
}
