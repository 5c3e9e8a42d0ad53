package loader

import (
	"strings"
	"unicode/utf8"
)

// PlainText passes text files through unchanged. Invalid UTF-8 sequences
// are replaced with U+FFFD and a leading byte order mark is dropped.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Extensions returns the extensions handled.
func (p *PlainText) Extensions() []string {
	return []string{".txt", ".text"}
}

// Extract returns the file contents as text.
func (p *PlainText) Extract(data []byte) (string, error) {
	text := string(data)
	text = strings.TrimPrefix(text, "\ufeff")
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return text, nil
}
