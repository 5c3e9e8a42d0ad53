package loader

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Markdown renders Markdown to plain text by walking the goldmark AST.
// Block boundaries become blank lines, list items one per line, and inline
// markup is dropped while its text is kept. Raw HTML is skipped.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown extractor.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

// Extensions returns the extensions handled.
func (m *Markdown) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract returns the text content of a Markdown document.
func (m *Markdown) Extract(data []byte) (string, error) {
	doc := m.md.Parser().Parse(text.NewReader(data))

	w := &textWriter{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.Kind() {
			case ast.KindParagraph, ast.KindHeading, ast.KindList,
				ast.KindBlockquote, ast.KindThematicBreak:
				w.blankLine()
			case ast.KindTextBlock:
				w.newline()
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			w.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.newline()
			}
		case *ast.String:
			w.Write(node.Value)
		case *ast.AutoLink:
			w.Write(node.Label(data))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				w.Write(seg.Value(data))
			}
			w.blankLine()
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	out := blankRuns.ReplaceAllString(w.String(), "\n\n")
	return string(bytes.TrimSpace([]byte(out))), nil
}

// textWriter collects text and tracks trailing newlines.
type textWriter struct {
	bytes.Buffer
}

func (w *textWriter) trailingNewlines() int {
	b := w.Bytes()
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '\n'; i-- {
		n++
	}
	return n
}

func (w *textWriter) newline() {
	if w.Len() > 0 && w.trailingNewlines() == 0 {
		w.WriteByte('\n')
	}
}

func (w *textWriter) blankLine() {
	if w.Len() == 0 {
		return
	}
	for i := w.trailingNewlines(); i < 2; i++ {
		w.WriteByte('\n')
	}
}
