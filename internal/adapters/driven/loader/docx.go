package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// documentPart is the main body of a WordprocessingML package.
const documentPart = "word/document.xml"

// DOCX extracts paragraph text from Word documents.
type DOCX struct{}

// NewDOCX creates a DOCX extractor.
func NewDOCX() *DOCX {
	return &DOCX{}
}

// Extensions returns the extensions handled.
func (d *DOCX) Extensions() []string {
	return []string{".docx"}
}

// Extract returns one line per paragraph. Tabs and explicit breaks inside a
// run are kept as "\t" and "\n".
func (d *DOCX) Extract(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a zip archive: %w", domain.ErrInvalidInput, err)
	}

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, documentPart, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, documentPart, err)
		}

		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, documentPart)
}

// parseDocumentXML walks word/document.xml token by token so that text in
// tables, hyperlinks, and other containers is not lost.
func parseDocumentXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		result    strings.Builder
		paragraph strings.Builder
		inText    bool
		inTabs    bool
		started   bool
	)

	flush := func() {
		if started {
			result.WriteString("\n")
		}
		result.WriteString(paragraph.String())
		paragraph.Reset()
		started = true
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					paragraph.WriteString("\t")
				}
			case "br", "cr":
				paragraph.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabs = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
