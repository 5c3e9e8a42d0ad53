package loader

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions for tag stripping.
var (
	scriptTag       = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag        = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag     = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag         = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag          = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments    = regexp.MustCompile(`(?s)<!--.*?-->`)
	closeBlockTags  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockTags   = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	lineBreakTags   = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag          = regexp.MustCompile(`<[^>]+>`)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
)

// HTML strips markup from HTML pages. Block elements start new lines and
// script, style, and head content is dropped.
type HTML struct{}

// NewHTML creates an HTML extractor.
func NewHTML() *HTML {
	return &HTML{}
}

// Extensions returns the extensions handled.
func (h *HTML) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract returns the readable text of an HTML page, one block per line.
func (h *HTML) Extract(data []byte) (string, error) {
	content := string(data)

	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, htmlComments} {
		content = re.ReplaceAllString(content, "")
	}

	content = openBlockTags.ReplaceAllString(content, "\n")
	content = closeBlockTags.ReplaceAllString(content, "\n")
	content = lineBreakTags.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = horizontalSpace.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}
