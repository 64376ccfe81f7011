package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts HTML to plain text using a proper HTML parser.
// Handles entities, strips tags, and trims surrounding whitespace.
func ToText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html2text.HTML2Text(s))
}

// ToLine is ToText for labels: runs of whitespace, including line breaks
// left by block elements, collapse to a single space.
func ToLine(s string) string {
	return strings.Join(strings.Fields(ToText(s)), " ")
}
