package utils

import (
	"regexp"
	"strings"
)

// URLPattern matches http and https links in free text.
var URLPattern = regexp.MustCompile(`https?://[^\s]+`)

// ExtractURLs returns every link found in the text, in order of appearance.
func ExtractURLs(text string) []string {
	return URLPattern.FindAllString(text, -1)
}

// CompressWhitespacePreserveNewlines replaces multiple consecutive spaces with a single space
// while preserving newlines.
func CompressWhitespacePreserveNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
