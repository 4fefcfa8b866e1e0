package adapter

import (
	"html"
	"regexp"
	"strings"

	"github.com/amishk599/jobscout/internal/model"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// markdownNoise matches markdown emphasis and heading markers left over from
// conversion.
var markdownNoise = regexp.MustCompile(`(?m)^#{1,6}\s+|\*\*|__`)

// extractText converts an HTML or HTML-encoded string to plain text.
// Entities are unescaped first (Greenhouse double-encodes its content), the
// HTML is converted to markdown to keep list and paragraph text, and
// whitespace is collapsed. Tags are stripped directly if conversion fails.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	if !strings.Contains(unescaped, "<") {
		return collapse(unescaped)
	}
	md, err := htmltomarkdown.ConvertString(unescaped)
	if err != nil {
		return collapse(htmlTagRegex.ReplaceAllString(unescaped, " "))
	}
	return collapse(markdownNoise.ReplaceAllString(md, ""))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// queryKeywords splits a search query into lowercased keywords, dropping
// any listed in skip.
func queryKeywords(query string, skip ...string) []string {
	drop := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		drop[s] = struct{}{}
	}
	var out []string
	for _, f := range strings.FieldsFunc(strings.ToLower(query), isSeparator) {
		if _, ok := drop[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// matchesAll reports whether every keyword occurs in haystack as a whole word.
func matchesAll(haystack string, keywords []string) bool {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(haystack), isSeparator) {
		words[w] = struct{}{}
	}
	for _, kw := range keywords {
		if _, ok := words[kw]; !ok {
			return false
		}
	}
	return true
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', ',', '.', ';', ':', '(', ')', '/', '|', '-', '[', ']':
		return true
	}
	return false
}

// limit truncates postings to max when max is positive.
func limit(postings []model.RawPosting, max int) []model.RawPosting {
	if max > 0 && len(postings) > max {
		return postings[:max]
	}
	return postings
}
