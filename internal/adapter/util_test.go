package adapter

import (
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		not   []string
	}{
		{
			name:  "double-encoded HTML from Greenhouse API",
			input: "This is the job description. &lt;p&gt;Any HTML included.&lt;/p&gt;",
			want:  []string{"This is the job description.", "Any HTML included."},
			not:   []string{"<p>", "&lt;"},
		},
		{
			name:  "nested tags and whitespace",
			input: "<p>We are <strong>hiring</strong>.</p>\n<ul>\n  <li>Write code</li>\n  <li>Review PRs</li>\n</ul>",
			want:  []string{"We are hiring.", "Write code", "Review PRs"},
			not:   []string{"<li>", "**"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractText(tc.input)
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("extractText(%q) = %q, missing %q", tc.input, got, w)
				}
			}
			for _, n := range tc.not {
				if strings.Contains(got, n) {
					t.Errorf("extractText(%q) = %q, should not contain %q", tc.input, got, n)
				}
			}
			if strings.Contains(got, "  ") || strings.Contains(got, "\n") {
				t.Errorf("whitespace not collapsed: %q", got)
			}
		})
	}

	if got := extractText("  plain   text "); got != "plain text" {
		t.Errorf("plain text: got %q", got)
	}
	if got := extractText(""); got != "" {
		t.Errorf("empty: got %q", got)
	}
}

func TestMatchesAll(t *testing.T) {
	kw := queryKeywords("Software Engineer, Backend Remote")
	if !matchesAll("Backend Software Engineer (Remote - US)", kw) {
		t.Error("expected match")
	}
	if matchesAll("Software Engineering Manager, Backend", kw) {
		t.Error("partial words must not match")
	}
	if len(queryKeywords("co-op intern", "intern")) != 2 {
		t.Error("expected hyphenated words split and skip list honored")
	}
}
