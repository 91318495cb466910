package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

func TestNormalise_TitleFromHeading(t *testing.T) {
	n := New()

	doc, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/kb/guide.md",
		Content:  []byte("# Deployment Guide\n\nSome body text."),
		MIMEType: "text/markdown",
	})

	require.NoError(t, err)
	assert.Equal(t, "Deployment Guide", doc.Title)
	assert.Contains(t, doc.Content, "Some body text.")
	assert.NotContains(t, doc.Content, "#")
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	n := New()

	doc, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:     "/kb/release_notes.md",
		Content: []byte("no heading here"),
	})

	require.NoError(t, err)
	assert.Equal(t, "release notes", doc.Title)
}

func TestNormalise_NilInput(t *testing.T) {
	n := New()

	_, err := n.Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes code blocks",
			input:    "before\n```go\nfunc main() {}\n```\nafter",
			expected: "before\n\nafter",
		},
		{
			name:     "removes inline code",
			input:    "run `go test` now",
			expected: "run  now",
		},
		{
			name:     "converts links to text",
			input:    "see [the docs](https://example.com) here",
			expected: "see the docs here",
		},
		{
			name:     "removes images",
			input:    "before ![diagram](img.png) after",
			expected: "before  after",
		},
		{
			name:     "removes heading markers",
			input:    "## Section\ntext",
			expected: "Section\ntext",
		},
		{
			name:     "removes bold and italic",
			input:    "**bold** and *italic*",
			expected: "bold and italic",
		},
		{
			name:     "removes list markers",
			input:    "- one\n- two",
			expected: "one\ntwo",
		},
		{
			name:     "collapses excess newlines",
			input:    "a\n\n\n\n\nb",
			expected: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}
