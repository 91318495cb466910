package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	n := New()

	doc, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/kb/release_notes-2024.txt",
		Content:  []byte("release contents"),
		MIMEType: "text/plain",
	})

	require.NoError(t, err)
	assert.Equal(t, "release contents", doc.Content)
	assert.Equal(t, "release notes 2024", doc.Title)
	assert.Equal(t, "/kb/release_notes-2024.txt", doc.URI)
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestNormalise_NilInput(t *testing.T) {
	n := New()

	_, err := n.Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_StableDocumentID(t *testing.T) {
	n := New()
	raw := &domain.RawDocument{URI: "/kb/a.txt", Content: []byte("x"), MIMEType: "text/plain"}

	first, err := n.Normalise(context.Background(), raw)
	require.NoError(t, err)
	second, err := n.Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	other, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "/kb/b.txt", Content: []byte("x")})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestNormalise_DropsInvalidUTF8(t *testing.T) {
	n := New()

	doc, err := n.Normalise(context.Background(), &domain.RawDocument{
		URI:     "/kb/binary.txt",
		Content: []byte{'o', 'k', 0xff, 0xfe, '!'},
	})

	require.NoError(t, err)
	assert.Equal(t, "ok!", doc.Content)
}

func TestSupportedMIMETypes_IncludesPlain(t *testing.T) {
	n := New()
	assert.Contains(t, n.SupportedMIMETypes(), "text/plain")
}
