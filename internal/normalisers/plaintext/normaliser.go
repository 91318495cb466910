package plaintext

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser passes text content through untouched. It is the fallback
// for every text-like MIME type the knowledge base may contain.
type Normaliser struct{}

// New creates a plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/css",
		"text/javascript",
		"text/typescript",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-shellscript",
		"text/x-sql",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise wraps the raw bytes in a Document. Invalid UTF-8 sequences
// are dropped so downstream chunking stays rune-safe.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &domain.Document{
		ID:       documentID(raw.URI),
		URI:      raw.URI,
		Title:    titleFromPath(raw.URI),
		Content:  strings.ToValidUTF8(string(raw.Content), ""),
		LoadedAt: time.Now(),
	}, nil
}

// documentID derives a stable identifier from the URI so rebuilt
// indexes assign identical chunk IDs.
func documentID(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return hex.EncodeToString(sum[:])[:12]
}

// titleFromPath turns "annual_report-2024.txt" into "annual report 2024".
func titleFromPath(uri string) string {
	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}
