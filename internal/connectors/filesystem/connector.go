// Package filesystem enumerates a local knowledge-base directory and
// produces raw documents for normalisation.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/navigator-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads documents from a directory tree. Hidden files and
// directories are skipped; unreadable files are logged and skipped so
// one bad file never fails a whole index build.
type Connector struct {
	rootPath string
}

// New creates a filesystem connector rooted at the given path.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// RootPath returns the configured root path.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks the root path exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("%w: knowledge base path %s: %v", domain.ErrInvalidInput, c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: knowledge base path %s is not a directory", domain.ErrInvalidInput, c.rootPath)
	}
	return nil
}

// Load walks the directory tree and returns all readable documents.
// An empty directory yields an empty slice, not an error.
func (c *Connector) Load(ctx context.Context) ([]domain.RawDocument, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	var docs []domain.RawDocument

	err := filepath.WalkDir(c.rootPath, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if path != c.rootPath && isHidden(entry.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if isHidden(entry.Name()) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			logger.Warn("skipping unreadable file %s: %v", path, readErr)
			return nil
		}

		docs = append(docs, domain.RawDocument{
			URI:      path,
			Content:  content,
			MIMEType: detectMIMEType(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// isHidden reports whether a file or directory name is hidden
// (dot-prefixed).
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// customMIMETypes covers extensions the platform MIME database maps
// inconsistently or not at all.
var customMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".rst":      "text/plain",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
}

// detectMIMEType determines the MIME type from the file extension.
// Files without an extension are treated as plain text; unknown
// extensions map to application/octet-stream.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}

	if mimeType, ok := customMIMETypes[ext]; ok {
		return mimeType
	}

	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		// Strip parameters like "; charset=utf-8".
		if idx := strings.Index(mimeType, ";"); idx != -1 {
			mimeType = mimeType[:idx]
		}
		return strings.TrimSpace(mimeType)
	}

	return "application/octet-stream"
}
