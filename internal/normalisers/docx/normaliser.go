package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise extracts text from a DOCX document (a ZIP archive with the
// body in word/document.xml).
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a DOCX archive: %v", domain.ErrInvalidInput, err)
	}

	content, err := bodyText(archive)
	if err != nil {
		return nil, err
	}

	return &domain.Document{
		ID:       documentID(raw.URI),
		URI:      raw.URI,
		Title:    documentTitle(archive, raw.URI),
		Content:  content,
		LoadedAt: time.Now(),
	}, nil
}

// bodyText streams word/document.xml through the XML tokenizer and
// collects w:t runs. Paragraphs become lines; w:tab and w:br map to
// whitespace. A DOCX without a body yields empty content.
func bodyText(archive *zip.Reader) (string, error) {
	data, err := archiveFile(archive, "word/document.xml")
	if errors.Is(err, errMemberMissing) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var (
		out       strings.Builder
		paragraph strings.Builder
		inRunText bool
	)
	endParagraph := func() {
		if paragraph.Len() == 0 {
			return
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(paragraph.String())
		paragraph.Reset()
	}

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "t":
				inRunText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br":
				paragraph.WriteByte('\n')
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inRunText = false
			case "p":
				endParagraph()
			}
		case xml.CharData:
			if inRunText {
				paragraph.Write(element)
			}
		}
	}
	endParagraph()

	return strings.TrimSpace(out.String()), nil
}

// documentTitle prefers the dc:title core property and falls back to a
// cleaned-up filename.
func documentTitle(archive *zip.Reader, uri string) string {
	if data, err := archiveFile(archive, "docProps/core.xml"); err == nil {
		var props struct {
			Title string `xml:"title"`
		}
		if xml.Unmarshal(data, &props) == nil && strings.TrimSpace(props.Title) != "" {
			return strings.TrimSpace(props.Title)
		}
	}

	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

var errMemberMissing = errors.New("archive member missing")

// archiveFile reads one member of the ZIP archive.
func archiveFile(archive *zip.Reader, name string) ([]byte, error) {
	for _, member := range archive.File {
		if member.Name != name {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, name, err)
		}
		return data, nil
	}
	return nil, errMemberMissing
}

// documentID derives a stable identifier from the URI so rebuilt
// indexes assign identical chunk IDs.
func documentID(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return hex.EncodeToString(sum[:])[:12]
}
