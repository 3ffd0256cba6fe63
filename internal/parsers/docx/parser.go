// Package docx extracts text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

const documentPart = "word/document.xml"

// Parser handles DOCX documents.
type Parser struct{}

// New creates a new DOCX parser.
func New() *Parser {
	return &Parser{}
}

// SupportedTypes returns the document types this parser handles.
func (p *Parser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypeDOCX}
}

// Parse extracts paragraph text from word/document.xml, one paragraph per line.
func (p *Parser) Parse(_ context.Context, filename string, data []byte) (*driven.ParsedDocument, error) {
	name := filepath.Base(filename)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: not a docx archive: %w", name, domain.ErrParseFailed)
	}

	content, err := extractDocumentText(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, domain.ErrParseFailed, err)
	}

	return &driven.ParsedDocument{
		Title:   domain.TitleForFile(filename),
		Content: content,
		Type:    domain.DocumentTypeDOCX,
		Size:    int64(len(data)),
	}, nil
}

func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		return parseDocumentXML(content)
	}
	return "", errors.New("missing " + documentPart)
}

// parseDocumentXML walks the body token by token so that tabs and breaks
// inside runs are kept.
func parseDocumentXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		result    strings.Builder
		inRun     bool
		inText    bool
		paragraph int
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if paragraph > 0 {
					result.WriteString("\n")
				}
				paragraph++
			case "r":
				inRun = true
			case "t":
				inText = inRun
			case "tab":
				// Tab stops in paragraph properties share the name.
				if inRun {
					result.WriteString("\t")
				}
			case "br", "cr":
				if inRun {
					result.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				inRun = false
			}
		case xml.CharData:
			if inText {
				result.Write(t)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
