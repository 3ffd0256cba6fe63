// Package pdf extracts text from PDF files with poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Parser handles PDF documents.
type Parser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF parser that shells out to pdftotext.
func New() *Parser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF parser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Parser {
	return &Parser{runner: runner, lookPath: exec.LookPath}
}

// SupportedTypes returns the document types this parser handles.
func (p *Parser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypePDF}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to get pdftotext.
func InstallInstructions() string {
	return `PDF import needs pdftotext from poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

// Parse writes data to a temporary file and runs pdftotext on it.
func (p *Parser) Parse(ctx context.Context, filename string, data []byte) (*driven.ParsedDocument, error) {
	name := filepath.Base(filename)

	if _, err := p.lookPath(toolName); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, domain.ErrParseFailed, ErrPDFToolNotFound)
	}

	tmp, err := os.CreateTemp("", "codebook-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, toolName, "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("%s: pdftotext failed: %w: %w", name, domain.ErrParseFailed, err)
	}

	// pdftotext separates pages with form feeds.
	text := strings.ReplaceAll(string(out), "\f", "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return &driven.ParsedDocument{
		Title:   domain.TitleForFile(filename),
		Content: strings.TrimSpace(text),
		Type:    domain.DocumentTypePDF,
		Size:    int64(len(data)),
	}, nil
}
