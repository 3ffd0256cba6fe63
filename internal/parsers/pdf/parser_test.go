package pdf

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
	input  []byte
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	// The input file is the second-to-last argument.
	m.input, _ = os.ReadFile(args[len(args)-2])
	return m.output, m.err
}

func found(string) (string, error) { return "/usr/bin/pdftotext", nil }

func TestParser_Parse(t *testing.T) {
	runner := &mockRunner{output: []byte("Page one\r\n\fPage two\n\n")}
	p := NewWithRunner(runner)
	p.lookPath = found
	data := []byte("%PDF-1.4 fake pdf content")

	doc, err := p.Parse(context.Background(), "/tmp/focus-group.pdf", data)

	require.NoError(t, err)
	assert.Equal(t, "focus-group", doc.Title)
	assert.Equal(t, "Page one\n\nPage two", doc.Content)
	assert.Equal(t, domain.DocumentTypePDF, doc.Type)
	assert.Equal(t, int64(len(data)), doc.Size)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	assert.Equal(t, data, runner.input)
	assert.NoFileExists(t, runner.args[len(runner.args)-2], "temp file removed")
}

func TestParser_RunnerError(t *testing.T) {
	p := NewWithRunner(&mockRunner{err: errors.New("pdftotext crashed")})
	p.lookPath = found

	doc, err := p.Parse(context.Background(), "scan.pdf", []byte("%PDF"))

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrParseFailed)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestParser_ToolMissing(t *testing.T) {
	runner := &mockRunner{}
	p := NewWithRunner(runner)
	p.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	_, err := p.Parse(context.Background(), "scan.pdf", []byte("%PDF"))

	assert.ErrorIs(t, err, domain.ErrParseFailed)
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.Empty(t, runner.name, "runner not called")
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
