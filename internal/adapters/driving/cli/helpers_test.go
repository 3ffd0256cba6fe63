package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/services"
	"github.com/custodia-labs/codebook/internal/parsers"
)

// testEnv is a CLI wired to an in-memory workbench.
type testEnv struct {
	wb       *services.Workbench
	settings *services.SettingsService
	config   *memory.ConfigStore
}

// setupTestServices wires every command to a fresh in-memory workbench with
// deterministic ids and time. Globals are restored when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	ids, codes := 0, 0
	wb := services.NewWorkbench(memory.NewStateStore(), parsers.Default(), domain.DefaultAppSettings())
	wb.SetClock(func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) })
	wb.SetIDGenerator(func() string {
		ids++
		return fmt.Sprintf("id-%03d", ids)
	})
	wb.SetJoinCodeGenerator(func() string {
		codes++
		return fmt.Sprintf("JOIN%02d", codes)
	})
	require.NoError(t, wb.Load(context.Background()))

	config := memory.NewConfigStore()
	settings := services.NewSettingsService(config, nil)

	SetServices(Services{
		Workspace:  wb,
		Study:      wb,
		Document:   wb,
		Coding:     wb,
		Analysis:   wb,
		Exchange:   wb,
		Research:   wb,
		Suggestion: services.NewSuggestionService(nil, 0),
		Settings:   settings,
	})
	t.Cleanup(func() {
		SetServices(Services{})
		promptWatcher = nil
	})

	return &testEnv{wb: wb, settings: settings, config: config}
}

// withStudy creates an active study holding one document and returns the document id.
func (e *testEnv) withStudy(t *testing.T, content string) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.wb.CreateStudy(ctx, domain.StudyInput{Title: "Remote work"})
	require.NoError(t, err)
	doc, err := e.wb.AddDocument(ctx, "", "Interview 1", content, domain.DocumentTypeText)
	require.NoError(t, err)
	return doc.ID
}

func (e *testEnv) code(t *testing.T, name string) *domain.Code {
	t.Helper()
	c, err := e.wb.AddCode(context.Background(), "", name, "", domain.CodeLevelMain)
	require.NoError(t, err)
	return c
}

func (e *testEnv) excerpt(t *testing.T, docID string, start, end int, codeIDs ...string) *domain.Excerpt {
	t.Helper()
	sel := domain.TextSelection{DocumentID: docID, StartOffset: start, EndOffset: end}
	x, err := e.wb.AddExcerpt(context.Background(), "", sel, codeIDs, "")
	require.NoError(t, err)
	return x
}

// executeCommand runs the root command with args and returns everything it printed.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
