// Package cli provides the codebook command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driving"
	"github.com/custodia-labs/codebook/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	studyFlag string
)

// Services wired by main.
var (
	workspaceService  driving.WorkspaceService
	studyService      driving.StudyService
	documentService   driving.DocumentService
	codingService     driving.CodingService
	analysisService   driving.AnalysisService
	exchangeService   driving.ExchangeService
	researchService   driving.ResearchService
	suggestionService driving.SuggestionService
	settingsService   driving.SettingsService
	promptWatcher     PromptWatcher
)

// PromptWatcher reloads prompt templates when they change on disk.
type PromptWatcher interface {
	Watch(ctx context.Context, onChange func(name string)) error
}

// Services groups the driving ports the CLI dispatches to.
type Services struct {
	Workspace  driving.WorkspaceService
	Study      driving.StudyService
	Document   driving.DocumentService
	Coding     driving.CodingService
	Analysis   driving.AnalysisService
	Exchange   driving.ExchangeService
	Research   driving.ResearchService
	Suggestion driving.SuggestionService
	Settings   driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "codebook",
	Short: "Qualitative coding from the terminal",
	Long: `Codebook is a qualitative data analysis tool.

Import interview transcripts and field notes, code excerpts with a
hierarchical codebook, group codes into themes, and analyse how codes
co-occur. Studies live in workspaces that can be shared with
collaborators through a join code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&studyFlag, "study", "s", "", "Study id or title (defaults to the active study)")
}

// SetServices wires the driving ports into the commands.
func SetServices(s Services) {
	workspaceService = s.Workspace
	studyService = s.Study
	documentService = s.Document
	codingService = s.Coding
	analysisService = s.Analysis
	exchangeService = s.Exchange
	researchService = s.Research
	suggestionService = s.Suggestion
	settingsService = s.Settings
}

// SetPromptWatcher enables prompt hot reload while the MCP server runs.
func SetPromptWatcher(w PromptWatcher) {
	promptWatcher = w
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command, for ExecuteContext and shell completion.
func Root() *cobra.Command {
	return rootCmd
}

// currentStudy resolves --study, falling back to the active study.
func currentStudy() (*domain.Study, error) {
	if studyService == nil {
		return nil, errors.New("study service not configured")
	}
	if studyFlag == "" {
		study, err := studyService.ActiveStudy()
		if err != nil {
			return nil, fmt.Errorf("%w: run 'codebook study use <study>' or pass --study", err)
		}
		return study, nil
	}
	return findStudy(studyFlag)
}

// findStudy matches a study by id, then by case-insensitive title.
func findStudy(ref string) (*domain.Study, error) {
	studies := studyService.ListStudies()
	for i := range studies {
		if studies[i].ID == ref {
			return &studies[i], nil
		}
	}
	for i := range studies {
		if strings.EqualFold(studies[i].Title, ref) {
			return &studies[i], nil
		}
	}
	return nil, fmt.Errorf("study %q: %w", ref, domain.ErrNotFound)
}

// requireCoding returns the active study id once the coding service is wired.
func requireCoding() (string, error) {
	if codingService == nil {
		return "", errors.New("coding service not configured")
	}
	study, err := currentStudy()
	if err != nil {
		return "", err
	}
	return study.ID, nil
}
