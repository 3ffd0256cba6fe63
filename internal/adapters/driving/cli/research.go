package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research mode analytics",
	Long: `Research mode records how a participant codes: excerpts created, codes
applied, AI suggestions accepted or rejected, and time spent per session.

Enable it per workspace with 'codebook research settings --enable
--participant P01'. Logging is off unless research mode is on.`,
}

var researchSessionCmd = &cobra.Command{
	Use:       "session [start|end]",
	Short:     "Start or end a coding session",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"start", "end"},
	RunE:      runResearchSession,
}

var researchMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show metrics for the active workspace",
	RunE:  runResearchMetrics,
}

var researchSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change research settings of the active workspace",
	RunE:  runResearchSettings,
}

var researchClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded analytics",
	RunE:  runResearchClear,
}

var (
	researchEnable      bool
	researchDisable     bool
	researchAI          bool
	researchParticipant string
)

func init() {
	researchSettingsCmd.Flags().BoolVar(&researchEnable, "enable", false, "Turn research mode on")
	researchSettingsCmd.Flags().BoolVar(&researchDisable, "disable", false, "Turn research mode off")
	researchSettingsCmd.Flags().BoolVar(&researchAI, "ai", false, "Allow AI suggestions for the participant")
	researchSettingsCmd.Flags().StringVar(&researchParticipant, "participant", "", "Participant id")
	researchSettingsCmd.MarkFlagsMutuallyExclusive("enable", "disable")

	researchCmd.AddCommand(researchSessionCmd)
	researchCmd.AddCommand(researchMetricsCmd)
	researchCmd.AddCommand(researchSettingsCmd)
	researchCmd.AddCommand(researchClearCmd)
	rootCmd.AddCommand(researchCmd)
}

func runResearchSession(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}

	switch args[0] {
	case "start":
		if err := researchService.StartSession(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		cmd.Println("Session started")
	case "end":
		if err := researchService.EndSession(cmd.Context()); err != nil {
			return fmt.Errorf("failed to end session: %w", err)
		}
		cmd.Println("Session ended")
	default:
		return fmt.Errorf("session %q: want start or end: %w", args[0], domain.ErrInvalidInput)
	}
	return nil
}

func runResearchMetrics(cmd *cobra.Command, _ []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}

	m := researchService.ResearchMetrics()
	if m == nil {
		cmd.Println("Research mode is off or no participant id is set.")
		return nil
	}

	cmd.Println(heading("Research metrics"))
	cmd.Printf("Participant:        %s\n", m.ParticipantID)
	cmd.Printf("Excerpts:           %d\n", m.TotalExcerpts)
	cmd.Printf("Codes applied:      %d (%d unique)\n", m.TotalCodes, m.UniqueCodes)
	cmd.Printf("Codes per excerpt:  %.2f\n", m.AverageCodesPerExcerpt)
	cmd.Printf("Coding speed:       %.1f excerpts/hour\n", m.CodingSpeed)
	cmd.Printf("AI requested:       %d\n", m.AISuggestionsRequested)
	cmd.Printf("AI accepted:        %d\n", m.AISuggestionsAccepted)
	cmd.Printf("AI rejected:        %d\n", m.AISuggestionsRejected)
	cmd.Printf("AI acceptance:      %.0f%%\n", m.AIAcceptanceRate*100)
	cmd.Printf("Active time:        %s\n", m.TotalActiveTime.Round(time.Second))
	cmd.Printf("Time per excerpt:   %s\n", m.AverageTimePerExcerpt.Round(time.Second))
	cmd.Printf("Documents:          %d\n", m.DocumentsProcessed)
	cmd.Printf("Text coded:         %d characters\n", m.TotalTextCoded)
	return nil
}

func runResearchSettings(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := workspaceService.ActiveWorkspace()
	if err != nil {
		return err
	}
	settings := ws.Research

	flags := cmd.Flags()
	changed := false
	if flags.Changed("enable") {
		settings.ResearchMode, changed = true, true
	}
	if flags.Changed("disable") {
		settings.ResearchMode, changed = false, true
	}
	if flags.Changed("ai") {
		settings.AIEnabled, changed = researchAI, true
	}
	if flags.Changed("participant") {
		settings.ParticipantID, changed = researchParticipant, true
	}

	if changed {
		if err := workspaceService.UpdateResearchSettings(cmd.Context(), settings); err != nil {
			return fmt.Errorf("failed to update research settings: %w", err)
		}
	}

	cmd.Printf("Research mode:  %s\n", onOff(settings.ResearchMode))
	cmd.Printf("AI enabled:     %s\n", onOff(settings.AIEnabled))
	participant := settings.ParticipantID
	if participant == "" {
		participant = "(not set)"
	}
	cmd.Printf("Participant:    %s\n", participant)
	return nil
}

func runResearchClear(cmd *cobra.Command, _ []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}
	if err := researchService.ClearAnalytics(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear analytics: %w", err)
	}
	cmd.Println("Analytics cleared")
	return nil
}
