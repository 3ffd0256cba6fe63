package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Manage studies",
	Long: `A study is a research project: its documents, codebook, themes and memos.

Most commands work on the active study. Switch it with 'codebook study use'
or pass --study to a single command.`,
}

var studyCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a study and make it active",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudyCreate,
}

var studyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List studies",
	RunE:  runStudyList,
}

var studyUseCmd = &cobra.Command{
	Use:   "use [study]",
	Short: "Switch the active study",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudyUse,
}

var studyShowCmd = &cobra.Command{
	Use:   "show [study]",
	Short: "Show a study and its statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStudyShow,
}

var studyUpdateCmd = &cobra.Command{
	Use:   "update [study]",
	Short: "Edit study details",
	Long:  `Edit study details. Only the flags you pass are changed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStudyUpdate,
}

var studyDeleteCmd = &cobra.Command{
	Use:   "delete [study]",
	Short: "Delete a study and everything in it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStudyDelete,
}

var studyDuplicateCmd = &cobra.Command{
	Use:   "duplicate [study]",
	Short: "Copy a study",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStudyDuplicate,
}

var (
	studyTitle       string
	studyDescription string
	studyQuestion    string
	studyStatus      string
	studyTags        string
	studyColor       string
)

func init() {
	for _, c := range []*cobra.Command{studyCreateCmd, studyUpdateCmd} {
		c.Flags().StringVarP(&studyDescription, "description", "d", "", "Study description")
		c.Flags().StringVarP(&studyQuestion, "question", "q", "", "Research question")
		c.Flags().StringVar(&studyStatus, "status", "", "Status: planning, in-progress, analysis, writing, completed")
		c.Flags().StringVar(&studyTags, "tags", "", "Comma-separated tags")
		c.Flags().StringVar(&studyColor, "color", "", "Hex colour, e.g. #3b82f6")
	}
	studyUpdateCmd.Flags().StringVarP(&studyTitle, "title", "t", "", "New title")

	studyCmd.AddCommand(studyCreateCmd)
	studyCmd.AddCommand(studyListCmd)
	studyCmd.AddCommand(studyUseCmd)
	studyCmd.AddCommand(studyShowCmd)
	studyCmd.AddCommand(studyUpdateCmd)
	studyCmd.AddCommand(studyDeleteCmd)
	studyCmd.AddCommand(studyDuplicateCmd)
	rootCmd.AddCommand(studyCmd)
}

func runStudyCreate(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	study, err := studyService.CreateStudy(cmd.Context(), domain.StudyInput{
		Title:            args[0],
		Description:      studyDescription,
		ResearchQuestion: studyQuestion,
		Status:           domain.StudyStatus(studyStatus),
		Tags:             splitList(studyTags),
		Color:            studyColor,
	})
	if err != nil {
		return fmt.Errorf("failed to create study: %w", err)
	}

	cmd.Println(successStyle.Render("✓") + " Created study " + study.Title)
	cmd.Printf("  ID: %s\n", study.ID)
	return nil
}

func runStudyList(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	studies := studyService.ListStudies()
	if len(studies) == 0 {
		cmd.Println("No studies. Create one with 'codebook study create <title>'.")
		return nil
	}

	activeID := ""
	if active, err := studyService.ActiveStudy(); err == nil {
		activeID = active.ID
	}

	for i := range studies {
		s := &studies[i]
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		cmd.Printf("%s %s %s  %s  %s\n", marker, swatch(s.Color), s.Title,
			mutedStyle.Render(string(s.Status)), mutedStyle.Render(s.ID))
	}
	return nil
}

func runStudyUse(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	study, err := findStudy(args[0])
	if err != nil {
		return err
	}
	if err := studyService.SetActiveStudy(cmd.Context(), study.ID); err != nil {
		return fmt.Errorf("failed to switch study: %w", err)
	}

	cmd.Printf("Active study: %s\n", study.Title)
	return nil
}

func runStudyShow(cmd *cobra.Command, args []string) error {
	study, err := studyArg(args)
	if err != nil {
		return err
	}
	stats, err := studyService.Statistics(study.ID)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	cmd.Println(heading(study.Title))
	cmd.Printf("ID:          %s\n", study.ID)
	cmd.Printf("Status:      %s\n", study.Status)
	if study.ResearchQuestion != "" {
		cmd.Printf("Question:    %s\n", study.ResearchQuestion)
	}
	if study.Description != "" {
		cmd.Printf("Description: %s\n", study.Description)
	}
	if len(study.Tags) > 0 {
		cmd.Printf("Tags:        %s\n", strings.Join(study.Tags, ", "))
	}
	cmd.Printf("Created:     %s\n", humanize.Time(study.CreatedAt))
	cmd.Println()
	cmd.Printf("Documents:   %d\n", stats.DocumentCount)
	cmd.Printf("Codes:       %d\n", stats.CodeCount)
	cmd.Printf("Themes:      %d\n", stats.ThemeCount)
	cmd.Printf("Excerpts:    %d (%d coded segments)\n", stats.ExcerptCount, stats.CodedSegments)
	cmd.Printf("Memos:       %d\n", stats.MemoCount)
	cmd.Printf("Codes/doc:   %.1f\n", stats.AverageCodesPerDocument)
	if stats.MostUsedCode != "" {
		cmd.Printf("Most used:   %s\n", stats.MostUsedCode)
	}
	if !stats.RecentActivity.IsZero() {
		cmd.Printf("Activity:    %s\n", humanize.Time(stats.RecentActivity))
	}
	return nil
}

func runStudyUpdate(cmd *cobra.Command, args []string) error {
	study, err := studyArg(args)
	if err != nil {
		return err
	}

	var u domain.StudyUpdate
	flags := cmd.Flags()
	if flags.Changed("title") {
		u.Title = &studyTitle
	}
	if flags.Changed("description") {
		u.Description = &studyDescription
	}
	if flags.Changed("question") {
		u.ResearchQuestion = &studyQuestion
	}
	if flags.Changed("status") {
		status := domain.StudyStatus(studyStatus)
		u.Status = &status
	}
	if flags.Changed("tags") {
		tags := splitList(studyTags)
		u.Tags = &tags
	}
	if flags.Changed("color") {
		u.Color = &studyColor
	}

	updated, err := studyService.UpdateStudy(cmd.Context(), study.ID, u)
	if err != nil {
		return fmt.Errorf("failed to update study: %w", err)
	}
	cmd.Printf("Updated study %s\n", updated.Title)
	return nil
}

func runStudyDelete(cmd *cobra.Command, args []string) error {
	study, err := studyArg(args)
	if err != nil {
		return err
	}
	if err := studyService.DeleteStudy(cmd.Context(), study.ID); err != nil {
		return fmt.Errorf("failed to delete study: %w", err)
	}
	cmd.Printf("Deleted study %s\n", study.Title)
	return nil
}

func runStudyDuplicate(cmd *cobra.Command, args []string) error {
	study, err := studyArg(args)
	if err != nil {
		return err
	}
	dup, err := studyService.DuplicateStudy(cmd.Context(), study.ID)
	if err != nil {
		return fmt.Errorf("failed to duplicate study: %w", err)
	}
	cmd.Printf("Created %s (%s)\n", dup.Title, dup.ID)
	return nil
}

// studyArg resolves an optional study argument.
func studyArg(args []string) (*domain.Study, error) {
	if studyService == nil {
		return nil, errors.New("study service not configured")
	}
	if len(args) > 0 {
		return findStudy(args[0])
	}
	return currentStudy()
}

// splitList splits a comma-separated flag, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
