package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var excerptCmd = &cobra.Command{
	Use:   "excerpt",
	Short: "Code passages of documents",
	Long: `An excerpt is a passage of a document tagged with one or more codes.

Offsets count characters from the start of the document; use
'codebook document content <doc-id> --from N --to M' to check a range.`,
}

var excerptAddCmd = &cobra.Command{
	Use:   "add [doc-id] [start] [end] [code...]",
	Short: "Code a passage",
	Long: `Code the characters from start (inclusive) to end (exclusive) of a document
with one or more existing codes, or with a new main code via --new-code.`,
	Example: `  codebook excerpt add 3f2a 120 188 "Work stress" Boundaries
  codebook excerpt add 3f2a 120 188 --new-code "Commute"`,
	Args: cobra.MinimumNArgs(3),
	RunE: runExcerptAdd,
}

var excerptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List excerpts",
	RunE:  runExcerptList,
}

var excerptRemoveCmd = &cobra.Command{
	Use:   "remove [excerpt-id]",
	Short: "Remove an excerpt",
	Args:  cobra.ExactArgs(1),
	RunE:  runExcerptRemove,
}

var excerptAssignCmd = &cobra.Command{
	Use:   "assign [excerpt-id] [code]",
	Short: "Add a code to an excerpt",
	Args:  cobra.ExactArgs(2),
	RunE:  runExcerptAssign,
}

var excerptUnassignCmd = &cobra.Command{
	Use:   "unassign [excerpt-id] [code]",
	Short: "Remove a code from an excerpt",
	Long:  `Remove a code from an excerpt. An excerpt left without codes is deleted.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runExcerptUnassign,
}

var excerptMemoCmd = &cobra.Command{
	Use:   "memo [excerpt-id] [text]",
	Short: "Set the inline memo of an excerpt",
	Args:  cobra.ExactArgs(2),
	RunE:  runExcerptMemo,
}

var (
	excerptNewCode  string
	excerptMemo     string
	excerptText     string
	excerptCode     string
	excerptDocument string
)

func init() {
	excerptAddCmd.Flags().StringVar(&excerptNewCode, "new-code", "", "Create a main code with this name and apply it")
	excerptAddCmd.Flags().StringVarP(&excerptMemo, "memo", "m", "", "Inline memo")
	excerptAddCmd.Flags().StringVar(&excerptText, "text", "", "Expected text, checked against the document")
	excerptListCmd.Flags().StringVarP(&excerptCode, "code", "c", "", "Only excerpts with this code")
	excerptListCmd.Flags().StringVarP(&excerptDocument, "document", "d", "", "Only excerpts from this document")

	excerptCmd.AddCommand(excerptAddCmd)
	excerptCmd.AddCommand(excerptListCmd)
	excerptCmd.AddCommand(excerptRemoveCmd)
	excerptCmd.AddCommand(excerptAssignCmd)
	excerptCmd.AddCommand(excerptUnassignCmd)
	excerptCmd.AddCommand(excerptMemoCmd)
	rootCmd.AddCommand(excerptCmd)
}

func runExcerptAdd(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	start, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("start offset %q: %w", args[1], domain.ErrInvalidSelection)
	}
	end, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("end offset %q: %w", args[2], domain.ErrInvalidSelection)
	}
	sel := domain.TextSelection{
		DocumentID:  args[0],
		Text:        excerptText,
		StartOffset: start,
		EndOffset:   end,
	}

	if excerptNewCode != "" {
		if len(args) > 3 {
			return fmt.Errorf("pass either codes or --new-code, not both: %w", domain.ErrInvalidInput)
		}
		excerpt, code, err := codingService.AddExcerptWithNewCode(cmd.Context(), studyID, sel, excerptNewCode)
		if err != nil {
			return fmt.Errorf("failed to add excerpt: %w", err)
		}
		if excerptMemo != "" {
			if err := codingService.UpdateExcerptMemo(cmd.Context(), studyID, excerpt.ID, excerptMemo); err != nil {
				return fmt.Errorf("failed to set memo: %w", err)
			}
		}
		cmd.Printf("%s Coded %q with new code %s\n", successStyle.Render("✓"), preview(excerpt.Text, 60), code.Name)
		cmd.Printf("  ID: %s\n", excerpt.ID)
		return nil
	}

	codeIDs := make([]string, 0, len(args)-3)
	names := make([]string, 0, len(args)-3)
	for _, ref := range args[3:] {
		code, err := codingService.ResolveCode(studyID, ref)
		if err != nil {
			return err
		}
		codeIDs = append(codeIDs, code.ID)
		names = append(names, code.Name)
	}

	excerpt, err := codingService.AddExcerpt(cmd.Context(), studyID, sel, codeIDs, excerptMemo)
	if err != nil {
		return fmt.Errorf("failed to add excerpt: %w", err)
	}
	cmd.Printf("%s Coded %q with %s\n", successStyle.Render("✓"), preview(excerpt.Text, 60), strings.Join(names, ", "))
	cmd.Printf("  ID: %s\n", excerpt.ID)
	return nil
}

func runExcerptList(cmd *cobra.Command, _ []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	var excerpts []domain.Excerpt
	if excerptCode != "" {
		code, err := codingService.ResolveCode(studyID, excerptCode)
		if err != nil {
			return err
		}
		excerpts, err = codingService.ExcerptsForCode(studyID, code.ID)
		if err != nil {
			return fmt.Errorf("failed to list excerpts: %w", err)
		}
	} else {
		excerpts, err = codingService.ListExcerpts(studyID)
		if err != nil {
			return fmt.Errorf("failed to list excerpts: %w", err)
		}
	}

	codes, err := codingService.ListCodes(studyID)
	if err != nil {
		return fmt.Errorf("failed to list codes: %w", err)
	}
	names := make(map[string]string, len(codes))
	for _, c := range codes {
		names[c.ID] = c.Name
	}

	shown := 0
	for i := range excerpts {
		e := &excerpts[i]
		if excerptDocument != "" && e.DocumentID != excerptDocument {
			continue
		}
		shown++
		codeNames := make([]string, 0, len(e.CodeIDs))
		for _, id := range e.CodeIDs {
			codeNames = append(codeNames, names[id])
		}
		cmd.Printf("%s  %q\n", mutedStyle.Render(e.ID), preview(e.Text, 70))
		cmd.Printf("    %s  [%d:%d]  %s\n", e.DocumentID, e.StartOffset, e.EndOffset, strings.Join(codeNames, ", "))
		if e.Memo != "" {
			cmd.Printf("    memo: %s\n", e.Memo)
		}
	}
	if shown == 0 {
		cmd.Println("No excerpts.")
	}
	return nil
}

func runExcerptRemove(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	if err := codingService.RemoveExcerpt(cmd.Context(), studyID, args[0]); err != nil {
		return fmt.Errorf("failed to remove excerpt: %w", err)
	}
	cmd.Printf("Removed excerpt %s\n", args[0])
	return nil
}

func runExcerptAssign(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	code, err := codingService.ResolveCode(studyID, args[1])
	if err != nil {
		return err
	}
	if err := codingService.AssignCode(cmd.Context(), studyID, args[0], code.ID); err != nil {
		return fmt.Errorf("failed to assign code: %w", err)
	}
	cmd.Printf("Assigned %s to %s\n", code.Name, args[0])
	return nil
}

func runExcerptUnassign(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	code, err := codingService.ResolveCode(studyID, args[1])
	if err != nil {
		return err
	}
	if err := codingService.UnassignCode(cmd.Context(), studyID, args[0], code.ID); err != nil {
		return fmt.Errorf("failed to unassign code: %w", err)
	}
	cmd.Printf("Removed %s from %s\n", code.Name, args[0])
	return nil
}

func runExcerptMemo(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	if err := codingService.UpdateExcerptMemo(cmd.Context(), studyID, args[0], args[1]); err != nil {
		return fmt.Errorf("failed to update memo: %w", err)
	}
	cmd.Printf("Updated memo on %s\n", args[0])
	return nil
}

// preview flattens whitespace and truncates to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
