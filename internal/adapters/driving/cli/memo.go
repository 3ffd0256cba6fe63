package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var memoCmd = &cobra.Command{
	Use:   "memo",
	Short: "Write analytic memos",
	Long:  `Memos are notes attached to a document, excerpt, code or theme.`,
}

var memoAddCmd = &cobra.Command{
	Use:     "add [target-type] [target] [text]",
	Short:   "Attach a memo",
	Long:    `Attach a memo. The target type is one of document, excerpt, code or theme.`,
	Example: `  codebook memo add code "Work stress" "Often paired with commute complaints"`,
	Args:    cobra.ExactArgs(3),
	RunE:    runMemoAdd,
}

var memoListCmd = &cobra.Command{
	Use:   "list [target-type] [target]",
	Short: "List memos, optionally for one target",
	Args:  cobra.RangeArgs(0, 2),
	RunE:  runMemoList,
}

var memoUpdateCmd = &cobra.Command{
	Use:   "update [memo-id] [text]",
	Short: "Replace a memo's text",
	Args:  cobra.ExactArgs(2),
	RunE:  runMemoUpdate,
}

var memoDeleteCmd = &cobra.Command{
	Use:   "delete [memo-id]",
	Short: "Delete a memo",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoDelete,
}

func init() {
	memoCmd.AddCommand(memoAddCmd)
	memoCmd.AddCommand(memoListCmd)
	memoCmd.AddCommand(memoUpdateCmd)
	memoCmd.AddCommand(memoDeleteCmd)
	rootCmd.AddCommand(memoCmd)
}

func runMemoAdd(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	target := domain.MemoTarget(args[0])
	targetID, err := resolveMemoTarget(studyID, target, args[1])
	if err != nil {
		return err
	}

	memo, err := codingService.AddMemo(cmd.Context(), studyID, args[2], target, targetID)
	if err != nil {
		return fmt.Errorf("failed to add memo: %w", err)
	}
	cmd.Printf("%s Added memo %s\n", successStyle.Render("✓"), mutedStyle.Render(memo.ID))
	return nil
}

func runMemoList(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	var (
		target   domain.MemoTarget
		targetID string
	)
	if len(args) > 0 {
		target = domain.MemoTarget(args[0])
	}
	if len(args) > 1 {
		targetID, err = resolveMemoTarget(studyID, target, args[1])
		if err != nil {
			return err
		}
	}

	var memos []domain.Memo
	if targetID == "" {
		// A bare type lists every memo of that type.
		all, err := codingService.ListMemos(studyID, "", "")
		if err != nil {
			return fmt.Errorf("failed to list memos: %w", err)
		}
		if target != "" && !target.IsValid() {
			return fmt.Errorf("memo target %q: %w", target, domain.ErrInvalidInput)
		}
		for _, m := range all {
			if target == "" || m.TargetType == target {
				memos = append(memos, m)
			}
		}
	} else {
		memos, err = codingService.ListMemos(studyID, target, targetID)
		if err != nil {
			return fmt.Errorf("failed to list memos: %w", err)
		}
	}
	if len(memos) == 0 {
		cmd.Println("No memos.")
		return nil
	}
	for _, m := range memos {
		cmd.Printf("%s  %s %s  %s\n", mutedStyle.Render(m.ID), m.TargetType, m.TargetID,
			mutedStyle.Render(humanize.Time(m.UpdatedAt)))
		cmd.Printf("    %s\n", m.Content)
	}
	return nil
}

func runMemoUpdate(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	if err := codingService.UpdateMemo(cmd.Context(), studyID, args[0], args[1]); err != nil {
		return fmt.Errorf("failed to update memo: %w", err)
	}
	cmd.Printf("Updated memo %s\n", args[0])
	return nil
}

func runMemoDelete(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	if err := codingService.DeleteMemo(cmd.Context(), studyID, args[0]); err != nil {
		return fmt.Errorf("failed to delete memo: %w", err)
	}
	cmd.Printf("Deleted memo %s\n", args[0])
	return nil
}

// resolveMemoTarget lets codes and themes be named instead of given by id.
func resolveMemoTarget(studyID string, target domain.MemoTarget, ref string) (string, error) {
	switch target {
	case domain.MemoTargetCode:
		code, err := codingService.ResolveCode(studyID, ref)
		if err != nil {
			return "", err
		}
		return code.ID, nil
	case domain.MemoTargetTheme:
		theme, err := resolveTheme(studyID, ref)
		if err != nil {
			return "", err
		}
		return theme.ID, nil
	case domain.MemoTargetDocument, domain.MemoTargetExcerpt:
		return ref, nil
	default:
		return "", fmt.Errorf("memo target %q (want document, excerpt, code or theme): %w", target, domain.ErrInvalidInput)
	}
}
