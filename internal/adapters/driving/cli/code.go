package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Manage the codebook",
	Long: `Add, organise and remove codes in the active study.

Codes form a three level hierarchy: main codes, child codes and subchild
codes. Codes can be referenced by id or by name.`,
}

var codeAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a code",
	Long: `Add a code. Without --parent the code is a main code; with --parent its
level is one below the parent's unless --level says otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runCodeAdd,
}

var codeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List codes with usage counts",
	RunE:  runCodeList,
}

var codeTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the code hierarchy",
	RunE:  runCodeTree,
}

var codeRenameCmd = &cobra.Command{
	Use:   "rename [code] [new-name]",
	Short: "Rename a code",
	Args:  cobra.ExactArgs(2),
	RunE:  runCodeRename,
}

var codeDescribeCmd = &cobra.Command{
	Use:   "describe [code]",
	Short: "Set a code's description or colour",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodeDescribe,
}

var codeDeleteCmd = &cobra.Command{
	Use:   "delete [code]",
	Short: "Delete a code",
	Long: `Delete a code. Under the cascade delete policy the code's whole subtree
is removed. Under the legacy policy only direct children are removed,
grandchildren become main codes and undo restores the code alone.
Undo with 'codebook code undo'.`,
	Args: cobra.ExactArgs(1),
	RunE: runCodeDelete,
}

var codeUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the most recently deleted code",
	RunE:  runCodeUndo,
}

var codeMergeCmd = &cobra.Command{
	Use:   "merge [source] [target]",
	Short: "Merge one code into another",
	Long:  `Move every excerpt and theme link of the source code to the target, then delete the source.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCodeMerge,
}

var codeCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count codes by level",
	RunE:  runCodeCount,
}

var (
	codeParent      string
	codeLevel       string
	codeDescription string
	codeColor       string
)

func init() {
	codeAddCmd.Flags().StringVarP(&codeParent, "parent", "p", "", "Parent code")
	codeAddCmd.Flags().StringVarP(&codeLevel, "level", "l", "", "Level: main, child, subchild")
	codeDescribeCmd.Flags().StringVarP(&codeDescription, "description", "d", "", "Description")
	codeDescribeCmd.Flags().StringVar(&codeColor, "color", "", "Hex colour, e.g. #22c55e")

	codeCmd.AddCommand(codeAddCmd)
	codeCmd.AddCommand(codeListCmd)
	codeCmd.AddCommand(codeTreeCmd)
	codeCmd.AddCommand(codeRenameCmd)
	codeCmd.AddCommand(codeDescribeCmd)
	codeCmd.AddCommand(codeDeleteCmd)
	codeCmd.AddCommand(codeUndoCmd)
	codeCmd.AddCommand(codeMergeCmd)
	codeCmd.AddCommand(codeCountCmd)
	rootCmd.AddCommand(codeCmd)
}

func runCodeAdd(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	level := domain.CodeLevel(codeLevel)
	parentID := ""
	if codeParent != "" {
		parent, err := codingService.ResolveCode(studyID, codeParent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		parentID = parent.ID
		if level == "" {
			child, ok := parent.Level.ChildLevel()
			if !ok {
				return fmt.Errorf("%s is a subchild code and cannot have children: %w", parent.Name, domain.ErrInvalidHierarchy)
			}
			level = child
		}
	}

	code, err := codingService.AddCode(cmd.Context(), studyID, args[0], parentID, level)
	if err != nil {
		return fmt.Errorf("failed to add code: %w", err)
	}
	cmd.Printf("%s Added %s code %s %s\n", successStyle.Render("✓"), code.Level, swatch(code.Color), code.Name)
	return nil
}

func runCodeList(cmd *cobra.Command, _ []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	codes, err := codingService.ListCodes(studyID)
	if err != nil {
		return fmt.Errorf("failed to list codes: %w", err)
	}
	if len(codes) == 0 {
		cmd.Println("No codes yet. Add one with 'codebook code add <name>'.")
		return nil
	}

	for i := range codes {
		c := &codes[i]
		indent := ""
		switch c.Level {
		case domain.CodeLevelChild:
			indent = "  "
		case domain.CodeLevelSubchild:
			indent = "    "
		}
		cmd.Printf("%s%s %s  %d excerpts in %d documents  %s\n", indent, swatch(c.Color), c.Name,
			c.Frequency, c.DocumentCount, mutedStyle.Render(c.ID))
	}
	return nil
}

func runCodeTree(cmd *cobra.Command, _ []string) error {
	studyID, err := requireAnalysis()
	if err != nil {
		return err
	}

	tree, err := analysisService.CodeTree(studyID)
	if err != nil {
		return fmt.Errorf("failed to build code tree: %w", err)
	}
	if len(tree) == 0 {
		cmd.Println("No codes yet.")
		return nil
	}
	cmd.Print(renderTree(tree))
	return nil
}

// renderTree draws the code hierarchy with box-drawing branches.
func renderTree(nodes []domain.CodeNode) string {
	var b strings.Builder
	var walk func(nodes []domain.CodeNode, prefix string, root bool)
	walk = func(nodes []domain.CodeNode, prefix string, root bool) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			if root {
				branch, next = "", ""
			}
			fmt.Fprintf(&b, "%s%s%s %s (%d)\n", prefix, branch, swatch(n.Color), n.Name, n.Frequency)
			walk(n.Children, prefix+next, false)
		}
	}
	walk(nodes, "", true)
	return b.String()
}

func runCodeRename(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	code, err := codingService.ResolveCode(studyID, args[0])
	if err != nil {
		return err
	}
	if err := codingService.RenameCode(cmd.Context(), studyID, code.ID, args[1]); err != nil {
		return fmt.Errorf("failed to rename code: %w", err)
	}
	cmd.Printf("Renamed %s to %s\n", code.Name, strings.TrimSpace(args[1]))
	return nil
}

func runCodeDescribe(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	code, err := codingService.ResolveCode(studyID, args[0])
	if err != nil {
		return err
	}

	var u domain.CodeUpdate
	if cmd.Flags().Changed("description") {
		u.Description = &codeDescription
	}
	if cmd.Flags().Changed("color") {
		u.Color = &codeColor
	}
	if u.Description == nil && u.Color == nil {
		return fmt.Errorf("nothing to change: pass --description or --color: %w", domain.ErrInvalidInput)
	}

	if err := codingService.UpdateCode(cmd.Context(), studyID, code.ID, u); err != nil {
		return fmt.Errorf("failed to update code: %w", err)
	}
	cmd.Printf("Updated %s\n", code.Name)
	return nil
}

func runCodeDelete(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	code, err := codingService.ResolveCode(studyID, args[0])
	if err != nil {
		return err
	}
	removed, err := codingService.DeleteCode(cmd.Context(), studyID, code.ID)
	if err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}

	cmd.Printf("Deleted %s\n", joinCodeNames(removed))
	cmd.Println(mutedStyle.Render("Undo with 'codebook code undo'"))
	return nil
}

func runCodeUndo(cmd *cobra.Command, _ []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	restored, err := codingService.UndoDeleteCode(cmd.Context(), studyID)
	if err != nil {
		return fmt.Errorf("failed to undo: %w", err)
	}
	cmd.Printf("Restored %s\n", joinCodeNames(restored))
	return nil
}

func runCodeMerge(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	source, err := codingService.ResolveCode(studyID, args[0])
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	target, err := codingService.ResolveCode(studyID, args[1])
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if err := codingService.MergeCodes(cmd.Context(), studyID, source.ID, target.ID); err != nil {
		return fmt.Errorf("failed to merge codes: %w", err)
	}
	cmd.Printf("Merged %s into %s\n", source.Name, target.Name)
	return nil
}

func runCodeCount(cmd *cobra.Command, _ []string) error {
	studyID, err := requireAnalysis()
	if err != nil {
		return err
	}

	stats, err := analysisService.CodebookStats(studyID)
	if err != nil {
		return fmt.Errorf("failed to count codes: %w", err)
	}
	cmd.Printf("%d codes: %d main, %d child, %d subchild\n",
		stats.TotalCodes, stats.MainCodes, stats.ChildCodes, stats.SubchildCodes)
	return nil
}

func joinCodeNames(codes []domain.Code) string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
