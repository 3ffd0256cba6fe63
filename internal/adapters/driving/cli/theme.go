package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Group codes into themes",
	Long:  `Themes collect related codes. Themes and codes can be referenced by id or name.`,
}

var themeAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeAdd,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List themes and their codes",
	RunE:  runThemeList,
}

var themeUpdateCmd = &cobra.Command{
	Use:   "update [theme]",
	Short: "Edit a theme",
	Long:  `Edit a theme. Only the flags you pass are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeUpdate,
}

var themeDeleteCmd = &cobra.Command{
	Use:   "delete [theme]",
	Short: "Delete a theme",
	Long:  `Delete a theme. Its codes are kept; memos on the theme are removed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeDelete,
}

var themeAddCodeCmd = &cobra.Command{
	Use:   "add-code [theme] [code]",
	Short: "Add a code to a theme",
	Args:  cobra.ExactArgs(2),
	RunE:  runThemeAddCode,
}

var themeRemoveCodeCmd = &cobra.Command{
	Use:   "remove-code [theme] [code]",
	Short: "Remove a code from a theme",
	Args:  cobra.ExactArgs(2),
	RunE:  runThemeRemoveCode,
}

var themeMoveCmd = &cobra.Command{
	Use:   "move [code] [from-theme] [to-theme]",
	Short: "Move a code between themes",
	Args:  cobra.ExactArgs(3),
	RunE:  runThemeMove,
}

var (
	themeName        string
	themeDescription string
	themeColor       string
	themeMemo        string
	themeParent      string
)

func init() {
	themeAddCmd.Flags().StringVar(&themeColor, "color", "", "Hex colour (defaults to the next palette colour)")
	themeAddCmd.Flags().StringVarP(&themeParent, "parent", "p", "", "Parent theme")
	themeUpdateCmd.Flags().StringVarP(&themeName, "name", "n", "", "New name")
	themeUpdateCmd.Flags().StringVarP(&themeDescription, "description", "d", "", "Description")
	themeUpdateCmd.Flags().StringVar(&themeColor, "color", "", "Hex colour")
	themeUpdateCmd.Flags().StringVarP(&themeMemo, "memo", "m", "", "Inline memo")

	themeCmd.AddCommand(themeAddCmd)
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeUpdateCmd)
	themeCmd.AddCommand(themeDeleteCmd)
	themeCmd.AddCommand(themeAddCodeCmd)
	themeCmd.AddCommand(themeRemoveCodeCmd)
	themeCmd.AddCommand(themeMoveCmd)
	rootCmd.AddCommand(themeCmd)
}

func runThemeAdd(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	parentID := ""
	if themeParent != "" {
		parent, err := resolveTheme(studyID, themeParent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		parentID = parent.ID
	}

	theme, err := codingService.AddTheme(cmd.Context(), studyID, args[0], themeColor, parentID)
	if err != nil {
		return fmt.Errorf("failed to add theme: %w", err)
	}
	cmd.Printf("%s Added theme %s %s\n", successStyle.Render("✓"), swatch(theme.Color), theme.Name)
	return nil
}

func runThemeList(cmd *cobra.Command, _ []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}

	themes, err := codingService.ListThemes(studyID)
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}
	if len(themes) == 0 {
		cmd.Println("No themes yet. Add one with 'codebook theme add <name>'.")
		return nil
	}
	codes, err := codingService.ListCodes(studyID)
	if err != nil {
		return fmt.Errorf("failed to list codes: %w", err)
	}
	names := make(map[string]string, len(codes))
	for _, c := range codes {
		names[c.ID] = c.Name
	}

	for i := range themes {
		th := &themes[i]
		cmd.Printf("%s %s  %s\n", swatch(th.Color), titleStyle.Render(th.Name), mutedStyle.Render(th.ID))
		if th.Description != "" {
			cmd.Printf("    %s\n", th.Description)
		}
		codeNames := make([]string, 0, len(th.CodeIDs))
		for _, id := range th.CodeIDs {
			if name, ok := names[id]; ok {
				codeNames = append(codeNames, name)
			}
		}
		if len(codeNames) > 0 {
			cmd.Printf("    codes: %s\n", strings.Join(codeNames, ", "))
		}
	}
	return nil
}

func runThemeUpdate(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	theme, err := resolveTheme(studyID, args[0])
	if err != nil {
		return err
	}

	var u domain.ThemeUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = &themeName
	}
	if flags.Changed("description") {
		u.Description = &themeDescription
	}
	if flags.Changed("color") {
		u.Color = &themeColor
	}
	if flags.Changed("memo") {
		u.Memo = &themeMemo
	}

	if err := codingService.UpdateTheme(cmd.Context(), studyID, theme.ID, u); err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}
	cmd.Printf("Updated theme %s\n", theme.Name)
	return nil
}

func runThemeDelete(cmd *cobra.Command, args []string) error {
	studyID, err := requireCoding()
	if err != nil {
		return err
	}
	theme, err := resolveTheme(studyID, args[0])
	if err != nil {
		return err
	}
	if err := codingService.DeleteTheme(cmd.Context(), studyID, theme.ID); err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	cmd.Printf("Deleted theme %s\n", theme.Name)
	return nil
}

func runThemeAddCode(cmd *cobra.Command, args []string) error {
	studyID, theme, code, err := themeAndCode(args[0], args[1])
	if err != nil {
		return err
	}
	if err := codingService.AddCodeToTheme(cmd.Context(), studyID, theme.ID, code.ID); err != nil {
		return fmt.Errorf("failed to add code to theme: %w", err)
	}
	cmd.Printf("Added %s to %s\n", code.Name, theme.Name)
	return nil
}

func runThemeRemoveCode(cmd *cobra.Command, args []string) error {
	studyID, theme, code, err := themeAndCode(args[0], args[1])
	if err != nil {
		return err
	}
	if err := codingService.RemoveCodeFromTheme(cmd.Context(), studyID, theme.ID, code.ID); err != nil {
		return fmt.Errorf("failed to remove code from theme: %w", err)
	}
	cmd.Printf("Removed %s from %s\n", code.Name, theme.Name)
	return nil
}

func runThemeMove(cmd *cobra.Command, args []string) error {
	studyID, from, code, err := themeAndCode(args[1], args[0])
	if err != nil {
		return err
	}
	to, err := resolveTheme(studyID, args[2])
	if err != nil {
		return err
	}
	if err := codingService.MoveCodeBetweenThemes(cmd.Context(), studyID, code.ID, from.ID, to.ID); err != nil {
		return fmt.Errorf("failed to move code: %w", err)
	}
	cmd.Printf("Moved %s from %s to %s\n", code.Name, from.Name, to.Name)
	return nil
}

// resolveTheme finds a theme by id or case-insensitive name.
func resolveTheme(studyID, ref string) (*domain.Theme, error) {
	themes, err := codingService.ListThemes(studyID)
	if err != nil {
		return nil, err
	}
	for i := range themes {
		if themes[i].ID == ref {
			return &themes[i], nil
		}
	}
	for i := range themes {
		if strings.EqualFold(themes[i].Name, strings.TrimSpace(ref)) {
			return &themes[i], nil
		}
	}
	return nil, fmt.Errorf("theme %q: %w", ref, domain.ErrNotFound)
}

func themeAndCode(themeRef, codeRef string) (string, *domain.Theme, *domain.Code, error) {
	studyID, err := requireCoding()
	if err != nil {
		return "", nil, nil, err
	}
	theme, err := resolveTheme(studyID, themeRef)
	if err != nil {
		return "", nil, nil, err
	}
	code, err := codingService.ResolveCode(studyID, codeRef)
	if err != nil {
		return "", nil, nil, err
	}
	return studyID, theme, code, nil
}
