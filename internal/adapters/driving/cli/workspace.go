package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
	Long: `Workspaces group studies and the people working on them.

Create a workspace to get a six character join code, and share it so
collaborators can join with 'codebook workspace join'.`,
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceCreate,
}

var workspaceJoinCmd = &cobra.Command{
	Use:   "join [code]",
	Short: "Join a workspace by its join code",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceJoin,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE:  runWorkspaceList,
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use [workspace]",
	Short: "Switch the active workspace",
	Long:  `Switch the active workspace. The workspace can be given by id, name or join code.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceUse,
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active workspace",
	RunE:  runWorkspaceShow,
}

var workspaceLeaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave the active workspace",
	RunE:  runWorkspaceLeave,
}

var workspacePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete studies that belong to no workspace",
	RunE:  runWorkspacePrune,
}

// collaboratorName is the --as flag for create and join.
var collaboratorName string

func init() {
	for _, c := range []*cobra.Command{workspaceCreateCmd, workspaceJoinCmd} {
		c.Flags().StringVar(&collaboratorName, "as", "", "Your display name in the workspace")
		_ = c.MarkFlagRequired("as")
	}

	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceJoinCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceUseCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
	workspaceCmd.AddCommand(workspaceLeaveCmd)
	workspaceCmd.AddCommand(workspacePruneCmd)
	rootCmd.AddCommand(workspaceCmd)
}

func runWorkspaceCreate(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := workspaceService.CreateWorkspace(cmd.Context(), args[0], collaboratorName)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	cmd.Println(successStyle.Render("✓") + " Created workspace " + ws.Name)
	cmd.Printf("  ID:        %s\n", ws.ID)
	cmd.Printf("  Join code: %s\n", titleStyle.Render(ws.Code))
	return nil
}

func runWorkspaceJoin(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := workspaceService.JoinWorkspace(cmd.Context(), args[0], collaboratorName)
	if err != nil {
		return fmt.Errorf("failed to join workspace: %w", err)
	}

	cmd.Println(successStyle.Render("✓") + " Joined workspace " + ws.Name)
	cmd.Printf("  Collaborators: %d\n", len(ws.Collaborators))
	return nil
}

func runWorkspaceList(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	workspaces := workspaceService.ListWorkspaces()
	if len(workspaces) == 0 {
		cmd.Println("No workspaces. Create one with 'codebook workspace create <name> --as <you>'.")
		return nil
	}

	activeID := ""
	if active, err := workspaceService.ActiveWorkspace(); err == nil {
		activeID = active.ID
	}

	for i := range workspaces {
		ws := &workspaces[i]
		marker := " "
		if ws.ID == activeID {
			marker = "*"
		}
		cmd.Printf("%s %s  %s  %d studies, %d collaborators\n",
			marker, ws.Name, mutedStyle.Render(ws.Code), len(ws.StudyIDs), len(ws.Collaborators))
	}
	return nil
}

func runWorkspaceUse(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := findWorkspace(args[0])
	if err != nil {
		return err
	}
	if err := workspaceService.SetActiveWorkspace(cmd.Context(), ws.ID); err != nil {
		return fmt.Errorf("failed to switch workspace: %w", err)
	}

	cmd.Printf("Active workspace: %s\n", ws.Name)
	return nil
}

func runWorkspaceShow(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := workspaceService.ActiveWorkspace()
	if err != nil {
		return err
	}

	cmd.Println(heading(ws.Name))
	cmd.Printf("ID:         %s\n", ws.ID)
	cmd.Printf("Join code:  %s\n", ws.Code)
	cmd.Printf("Created:    %s\n", humanize.Time(ws.CreatedAt))
	cmd.Printf("Studies:    %d\n", len(ws.StudyIDs))
	cmd.Printf("Research:   %s\n", onOff(ws.Research.ResearchMode))
	cmd.Println()
	cmd.Println("Collaborators:")
	me := workspaceService.CurrentCollaborator()
	for _, c := range ws.Collaborators {
		suffix := ""
		if me != nil && me.ID == c.ID {
			suffix = mutedStyle.Render(" (you)")
		}
		cmd.Printf("  %s %s %s%s\n", swatch(c.Color), c.Initials, c.Name, suffix)
	}
	return nil
}

func runWorkspaceLeave(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	if err := workspaceService.LeaveWorkspace(cmd.Context()); err != nil {
		return fmt.Errorf("failed to leave workspace: %w", err)
	}
	cmd.Println("Left workspace")
	return nil
}

func runWorkspacePrune(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	n, err := workspaceService.PruneOrphanStudies(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to prune studies: %w", err)
	}
	cmd.Printf("Removed %d orphaned %s\n", n, plural(n, "study", "studies"))
	return nil
}

// findWorkspace matches a workspace by id, join code or name.
func findWorkspace(ref string) (*domain.Workspace, error) {
	workspaces := workspaceService.ListWorkspaces()
	for i := range workspaces {
		ws := &workspaces[i]
		if ws.ID == ref || strings.EqualFold(ws.Code, ref) || strings.EqualFold(ws.Name, ref) {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("workspace %q: %w", ref, domain.ErrNotFound)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
