package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export project data",
	Long:  `Export the active study as JSON, its codebook as CSV, or the research log as CSV.`,
}

var exportProjectCmd = &cobra.Command{
	Use:   "project",
	Short: "Export the study as JSON",
	RunE:  runExportProject,
}

var exportCodesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Export the codebook as CSV",
	RunE:  runExportCodes,
}

var exportResearchCmd = &cobra.Command{
	Use:   "research",
	Short: "Export the research log of the active workspace as CSV",
	RunE:  runExportResearch,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import project data",
}

var importProjectCmd = &cobra.Command{
	Use:   "project [file]",
	Short: "Replace the study content with a project export",
	Long: `Replace the documents, codes, themes, excerpts and memos of the active
study with a JSON project export. The study itself keeps its title and
settings. Nothing changes when the file is malformed.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportProject,
}

// exportOutput is the --output flag shared by the export commands.
var exportOutput string

func init() {
	for _, c := range []*cobra.Command{exportProjectCmd, exportCodesCmd, exportResearchCmd} {
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	}

	exportCmd.AddCommand(exportProjectCmd)
	exportCmd.AddCommand(exportCodesCmd)
	exportCmd.AddCommand(exportResearchCmd)
	importCmd.AddCommand(importProjectCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// requireExchange returns the active study id once the exchange service is wired.
func requireExchange() (string, error) {
	if exchangeService == nil {
		return "", errors.New("exchange service not configured")
	}
	study, err := currentStudy()
	if err != nil {
		return "", err
	}
	return study.ID, nil
}

func runExportProject(cmd *cobra.Command, _ []string) error {
	studyID, err := requireExchange()
	if err != nil {
		return err
	}
	data, err := exchangeService.ExportProject(studyID)
	if err != nil {
		return fmt.Errorf("failed to export project: %w", err)
	}
	return writeExport(cmd, data)
}

func runExportCodes(cmd *cobra.Command, _ []string) error {
	studyID, err := requireExchange()
	if err != nil {
		return err
	}
	csv, err := exchangeService.ExportCodesCSV(studyID)
	if err != nil {
		return fmt.Errorf("failed to export codes: %w", err)
	}
	return writeExport(cmd, []byte(csv))
}

func runExportResearch(cmd *cobra.Command, _ []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}
	csv, err := researchService.ExportResearchCSV()
	if err != nil {
		return fmt.Errorf("failed to export research data: %w", err)
	}
	return writeExport(cmd, []byte(csv))
}

// writeExport writes to --output, or stdout when unset.
func writeExport(cmd *cobra.Command, data []byte) error {
	if exportOutput == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	cmd.PrintErrf("Wrote %s\n", exportOutput)
	return nil
}

func runImportProject(cmd *cobra.Command, args []string) error {
	studyID, err := requireExchange()
	if err != nil {
		return err
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	if err := exchangeService.ImportProject(cmd.Context(), studyID, data); err != nil {
		return fmt.Errorf("failed to import project: %w", err)
	}
	cmd.Println(successStyle.Render("✓") + " Imported project")
	return nil
}
