package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage study documents",
	Long:  `Import, list, read, or remove the documents of the active study.`,
}

var documentImportCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import text, PDF or Word files",
	Long: `Import one or more files into the active study.

Supported formats: .txt (and any other text file), .pdf (needs pdftotext)
and .docx. The document title is the file name without its extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentImport,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a document from text or stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentAdd,
}

var documentWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import files as they appear in a folder",
	Long: `Watch a folder and import every supported file dropped into it.

Each file is imported once, after it has stopped changing. Removing a file
from the folder keeps the document in the study. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentWatch,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in the active study",
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Long: `Print document content. Use --from and --to to print a character range,
the same offsets 'codebook excerpt add' expects.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentContent,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document with its excerpts and memos",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

var (
	documentText     string
	watchExisting    bool
	watchQuietPeriod time.Duration
	contentFrom      int
	contentTo        int
)

func init() {
	documentAddCmd.Flags().StringVar(&documentText, "text", "", "Document text (reads stdin when omitted)")
	documentWatchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Import files already in the folder first")
	documentWatchCmd.Flags().DurationVar(&watchQuietPeriod, "quiet", time.Second, "Wait this long after the last write before importing")
	documentContentCmd.Flags().IntVar(&contentFrom, "from", 0, "Start offset (characters)")
	documentContentCmd.Flags().IntVar(&contentTo, "to", 0, "End offset (characters, 0 = end)")

	documentCmd.AddCommand(documentImportCmd)
	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentWatchCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

// requireDocuments returns the active study id once the document service is wired.
func requireDocuments() (string, error) {
	if documentService == nil {
		return "", errors.New("document service not configured")
	}
	study, err := currentStudy()
	if err != nil {
		return "", err
	}
	return study.ID, nil
}

func runDocumentImport(cmd *cobra.Command, args []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	docs, importErr := documentService.ImportFiles(cmd.Context(), studyID, args)
	for i := range docs {
		printImported(cmd, &docs[i])
	}
	if importErr != nil {
		return fmt.Errorf("imported %d of %d files: %w", len(docs), len(args), importErr)
	}
	return nil
}

func printImported(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("%s %s  %s  %s\n", successStyle.Render("✓"), doc.Title,
		mutedStyle.Render(humanize.Bytes(uint64(doc.Size))), mutedStyle.Render(doc.ID))
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	content := documentText
	if !cmd.Flags().Changed("text") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
	}

	doc, err := documentService.AddDocument(cmd.Context(), studyID, args[0], content, domain.DocumentTypeText)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	printImported(cmd, doc)
	return nil
}

func runDocumentWatch(cmd *cobra.Command, args []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := newFolderWatcher(dir, watchQuietPeriod, func(ctx context.Context, path string) error {
		doc, err := documentService.ImportFile(ctx, studyID, path)
		if err != nil {
			return err
		}
		printImported(cmd, doc)
		return nil
	})

	existing, err := existingFiles(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	watcher.markImported(existing...)
	if watchExisting && len(existing) > 0 {
		docs, importErr := documentService.ImportFiles(ctx, studyID, existing)
		for i := range docs {
			printImported(cmd, &docs[i])
		}
		if importErr != nil {
			cmd.PrintErrln(warningStyle.Render(importErr.Error()))
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return watcher.run(ctx)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	docs, err := documentService.ListDocuments(studyID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents. Import some with 'codebook document import <file>'.")
		return nil
	}

	for i := range docs {
		doc := &docs[i]
		cmd.Printf("%s  %-4s %8s  %3d excerpts  %s\n", doc.Title, doc.Type,
			humanize.Bytes(uint64(doc.Size)), len(doc.ExcerptIDs), mutedStyle.Render(doc.ID))
	}
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	doc, err := documentService.GetDocument(studyID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(heading(doc.Title))
	cmd.Printf("ID:         %s\n", doc.ID)
	cmd.Printf("Type:       %s\n", doc.Type)
	cmd.Printf("Size:       %s\n", humanize.Bytes(uint64(doc.Size)))
	cmd.Printf("Characters: %s\n", humanize.Comma(int64(doc.Length())))
	cmd.Printf("Excerpts:   %d\n", len(doc.ExcerptIDs))
	cmd.Printf("Uploaded:   %s\n", humanize.Time(doc.UploadedAt))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	doc, err := documentService.GetDocument(studyID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	content := doc.Content
	if contentFrom != 0 || contentTo != 0 {
		end := contentTo
		if end == 0 {
			end = doc.Length()
		}
		span, ok := doc.Span(contentFrom, end)
		if !ok {
			return fmt.Errorf("range %d..%d outside 0..%d: %w", contentFrom, end, doc.Length(), domain.ErrInvalidSelection)
		}
		content = span
	}

	if researchService != nil {
		_ = researchService.LogAction(cmd.Context(), domain.ActionDocumentOpened, domain.AnalyticsDetails{
			StudyID: studyID, DocumentID: doc.ID,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	studyID, err := requireDocuments()
	if err != nil {
		return err
	}

	if err := documentService.RemoveDocument(cmd.Context(), studyID, args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	cmd.Printf("Removed document %s\n", args[0])
	return nil
}
