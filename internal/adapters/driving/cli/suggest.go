package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "AI-assisted coding suggestions",
	Long: `Ask the configured AI provider for coding help.

Without a provider, or when the provider fails or is rate limited, the
suggestions come from local heuristics instead. Configure a provider with
'codebook settings ai'.`,
}

var suggestCodesCmd = &cobra.Command{
	Use:   "codes [text]",
	Short: "Suggest codes for a passage",
	Long: `Suggest codes for a passage, given as text or as an existing excerpt.

With --excerpt, --accept N applies suggestion N to the excerpt (creating
the code if needed) and records the other suggestions as rejected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuggestCodes,
}

var suggestRefinementsCmd = &cobra.Command{
	Use:   "refinements",
	Short: "Suggest merges, splits and groupings for the codebook",
	RunE:  runSuggestRefinements,
}

var suggestThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Suggest themes from the codebook",
	RunE:  runSuggestThemes,
}

var suggestSummaryCmd = &cobra.Command{
	Use:   "summary [code-or-theme]",
	Short: "Summarise a code or theme from its excerpts",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestSummary,
}

var (
	suggestExcerpt   string
	suggestAccept    int
	suggestRejectAll bool
	summaryTheme     bool
)

func init() {
	suggestCodesCmd.Flags().StringVarP(&suggestExcerpt, "excerpt", "e", "", "Suggest for this excerpt")
	suggestCodesCmd.Flags().IntVar(&suggestAccept, "accept", 0, "Apply suggestion N to the excerpt")
	suggestCodesCmd.Flags().BoolVar(&suggestRejectAll, "reject-all", false, "Record every suggestion as rejected")
	suggestSummaryCmd.Flags().BoolVar(&summaryTheme, "theme", false, "Summarise a theme instead of a code")

	suggestCmd.AddCommand(suggestCodesCmd)
	suggestCmd.AddCommand(suggestRefinementsCmd)
	suggestCmd.AddCommand(suggestThemesCmd)
	suggestCmd.AddCommand(suggestSummaryCmd)
	rootCmd.AddCommand(suggestCmd)
}

// requireSuggestions returns the active study id once suggestions can run.
func requireSuggestions() (string, error) {
	if suggestionService == nil {
		return "", errors.New("suggestion service not configured")
	}
	return requireCoding()
}

func printSource(cmd *cobra.Command) {
	if !suggestionService.Available() {
		cmd.Println(mutedStyle.Render("(no AI provider configured: using local heuristics)"))
	}
}

func runSuggestCodes(cmd *cobra.Command, args []string) error {
	studyID, err := requireSuggestions()
	if err != nil {
		return err
	}

	var (
		text       string
		docContext string
		excerpt    *domain.Excerpt
	)
	switch {
	case suggestExcerpt != "":
		excerpt, err = findExcerpt(studyID, suggestExcerpt)
		if err != nil {
			return err
		}
		text = excerpt.Text
		if documentService != nil {
			if doc, err := documentService.GetDocument(studyID, excerpt.DocumentID); err == nil {
				docContext = doc.Title
			}
		}
	case len(args) == 1:
		text = args[0]
	default:
		return fmt.Errorf("pass the text to code or --excerpt: %w", domain.ErrInvalidInput)
	}
	if suggestAccept != 0 && excerpt == nil {
		return fmt.Errorf("--accept needs --excerpt: %w", domain.ErrInvalidInput)
	}

	codes, err := codingService.ListCodes(studyID)
	if err != nil {
		return fmt.Errorf("failed to list codes: %w", err)
	}
	existing := make([]string, len(codes))
	for i, c := range codes {
		existing[i] = c.Name
	}

	ctx := cmd.Context()
	base := domain.AnalyticsDetails{StudyID: studyID, ExcerptText: text, ExcerptLength: len([]rune(text))}
	if excerpt != nil {
		base.ExcerptID = excerpt.ID
		base.DocumentID = excerpt.DocumentID
	}
	logResearch(ctx, domain.ActionAISuggestionRequested, base)

	suggestions := suggestionService.SuggestCodes(ctx, text, existing, docContext)
	printSource(cmd)
	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for i, s := range suggestions {
		match := ""
		if s.ExistingMatch != "" {
			match = mutedStyle.Render(" → " + s.ExistingMatch)
		}
		cmd.Printf("%d. %s  %3.0f%%%s\n", i+1, s.Code, s.Confidence*100, match)
		if s.Reason != "" {
			cmd.Printf("   %s\n", mutedStyle.Render(s.Reason))
		}
	}

	if suggestAccept == 0 && !suggestRejectAll {
		return nil
	}
	if suggestAccept < 0 || suggestAccept > len(suggestions) {
		return fmt.Errorf("--accept %d: choose 1 to %d: %w", suggestAccept, len(suggestions), domain.ErrInvalidInput)
	}

	for i, s := range suggestions {
		accepted := i+1 == suggestAccept
		details := base
		details.AISuggestion = s.Code
		details.AIConfidence = s.Confidence
		details.SuggestionAccepted = &accepted
		action := domain.ActionAISuggestionRejected
		if accepted {
			action = domain.ActionAISuggestionAccepted
		}
		logResearch(ctx, action, details)
	}

	if suggestAccept > 0 {
		code, err := applySuggestion(ctx, studyID, excerpt, suggestions[suggestAccept-1])
		if err != nil {
			return err
		}
		cmd.Printf("%s Applied %s to %s\n", successStyle.Render("✓"), code.Name, excerpt.ID)
	}
	return nil
}

// applySuggestion codes the excerpt with the suggested code, creating it
// as a main code when it does not exist yet.
func applySuggestion(ctx context.Context, studyID string, excerpt *domain.Excerpt, s domain.CodeSuggestion) (*domain.Code, error) {
	ref := s.ExistingMatch
	if ref == "" {
		ref = s.Code
	}
	code, err := codingService.ResolveCode(studyID, ref)
	if errors.Is(err, domain.ErrNotFound) {
		code, err = codingService.AddCode(ctx, studyID, s.Code, "", domain.CodeLevelMain)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply suggestion: %w", err)
	}
	if excerpt.HasCode(code.ID) {
		return code, nil
	}
	if err := codingService.AssignCode(ctx, studyID, excerpt.ID, code.ID); err != nil {
		return nil, fmt.Errorf("failed to apply suggestion: %w", err)
	}
	return code, nil
}

func runSuggestRefinements(cmd *cobra.Command, _ []string) error {
	studyID, err := requireSuggestions()
	if err != nil {
		return err
	}
	usage, err := codeUsage(studyID)
	if err != nil {
		return err
	}

	refinements := suggestionService.SuggestRefinements(cmd.Context(), usage)
	printSource(cmd)
	if len(refinements) == 0 {
		cmd.Println("The codebook looks tidy.")
		return nil
	}
	for _, r := range refinements {
		cmd.Printf("%s  %s\n", titleStyle.Render(strings.ToUpper(string(r.Type))), strings.Join(r.Codes, ", "))
		if r.Suggestion != "" {
			cmd.Printf("   %s\n", r.Suggestion)
		}
		if r.Reason != "" {
			cmd.Printf("   %s\n", mutedStyle.Render(r.Reason))
		}
	}
	return nil
}

func runSuggestThemes(cmd *cobra.Command, _ []string) error {
	studyID, err := requireSuggestions()
	if err != nil {
		return err
	}
	usage, err := codeUsage(studyID)
	if err != nil {
		return err
	}

	themes := suggestionService.SuggestThemes(cmd.Context(), usage)
	printSource(cmd)
	if len(themes) == 0 {
		cmd.Println("No themes suggested.")
		return nil
	}
	for _, th := range themes {
		cmd.Println(titleStyle.Render(th.Name))
		if th.Description != "" {
			cmd.Printf("   %s\n", th.Description)
		}
		cmd.Printf("   codes: %s\n", strings.Join(th.SuggestedCodes, ", "))
		if th.Summary != "" {
			cmd.Printf("   %s\n", mutedStyle.Render(th.Summary))
		}
	}
	return nil
}

func runSuggestSummary(cmd *cobra.Command, args []string) error {
	studyID, err := requireSuggestions()
	if err != nil {
		return err
	}

	kind := domain.SummaryCode
	var (
		name    string
		codeIDs []string
	)
	if summaryTheme {
		kind = domain.SummaryTheme
		theme, err := resolveTheme(studyID, args[0])
		if err != nil {
			return err
		}
		name, codeIDs = theme.Name, theme.CodeIDs
	} else {
		code, err := codingService.ResolveCode(studyID, args[0])
		if err != nil {
			return err
		}
		name, codeIDs = code.Name, []string{code.ID}
	}

	texts, titles, err := excerptsFor(studyID, codeIDs)
	if err != nil {
		return err
	}

	summary := suggestionService.Summarize(cmd.Context(), kind, name, texts, titles)
	if !summary.Generated {
		cmd.Println(mutedStyle.Render("(template summary)"))
	}
	cmd.Println(heading(summary.Name))
	cmd.Println(summary.Meaning)
	if len(summary.KeyExcerpts) > 0 {
		cmd.Println()
		cmd.Println("Key excerpts:")
		for _, e := range summary.KeyExcerpts {
			cmd.Printf("  • %s\n", e)
		}
	}
	if summary.DocumentPresence != "" {
		cmd.Println()
		cmd.Println(summary.DocumentPresence)
	}
	return nil
}

// codeUsage builds the usage summary the suggestion service works from.
func codeUsage(studyID string) ([]domain.CodeUsage, error) {
	codes, err := codingService.ListCodes(studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list codes: %w", err)
	}
	usage := make([]domain.CodeUsage, len(codes))
	for i, c := range codes {
		usage[i] = domain.CodeUsage{Name: c.Name, Frequency: c.Frequency, DocumentCount: c.DocumentCount}
	}
	return usage, nil
}

// excerptsFor collects the distinct excerpt texts coded with any of codeIDs,
// and the titles of the documents they come from.
func excerptsFor(studyID string, codeIDs []string) ([]string, []string, error) {
	seen := make(map[string]bool)
	docs := make(map[string]bool)
	var texts, docIDs []string
	for _, id := range codeIDs {
		excerpts, err := codingService.ExcerptsForCode(studyID, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list excerpts: %w", err)
		}
		for _, e := range excerpts {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			texts = append(texts, e.Text)
			if !docs[e.DocumentID] {
				docs[e.DocumentID] = true
				docIDs = append(docIDs, e.DocumentID)
			}
		}
	}

	titles := make([]string, 0, len(docIDs))
	for _, id := range docIDs {
		title := id
		if documentService != nil {
			if doc, err := documentService.GetDocument(studyID, id); err == nil {
				title = doc.Title
			}
		}
		titles = append(titles, title)
	}
	return texts, titles, nil
}

func findExcerpt(studyID, id string) (*domain.Excerpt, error) {
	excerpts, err := codingService.ListExcerpts(studyID)
	if err != nil {
		return nil, err
	}
	for i := range excerpts {
		if excerpts[i].ID == id {
			return &excerpts[i], nil
		}
	}
	return nil, fmt.Errorf("excerpt %q: %w", id, domain.ErrNotFound)
}

// logResearch records an analytics event when the research service is wired.
// Recording never fails the command.
func logResearch(ctx context.Context, action domain.AnalyticsAction, details domain.AnalyticsDetails) {
	if researchService == nil {
		return
	}
	_ = researchService.LogAction(ctx, action, details)
}
