package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Aliases: []string{"analyse"},
	Short:   "Analyse the codebook",
	Long:    `Co-occurrence, hierarchy, usage statistics and the theme graph of the active study.`,
}

var analyzeCooccurCmd = &cobra.Command{
	Use:   "cooccur",
	Short: "Show which codes appear on the same excerpts",
	RunE:  runAnalyzeCooccur,
}

var analyzeTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the code hierarchy with frequencies",
	RunE:  runCodeTree,
}

var analyzeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show codebook statistics",
	RunE:  runAnalyzeStats,
}

var analyzeGraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the theme to code graph",
	RunE:  runAnalyzeGraph,
}

var analyzeTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most used codes",
	RunE:  runAnalyzeTop,
}

var (
	cooccurMin int
	topN       int
)

func init() {
	analyzeCooccurCmd.Flags().IntVar(&cooccurMin, "min", 1, "Only pairs seen on at least this many excerpts")
	analyzeTopCmd.Flags().IntVarP(&topN, "n", "n", 10, "Number of codes")

	analyzeCmd.AddCommand(analyzeCooccurCmd)
	analyzeCmd.AddCommand(analyzeTreeCmd)
	analyzeCmd.AddCommand(analyzeStatsCmd)
	analyzeCmd.AddCommand(analyzeGraphCmd)
	analyzeCmd.AddCommand(analyzeTopCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// requireAnalysis returns the active study id once the analysis service is wired.
func requireAnalysis() (string, error) {
	if analysisService == nil {
		return "", errors.New("analysis service not configured")
	}
	study, err := currentStudy()
	if err != nil {
		return "", err
	}
	return study.ID, nil
}

// codeNames maps code ids to names, or returns nil without a coding service.
func codeNames(studyID string) map[string]string {
	if codingService == nil {
		return nil
	}
	codes, err := codingService.ListCodes(studyID)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(codes))
	for _, c := range codes {
		names[c.ID] = c.Name
	}
	return names
}

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func runAnalyzeCooccur(cmd *cobra.Command, _ []string) error {
	studyID, err := requireAnalysis()
	if err != nil {
		return err
	}

	pairs, err := analysisService.CoOccurrences(studyID)
	if err != nil {
		return fmt.Errorf("failed to compute co-occurrences: %w", err)
	}
	names := codeNames(studyID)

	shown := 0
	for _, p := range pairs {
		if p.Weight < cooccurMin {
			continue
		}
		shown++
		cmd.Printf("%3d  %s + %s  %s\n", p.Weight, nameOr(names, p.Code1ID), nameOr(names, p.Code2ID),
			mutedStyle.Render(fmt.Sprintf("in %d %s", len(p.DocumentIDs), plural(len(p.DocumentIDs), "document", "documents"))))
	}
	if shown == 0 {
		cmd.Println("No codes co-occur yet.")
	}
	return nil
}

func runAnalyzeStats(cmd *cobra.Command, _ []string) error {
	studyID, err := requireAnalysis()
	if err != nil {
		return err
	}

	stats, err := analysisService.CodebookStats(studyID)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	cmd.Println(heading("Codebook"))
	cmd.Printf("Codes:          %d\n", stats.TotalCodes)
	cmd.Printf("  main:         %d\n", stats.MainCodes)
	cmd.Printf("  child:        %d\n", stats.ChildCodes)
	cmd.Printf("  subchild:     %d\n", stats.SubchildCodes)
	cmd.Printf("Excerpts:       %d\n", stats.TotalExcerpts)
	cmd.Printf("Avg frequency:  %.2f\n", stats.AverageFrequency)

	top, err := analysisService.TopCodes(studyID, 5)
	if err == nil && len(top) > 0 {
		cmd.Println()
		cmd.Println("Most used:")
		printTopCodes(cmd, top)
	}
	return nil
}

func runAnalyzeGraph(cmd *cobra.Command, _ []string) error {
	studyID, err := requireAnalysis()
	if err != nil {
		return err
	}

	graph, err := analysisService.ThemeGraph(studyID)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	nodes := make(map[string]domain.GraphNode, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodes[n.ID] = n
	}

	cmd.Printf("%d nodes, %d links\n", len(graph.Nodes), len(graph.Links))
	current := ""
	for _, l := range graph.Links {
		src, dst := nodes[l.Source], nodes[l.Target]
		if src.Kind != domain.GraphNodeTheme {
			continue
		}
		if l.Source != current {
			current = l.Source
			cmd.Printf("%s %s\n", swatch(src.Color), titleStyle.Render(src.Name))
		}
		cmd.Printf("  └─ %s (%d)\n", dst.Name, l.Weight)
	}
	if current == "" {
		cmd.Println("No themes contain codes yet.")
	}
	return nil
}

func runAnalyzeTop(cmd *cobra.Command, _ []string) error {
	studyID, err := requireAnalysis()
	if err != nil {
		return err
	}

	top, err := analysisService.TopCodes(studyID, topN)
	if err != nil {
		return fmt.Errorf("failed to rank codes: %w", err)
	}
	if len(top) == 0 {
		cmd.Println("No codes yet.")
		return nil
	}
	printTopCodes(cmd, top)
	return nil
}

func printTopCodes(cmd *cobra.Command, codes []domain.Code) {
	for i, c := range codes {
		cmd.Printf("%2d. %s %s  %d\n", i+1, swatch(c.Color), c.Name, c.Frequency)
	}
}
