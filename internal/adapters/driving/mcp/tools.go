package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// StudyInput selects a study. An empty id means the active study.
type StudyInput struct {
	StudyID string `json:"study_id,omitempty" jsonschema:"study id (defaults to the active study)"`
}

// CodeOutput is a code as returned by the tools.
type CodeOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Level         string `json:"level"`
	ParentID      string `json:"parent_id,omitempty"`
	Color         string `json:"color,omitempty"`
	Frequency     int    `json:"frequency"`
	DocumentCount int    `json:"document_count"`
}

// ListCodesOutput is the output schema for list_codes.
type ListCodesOutput struct {
	StudyID string       `json:"study_id"`
	Codes   []CodeOutput `json:"codes"`
	Count   int          `json:"count"`
}

// CodeTreeNode is one node of the code_tree output. Nodes are listed depth
// first, so a node follows its parent. Output schemas cannot be recursive.
type CodeTreeNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Level     string `json:"level"`
	ParentID  string `json:"parent_id,omitempty"`
	Depth     int    `json:"depth"`
	Frequency int    `json:"frequency"`
}

// CodeTreeOutput is the output schema for code_tree.
type CodeTreeOutput struct {
	StudyID string         `json:"study_id"`
	Nodes   []CodeTreeNode `json:"nodes"`
}

// CoOccurrencesInput is the input schema for co_occurrences.
type CoOccurrencesInput struct {
	StudyID   string `json:"study_id,omitempty" jsonschema:"study id (defaults to the active study)"`
	MinWeight int    `json:"min_weight,omitempty" jsonschema:"only pairs sharing at least this many documents (default 1)"`
}

// CoOccurrenceOutput is one pair of the co_occurrences output.
type CoOccurrenceOutput struct {
	Code1       string   `json:"code1"`
	Code2       string   `json:"code2"`
	Weight      int      `json:"weight"`
	DocumentIDs []string `json:"document_ids"`
}

// CoOccurrencesOutput is the output schema for co_occurrences.
type CoOccurrencesOutput struct {
	StudyID string               `json:"study_id"`
	Pairs   []CoOccurrenceOutput `json:"pairs"`
}

// StatisticsOutput is the output schema for study_statistics.
type StatisticsOutput struct {
	StudyID                 string  `json:"study_id"`
	Title                   string  `json:"title"`
	Documents               int     `json:"documents"`
	Codes                   int     `json:"codes"`
	Themes                  int     `json:"themes"`
	Excerpts                int     `json:"excerpts"`
	Memos                   int     `json:"memos"`
	CodedSegments           int     `json:"coded_segments"`
	AverageCodesPerDocument float64 `json:"average_codes_per_document"`
	MostUsedCode            string  `json:"most_used_code,omitempty"`
	MainCodes               int     `json:"main_codes"`
	ChildCodes              int     `json:"child_codes"`
	SubchildCodes           int     `json:"subchild_codes"`
}

// CodeExcerptInput is the input schema for code_excerpt.
type CodeExcerptInput struct {
	StudyID    string   `json:"study_id,omitempty" jsonschema:"study id (defaults to the active study)"`
	DocumentID string   `json:"document_id" jsonschema:"document to cut the excerpt from"`
	Start      int      `json:"start" jsonschema:"inclusive start offset in characters"`
	End        int      `json:"end" jsonschema:"exclusive end offset in characters"`
	Codes      []string `json:"codes,omitempty" jsonschema:"existing codes to apply, by id or name"`
	NewCode    string   `json:"new_code,omitempty" jsonschema:"name of a new main code to create and apply"`
	Memo       string   `json:"memo,omitempty" jsonschema:"optional note on the excerpt"`
}

// CodeExcerptOutput is the output schema for code_excerpt.
type CodeExcerptOutput struct {
	ExcerptID string   `json:"excerpt_id"`
	Text      string   `json:"text"`
	CodeIDs   []string `json:"code_ids"`
	NewCodeID string   `json:"new_code_id,omitempty"`
}

// SuggestCodesInput is the input schema for suggest_codes.
type SuggestCodesInput struct {
	StudyID string `json:"study_id,omitempty" jsonschema:"study id (defaults to the active study)"`
	Text    string `json:"text" jsonschema:"the passage to suggest codes for"`
	Context string `json:"context,omitempty" jsonschema:"optional document context"`
}

// SuggestionOutput is one suggestion of the suggest_codes output.
type SuggestionOutput struct {
	Code          string  `json:"code"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason,omitempty"`
	ExistingMatch string  `json:"existing_match,omitempty"`
}

// SuggestCodesOutput is the output schema for suggest_codes.
type SuggestCodesOutput struct {
	Suggestions []SuggestionOutput `json:"suggestions"`

	// AIConfigured is false when the suggestions come from local heuristics.
	AIConfigured bool `json:"ai_configured"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_codes",
		Description: "List the codes of a study with usage counts",
	}, s.handleListCodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "code_tree",
		Description: "Show the code hierarchy of a study as a depth-first list of nodes with parent ids",
	}, s.handleCodeTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "co_occurrences",
		Description: "List pairs of codes that appear in the same documents",
	}, s.handleCoOccurrences)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "study_statistics",
		Description: "Summarise the documents, codes, themes and excerpts of a study",
	}, s.handleStudyStatistics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "code_excerpt",
		Description: "Cut an excerpt from a document and apply codes to it",
	}, s.handleCodeExcerpt)

	if s.ports.Suggestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "suggest_codes",
			Description: "Suggest codes for a passage, reusing existing codes where they fit",
		}, s.handleSuggestCodes)
	}
}

// studyID resolves an optional id to a concrete study id.
func (s *Server) studyID(id string) (string, error) {
	if id != "" {
		st, err := s.ports.Study.GetStudy(id)
		if err != nil {
			return "", err
		}
		return st.ID, nil
	}
	st, err := s.ports.Study.ActiveStudy()
	if err != nil {
		return "", err
	}
	return st.ID, nil
}

func toCodeOutput(c domain.Code) CodeOutput {
	return CodeOutput{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Level:         string(c.Level),
		ParentID:      c.ParentID,
		Color:         c.Color,
		Frequency:     c.Frequency,
		DocumentCount: c.DocumentCount,
	}
}

func (s *Server) handleListCodes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StudyInput,
) (*mcp.CallToolResult, ListCodesOutput, error) {
	studyID, err := s.studyID(input.StudyID)
	if err != nil {
		return nil, ListCodesOutput{}, err
	}
	codes, err := s.ports.Coding.ListCodes(studyID)
	if err != nil {
		return nil, ListCodesOutput{}, fmt.Errorf("listing codes: %w", err)
	}

	output := ListCodesOutput{
		StudyID: studyID,
		Codes:   make([]CodeOutput, len(codes)),
		Count:   len(codes),
	}
	for i := range codes {
		output.Codes[i] = toCodeOutput(codes[i])
	}
	return nil, output, nil
}

// flattenTree appends nodes and their descendants to out in depth-first order.
func flattenTree(out []CodeTreeNode, nodes []domain.CodeNode, parentID string, depth int) []CodeTreeNode {
	for _, n := range nodes {
		out = append(out, CodeTreeNode{
			ID:        n.ID,
			Name:      n.Name,
			Level:     string(n.Level),
			ParentID:  parentID,
			Depth:     depth,
			Frequency: n.Frequency,
		})
		out = flattenTree(out, n.Children, n.ID, depth+1)
	}
	return out
}

func (s *Server) handleCodeTree(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StudyInput,
) (*mcp.CallToolResult, CodeTreeOutput, error) {
	studyID, err := s.studyID(input.StudyID)
	if err != nil {
		return nil, CodeTreeOutput{}, err
	}
	tree, err := s.ports.Analysis.CodeTree(studyID)
	if err != nil {
		return nil, CodeTreeOutput{}, fmt.Errorf("building code tree: %w", err)
	}

	nodes := flattenTree([]CodeTreeNode{}, tree, "", 0)
	return nil, CodeTreeOutput{StudyID: studyID, Nodes: nodes}, nil
}

func (s *Server) handleCoOccurrences(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CoOccurrencesInput,
) (*mcp.CallToolResult, CoOccurrencesOutput, error) {
	studyID, err := s.studyID(input.StudyID)
	if err != nil {
		return nil, CoOccurrencesOutput{}, err
	}
	pairs, err := s.ports.Analysis.CoOccurrences(studyID)
	if err != nil {
		return nil, CoOccurrencesOutput{}, fmt.Errorf("computing co-occurrences: %w", err)
	}
	names, err := s.codeNames(studyID)
	if err != nil {
		return nil, CoOccurrencesOutput{}, err
	}

	minWeight := input.MinWeight
	if minWeight <= 0 {
		minWeight = 1
	}
	output := CoOccurrencesOutput{StudyID: studyID, Pairs: []CoOccurrenceOutput{}}
	for _, p := range pairs {
		if p.Weight < minWeight {
			continue
		}
		output.Pairs = append(output.Pairs, CoOccurrenceOutput{
			Code1:       names[p.Code1ID],
			Code2:       names[p.Code2ID],
			Weight:      p.Weight,
			DocumentIDs: p.DocumentIDs,
		})
	}
	return nil, output, nil
}

func (s *Server) codeNames(studyID string) (map[string]string, error) {
	codes, err := s.ports.Coding.ListCodes(studyID)
	if err != nil {
		return nil, fmt.Errorf("listing codes: %w", err)
	}
	names := make(map[string]string, len(codes))
	for _, c := range codes {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (s *Server) handleStudyStatistics(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StudyInput,
) (*mcp.CallToolResult, StatisticsOutput, error) {
	studyID, err := s.studyID(input.StudyID)
	if err != nil {
		return nil, StatisticsOutput{}, err
	}
	st, err := s.ports.Study.GetStudy(studyID)
	if err != nil {
		return nil, StatisticsOutput{}, err
	}
	stats, err := s.ports.Study.Statistics(studyID)
	if err != nil {
		return nil, StatisticsOutput{}, fmt.Errorf("computing statistics: %w", err)
	}
	codebook, err := s.ports.Analysis.CodebookStats(studyID)
	if err != nil {
		return nil, StatisticsOutput{}, fmt.Errorf("computing codebook statistics: %w", err)
	}

	return nil, StatisticsOutput{
		StudyID:                 studyID,
		Title:                   st.Title,
		Documents:               stats.DocumentCount,
		Codes:                   stats.CodeCount,
		Themes:                  stats.ThemeCount,
		Excerpts:                stats.ExcerptCount,
		Memos:                   stats.MemoCount,
		CodedSegments:           stats.CodedSegments,
		AverageCodesPerDocument: stats.AverageCodesPerDocument,
		MostUsedCode:            stats.MostUsedCode,
		MainCodes:               codebook.MainCodes,
		ChildCodes:              codebook.ChildCodes,
		SubchildCodes:           codebook.SubchildCodes,
	}, nil
}

func (s *Server) handleCodeExcerpt(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CodeExcerptInput,
) (*mcp.CallToolResult, CodeExcerptOutput, error) {
	studyID, err := s.studyID(input.StudyID)
	if err != nil {
		return nil, CodeExcerptOutput{}, err
	}
	if len(input.Codes) == 0 && input.NewCode == "" {
		return nil, CodeExcerptOutput{}, fmt.Errorf("give codes or new_code: %w", domain.ErrInvalidInput)
	}

	codeIDs := make([]string, 0, len(input.Codes))
	for _, ref := range input.Codes {
		code, err := s.ports.Coding.ResolveCode(studyID, ref)
		if err != nil {
			return nil, CodeExcerptOutput{}, fmt.Errorf("code %q: %w", ref, err)
		}
		codeIDs = append(codeIDs, code.ID)
	}

	sel := domain.TextSelection{
		DocumentID:  input.DocumentID,
		StartOffset: input.Start,
		EndOffset:   input.End,
	}

	if input.NewCode == "" {
		excerpt, err := s.ports.Coding.AddExcerpt(ctx, studyID, sel, codeIDs, input.Memo)
		if err != nil {
			return nil, CodeExcerptOutput{}, err
		}
		return nil, CodeExcerptOutput{ExcerptID: excerpt.ID, Text: excerpt.Text, CodeIDs: excerpt.CodeIDs}, nil
	}

	excerpt, code, err := s.ports.Coding.AddExcerptWithNewCode(ctx, studyID, sel, input.NewCode)
	if err != nil {
		return nil, CodeExcerptOutput{}, err
	}
	ids := []string{code.ID}
	for _, id := range codeIDs {
		if id == code.ID {
			continue
		}
		if err := s.ports.Coding.AssignCode(ctx, studyID, excerpt.ID, id); err != nil {
			return nil, CodeExcerptOutput{}, err
		}
		ids = append(ids, id)
	}
	if input.Memo != "" {
		if err := s.ports.Coding.UpdateExcerptMemo(ctx, studyID, excerpt.ID, input.Memo); err != nil {
			return nil, CodeExcerptOutput{}, err
		}
	}
	return nil, CodeExcerptOutput{
		ExcerptID: excerpt.ID,
		Text:      excerpt.Text,
		CodeIDs:   ids,
		NewCodeID: code.ID,
	}, nil
}

func (s *Server) handleSuggestCodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestCodesInput,
) (*mcp.CallToolResult, SuggestCodesOutput, error) {
	if s.ports.Suggestion == nil {
		return nil, SuggestCodesOutput{}, ErrSuggestionsUnavailable
	}
	if input.Text == "" {
		return nil, SuggestCodesOutput{}, fmt.Errorf("text is required: %w", domain.ErrInvalidInput)
	}
	studyID, err := s.studyID(input.StudyID)
	if err != nil {
		return nil, SuggestCodesOutput{}, err
	}
	codes, err := s.ports.Coding.ListCodes(studyID)
	if err != nil {
		return nil, SuggestCodesOutput{}, fmt.Errorf("listing codes: %w", err)
	}
	existing := make([]string, len(codes))
	for i, c := range codes {
		existing[i] = c.Name
	}

	if s.ports.Research != nil {
		_ = s.ports.Research.LogAction(ctx, domain.ActionAISuggestionRequested, domain.AnalyticsDetails{
			StudyID:       studyID,
			ExcerptText:   input.Text,
			ExcerptLength: len([]rune(input.Text)),
		})
	}

	suggestions := s.ports.Suggestion.SuggestCodes(ctx, input.Text, existing, input.Context)
	output := SuggestCodesOutput{
		Suggestions:  make([]SuggestionOutput, len(suggestions)),
		AIConfigured: s.ports.Suggestion.Available(),
	}
	for i, sg := range suggestions {
		output.Suggestions[i] = SuggestionOutput{
			Code:          sg.Code,
			Confidence:    sg.Confidence,
			Reason:        sg.Reason,
			ExistingMatch: sg.ExistingMatch,
		}
	}
	return nil, output, nil
}
