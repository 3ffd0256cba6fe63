package mcp

import (
	"github.com/custodia-labs/codebook/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	Study    driving.StudyService
	Coding   driving.CodingService
	Analysis driving.AnalysisService

	// Document backs the document resource. Optional.
	Document driving.DocumentService

	// Suggestion backs suggest_codes. Optional.
	Suggestion driving.SuggestionService

	// Research records suggestion requests when research mode is on. Optional.
	Research driving.ResearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Study == nil {
		return ErrMissingStudyService
	}
	if p.Coding == nil {
		return ErrMissingCodingService
	}
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
