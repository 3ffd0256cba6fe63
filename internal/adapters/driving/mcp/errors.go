// Package mcp provides an MCP (Model Context Protocol) server adapter for codebook.
// It lets AI assistants read a study's codebook and code excerpts through the same
// services the CLI uses.
package mcp

import "errors"

var (
	// ErrMissingStudyService is returned when the study service is not provided.
	ErrMissingStudyService = errors.New("mcp: study service is required")

	// ErrMissingCodingService is returned when the coding service is not provided.
	ErrMissingCodingService = errors.New("mcp: coding service is required")

	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// ErrSuggestionsUnavailable is returned by suggest_codes without a suggestion service.
	ErrSuggestionsUnavailable = errors.New("mcp: suggestions are not configured")
)
