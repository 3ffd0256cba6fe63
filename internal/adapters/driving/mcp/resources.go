package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for codebook resources.
	uriScheme = "codebook://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "studies",
		Name:        "studies",
		Description: "All studies with their status and research question",
		MIMEType:    "application/json",
	}, s.handleStudiesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "studies/{studyId}/codes",
		Name:        "study-codes",
		Description: "The codebook of a study",
		MIMEType:    "application/json",
	}, s.handleCodesResource)

	if s.ports.Document != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "documents/{documentId}",
			Name:        "document-content",
			Description: "Plain text content of a document",
			MIMEType:    "text/plain",
		}, s.handleDocumentContentResource)
	}
}

func jsonContents(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleStudiesResource lists every study.
func (s *Server) handleStudiesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type studyInfo struct {
		ID               string   `json:"id"`
		Title            string   `json:"title"`
		Status           string   `json:"status"`
		ResearchQuestion string   `json:"research_question,omitempty"`
		Tags             []string `json:"tags,omitempty"`
		Active           bool     `json:"active"`
	}

	activeID := ""
	if active, err := s.ports.Study.ActiveStudy(); err == nil {
		activeID = active.ID
	}

	studies := s.ports.Study.ListStudies()
	infos := make([]studyInfo, len(studies))
	for i, st := range studies {
		infos[i] = studyInfo{
			ID:               st.ID,
			Title:            st.Title,
			Status:           string(st.Status),
			ResearchQuestion: st.ResearchQuestion,
			Tags:             st.Tags,
			Active:           st.ID == activeID,
		}
	}
	return jsonContents(req.Params.URI, infos)
}

// handleCodesResource returns the codes of one study.
func (s *Server) handleCodesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	studyID := extractStudyID(req.Params.URI)
	if studyID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	codes, err := s.ports.Coding.ListCodes(studyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing codes: %w", err)
	}

	out := make([]CodeOutput, len(codes))
	for i := range codes {
		out[i] = toCodeOutput(codes[i])
	}
	return jsonContents(req.Params.URI, out)
}

// handleDocumentContentResource returns the text of a document. The active
// study is searched first, then every other study.
func (s *Server) handleDocumentContentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc := s.findDocument(docID)
	if doc == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

func (s *Server) findDocument(id string) *domain.Document {
	if active, err := s.ports.Study.ActiveStudy(); err == nil {
		if doc, err := s.ports.Document.GetDocument(active.ID, id); err == nil {
			return doc
		}
	}
	for _, st := range s.ports.Study.ListStudies() {
		if doc, err := s.ports.Document.GetDocument(st.ID, id); err == nil {
			return doc
		}
	}
	return nil
}

// extractStudyID extracts the study ID from a URI like codebook://studies/{studyId}/codes.
func extractStudyID(uri string) string {
	const prefix = uriScheme + "studies/"
	const suffix = "/codes"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractDocumentID extracts the document ID from a URI like codebook://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
