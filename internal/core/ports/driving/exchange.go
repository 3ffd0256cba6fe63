package driving

import "context"

// ExchangeService imports and exports study data.
type ExchangeService interface {
	// ExportProject encodes a study as project JSON.
	ExportProject(studyID string) ([]byte, error)

	// ImportProject replaces the collections of a study with decoded project
	// JSON. Malformed input or dangling references leave the study untouched.
	ImportProject(ctx context.Context, studyID string, raw []byte) error

	// ExportCodesCSV renders the codebook as CSV.
	ExportCodesCSV(studyID string) (string, error)
}
