package exchange

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

type projectJSON struct {
	ExportedAt string         `json:"exportedAt"`
	Documents  []documentJSON `json:"documents"`
	Codes      []codeJSON     `json:"codes"`
	Themes     []themeJSON    `json:"themes"`
	Excerpts   []excerptJSON  `json:"excerpts"`
	Memos      []memoJSON     `json:"memos"`
}

// EncodeProject writes a study's five collections as indented project JSON.
func EncodeProject(data domain.StudyData, exportedAt time.Time) ([]byte, error) {
	p := projectJSON{
		ExportedAt: formatTime(exportedAt),
		Documents:  documentsToWire(data.Documents),
		Codes:      codesToWire(data.Codes),
		Themes:     themesToWire(data.Themes),
		Excerpts:   excerptsToWire(data.Excerpts),
		Memos:      memosToWire(data.Memos),
	}
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	return out, nil
}

// DecodeProject reads project JSON. Missing collections decode as empty.
// The returned data has no study metadata and no undo history; callers
// validate references by loading it into a study.
func DecodeProject(raw []byte) (domain.StudyData, error) {
	var p projectJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.StudyData{}, fmt.Errorf("malformed project JSON: %v: %w", err, domain.ErrInvalidInput)
	}

	tp := &timeParser{}
	if _, err := parseTime("exportedAt", p.ExportedAt); err != nil {
		return domain.StudyData{}, err
	}
	data := domain.StudyData{
		Documents: documentsFromWire(p.Documents, tp),
		Codes:     codesFromWire(p.Codes, tp),
		Themes:    themesFromWire(p.Themes, tp),
		Excerpts:  excerptsFromWire(p.Excerpts, tp),
		Memos:     memosFromWire(p.Memos, tp),
	}
	if tp.err != nil {
		return domain.StudyData{}, tp.err
	}
	return data, nil
}
