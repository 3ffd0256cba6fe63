package exchange

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// StateKey is the fixed key the state blob is stored under.
const StateKey = "qda-storage"

// stateVersion is bumped when the blob layout changes incompatibly.
const stateVersion = 1

type stateJSON struct {
	Version             int                `json:"version"`
	Workspaces          []workspaceJSON    `json:"workspaces"`
	Studies             []studyJSON        `json:"studies"`
	ActiveWorkspaceID   string             `json:"activeWorkspaceId,omitempty"`
	ActiveStudyID       string             `json:"activeStudyId,omitempty"`
	CurrentCollaborator *collaboratorJSON  `json:"currentCollaborator,omitempty"`
	AnalyticsLogs       []analyticsLogJSON `json:"analyticsLogs"`
	SessionStartTime    string             `json:"sessionStartTime,omitempty"`
}

type collaboratorJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Initials   string `json:"initials"`
	Color      string `json:"color"`
	JoinedAt   string `json:"joinedAt"`
	LastActive string `json:"lastActive"`
}

type workspaceJSON struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Code          string             `json:"code"`
	CreatedBy     string             `json:"createdBy"`
	CreatedAt     string             `json:"createdAt"`
	Collaborators []collaboratorJSON `json:"collaborators"`
	StudyIDs      []string           `json:"studyIds"`
	ResearchMode  bool               `json:"researchMode,omitempty"`
	AIEnabled     bool               `json:"aiEnabled,omitempty"`
	ParticipantID string             `json:"participantId,omitempty"`
}

type deletionJSON struct {
	Policy       string              `json:"policy"`
	Codes        []codeJSON          `json:"codes"`
	ExcerptLinks map[string][]string `json:"excerptLinks,omitempty"`
	ThemeLinks   map[string][]string `json:"themeLinks,omitempty"`
	Memos        []memoJSON          `json:"memos,omitempty"`
	DeletedAt    string              `json:"deletedAt"`
}

type studyJSON struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	ResearchQuestion string         `json:"researchQuestion,omitempty"`
	Status           string         `json:"status"`
	Tags             []string       `json:"tags"`
	Color            string         `json:"color"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
	LastAccessedAt   string         `json:"lastAccessedAt"`
	Documents        []documentJSON `json:"documents"`
	Codes            []codeJSON     `json:"codes"`
	Themes           []themeJSON    `json:"themes"`
	Excerpts         []excerptJSON  `json:"excerpts"`
	Memos            []memoJSON     `json:"memos"`
	DeletedCodes     []deletionJSON `json:"deletedCodes,omitempty"`
}

type analyticsLogJSON struct {
	ID            string               `json:"id"`
	Timestamp     string               `json:"timestamp"`
	WorkspaceID   string               `json:"workspaceId"`
	ParticipantID string               `json:"participantId,omitempty"`
	Action        string               `json:"action"`
	Details       analyticsDetailsJSON `json:"details"`
}

type analyticsDetailsJSON struct {
	StudyID            string  `json:"studyId,omitempty"`
	DocumentID         string  `json:"documentId,omitempty"`
	ExcerptID          string  `json:"excerptId,omitempty"`
	CodeID             string  `json:"codeId,omitempty"`
	CodeName           string  `json:"codeName,omitempty"`
	AISuggestion       string  `json:"aiSuggestion,omitempty"`
	AIConfidence       float64 `json:"aiConfidence,omitempty"`
	SuggestionAccepted *bool   `json:"suggestionAccepted,omitempty"`
	DurationMillis     int64   `json:"duration,omitempty"`
	ExcerptText        string  `json:"excerptText,omitempty"`
	ExcerptLength      int     `json:"excerptLength,omitempty"`
}

// EncodeState serializes the whole state as one JSON blob.
func EncodeState(st domain.State) ([]byte, error) {
	w := stateJSON{
		Version:           stateVersion,
		Workspaces:        make([]workspaceJSON, 0, len(st.Workspaces)),
		Studies:           make([]studyJSON, 0, len(st.Studies)),
		ActiveWorkspaceID: st.ActiveWorkspaceID,
		ActiveStudyID:     st.ActiveStudyID,
		AnalyticsLogs:     make([]analyticsLogJSON, 0, len(st.AnalyticsLogs)),
		SessionStartTime:  formatTime(st.SessionStart),
	}
	for _, ws := range st.Workspaces {
		w.Workspaces = append(w.Workspaces, workspaceToWire(ws))
	}
	for _, s := range st.Studies {
		w.Studies = append(w.Studies, studyToWire(s))
	}
	if st.CurrentCollaborator != nil {
		c := collaboratorToWire(*st.CurrentCollaborator)
		w.CurrentCollaborator = &c
	}
	for _, l := range st.AnalyticsLogs {
		w.AnalyticsLogs = append(w.AnalyticsLogs, analyticsToWire(l))
	}

	out, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return out, nil
}

// DecodeState parses a state blob. An empty blob is an empty state.
func DecodeState(raw []byte) (domain.State, error) {
	if len(raw) == 0 {
		return domain.State{}, nil
	}
	var w stateJSON
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.State{}, fmt.Errorf("malformed state: %v: %w", err, domain.ErrInvalidInput)
	}
	if w.Version > stateVersion {
		return domain.State{}, fmt.Errorf("state version %d is newer than supported %d: %w",
			w.Version, stateVersion, domain.ErrUnsupportedType)
	}

	tp := &timeParser{}
	st := domain.State{
		ActiveWorkspaceID: w.ActiveWorkspaceID,
		ActiveStudyID:     w.ActiveStudyID,
		SessionStart:      tp.parse("sessionStartTime", w.SessionStartTime),
	}
	for _, ws := range w.Workspaces {
		st.Workspaces = append(st.Workspaces, workspaceFromWire(ws, tp))
	}
	for _, s := range w.Studies {
		st.Studies = append(st.Studies, studyFromWire(s, tp))
	}
	if w.CurrentCollaborator != nil {
		c := collaboratorFromWire(*w.CurrentCollaborator, tp)
		st.CurrentCollaborator = &c
	}
	for _, l := range w.AnalyticsLogs {
		st.AnalyticsLogs = append(st.AnalyticsLogs, analyticsFromWire(l, tp))
	}
	if tp.err != nil {
		return domain.State{}, tp.err
	}
	return st, nil
}

func collaboratorToWire(c domain.Collaborator) collaboratorJSON {
	return collaboratorJSON{
		ID:         c.ID,
		Name:       c.Name,
		Initials:   c.Initials,
		Color:      c.Color,
		JoinedAt:   formatTime(c.JoinedAt),
		LastActive: formatTime(c.LastActive),
	}
}

func collaboratorFromWire(c collaboratorJSON, tp *timeParser) domain.Collaborator {
	return domain.Collaborator{
		ID:         c.ID,
		Name:       c.Name,
		Initials:   c.Initials,
		Color:      c.Color,
		JoinedAt:   tp.parse("collaborator joinedAt", c.JoinedAt),
		LastActive: tp.parse("collaborator lastActive", c.LastActive),
	}
}

func workspaceToWire(ws domain.Workspace) workspaceJSON {
	w := workspaceJSON{
		ID:            ws.ID,
		Name:          ws.Name,
		Code:          ws.Code,
		CreatedBy:     ws.CreatedBy,
		CreatedAt:     formatTime(ws.CreatedAt),
		Collaborators: make([]collaboratorJSON, 0, len(ws.Collaborators)),
		StudyIDs:      nonNil(ws.StudyIDs),
		ResearchMode:  ws.Research.ResearchMode,
		AIEnabled:     ws.Research.AIEnabled,
		ParticipantID: ws.Research.ParticipantID,
	}
	for _, c := range ws.Collaborators {
		w.Collaborators = append(w.Collaborators, collaboratorToWire(c))
	}
	return w
}

func workspaceFromWire(w workspaceJSON, tp *timeParser) domain.Workspace {
	ws := domain.Workspace{
		ID:        w.ID,
		Name:      w.Name,
		Code:      w.Code,
		CreatedBy: w.CreatedBy,
		CreatedAt: tp.parse("workspace createdAt", w.CreatedAt),
		StudyIDs:  w.StudyIDs,
		Research: domain.ResearchSettings{
			ResearchMode:  w.ResearchMode,
			AIEnabled:     w.AIEnabled,
			ParticipantID: w.ParticipantID,
		},
	}
	for _, c := range w.Collaborators {
		ws.Collaborators = append(ws.Collaborators, collaboratorFromWire(c, tp))
	}
	return ws
}

func studyToWire(s domain.StudyData) studyJSON {
	w := studyJSON{
		ID:               s.Study.ID,
		Title:            s.Study.Title,
		Description:      s.Study.Description,
		ResearchQuestion: s.Study.ResearchQuestion,
		Status:           s.Study.Status.String(),
		Tags:             nonNil(s.Study.Tags),
		Color:            s.Study.Color,
		CreatedAt:        formatTime(s.Study.CreatedAt),
		UpdatedAt:        formatTime(s.Study.UpdatedAt),
		LastAccessedAt:   formatTime(s.Study.LastAccessedAt),
		Documents:        documentsToWire(s.Documents),
		Codes:            codesToWire(s.Codes),
		Themes:           themesToWire(s.Themes),
		Excerpts:         excerptsToWire(s.Excerpts),
		Memos:            memosToWire(s.Memos),
	}
	for _, d := range s.Undo {
		w.DeletedCodes = append(w.DeletedCodes, deletionJSON{
			Policy:       d.Policy.String(),
			Codes:        codesToWire(d.Codes),
			ExcerptLinks: d.ExcerptLinks,
			ThemeLinks:   d.ThemeLinks,
			Memos:        memosToWire(d.Memos),
			DeletedAt:    formatTime(d.DeletedAt),
		})
	}
	return w
}

func studyFromWire(w studyJSON, tp *timeParser) domain.StudyData {
	s := domain.StudyData{
		Study: domain.Study{
			ID:               w.ID,
			Title:            w.Title,
			Description:      w.Description,
			ResearchQuestion: w.ResearchQuestion,
			Status:           domain.StudyStatus(w.Status),
			Tags:             w.Tags,
			Color:            w.Color,
			CreatedAt:        tp.parse("study createdAt", w.CreatedAt),
			UpdatedAt:        tp.parse("study updatedAt", w.UpdatedAt),
			LastAccessedAt:   tp.parse("study lastAccessedAt", w.LastAccessedAt),
		},
		Documents: documentsFromWire(w.Documents, tp),
		Codes:     codesFromWire(w.Codes, tp),
		Themes:    themesFromWire(w.Themes, tp),
		Excerpts:  excerptsFromWire(w.Excerpts, tp),
		Memos:     memosFromWire(w.Memos, tp),
	}
	for _, d := range w.DeletedCodes {
		s.Undo = append(s.Undo, domain.CodeDeletion{
			Policy:       domain.DeletePolicy(d.Policy),
			Codes:        codesFromWire(d.Codes, tp),
			ExcerptLinks: d.ExcerptLinks,
			ThemeLinks:   d.ThemeLinks,
			Memos:        memosFromWire(d.Memos, tp),
			DeletedAt:    tp.parse("deletion deletedAt", d.DeletedAt),
		})
	}
	return s
}

func analyticsToWire(l domain.AnalyticsLog) analyticsLogJSON {
	return analyticsLogJSON{
		ID:            l.ID,
		Timestamp:     formatTime(l.Timestamp),
		WorkspaceID:   l.WorkspaceID,
		ParticipantID: l.ParticipantID,
		Action:        l.Action.String(),
		Details: analyticsDetailsJSON{
			StudyID:            l.Details.StudyID,
			DocumentID:         l.Details.DocumentID,
			ExcerptID:          l.Details.ExcerptID,
			CodeID:             l.Details.CodeID,
			CodeName:           l.Details.CodeName,
			AISuggestion:       l.Details.AISuggestion,
			AIConfidence:       l.Details.AIConfidence,
			SuggestionAccepted: l.Details.SuggestionAccepted,
			DurationMillis:     l.Details.Duration.Milliseconds(),
			ExcerptText:        l.Details.ExcerptText,
			ExcerptLength:      l.Details.ExcerptLength,
		},
	}
}

func analyticsFromWire(w analyticsLogJSON, tp *timeParser) domain.AnalyticsLog {
	return domain.AnalyticsLog{
		ID:            w.ID,
		Timestamp:     tp.parse("analytics timestamp", w.Timestamp),
		WorkspaceID:   w.WorkspaceID,
		ParticipantID: w.ParticipantID,
		Action:        domain.AnalyticsAction(w.Action),
		Details: domain.AnalyticsDetails{
			StudyID:            w.Details.StudyID,
			DocumentID:         w.Details.DocumentID,
			ExcerptID:          w.Details.ExcerptID,
			CodeID:             w.Details.CodeID,
			CodeName:           w.Details.CodeName,
			AISuggestion:       w.Details.AISuggestion,
			AIConfidence:       w.Details.AIConfidence,
			SuggestionAccepted: w.Details.SuggestionAccepted,
			Duration:           time.Duration(w.Details.DurationMillis) * time.Millisecond,
			ExcerptText:        w.Details.ExcerptText,
			ExcerptLength:      w.Details.ExcerptLength,
		},
	}
}
