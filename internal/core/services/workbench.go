package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
	"github.com/custodia-labs/codebook/internal/core/ports/driving"
	"github.com/custodia-labs/codebook/internal/core/study"
	"github.com/custodia-labs/codebook/internal/exchange"
	"github.com/custodia-labs/codebook/internal/logger"
)

// Ensure Workbench implements the interfaces.
var (
	_ driving.WorkspaceService = (*Workbench)(nil)
	_ driving.StudyService     = (*Workbench)(nil)
	_ driving.DocumentService  = (*Workbench)(nil)
	_ driving.CodingService    = (*Workbench)(nil)
	_ driving.AnalysisService  = (*Workbench)(nil)
	_ driving.ExchangeService  = (*Workbench)(nil)
	_ driving.ResearchService  = (*Workbench)(nil)
)

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Workbench owns the whole application state and serializes every
// operation on it. Each mutation runs as a transaction: the state is
// snapshotted, the change is applied and persisted, and the snapshot is
// restored when either step fails.
type Workbench struct {
	store  driven.StateStore
	parser driven.DocumentParser

	policy  domain.DeletePolicy
	maxLogs int
	now     func() time.Time
	newID   func() string
	newCode func() string

	mu           sync.RWMutex
	version      int64
	workspaces   []domain.Workspace
	studies      map[string]*study.Study
	order        []string
	activeWS     string
	activeStudy  string
	collaborator *domain.Collaborator
	logs         []domain.AnalyticsLog
	sessionStart time.Time
}

// NewWorkbench creates a workbench persisting to store.
// The parser is optional (can be nil); without it only inline text can be added.
func NewWorkbench(store driven.StateStore, parser driven.DocumentParser, settings domain.AppSettings) *Workbench {
	policy := settings.DeletePolicy
	if !policy.IsValid() {
		policy = domain.DeleteCascade
	}
	maxLogs := settings.MaxAnalyticsLogs
	if maxLogs <= 0 {
		maxLogs = domain.DefaultMaxAnalyticsLogs
	}
	return &Workbench{
		store:   store,
		parser:  parser,
		policy:  policy,
		maxLogs: maxLogs,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		newCode: randomJoinCode,
		studies: make(map[string]*study.Study),
	}
}

// SetClock overrides the time source.
func (w *Workbench) SetClock(now func() time.Time) {
	w.now = now
}

// SetIDGenerator overrides how entity ids are minted.
func (w *Workbench) SetIDGenerator(gen func() string) {
	w.newID = gen
}

// SetJoinCodeGenerator overrides how workspace join codes are minted.
func (w *Workbench) SetJoinCodeGenerator(gen func() string) {
	w.newCode = gen
}

// Load reads the persisted state, replacing whatever the workbench holds.
func (w *Workbench) Load(ctx context.Context) error {
	blob, version, err := w.store.Load(ctx, exchange.StateKey)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	st, err := exchange.DecodeState(blob)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.apply(st); err != nil {
		return err
	}
	w.version = version
	logger.Debug("loaded state: %d workspaces, %d studies, version %d", len(w.workspaces), len(w.order), version)
	return nil
}

// studyOptions configures studies created or loaded by the workbench.
func (w *Workbench) studyOptions() []study.Option {
	return []study.Option{
		study.WithDeletePolicy(w.policy),
		study.WithClock(w.now),
		study.WithIDGenerator(w.newID),
	}
}

// state builds a detached copy of the whole application state.
func (w *Workbench) state() domain.State {
	st := domain.State{
		Workspaces:        cloneWorkspaces(w.workspaces),
		Studies:           make([]domain.StudyData, 0, len(w.order)),
		ActiveWorkspaceID: w.activeWS,
		ActiveStudyID:     w.activeStudy,
		AnalyticsLogs:     cloneLogs(w.logs),
		SessionStart:      w.sessionStart,
	}
	for _, id := range w.order {
		st.Studies = append(st.Studies, w.studies[id].Data())
	}
	if w.collaborator != nil {
		c := *w.collaborator
		st.CurrentCollaborator = &c
	}
	return st
}

// apply replaces the in-memory state. Nothing changes when a study fails to load.
func (w *Workbench) apply(st domain.State) error {
	studies := make(map[string]*study.Study, len(st.Studies))
	order := make([]string, 0, len(st.Studies))
	for _, data := range st.Studies {
		s, err := study.Load(data, w.studyOptions()...)
		if err != nil {
			return fmt.Errorf("load study %s: %w", data.Study.ID, err)
		}
		if _, dup := studies[s.ID()]; dup {
			return fmt.Errorf("duplicate study %s: %w", s.ID(), domain.ErrInvalidInput)
		}
		studies[s.ID()] = s
		order = append(order, s.ID())
	}

	w.workspaces = cloneWorkspaces(st.Workspaces)
	w.studies = studies
	w.order = order
	w.activeWS = st.ActiveWorkspaceID
	w.activeStudy = st.ActiveStudyID
	w.collaborator = nil
	if st.CurrentCollaborator != nil {
		c := *st.CurrentCollaborator
		w.collaborator = &c
	}
	w.logs = cloneLogs(st.AnalyticsLogs)
	w.sessionStart = st.SessionStart

	// Drop selections that no longer resolve
	if w.workspaceIndex(w.activeWS) < 0 {
		w.activeWS = ""
	}
	w.dropHiddenActiveStudy()
	return nil
}

// persist saves the current state.
func (w *Workbench) persist(ctx context.Context) error {
	blob, err := exchange.EncodeState(w.state())
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	version, err := w.store.Save(ctx, exchange.StateKey, blob, w.version)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	w.version = version
	return nil
}

// tx runs fn under the write lock as one transaction.
func (w *Workbench) tx(ctx context.Context, fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := w.state()
	if err := fn(); err != nil {
		w.rollback(snapshot)
		return err
	}
	if err := w.persist(ctx); err != nil {
		w.rollback(snapshot)
		return err
	}
	return nil
}

func (w *Workbench) rollback(snapshot domain.State) {
	if err := w.apply(snapshot); err != nil {
		logger.Warn("rollback failed: %v", err)
	}
}

// studyTx runs fn against one study inside a transaction.
func (w *Workbench) studyTx(ctx context.Context, studyID string, fn func(s *study.Study) error) error {
	return w.tx(ctx, func() error {
		s, err := w.resolve(studyID)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

// view runs fn against one study under the read lock.
func (w *Workbench) view(studyID string, fn func(s *study.Study) error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, err := w.resolve(studyID)
	if err != nil {
		return err
	}
	return fn(s)
}

// resolve finds a study by id, or the active study when id is empty.
func (w *Workbench) resolve(studyID string) (*study.Study, error) {
	if studyID == "" {
		studyID = w.activeStudy
		if studyID == "" {
			return nil, domain.ErrNoActiveStudy
		}
	}
	s, ok := w.studies[studyID]
	if !ok || !w.visible(studyID) {
		return nil, fmt.Errorf("study %s: %w", studyID, domain.ErrNotFound)
	}
	return s, nil
}

// visible reports whether a study can be reached. With a workspace active,
// only the studies it lists are; without one, every study is.
func (w *Workbench) visible(studyID string) bool {
	ws := w.activeWorkspace()
	return ws == nil || ws.HasStudy(studyID)
}

// dropHiddenActiveStudy clears the active study once it is out of scope.
func (w *Workbench) dropHiddenActiveStudy() {
	if _, ok := w.studies[w.activeStudy]; !ok || !w.visible(w.activeStudy) {
		w.activeStudy = ""
	}
}

func (w *Workbench) workspaceIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range w.workspaces {
		if w.workspaces[i].ID == id {
			return i
		}
	}
	return -1
}

// activeWorkspace returns a pointer into w.workspaces, or nil.
func (w *Workbench) activeWorkspace() *domain.Workspace {
	i := w.workspaceIndex(w.activeWS)
	if i < 0 {
		return nil
	}
	return &w.workspaces[i]
}

// randomJoinCode returns a 6-character uppercase alphanumeric code.
func randomJoinCode() string {
	buf := make([]byte, domain.JoinCodeLength)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf)
}

func cloneWorkspaces(in []domain.Workspace) []domain.Workspace {
	out := make([]domain.Workspace, len(in))
	for i, ws := range in {
		ws.Collaborators = append([]domain.Collaborator(nil), ws.Collaborators...)
		ws.StudyIDs = append([]string(nil), ws.StudyIDs...)
		out[i] = ws
	}
	return out
}

func cloneLogs(in []domain.AnalyticsLog) []domain.AnalyticsLog {
	out := make([]domain.AnalyticsLog, len(in))
	for i, l := range in {
		if l.Details.SuggestionAccepted != nil {
			accepted := *l.Details.SuggestionAccepted
			l.Details.SuggestionAccepted = &accepted
		}
		out[i] = l
	}
	return out
}
