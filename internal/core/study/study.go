package study

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/codebook/internal/analysis"
	"github.com/custodia-labs/codebook/internal/core/domain"
)

// DefaultColor is given to studies created without a color.
const DefaultColor = "#3b82f6"

// Study is the aggregate root for one research project.
type Study struct {
	info      domain.Study
	documents []domain.Document
	codes     []domain.Code
	themes    []domain.Theme
	excerpts  []domain.Excerpt
	memos     []domain.Memo
	undo      []domain.CodeDeletion

	policy domain.DeletePolicy
	now    func() time.Time
	newID  func() string
}

// Option configures a Study.
type Option func(*Study)

// WithDeletePolicy sets how code and theme deletion cascades.
func WithDeletePolicy(p domain.DeletePolicy) Option {
	return func(s *Study) {
		if p.IsValid() {
			s.policy = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Study) { s.now = now }
}

// WithIDGenerator overrides how entity ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Study) { s.newID = gen }
}

func newStudy(opts []Option) *Study {
	s := &Study{
		policy: domain.DeleteCascade,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates an empty study.
func New(in domain.StudyInput, opts ...Option) (*Study, error) {
	s := newStudy(opts)
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("study title is required: %w", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = domain.StudyStatusPlanning
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("study status %q: %w", status, domain.ErrInvalidInput)
	}
	color := in.Color
	if color == "" {
		color = DefaultColor
	}

	now := s.now()
	s.info = domain.Study{
		ID:               s.newID(),
		Title:            title,
		Description:      in.Description,
		ResearchQuestion: in.ResearchQuestion,
		Status:           status,
		Tags:             slices.Clone(in.Tags),
		Color:            color,
		CreatedAt:        now,
		UpdatedAt:        now,
		LastAccessedAt:   now,
	}
	return s, nil
}

// Load rebuilds a study from a detached copy.
// Dangling references and invalid offsets are rejected with ErrInvalidInput.
// Derived fields in data are ignored and recomputed.
func Load(data domain.StudyData, opts ...Option) (*Study, error) {
	s := newStudy(opts)
	if data.Study.ID == "" {
		return nil, fmt.Errorf("study id is required: %w", domain.ErrInvalidInput)
	}
	s.info = cloneInfo(data.Study)
	s.documents = cloneDocuments(data.Documents)
	s.codes = cloneCodes(data.Codes)
	s.themes = cloneThemes(data.Themes)
	s.excerpts = cloneExcerpts(data.Excerpts)
	s.memos = slices.Clone(data.Memos)
	s.undo = cloneUndo(data.Undo)

	if err := s.validate(); err != nil {
		return nil, err
	}
	s.reindex()
	return s, nil
}

// validate checks referential integrity of a loaded study.
func (s *Study) validate() error {
	seen := make(map[string]struct{})
	unique := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s with empty id: %w", kind, domain.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id %q: %w", id, domain.ErrInvalidInput)
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, d := range s.documents {
		if err := unique("document", d.ID); err != nil {
			return err
		}
	}
	names := make(map[string]struct{})
	for _, c := range s.codes {
		if err := unique("code", c.ID); err != nil {
			return err
		}
		key := strings.ToLower(c.Name)
		if _, dup := names[key]; dup {
			return fmt.Errorf("code %q: %w", c.Name, domain.ErrDuplicateName)
		}
		names[key] = struct{}{}
		if !c.Level.IsValid() {
			return fmt.Errorf("code %q level %q: %w", c.Name, c.Level, domain.ErrInvalidInput)
		}
	}
	for _, c := range s.codes {
		// A missing parent is an orphan left by legacy deletion.
		if parent, ok := s.code(c.ParentID); ok {
			if want, _ := c.Level.ParentLevel(); parent.Level != want {
				return fmt.Errorf("code %q under %q: %w", c.Name, parent.Name, domain.ErrInvalidHierarchy)
			}
		} else if c.ParentID == "" && c.Level != domain.CodeLevelMain {
			return fmt.Errorf("code %q has no parent: %w", c.Name, domain.ErrInvalidHierarchy)
		}
	}
	for i := range s.excerpts {
		e := &s.excerpts[i]
		if err := unique("excerpt", e.ID); err != nil {
			return err
		}
		text, err := s.checkSelection(domain.TextSelection{
			DocumentID:  e.DocumentID,
			Text:        e.Text,
			StartOffset: e.StartOffset,
			EndOffset:   e.EndOffset,
		})
		if err != nil {
			return fmt.Errorf("excerpt %q: %w", e.ID, err)
		}
		e.Text = text
		e.CodeIDs = dedupe(e.CodeIDs)
		for _, id := range e.CodeIDs {
			if _, ok := s.code(id); !ok {
				return fmt.Errorf("excerpt %q references unknown code %q: %w", e.ID, id, domain.ErrInvalidInput)
			}
		}
	}
	for _, t := range s.themes {
		if err := unique("theme", t.ID); err != nil {
			return err
		}
		for _, id := range t.CodeIDs {
			if _, ok := s.code(id); !ok {
				return fmt.Errorf("theme %q references unknown code %q: %w", t.Name, id, domain.ErrInvalidInput)
			}
		}
	}
	for _, t := range s.themes {
		if t.ParentID != "" {
			if _, ok := s.theme(t.ParentID); !ok {
				return fmt.Errorf("theme %q references unknown parent %q: %w", t.Name, t.ParentID, domain.ErrInvalidInput)
			}
		}
	}
	for _, m := range s.memos {
		if err := unique("memo", m.ID); err != nil {
			return err
		}
		if !s.targetExists(m.TargetType, m.TargetID) {
			return fmt.Errorf("memo %q references unknown %s %q: %w", m.ID, m.TargetType, m.TargetID, domain.ErrInvalidInput)
		}
	}
	return nil
}

// reindex rewrites every derived field from the excerpt collection.
func (s *Study) reindex() {
	for i := range s.codes {
		id := s.codes[i].ID
		s.codes[i].ExcerptIDs = analysis.CodeExcerptIDs(id, s.excerpts)
		s.codes[i].Frequency = len(s.codes[i].ExcerptIDs)
		s.codes[i].DocumentCount = analysis.CodeDocumentCount(id, s.excerpts)
	}
	for i := range s.documents {
		s.documents[i].ExcerptIDs = analysis.DocumentExcerptIDs(s.documents[i].ID, s.excerpts)
	}
}

// touch records a mutation.
func (s *Study) touch() {
	now := s.now()
	s.info.UpdatedAt = now
	s.info.LastAccessedAt = now
}

// ID returns the study id.
func (s *Study) ID() string { return s.info.ID }

// Info returns the study metadata.
func (s *Study) Info() domain.Study { return cloneInfo(s.info) }

// Policy returns the delete policy in effect.
func (s *Study) Policy() domain.DeletePolicy { return s.policy }

// Data returns a detached copy of the whole study.
func (s *Study) Data() domain.StudyData {
	return domain.StudyData{
		Study:     cloneInfo(s.info),
		Documents: cloneDocuments(s.documents),
		Codes:     cloneCodes(s.codes),
		Themes:    cloneThemes(s.themes),
		Excerpts:  cloneExcerpts(s.excerpts),
		Memos:     slices.Clone(s.memos),
		Undo:      cloneUndo(s.undo),
	}
}

// Update edits the study metadata.
func (s *Study) Update(u domain.StudyUpdate) error {
	next := cloneInfo(s.info)
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return fmt.Errorf("study title is required: %w", domain.ErrInvalidInput)
		}
		next.Title = title
	}
	if u.Status != nil {
		if !u.Status.IsValid() {
			return fmt.Errorf("study status %q: %w", *u.Status, domain.ErrInvalidInput)
		}
		next.Status = *u.Status
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.ResearchQuestion != nil {
		next.ResearchQuestion = *u.ResearchQuestion
	}
	if u.Tags != nil {
		next.Tags = slices.Clone(*u.Tags)
	}
	if u.Color != nil {
		next.Color = *u.Color
	}
	s.info = next
	s.touch()
	return nil
}

// Access bumps LastAccessedAt without counting as a modification.
func (s *Study) Access() {
	s.info.LastAccessedAt = s.now()
}

func (s *Study) targetExists(kind domain.MemoTarget, id string) bool {
	switch kind {
	case domain.MemoTargetDocument:
		_, ok := s.document(id)
		return ok
	case domain.MemoTargetExcerpt:
		_, ok := s.excerpt(id)
		return ok
	case domain.MemoTargetCode:
		_, ok := s.code(id)
		return ok
	case domain.MemoTargetTheme:
		_, ok := s.theme(id)
		return ok
	default:
		return false
	}
}

// Statistics summarises the study's collections.
func (s *Study) Statistics() domain.StudyStatistics {
	stats := domain.StudyStatistics{
		StudyID:        s.info.ID,
		DocumentCount:  len(s.documents),
		CodeCount:      len(s.codes),
		ThemeCount:     len(s.themes),
		ExcerptCount:   len(s.excerpts),
		MemoCount:      len(s.memos),
		CodedSegments:  len(s.excerpts),
		RecentActivity: s.info.UpdatedAt,
	}
	if len(s.documents) > 0 {
		stats.AverageCodesPerDocument = float64(len(s.excerpts)) / float64(len(s.documents))
	}
	if c, ok := analysis.MostUsedCode(s.codes, s.excerpts); ok {
		stats.MostUsedCode = c.Name
	}
	return stats
}

// Duplicate deep-copies the study under fresh ids.
// Every internal reference is remapped to the new ids, the title gains a
// " (Copy)" suffix and the undo stack starts empty.
func (s *Study) Duplicate() *Study {
	d := &Study{policy: s.policy, now: s.now, newID: s.newID}
	ids := make(map[string]string)
	remap := func(old string) string {
		if old == "" {
			return ""
		}
		if id, ok := ids[old]; ok {
			return id
		}
		id := s.newID()
		ids[old] = id
		return id
	}

	now := s.now()
	d.info = cloneInfo(s.info)
	d.info.ID = s.newID()
	d.info.Title = s.info.Title + " (Copy)"
	d.info.CreatedAt = now
	d.info.UpdatedAt = now
	d.info.LastAccessedAt = now

	d.documents = cloneDocuments(s.documents)
	for i := range d.documents {
		d.documents[i].ID = remap(d.documents[i].ID)
	}
	d.codes = cloneCodes(s.codes)
	for i := range d.codes {
		d.codes[i].ID = remap(d.codes[i].ID)
		d.codes[i].ParentID = remap(d.codes[i].ParentID)
	}
	d.themes = cloneThemes(s.themes)
	for i := range d.themes {
		d.themes[i].ID = remap(d.themes[i].ID)
		d.themes[i].ParentID = remap(d.themes[i].ParentID)
		for j, id := range d.themes[i].CodeIDs {
			d.themes[i].CodeIDs[j] = remap(id)
		}
	}
	d.excerpts = cloneExcerpts(s.excerpts)
	for i := range d.excerpts {
		d.excerpts[i].ID = remap(d.excerpts[i].ID)
		d.excerpts[i].DocumentID = remap(d.excerpts[i].DocumentID)
		for j, id := range d.excerpts[i].CodeIDs {
			d.excerpts[i].CodeIDs[j] = remap(id)
		}
	}
	d.memos = slices.Clone(s.memos)
	for i := range d.memos {
		d.memos[i].ID = s.newID()
		d.memos[i].TargetID = remap(d.memos[i].TargetID)
	}

	d.reindex()
	return d
}

func cloneInfo(in domain.Study) domain.Study {
	in.Tags = slices.Clone(in.Tags)
	return in
}

func cloneDocuments(in []domain.Document) []domain.Document {
	out := slices.Clone(in)
	for i := range out {
		out[i].ExcerptIDs = slices.Clone(out[i].ExcerptIDs)
	}
	return out
}

func cloneCodes(in []domain.Code) []domain.Code {
	out := slices.Clone(in)
	for i := range out {
		out[i].ExcerptIDs = slices.Clone(out[i].ExcerptIDs)
	}
	return out
}

func cloneThemes(in []domain.Theme) []domain.Theme {
	out := slices.Clone(in)
	for i := range out {
		out[i].CodeIDs = slices.Clone(out[i].CodeIDs)
	}
	return out
}

func cloneExcerpts(in []domain.Excerpt) []domain.Excerpt {
	out := slices.Clone(in)
	for i := range out {
		out[i].CodeIDs = slices.Clone(out[i].CodeIDs)
	}
	return out
}

func cloneUndo(in []domain.CodeDeletion) []domain.CodeDeletion {
	out := slices.Clone(in)
	for i := range out {
		out[i].Codes = cloneCodes(out[i].Codes)
		out[i].Memos = slices.Clone(out[i].Memos)
		out[i].ExcerptLinks = cloneLinks(out[i].ExcerptLinks)
		out[i].ThemeLinks = cloneLinks(out[i].ThemeLinks)
	}
	return out
}

func cloneLinks(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
