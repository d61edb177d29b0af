// Package docservice implements the document mutation engine. Every
// operation is one synchronous read→transform→write cycle over the
// whole document text: the current file is loaded, transformed in
// memory through the section, task-line and tag primitives, and written
// back in full. Operations that add action lines also return freshly
// minted anchors for them.
//
// The engine does not serialize concurrent operations against the same
// path; callers avoid lost updates by batching related lines into a
// single call.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/document"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/taskline"
)

// Options carries the vault layout and vocabulary the engine operates
// with. The engine never reads configuration from ambient state; zero
// values fall back to the defaults below.
type Options struct {
	ProjectsFolder  string
	TemplatesFolder string
	ProjectTemplate string
	NextActionsPath string
	SomedayPath     string
	ReferencePath   string

	ActionsHeading    string
	DiscussionHeading string
	ReferencesHeading string

	DefaultPriority string
	DefaultStatus   string

	// CategoryPrefix marks sphere tags, e.g. "sphere/". When Spheres is
	// non-empty it is the closed vocabulary of valid sphere names and
	// prefixed tags outside it fail validation.
	CategoryPrefix string
	Spheres        []string
}

func (o Options) withDefaults() Options {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&o.ProjectsFolder, "Projects")
	def(&o.TemplatesFolder, "Templates")
	def(&o.ProjectTemplate, "Project.md")
	def(&o.NextActionsPath, "Next Actions.md")
	def(&o.SomedayPath, "Someday.md")
	def(&o.ReferencePath, "Reference.md")
	def(&o.ActionsHeading, "## Next actions")
	def(&o.DiscussionHeading, "## Discussion")
	def(&o.ReferencesHeading, "## References")
	def(&o.DefaultPriority, "medium")
	def(&o.DefaultStatus, "active")
	def(&o.CategoryPrefix, "sphere/")
	return o
}

// Service is the document mutation engine plus the index-backed query
// surface layered on top of it.
type Service struct {
	store    storage.Provider
	db       *index.DB
	resolver *anchor.Resolver
	opts     Options
	now      func() time.Time
}

// NewService creates the engine over a storage provider and index DB.
func NewService(store storage.Provider, db *index.DB, opts Options) *Service {
	return &Service{
		store:    store,
		db:       db,
		resolver: anchor.NewResolver(store),
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// ActionInput describes one action line to be written.
type ActionInput struct {
	Text    string   `json:"text"`
	Due     string   `json:"due,omitempty"`
	Done    bool     `json:"done,omitempty"`
	Waiting bool     `json:"waiting,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Validate checks one action before any I/O happens.
func (a ActionInput) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Text, validation.Required),
		validation.Field(&a.Due, validation.Date("2006-01-02")),
	)
}

// MutationResult reports a completed whole-document mutation: the new
// content checksum and an anchor for every action line the operation
// added.
type MutationResult struct {
	Path     string          `json:"path"`
	Checksum string          `json:"checksum"`
	Anchors  []anchor.Anchor `json:"anchors"`
}

// AddActionsRequest appends one or more actions to a section of an
// existing document. An empty Heading falls back to the configured
// actions heading.
type AddActionsRequest struct {
	Path    string        `json:"path"`
	Heading string        `json:"heading,omitempty"`
	Actions []ActionInput `json:"actions"`
}

// AddActions appends the actions at the end of the requested section in
// a single cycle. The target document must already exist; only the
// shared list files are created implicitly.
func (s *Service) AddActions(_ context.Context, req AddActionsRequest) (*MutationResult, error) {
	if req.Path == "" {
		return nil, apperr.Validationf("path is required")
	}
	if err := s.validateActions(req.Actions); err != nil {
		return nil, err
	}

	text, err := s.readDoc(req.Path)
	if err != nil {
		return nil, err
	}

	heading := req.Heading
	if heading == "" {
		heading = s.opts.ActionsHeading
	}
	lines := make([]string, len(req.Actions))
	for i, a := range req.Actions {
		lines[i] = s.line(a)
	}

	next := document.InsertManyIntoSection(text, heading, lines, document.PositionEnd)
	if err := s.writeDoc(req.Path, next); err != nil {
		return nil, err
	}
	res := s.mutationResult(req.Path, next, lines)
	return &res, nil
}

// AddItemRequest adds one free-form bullet to a section of a document.
type AddItemRequest struct {
	Path    string `json:"path"`
	Text    string `json:"text"`
	Heading string `json:"heading,omitempty"`
}

// AddDiscussionItem prepends a bullet to the discussion section, newest
// first.
func (s *Service) AddDiscussionItem(_ context.Context, req AddItemRequest) (*MutationResult, error) {
	if req.Path == "" {
		return nil, apperr.Validationf("path is required")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validationf("text is required")
	}

	current, err := s.readDoc(req.Path)
	if err != nil {
		return nil, err
	}

	heading := req.Heading
	if heading == "" {
		heading = s.opts.DiscussionHeading
	}
	line := "- " + text
	next := document.InsertIntoSection(current, heading, line, document.PositionStart)
	if err := s.writeDoc(req.Path, next); err != nil {
		return nil, err
	}
	res := s.mutationResult(req.Path, next, []string{line})
	return &res, nil
}

// AddReference prepends a bullet to the references section. An empty
// path targets the shared reference list, which is created on first
// use; explicit paths must exist.
func (s *Service) AddReference(_ context.Context, req AddItemRequest) (*MutationResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validationf("text is required")
	}

	target := req.Path
	autoCreate := false
	if target == "" {
		target = s.opts.ReferencePath
		autoCreate = true
	}

	current, err := s.readDoc(target)
	if err != nil {
		if !autoCreate || !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		current = listSkeleton(target)
	}

	heading := req.Heading
	if heading == "" {
		heading = s.opts.ReferencesHeading
	}
	line := "- " + text
	next := document.InsertIntoSection(current, heading, line, document.PositionStart)
	if err := s.writeDoc(target, next); err != nil {
		return nil, err
	}
	res := s.mutationResult(target, next, []string{line})
	return &res, nil
}

// UpdateTagsRequest merges tags into a document's header tags field.
type UpdateTagsRequest struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

// UpdateTags merges the given tags into the header tags field, category
// tags first, and rewrites only the tags entry.
func (s *Service) UpdateTags(_ context.Context, req UpdateTagsRequest) (*MutationResult, error) {
	if req.Path == "" {
		return nil, apperr.Validationf("path is required")
	}
	if len(req.Tags) == 0 {
		return nil, apperr.Validationf("at least one tag is required")
	}
	if err := s.validateTags(req.Tags); err != nil {
		return nil, err
	}

	text, err := s.readDoc(req.Path)
	if err != nil {
		return nil, err
	}

	merged := document.MergeTags(headerTags(text), s.opts.CategoryPrefix, req.Tags)
	next := document.SetTags(text, merged)
	if err := s.writeDoc(req.Path, next); err != nil {
		return nil, err
	}
	res := s.mutationResult(req.Path, next, nil)
	return &res, nil
}

// SetStatusRequest flips the status of the line an anchor points at.
type SetStatusRequest struct {
	Anchor anchor.Anchor   `json:"anchor"`
	Status taskline.Status `json:"status"`
}

// TaskStatusResult reports the rewritten line and a fresh anchor for it.
// The old anchor is stale the moment this returns.
type TaskStatusResult struct {
	Path      string        `json:"path"`
	Line      int           `json:"line"`
	Relocated bool          `json:"relocated,omitempty"`
	NewLine   string        `json:"new_line"`
	Anchor    anchor.Anchor `json:"anchor"`
	Checksum  string        `json:"checksum"`
}

// SetTaskStatus resolves the anchor, rewrites that one line through the
// grammar, and writes the document back. The completion date follows
// the status: flipping to done stamps today, leaving done clears it.
func (s *Service) SetTaskStatus(_ context.Context, req SetStatusRequest) (*TaskStatusResult, error) {
	switch req.Status {
	case taskline.StatusTodo, taskline.StatusDone, taskline.StatusWaiting:
	default:
		return nil, apperr.Validationf("unknown status %q", req.Status)
	}
	if req.Anchor.Path == "" {
		return nil, apperr.Validationf("anchor path is required")
	}
	f, ok := taskline.Parse(req.Anchor.Content)
	if !ok {
		return nil, apperr.Validationf("anchored line is not an action line")
	}

	text, err := s.readDoc(req.Anchor.Path)
	if err != nil {
		return nil, err
	}

	res := anchor.Resolve(text, req.Anchor)
	if !res.Found {
		return nil, fmt.Errorf("%s:%d: %w", req.Anchor.Path, req.Anchor.Line, apperr.ErrLineNotFound)
	}

	f.Status = req.Status
	if req.Status == taskline.StatusDone {
		if f.CompletionDate == "" {
			f.CompletionDate = s.today()
		}
	} else {
		f.CompletionDate = ""
	}
	newLine := f.Serialize()

	next, ok := document.ReplaceLine(text, res.Line, newLine)
	if !ok {
		return nil, fmt.Errorf("%s:%d: %w", req.Anchor.Path, res.Line, apperr.ErrLineNotFound)
	}
	if err := s.writeDoc(req.Anchor.Path, next); err != nil {
		return nil, err
	}

	return &TaskStatusResult{
		Path:      req.Anchor.Path,
		Line:      res.Line,
		Relocated: res.Relocated,
		NewLine:   newLine,
		Anchor: anchor.Anchor{
			Path:        req.Anchor.Path,
			Line:        res.Line,
			Content:     newLine,
			DisplayText: taskline.ExtractText(newLine),
		},
		Checksum: checksum.Sum([]byte(next)),
	}, nil
}

// DocumentDetail is the full representation of one document.
type DocumentDetail struct {
	Path      string          `json:"path"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Checksum  string          `json:"checksum"`
	Tags      []string        `json:"tags"`
	Header    map[string]any  `json:"header,omitempty"`
	Tasks     []document.Task `json:"tasks"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GetDocument reads and parses a document.
func (s *Service) GetDocument(_ context.Context, docPath string) (*DocumentDetail, error) {
	data, err := s.store.Read(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", docPath, apperr.ErrNotFound)
		}
		return nil, err
	}
	return s.buildDetail(docPath, data), nil
}

// PutDocument replaces a document's whole content. A non-empty ifMatch
// checksum guards against lost updates.
func (s *Service) PutDocument(_ context.Context, docPath string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", docPath, apperr.ErrNotFound)
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.writeDoc(docPath, string(content)); err != nil {
		return nil, err
	}
	return s.buildDetail(docPath, content), nil
}

// DeleteDocument removes a document from storage and the index. Pins
// into it are kept but marked lost.
func (s *Service) DeleteDocument(_ context.Context, docPath string) error {
	if err := s.store.Delete(docPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", docPath, apperr.ErrNotFound)
		}
		return err
	}
	return s.db.DeleteProject(docPath)
}

// ListProjects returns indexed project rows with optional tag and
// status filters.
func (s *Service) ListProjects(_ context.Context, opts index.ListOptions) ([]models.Project, int, error) {
	rows, total, err := s.db.ListProjects(opts)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.Project, len(rows))
	for i, r := range rows {
		items[i] = models.Project{
			Path:      r.Path,
			Title:     r.Title,
			Status:    r.Status,
			Priority:  r.Priority,
			Tags:      nonNilSlice(r.Tags),
			OpenTasks: r.OpenTasks,
			DoneTasks: r.DoneTasks,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// readDoc loads a document, mapping a missing file to ErrNotFound.
func (s *Service) readDoc(docPath string) (string, error) {
	data, err := s.store.Read(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", docPath, apperr.ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// writeDoc persists the new whole-document text and refreshes the index
// row, so queries observe the mutation without waiting for the watcher.
func (s *Service) writeDoc(docPath, text string) error {
	if err := s.store.Write(docPath, []byte(text)); err != nil {
		return err
	}
	return index.IndexDocument(s.db, docPath, []byte(text))
}

// line renders one action input as a canonical task line. Done wins
// over waiting; a done action is stamped with today's date.
func (s *Service) line(a ActionInput) string {
	f := taskline.Fields{
		Status:  taskline.ComposeStatus(a.Done, a.Waiting),
		Text:    strings.TrimSpace(a.Text),
		DueDate: a.Due,
		Tags:    a.Tags,
	}
	if f.Status == taskline.StatusDone {
		f.CompletionDate = s.today()
	}
	return f.Serialize()
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

func (s *Service) validateActions(actions []ActionInput) error {
	if len(actions) == 0 {
		return apperr.Validationf("at least one action is required")
	}
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return apperr.Validation(fmt.Errorf("action %d: %v", i+1, err))
		}
		if err := s.validateTags(a.Tags); err != nil {
			return err
		}
	}
	return nil
}

// validateTags rejects sphere tags outside the configured vocabulary.
// Tags without the category prefix pass through untouched, and an empty
// vocabulary accepts every sphere.
func (s *Service) validateTags(tags []string) error {
	if len(s.opts.Spheres) == 0 || s.opts.CategoryPrefix == "" {
		return nil
	}
	for _, t := range tags {
		if !strings.HasPrefix(t, s.opts.CategoryPrefix) {
			continue
		}
		name := strings.TrimPrefix(t, s.opts.CategoryPrefix)
		known := false
		for _, sp := range s.opts.Spheres {
			if sp == name {
				known = true
				break
			}
		}
		if !known {
			return apperr.Validationf("unknown sphere tag %q", t)
		}
	}
	return nil
}

// mutationResult mints anchors for the supplied lines against the final
// text. Lines that are not action lines yield no anchor.
func (s *Service) mutationResult(docPath, text string, addedLines []string) MutationResult {
	res := MutationResult{
		Path:     docPath,
		Checksum: checksum.Sum([]byte(text)),
		Anchors:  []anchor.Anchor{},
	}
	for _, line := range addedLines {
		if !taskline.IsActionLine(line) {
			continue
		}
		if a, ok := anchor.MintByText(docPath, text, taskline.ExtractText(line)); ok {
			res.Anchors = append(res.Anchors, a)
		}
	}
	return res
}

// buildDetail constructs a DocumentDetail from raw data without
// re-reading the file.
func (s *Service) buildDetail(docPath string, data []byte) *DocumentDetail {
	d := document.Parse(string(data))
	return &DocumentDetail{
		Path:      docPath,
		Title:     d.Title(),
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(d.Tags()),
		Header:    d.Header,
		Tasks:     nonNilSlice(d.Tasks()),
		UpdatedAt: s.now(),
	}
}

// headerTags returns the raw header tags field, which may be a bare
// string, a list, or absent.
func headerTags(text string) any {
	d := document.Parse(text)
	if d.Header == nil {
		return nil
	}
	return d.Header["tags"]
}

// listSkeleton is the initial body of an auto-created flat list file.
func listSkeleton(listPath string) string {
	return "# " + strings.TrimSuffix(path.Base(listPath), ".md") + "\n"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
