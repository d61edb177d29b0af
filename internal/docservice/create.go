package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/document"
	"github.com/starford/raido/internal/index"
)

var illegalFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

const maxFileNameLen = 100

// SanitizeFileName strips the characters that are illegal in file
// names, collapses whitespace runs to a single space, trims, and
// truncates. Internal spaces and ordinary punctuation survive.
func SanitizeFileName(title string) string {
	clean := illegalFileChars.ReplaceAllString(title, "")
	clean = strings.Join(strings.Fields(clean), " ")
	if runes := []rune(clean); len(runes) > maxFileNameLen {
		clean = strings.TrimSpace(string(runes[:maxFileNameLen]))
	}
	return clean
}

// CreateProjectRequest describes a new project document.
type CreateProjectRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Priority    string        `json:"priority,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Parent      string        `json:"parent,omitempty"`
	Actions     []ActionInput `json:"actions,omitempty"`
}

// Validate checks the request before any I/O.
func (r CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
	)
}

// CreateProjectResult reports the created document.
type CreateProjectResult struct {
	Path     string          `json:"path"`
	Title    string          `json:"title"`
	Checksum string          `json:"checksum"`
	Anchors  []anchor.Anchor `json:"anchors"`
}

// CreateProject renders a new project document from the vault template,
// or from the built-in skeleton when no template exists, and writes it
// to the projects folder under a sanitized file name. Creating over an
// existing path fails with ErrAlreadyExists.
func (s *Service) CreateProject(_ context.Context, req CreateProjectRequest) (*CreateProjectResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	if err := s.validateTags(req.Tags); err != nil {
		return nil, err
	}
	for i, a := range req.Actions {
		if err := a.Validate(); err != nil {
			return nil, apperr.Validation(fmt.Errorf("action %d: %v", i+1, err))
		}
	}

	name := SanitizeFileName(req.Title)
	if name == "" {
		return nil, apperr.Validationf("title %q leaves no usable file name", req.Title)
	}
	docPath := path.Join(s.opts.ProjectsFolder, name+".md")

	exists, err := s.store.Exists(docPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", docPath, apperr.ErrAlreadyExists)
	}

	text := s.renderProject(req)

	if err := s.store.Create(docPath, []byte(text)); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", docPath, apperr.ErrAlreadyExists)
		}
		return nil, err
	}
	if err := index.IndexDocument(s.db, docPath, []byte(text)); err != nil {
		return nil, err
	}

	lines := make([]string, len(req.Actions))
	for i, a := range req.Actions {
		lines[i] = s.line(a)
	}
	res := s.mutationResult(docPath, text, lines)
	return &CreateProjectResult{
		Path:     docPath,
		Title:    strings.TrimSpace(req.Title),
		Checksum: res.Checksum,
		Anchors:  res.Anchors,
	}, nil
}

// renderProject produces the initial whole-document text. The parent
// field, tags, and first actions are applied through the same
// primitives every later mutation uses, so template and skeleton
// projects end up shaped identically.
func (s *Service) renderProject(req CreateProjectRequest) string {
	priority := req.Priority
	if priority == "" {
		priority = s.opts.DefaultPriority
	}

	text, ok := s.renderTemplate(req, priority)
	if !ok {
		text = s.skeleton(req, priority)
	}

	if req.Parent != "" {
		text = document.SetHeaderField(text, "parent", req.Parent)
	}
	if len(req.Tags) > 0 {
		merged := document.MergeTags(headerTags(text), s.opts.CategoryPrefix, req.Tags)
		text = document.SetTags(text, merged)
	}
	if len(req.Actions) > 0 {
		lines := make([]string, len(req.Actions))
		for i, a := range req.Actions {
			lines[i] = s.line(a)
		}
		text = document.InsertManyIntoSection(text, s.opts.ActionsHeading, lines, document.PositionEnd)
	}
	return text
}

// renderTemplate loads the project template from the templates folder
// and substitutes its placeholders. ok is false when the vault carries
// no usable template; the caller falls back to the skeleton.
func (s *Service) renderTemplate(req CreateProjectRequest, priority string) (string, bool) {
	data, err := s.store.Read(path.Join(s.opts.TemplatesFolder, s.opts.ProjectTemplate))
	if err != nil {
		return "", false
	}

	now := s.now()
	r := strings.NewReplacer(
		"{{title}}", strings.TrimSpace(req.Title),
		"{{date}}", now.Format("2006-01-02"),
		"{{time}}", now.Format("15:04"),
		"{{priority}}", priority,
		"{{sphere}}", s.sphereTag(req.Tags),
		"{{description}}", strings.TrimSpace(req.Description),
	)
	return r.Replace(string(data)), true
}

// skeleton is the fallback when the vault has no template: header
// block, title heading, description, and an empty primary section ready
// to take the first actions.
func (s *Service) skeleton(req CreateProjectRequest, priority string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("created: " + s.today() + "\n")
	b.WriteString("priority: " + priority + "\n")
	b.WriteString("status: " + s.opts.DefaultStatus + "\n")
	b.WriteString("tags: []\n")
	b.WriteString("---\n\n")
	b.WriteString("# " + strings.TrimSpace(req.Title) + "\n")
	if d := strings.TrimSpace(req.Description); d != "" {
		b.WriteString("\n" + d + "\n")
	}
	b.WriteString("\n" + s.opts.ActionsHeading + "\n")
	return b.String()
}

// sphereTag returns the first category tag, for the template's sphere
// placeholder.
func (s *Service) sphereTag(tags []string) string {
	for _, t := range tags {
		if s.opts.CategoryPrefix != "" && strings.HasPrefix(t, s.opts.CategoryPrefix) {
			return t
		}
	}
	return ""
}
