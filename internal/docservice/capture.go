package docservice

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/document"
	"github.com/starford/raido/internal/models"
)

// Capture categories, the classifier's routing vocabulary.
const (
	CategoryAction    = "action"
	CategoryProject   = "project"
	CategoryReference = "reference"
	CategorySomeday   = "someday"
)

// CaptureRequest is a classification result plus an optional explicit
// target document. The engine consumes the result as given; how it was
// produced is not its concern.
type CaptureRequest struct {
	Classification models.Classification `json:"classification"`
	Target         string                `json:"target,omitempty"`
}

// Validate checks the classification before any document is touched.
func (r CaptureRequest) Validate() error {
	c := r.Classification
	return validation.Errors{
		"category": validation.Validate(c.Category,
			validation.Required,
			validation.In(CategoryAction, CategoryProject, CategoryReference, CategorySomeday)),
		"action_text": validation.Validate(c.ActionText, validation.Required),
		"due_date":    validation.Validate(c.DueDate, validation.Date("2006-01-02")),
	}.Filter()
}

// CaptureResult reports where a captured item landed.
type CaptureResult struct {
	Category string          `json:"category"`
	Path     string          `json:"path"`
	Created  bool            `json:"created,omitempty"`
	Checksum string          `json:"checksum"`
	Anchors  []anchor.Anchor `json:"anchors"`
}

// Capture routes one classification result to the right document: a
// new project, an action under an existing project, a someday entry, or
// a reference note. Actions without a usable target land on the shared
// next-actions list.
func (s *Service) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	c := req.Classification
	if err := s.validateTags(c.RecommendedTags); err != nil {
		return nil, err
	}

	switch c.Category {
	case CategoryProject:
		create := CreateProjectRequest{
			Title:       c.ActionText,
			Description: c.Reasoning,
			Tags:        c.RecommendedTags,
		}
		// The classifier may propose the project's first next action
		// alongside the title.
		if c.RecommendedAction != "" {
			create.Actions = []ActionInput{{
				Text:    c.RecommendedAction,
				Due:     c.DueDate,
				Waiting: c.IsWaitingFor,
			}}
		}
		res, err := s.CreateProject(ctx, create)
		if err != nil {
			return nil, err
		}
		return &CaptureResult{
			Category: c.Category,
			Path:     res.Path,
			Created:  true,
			Checksum: res.Checksum,
			Anchors:  res.Anchors,
		}, nil

	case CategoryAction:
		action := ActionInput{
			Text:    c.ActionText,
			Due:     c.DueDate,
			Waiting: c.IsWaitingFor,
			Tags:    c.RecommendedTags,
		}
		target := req.Target
		if target == "" && len(c.SuggestedTargets) > 0 {
			target = c.SuggestedTargets[0]
		}
		if target == "" {
			return s.appendToList(s.opts.NextActionsPath, c.Category, action)
		}
		res, err := s.AddActions(ctx, AddActionsRequest{Path: target, Actions: []ActionInput{action}})
		if err != nil {
			return nil, err
		}
		return &CaptureResult{
			Category: c.Category,
			Path:     res.Path,
			Checksum: res.Checksum,
			Anchors:  res.Anchors,
		}, nil

	case CategorySomeday:
		return s.appendToList(s.opts.SomedayPath, c.Category, ActionInput{
			Text: c.ActionText,
			Tags: c.RecommendedTags,
		})

	default: // reference; Validate rules out everything else
		res, err := s.AddReference(ctx, AddItemRequest{Text: c.ActionText})
		if err != nil {
			return nil, err
		}
		return &CaptureResult{
			Category: c.Category,
			Path:     res.Path,
			Checksum: res.Checksum,
			Anchors:  res.Anchors,
		}, nil
	}
}

// appendToList writes one action to a flat list file, creating the list
// on first use.
func (s *Service) appendToList(listPath, category string, action ActionInput) (*CaptureResult, error) {
	text, err := s.readDoc(listPath)
	created := false
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		text = listSkeleton(listPath)
		created = true
	}

	line := s.line(action)
	next := document.InsertIntoSection(text, s.opts.ActionsHeading, line, document.PositionEnd)
	if err := s.writeDoc(listPath, next); err != nil {
		return nil, err
	}
	res := s.mutationResult(listPath, next, []string{line})
	return &CaptureResult{
		Category: category,
		Path:     listPath,
		Created:  created,
		Checksum: res.Checksum,
		Anchors:  res.Anchors,
	}, nil
}
