package docservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/document"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/taskline"
)

// PinRequest pins a line to the focus list, addressed either by its
// 1-indexed line number or by an action's display text.
type PinRequest struct {
	Path        string `json:"path"`
	Line        int    `json:"line,omitempty"`
	DisplayText string `json:"display_text,omitempty"`
	Label       string `json:"label,omitempty"`
}

// CreatePin captures an anchor for an existing line and stores it.
func (s *Service) CreatePin(_ context.Context, req PinRequest) (*models.Pin, error) {
	if req.Path == "" {
		return nil, apperr.Validationf("path is required")
	}
	if req.Line <= 0 && req.DisplayText == "" {
		return nil, apperr.Validationf("either line or display_text is required")
	}

	text, err := s.readDoc(req.Path)
	if err != nil {
		return nil, err
	}

	var a anchor.Anchor
	if req.Line > 0 {
		content, ok := document.Line(text, req.Line)
		if !ok {
			return nil, fmt.Errorf("%s:%d: %w", req.Path, req.Line, apperr.ErrLineNotFound)
		}
		a = anchor.Anchor{
			Path:        req.Path,
			Line:        req.Line,
			Content:     content,
			DisplayText: taskline.ExtractText(content),
		}
	} else {
		var ok bool
		a, ok = anchor.MintByText(req.Path, text, req.DisplayText)
		if !ok {
			return nil, fmt.Errorf("%s: %q: %w", req.Path, req.DisplayText, apperr.ErrLineNotFound)
		}
	}

	now := s.now()
	pin := models.Pin{
		ID:          uuid.NewString(),
		Path:        a.Path,
		Line:        a.Line,
		Content:     a.Content,
		DisplayText: a.DisplayText,
		Label:       req.Label,
		State:       models.PinStateOK,
		CreatedAt:   now,
		CheckedAt:   now,
	}
	if err := s.db.SavePin(pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// PinResolution is a stored pin together with where its line is now.
type PinResolution struct {
	Pin        models.Pin        `json:"pin"`
	Resolution anchor.Resolution `json:"resolution"`
}

// ResolvePin re-locates one stored pin's line on demand and persists
// the outcome. A relocated pin is re-anchored at its new line; a lost
// pin is kept, flagged, and left to the caller to drop.
func (s *Service) ResolvePin(_ context.Context, id string) (*PinResolution, error) {
	pin, err := s.db.GetPin(id)
	if err != nil {
		return nil, err
	}
	if pin == nil {
		return nil, fmt.Errorf("pin %s: %w", id, apperr.ErrNotFound)
	}

	res, err := s.resolver.Resolve(anchor.Anchor{
		Path:        pin.Path,
		Line:        pin.Line,
		Content:     pin.Content,
		DisplayText: pin.DisplayText,
	})
	if err != nil {
		return nil, err
	}

	state := models.PinStateLost
	line := pin.Line
	switch {
	case res.Found && !res.Relocated:
		state = models.PinStateOK
	case res.Found:
		state = models.PinStateRelocated
		line = res.Line
	}

	now := s.now()
	if err := s.db.UpdatePinResolution(pin.ID, state, line, now); err != nil {
		return nil, err
	}
	pin.State = state
	pin.Line = line
	pin.CheckedAt = now
	return &PinResolution{Pin: *pin, Resolution: res}, nil
}

// ResolveAnchor resolves a caller-held anchor without touching stored
// pins.
func (s *Service) ResolveAnchor(_ context.Context, a anchor.Anchor) (*anchor.Resolution, error) {
	if a.Path == "" {
		return nil, apperr.Validationf("anchor path is required")
	}
	res, err := s.resolver.Resolve(a)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListPins returns stored pins, optionally filtered by state.
func (s *Service) ListPins(_ context.Context, state string) ([]models.Pin, error) {
	switch state {
	case "", models.PinStateOK, models.PinStateRelocated, models.PinStateLost:
	default:
		return nil, apperr.Validationf("unknown pin state %q", state)
	}
	pins, err := s.db.ListPins(state)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(pins), nil
}

// DeletePin removes a pin permanently.
func (s *Service) DeletePin(_ context.Context, id string) error {
	pin, err := s.db.GetPin(id)
	if err != nil {
		return err
	}
	if pin == nil {
		return fmt.Errorf("pin %s: %w", id, apperr.ErrNotFound)
	}
	return s.db.DeletePin(id)
}
