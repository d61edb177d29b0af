// Package anchor provides weak references into task documents and the
// logic for resolving them after the underlying file has changed.
//
// An anchor remembers where a line was, not where it is. Resolution
// re-checks the recorded position first and falls back to scanning the
// whole document for the exact line text, so anchors survive edits that
// move a line but not edits that rewrite it.
package anchor

import (
	"errors"
	"os"

	"github.com/starford/raido/internal/document"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/taskline"
)

// Resolution failure reasons.
const (
	ReasonDocumentNotFound = "not found"
	ReasonLineNotFound     = "line not found"
)

// Anchor is a captured reference to a single line of a document.
// Line is 1-indexed and Content is the exact line text at capture time.
type Anchor struct {
	Path        string `json:"path"`
	Line        int    `json:"line"`
	Content     string `json:"content"`
	DisplayText string `json:"display_text"`
}

// Resolution reports where an anchor's line lives now. A lost line is a
// normal outcome, not an error: Found is false and Reason says why.
type Resolution struct {
	Found     bool   `json:"found"`
	Line      int    `json:"line,omitempty"`
	Relocated bool   `json:"relocated,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Resolve locates a's line inside text. The recorded position wins when
// the line there still matches Content exactly; otherwise the first line
// anywhere in the document equal to Content wins and the resolution is
// marked relocated. If the line appears more than once the first match
// is taken.
func Resolve(text string, a Anchor) Resolution {
	lines := document.SplitLines(text)
	if a.Line >= 1 && a.Line <= len(lines) && lines[a.Line-1] == a.Content {
		return Resolution{Found: true, Line: a.Line}
	}
	for i, line := range lines {
		if line == a.Content {
			return Resolution{Found: true, Line: i + 1, Relocated: true}
		}
	}
	return Resolution{Found: false, Reason: ReasonLineNotFound}
}

// MintByText builds an anchor for the first action line of text whose
// display text equals displayText. The comparison strips only the bullet
// and status bracket from each candidate line, so any annotations on the
// line are part of what must match.
func MintByText(path, text, displayText string) (Anchor, bool) {
	for i, line := range document.SplitLines(text) {
		if !taskline.IsActionLine(line) {
			continue
		}
		if taskline.ExtractText(line) == displayText {
			return Anchor{
				Path:        path,
				Line:        i + 1,
				Content:     line,
				DisplayText: displayText,
			}, true
		}
	}
	return Anchor{}, false
}

// Resolver resolves anchors against documents loaded from a storage
// provider.
type Resolver struct {
	store storage.Provider
}

func NewResolver(store storage.Provider) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the anchor's document and resolves against it. A missing
// document resolves to a not-found result; only real I/O failures return
// an error.
func (r *Resolver) Resolve(a Anchor) (Resolution, error) {
	data, err := r.store.Read(a.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Resolution{Found: false, Reason: ReasonDocumentNotFound}, nil
		}
		return Resolution{}, err
	}
	return Resolve(string(data), a), nil
}

// Mint loads the document at path and mints an anchor for the first
// action line matching displayText. ok is false when no line matches.
func (r *Resolver) Mint(path, displayText string) (a Anchor, ok bool, err error) {
	data, err := r.store.Read(path)
	if err != nil {
		return Anchor{}, false, err
	}
	a, ok = MintByText(path, string(data), displayText)
	return a, ok, nil
}
