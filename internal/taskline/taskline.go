// Package taskline parses and serializes the checkbox task-line format:
// a bullet marker, a status bracket, free action text, and optional
// trailing annotations (completion date, due date, inline sphere tags).
package taskline

import (
	"regexp"
	"strings"
)

// Status is the lifecycle state encoded in the bracket token.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusDone    Status = "done"
	StatusWaiting Status = "waiting"
)

// Marker returns the bracket token for the status. Unknown values
// serialize as todo.
func (s Status) Marker() string {
	switch s {
	case StatusDone:
		return "x"
	case StatusWaiting:
		return "w"
	default:
		return " "
	}
}

// ComposeStatus resolves the done/waiting flags a caller may both set
// into a single status. Done wins: the waiting marker is suppressed.
func ComposeStatus(done, waiting bool) Status {
	switch {
	case done:
		return StatusDone
	case waiting:
		return StatusWaiting
	default:
		return StatusTodo
	}
}

var (
	actionRe   = regexp.MustCompile(`^\s*[-*]\s*\[([ xXw])\]\s*(.*)$`)
	doneDateRe = regexp.MustCompile(`\s*✅\s*(\d{4}-\d{2}-\d{2})`)
	dueDateRe  = regexp.MustCompile(`\s*📅\s*(\d{4}-\d{2}-\d{2})`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Fields holds the semantic content of one task line.
type Fields struct {
	Status Status `json:"status"`
	// Text is the action text with date annotations stripped. Inline
	// tags stay part of the text; Tags only mirrors them for lookups.
	Text string `json:"text"`
	// DueDate is YYYY-MM-DD, empty when the line carries no 📅 annotation.
	DueDate string `json:"due_date,omitempty"`
	// CompletionDate is YYYY-MM-DD and only meaningful when Status is done.
	CompletionDate string `json:"completion_date,omitempty"`
	// Tags are the inline tags without the leading '#', e.g. "sphere/work".
	Tags []string `json:"tags,omitempty"`
}

// IsActionLine reports whether the line, after trimming, starts with a
// bullet marker followed by one of the recognized status brackets.
func IsActionLine(line string) bool {
	return actionRe.MatchString(line)
}

// Parse extracts the semantic fields from a task line. ok is false when
// the line does not match the checkbox grammar.
func Parse(line string) (Fields, bool) {
	m := actionRe.FindStringSubmatch(line)
	if m == nil {
		return Fields{}, false
	}

	var f Fields
	switch m[1] {
	case "x", "X":
		f.Status = StatusDone
	case "w":
		f.Status = StatusWaiting
	default:
		f.Status = StatusTodo
	}

	rest := m[2]
	if dm := doneDateRe.FindStringSubmatch(rest); dm != nil {
		f.CompletionDate = dm[1]
		rest = doneDateRe.ReplaceAllString(rest, "")
	}
	if dm := dueDateRe.FindStringSubmatch(rest); dm != nil {
		f.DueDate = dm[1]
		rest = dueDateRe.ReplaceAllString(rest, "")
	}

	f.Text = strings.TrimSpace(rest)
	f.Tags = extractTags(f.Text)
	return f, true
}

// ExtractText returns the display text of a task line: only the
// bullet+bracket prefix is removed. Date annotations and inline tags
// stay in place. Returns "" when the line is not an action line.
func ExtractText(line string) string {
	m := actionRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// Serialize emits the canonical task line: marker, text, then in fixed
// order the completion annotation (done only), the due annotation, and
// any tags not already present as a #-token of the text.
func (f Fields) Serialize() string {
	var b strings.Builder
	b.WriteString("- [")
	b.WriteString(f.Status.Marker())
	b.WriteString("] ")
	b.WriteString(strings.TrimSpace(f.Text))

	if f.Status == StatusDone && f.CompletionDate != "" {
		b.WriteString(" ✅ ")
		b.WriteString(f.CompletionDate)
	}
	if f.DueDate != "" {
		b.WriteString(" 📅 ")
		b.WriteString(f.DueDate)
	}

	present := make(map[string]struct{})
	for _, t := range extractTags(f.Text) {
		present[t] = struct{}{}
	}
	for _, t := range f.Tags {
		t = strings.TrimPrefix(t, "#")
		if t == "" {
			continue
		}
		if _, ok := present[t]; ok {
			continue
		}
		present[t] = struct{}{}
		b.WriteString(" #")
		b.WriteString(t)
	}

	return b.String()
}

// extractTags collects inline #tags in order of first occurrence.
func extractTags(text string) []string {
	matches := tagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		t := m[1]
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
