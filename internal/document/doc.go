package document

import (
	"strings"

	"github.com/starford/raido/internal/taskline"
)

// Doc is a parsed, read-only view of one document: the header fields,
// the logical lines, and where the body begins.
type Doc struct {
	Header    map[string]any
	Lines     []string
	BodyStart int // index of the first line after the header block
}

// Task is one action line of a document with its 1-indexed position.
type Task struct {
	Line   int             `json:"line"`
	Raw    string          `json:"raw"`
	Fields taskline.Fields `json:"fields"`
}

// Parse splits the text into lines and decodes the header block when
// one is present. It never fails: a malformed header simply parses as
// absent.
func Parse(text string) *Doc {
	lines, _ := splitLines(text)
	d := &Doc{Lines: lines}
	if start, end, ok := HeaderBounds(lines); ok {
		d.Header = parseHeaderMap(lines, start, end)
		d.BodyStart = end + 1
	}
	return d
}

// Title returns the header "title" field if present, otherwise the text
// of the first level-1 heading in the body.
func (d *Doc) Title() string {
	if d.Header != nil {
		if t, ok := d.Header["title"].(string); ok && t != "" {
			return t
		}
	}
	for _, line := range d.body() {
		if HeadingLevel(line) == 1 {
			return HeadingText(line)
		}
	}
	return ""
}

// Tags returns the normalized header tags.
func (d *Doc) Tags() []string {
	if d.Header == nil {
		return nil
	}
	return NormalizeTags(d.Header["tags"])
}

// StringField returns a string-valued header field, or "".
func (d *Doc) StringField(key string) string {
	if d.Header == nil {
		return ""
	}
	if s, ok := d.Header[key].(string); ok {
		return s
	}
	return ""
}

// Sections returns the body sections in order. Line indices refer to
// d.Lines positions.
func (d *Doc) Sections() []Section {
	body := d.body()
	sections := Sections(body)
	for i := range sections {
		sections[i].Start += d.BodyStart
		sections[i].End += d.BodyStart
	}
	return sections
}

// Tasks returns every action line of the body with 1-indexed line
// numbers relative to the whole document.
func (d *Doc) Tasks() []Task {
	var out []Task
	for i := d.BodyStart; i < len(d.Lines); i++ {
		f, ok := taskline.Parse(d.Lines[i])
		if !ok {
			continue
		}
		out = append(out, Task{Line: i + 1, Raw: d.Lines[i], Fields: f})
	}
	return out
}

// BodyText returns the body (everything after the header block) as a
// single string.
func (d *Doc) BodyText() string {
	return strings.Join(d.body(), "\n")
}

func (d *Doc) body() []string {
	if d.BodyStart >= len(d.Lines) {
		return nil
	}
	return d.Lines[d.BodyStart:]
}
