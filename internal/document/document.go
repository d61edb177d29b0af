// Package document models a task document as an immutable sequence of
// lines: the header block delimited by ---, heading-based sections, and
// the splice operations the engine mutates documents with. All functions
// return new line sequences and leave untouched regions byte-identical.
package document

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Position selects where InsertIntoSection places new content relative
// to the section's existing body.
type Position int

const (
	// PositionEnd appends after the section's existing non-blank
	// content, before the next heading or end of file.
	PositionEnd Position = iota
	// PositionStart inserts immediately after the heading (past any
	// leading blank lines), before the existing content.
	PositionStart
)

// Section is a heading line plus the body that belongs to it, up to the
// next heading of equal or shallower level.
type Section struct {
	Heading string // heading text without the #s
	Level   int
	Start   int // index of the heading line
	End     int // exclusive end of the body
}

// IsHeading reports whether the line is a markdown heading (1–6 #s
// followed by text).
func IsHeading(line string) bool {
	return headingRe.MatchString(line)
}

// HeadingText returns the heading text with the leading #s and
// surrounding whitespace stripped, or "" for a non-heading line.
func HeadingText(line string) string {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// HeadingLevel returns the nesting level (1–6) of a heading line, or 0
// for a non-heading line.
func HeadingLevel(line string) int {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// normalizeHeading strips leading #s and whitespace so that callers may
// address a section either as "Next actions" or "## Next actions".
func normalizeHeading(heading string) string {
	trimmed := strings.TrimSpace(heading)
	trimmed = strings.TrimLeft(trimmed, "#")
	return strings.TrimSpace(trimmed)
}

// LocateSection scans top-to-bottom for the first heading whose text
// equals the given heading and returns its line index, or -1.
func LocateSection(lines []string, heading string) int {
	want := normalizeHeading(heading)
	for i, line := range lines {
		if !IsHeading(line) {
			continue
		}
		if HeadingText(line) == want {
			return i
		}
	}
	return -1
}

// Sections returns every section of the document in order. A section's
// body runs to the next heading of equal or shallower level.
func Sections(lines []string) []Section {
	var out []Section
	for i, line := range lines {
		level := HeadingLevel(line)
		if level == 0 {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if l := HeadingLevel(lines[j]); l > 0 && l <= level {
				end = j
				break
			}
		}
		out = append(out, Section{
			Heading: HeadingText(line),
			Level:   level,
			Start:   i,
			End:     end,
		})
	}
	return out
}

// InsertIntoSection splices one new line into the named section of the
// document text and returns the new whole-document text. When the
// section is missing it is appended at the end of the document: exactly
// one trailing newline, a blank line, the heading as supplied, then the
// new line.
func InsertIntoSection(text, heading, newLine string, pos Position) string {
	return InsertManyIntoSection(text, heading, []string{newLine}, pos)
}

// InsertManyIntoSection splices several lines in the order supplied.
func InsertManyIntoSection(text, heading string, newLines []string, pos Position) string {
	if len(newLines) == 0 {
		return text
	}
	lines, trailingNL := splitLines(text)

	idx := LocateSection(lines, heading)
	if idx < 0 {
		return joinLines(appendSection(lines, heading, newLines), true)
	}

	// Skip blank lines immediately following the heading.
	at := idx + 1
	for at < len(lines) && isBlank(lines[at]) {
		at++
	}

	if pos == PositionEnd {
		// Advance past the section's non-blank content, stopping at the
		// next heading or end of file.
		for j := at; j < len(lines) && !IsHeading(lines[j]); j++ {
			if !isBlank(lines[j]) {
				at = j + 1
			}
		}
	}

	out := make([]string, 0, len(lines)+len(newLines))
	out = append(out, lines[:at]...)
	out = append(out, newLines...)
	out = append(out, lines[at:]...)
	return joinLines(out, trailingNL)
}

// appendSection adds a new section at the very end: the remaining
// document, one blank separator, the heading verbatim, the new lines.
func appendSection(lines []string, heading string, newLines []string) []string {
	// Trim trailing blank lines so the document ends with exactly one
	// newline before the separator.
	end := len(lines)
	for end > 0 && isBlank(lines[end-1]) {
		end--
	}
	out := make([]string, 0, end+len(newLines)+2)
	out = append(out, lines[:end]...)
	if end > 0 {
		out = append(out, "")
	}
	out = append(out, heading)
	out = append(out, newLines...)
	return out
}

// ReplaceLine returns new document text with the 1-indexed line
// replaced. ok is false when the line number is out of range.
func ReplaceLine(text string, lineNumber int, newLine string) (string, bool) {
	lines, trailingNL := splitLines(text)
	if lineNumber < 1 || lineNumber > len(lines) {
		return text, false
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[lineNumber-1] = newLine
	return joinLines(out, trailingNL), true
}

// Line returns the 1-indexed line of the document text, with ok=false
// when out of range.
func Line(text string, lineNumber int) (string, bool) {
	lines, _ := splitLines(text)
	if lineNumber < 1 || lineNumber > len(lines) {
		return "", false
	}
	return lines[lineNumber-1], true
}

// SplitLines returns the logical lines of the text; the empty element a
// trailing newline produces is dropped, so index i holds the document's
// 1-indexed line i+1.
func SplitLines(text string) []string {
	lines, _ := splitLines(text)
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// splitLines splits document text into logical lines, dropping the
// empty element a trailing newline produces. trailingNL records whether
// the text ended with a newline so joinLines can restore it.
func splitLines(text string) (lines []string, trailingNL bool) {
	if text == "" {
		return nil, true
	}
	raw := strings.Split(text, "\n")
	if raw[len(raw)-1] == "" {
		return raw[:len(raw)-1], true
	}
	return raw, false
}

func joinLines(lines []string, trailingNL bool) string {
	if len(lines) == 0 {
		return ""
	}
	s := strings.Join(lines, "\n")
	if trailingNL {
		s += "\n"
	}
	return s
}
