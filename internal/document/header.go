package document

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const headerDelim = "---"

var tagsKeyRe = regexp.MustCompile(`^tags\s*:\s*(.*)$`)

// HeaderBounds returns the indices of the opening and closing delimiter
// lines of the header block. A header is only recognized when the first
// line is "---"; ok is false when there is no closed header block.
func HeaderBounds(lines []string) (start, end int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != headerDelim {
		return 0, -1, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == headerDelim {
			return 0, i, true
		}
	}
	return 0, -1, false
}

// parseHeaderMap decodes the YAML between the delimiters. Invalid YAML
// degrades to an absent header rather than an error; the engine never
// refuses to operate on a document it can still splice by line.
func parseHeaderMap(lines []string, start, end int) map[string]any {
	block := strings.Join(lines[start+1:end], "\n")
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
		return nil
	}
	return fields
}

// NormalizeTags flattens the header tags field, which may be a bare
// string or a list, into a string slice. All tag logic operates on the
// normalized form only.
func NormalizeTags(v any) []string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return []string{s}
	case []string:
		return t
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	default:
		return nil
	}
}

// MergeTags merges tagsToAdd into an existing tags field: tags matching
// categoryPrefix keep their place first, added tags follow, all other
// existing tags come last. Duplicates collapse to the first occurrence.
func MergeTags(existing any, categoryPrefix string, tagsToAdd []string) []string {
	current := NormalizeTags(existing)

	var category, other []string
	for _, t := range current {
		if categoryPrefix != "" && strings.HasPrefix(t, categoryPrefix) {
			category = append(category, t)
		} else {
			other = append(other, t)
		}
	}

	ordered := make([]string, 0, len(current)+len(tagsToAdd))
	ordered = append(ordered, category...)
	ordered = append(ordered, tagsToAdd...)
	ordered = append(ordered, other...)

	seen := make(map[string]struct{}, len(ordered))
	out := make([]string, 0, len(ordered))
	for _, t := range ordered {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SetTags rewrites only the tags entry of the header block, leaving
// every other header line untouched. A document without a header block
// gains a minimal one at the top.
func SetTags(text string, tags []string) string {
	lines, trailingNL := splitLines(text)

	replacement := tagLines(tags)

	start, end, ok := HeaderBounds(lines)
	if !ok {
		out := make([]string, 0, len(lines)+len(replacement)+2)
		out = append(out, headerDelim)
		out = append(out, replacement...)
		out = append(out, headerDelim)
		out = append(out, lines...)
		return joinLines(out, trailingNL || len(lines) == 0)
	}

	keyAt := -1
	for i := start + 1; i < end; i++ {
		if tagsKeyRe.MatchString(lines[i]) {
			keyAt = i
			break
		}
	}

	var out []string
	if keyAt < 0 {
		// No tags entry yet: insert before the closing delimiter.
		out = append(out, lines[:end]...)
		out = append(out, replacement...)
		out = append(out, lines[end:]...)
		return joinLines(out, trailingNL)
	}

	// Span the existing entry: the key line plus any block-list items.
	spanEnd := keyAt + 1
	for spanEnd < end && strings.HasPrefix(strings.TrimSpace(lines[spanEnd]), "- ") {
		spanEnd++
	}
	out = append(out, lines[:keyAt]...)
	out = append(out, replacement...)
	out = append(out, lines[spanEnd:]...)
	return joinLines(out, trailingNL)
}

// SetHeaderField sets a scalar header field, creating the header block
// when the document has none. An existing entry for the key is replaced
// in place; otherwise the field lands just before the closing delimiter.
// List-valued fields are out of scope here; tags go through SetTags.
func SetHeaderField(text, key, value string) string {
	lines, trailingNL := splitLines(text)
	entry := key + ": " + value

	start, end, ok := HeaderBounds(lines)
	if !ok {
		out := make([]string, 0, len(lines)+3)
		out = append(out, headerDelim, entry, headerDelim)
		out = append(out, lines...)
		return joinLines(out, trailingNL || len(lines) == 0)
	}

	keyRe := regexp.MustCompile(`^` + regexp.QuoteMeta(key) + `\s*:`)
	for i := start + 1; i < end; i++ {
		if keyRe.MatchString(lines[i]) {
			out := append([]string(nil), lines...)
			out[i] = entry
			return joinLines(out, trailingNL)
		}
	}

	var out []string
	out = append(out, lines[:end]...)
	out = append(out, entry)
	out = append(out, lines[end:]...)
	return joinLines(out, trailingNL)
}

// tagLines renders a tags field in block-list form.
func tagLines(tags []string) []string {
	if len(tags) == 0 {
		return []string{"tags: []"}
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, "tags:")
	for _, t := range tags {
		out = append(out, "  - "+t)
	}
	return out
}
