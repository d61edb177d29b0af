package document

import (
	"strings"
	"testing"
)

func TestLocateSection(t *testing.T) {
	lines := []string{"# Title", "", "## Next actions", "- [ ] A", "## Done", ""}

	if got := LocateSection(lines, "## Next actions"); got != 2 {
		t.Errorf("with hashes: got %d, want 2", got)
	}
	if got := LocateSection(lines, "Next actions"); got != 2 {
		t.Errorf("without hashes: got %d, want 2", got)
	}
	if got := LocateSection(lines, "## Missing"); got != -1 {
		t.Errorf("missing: got %d, want -1", got)
	}
	// Exact text equality, not prefix match.
	if got := LocateSection(lines, "Next"); got != -1 {
		t.Errorf("partial heading matched: got %d", got)
	}
}

func TestInsertIntoSection_End(t *testing.T) {
	got := InsertIntoSection("# T\n\n## Next actions\n- [ ] A\n", "## Next actions", "- [ ] B", PositionEnd)
	want := "# T\n\n## Next actions\n- [ ] A\n- [ ] B\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertIntoSection_EndBeforeNextHeading(t *testing.T) {
	text := "## Next actions\n- [ ] A\n\n## Done\n- [x] Old\n"
	got := InsertIntoSection(text, "Next actions", "- [ ] B", PositionEnd)
	want := "## Next actions\n- [ ] A\n- [ ] B\n\n## Done\n- [x] Old\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertIntoSection_EndEmptySection(t *testing.T) {
	text := "## Next actions\n\n## Done\n"
	got := InsertIntoSection(text, "Next actions", "- [ ] B", PositionEnd)
	want := "## Next actions\n\n- [ ] B\n## Done\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertIntoSection_Start(t *testing.T) {
	text := "## Discussion\n\n- old note\n"
	got := InsertIntoSection(text, "## Discussion", "- new note", PositionStart)
	want := "## Discussion\n\n- new note\n- old note\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertIntoSection_MissingSectionAppended(t *testing.T) {
	got := InsertIntoSection("# T\nbody\n\n\n", "## References", "- see docs", PositionEnd)
	want := "# T\nbody\n\n## References\n- see docs\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertIntoSection_MissingSectionEmptyDocument(t *testing.T) {
	got := InsertIntoSection("", "## Inbox", "- [ ] A", PositionEnd)
	want := "## Inbox\n- [ ] A\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInsertMany_SingleHeading(t *testing.T) {
	text := "# T\n\n## Next actions\n- [ ] A\n"
	got := InsertManyIntoSection(text, "## Next actions", []string{"- [ ] B", "- [ ] C"}, PositionEnd)
	want := "# T\n\n## Next actions\n- [ ] A\n- [ ] B\n- [ ] C\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if n := strings.Count(got, "## Next actions"); n != 1 {
		t.Errorf("heading appears %d times, want 1", n)
	}
}

func TestSections_SameOrShallowerRule(t *testing.T) {
	lines := []string{
		"# Project",
		"intro",
		"## Next actions",
		"- [ ] A",
		"### Details",
		"fine print",
		"## Done",
		"- [x] B",
	}
	sections := Sections(lines)
	if len(sections) != 4 {
		t.Fatalf("len = %d, want 4", len(sections))
	}
	// "# Project" runs to end of file: nothing shallower follows.
	if sections[0].Heading != "Project" || sections[0].End != 8 {
		t.Errorf("project section = %+v", sections[0])
	}
	// "## Next actions" includes the deeper "### Details" but stops at "## Done".
	na := sections[1]
	if na.Heading != "Next actions" || na.Start != 2 || na.End != 6 {
		t.Errorf("next actions section = %+v", na)
	}
	if sections[2].Heading != "Details" || sections[2].End != 6 {
		t.Errorf("details section = %+v", sections[2])
	}
}

func TestHeadingHelpers(t *testing.T) {
	if !IsHeading("### Deep") || IsHeading("not a heading") || IsHeading("####### too deep") {
		t.Error("IsHeading misclassifies")
	}
	if got := HeadingText("##   Spaced out  "); got != "Spaced out" {
		t.Errorf("HeadingText = %q", got)
	}
	if got := HeadingLevel("### Deep"); got != 3 {
		t.Errorf("HeadingLevel = %d, want 3", got)
	}
	if got := HeadingLevel("plain"); got != 0 {
		t.Errorf("HeadingLevel(plain) = %d, want 0", got)
	}
}

func TestReplaceLine(t *testing.T) {
	text := "a\nb\nc\n"
	got, ok := ReplaceLine(text, 2, "B")
	if !ok {
		t.Fatal("expected ok")
	}
	if want := "a\nB\nc\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if _, ok := ReplaceLine(text, 4, "x"); ok {
		t.Error("out-of-range replace should fail")
	}
	if _, ok := ReplaceLine(text, 0, "x"); ok {
		t.Error("line 0 should fail")
	}
}

func TestLine(t *testing.T) {
	text := "a\nb\nc\n"
	if got, ok := Line(text, 3); !ok || got != "c" {
		t.Errorf("Line(3) = %q, %v", got, ok)
	}
	if _, ok := Line(text, 4); ok {
		t.Error("trailing newline must not count as a line")
	}
}
