package taskline

import (
	"reflect"
	"testing"
)

func TestIsActionLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"- [ ] Call Bob", true},
		{"- [x] Done thing", true},
		{"- [X] Done thing", true},
		{"- [w] Waiting thing", true},
		{"* [ ] Star bullet", true},
		{"  - [ ] Indented", true},
		{"-[ ] No space after bullet", true},
		{"- [?] Unknown token", false},
		{"- plain bullet", false},
		{"## Next actions", false},
		{"", false},
		{"[ ] no bullet", false},
	}
	for _, c := range cases {
		if got := IsActionLine(c.line); got != c.want {
			t.Errorf("IsActionLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestParse_Todo(t *testing.T) {
	f, ok := Parse("- [ ] Call Bob about the contract")
	if !ok {
		t.Fatal("expected ok")
	}
	if f.Status != StatusTodo {
		t.Errorf("status = %q, want todo", f.Status)
	}
	if f.Text != "Call Bob about the contract" {
		t.Errorf("text = %q", f.Text)
	}
	if f.DueDate != "" || f.CompletionDate != "" || f.Tags != nil {
		t.Errorf("unexpected annotations: %+v", f)
	}
}

func TestParse_DoneStripsCompletionDate(t *testing.T) {
	f, ok := Parse("- [x] Ship the release ✅ 2025-03-14")
	if !ok {
		t.Fatal("expected ok")
	}
	if f.Status != StatusDone {
		t.Errorf("status = %q, want done", f.Status)
	}
	if f.CompletionDate != "2025-03-14" {
		t.Errorf("completion = %q, want 2025-03-14", f.CompletionDate)
	}
	if f.Text != "Ship the release" {
		t.Errorf("text = %q, want %q", f.Text, "Ship the release")
	}
}

func TestParse_DueDate(t *testing.T) {
	f, ok := Parse("- [w] Wait for Sarah 📅 2025-11-01")
	if !ok {
		t.Fatal("expected ok")
	}
	if f.Status != StatusWaiting {
		t.Errorf("status = %q, want waiting", f.Status)
	}
	if f.DueDate != "2025-11-01" {
		t.Errorf("due = %q, want 2025-11-01", f.DueDate)
	}
	if f.Text != "Wait for Sarah" {
		t.Errorf("text = %q", f.Text)
	}
}

func TestParse_TagsStayInText(t *testing.T) {
	f, ok := Parse("- [ ] Review budget #sphere/work 📅 2025-06-01")
	if !ok {
		t.Fatal("expected ok")
	}
	if f.Text != "Review budget #sphere/work" {
		t.Errorf("text = %q, tags must stay in text", f.Text)
	}
	if len(f.Tags) != 1 || f.Tags[0] != "sphere/work" {
		t.Errorf("tags = %v, want [sphere/work]", f.Tags)
	}
}

func TestParse_NonActionLine(t *testing.T) {
	if _, ok := Parse("just prose"); ok {
		t.Error("expected ok=false for prose")
	}
}

func TestSerialize_WaitingWithDue(t *testing.T) {
	f := Fields{Status: StatusWaiting, Text: "Wait for Sarah", DueDate: "2025-11-01"}
	got := f.Serialize()
	want := "- [w] Wait for Sarah 📅 2025-11-01"
	if got != want {
		t.Errorf("serialize = %q, want %q", got, want)
	}
}

func TestSerialize_CompletionOnlyWhenDone(t *testing.T) {
	done := Fields{Status: StatusDone, Text: "Ship it", CompletionDate: "2025-03-14"}
	if got, want := done.Serialize(), "- [x] Ship it ✅ 2025-03-14"; got != want {
		t.Errorf("done = %q, want %q", got, want)
	}

	// A completion date on a non-done line is suppressed.
	todo := Fields{Status: StatusTodo, Text: "Ship it", CompletionDate: "2025-03-14"}
	if got, want := todo.Serialize(), "- [ ] Ship it"; got != want {
		t.Errorf("todo = %q, want %q", got, want)
	}
}

func TestSerialize_AnnotationOrder(t *testing.T) {
	f := Fields{
		Status:         StatusDone,
		Text:           "File taxes",
		CompletionDate: "2025-04-15",
		DueDate:        "2025-04-15",
		Tags:           []string{"sphere/personal"},
	}
	got := f.Serialize()
	want := "- [x] File taxes ✅ 2025-04-15 📅 2025-04-15 #sphere/personal"
	if got != want {
		t.Errorf("serialize = %q, want %q", got, want)
	}
}

func TestSerialize_SkipsTagAlreadyInText(t *testing.T) {
	f := Fields{
		Status: StatusTodo,
		Text:   "Call Bob #sphere/work",
		Tags:   []string{"sphere/work", "sphere/errands"},
	}
	got := f.Serialize()
	want := "- [ ] Call Bob #sphere/work #sphere/errands"
	if got != want {
		t.Errorf("serialize = %q, want %q", got, want)
	}
}

func TestSerialize_TagOrderSupplied(t *testing.T) {
	f := Fields{Status: StatusTodo, Text: "Plan trip", Tags: []string{"sphere/b", "sphere/a"}}
	got := f.Serialize()
	want := "- [ ] Plan trip #sphere/b #sphere/a"
	if got != want {
		t.Errorf("serialize = %q, want %q", got, want)
	}
}

func TestComposeStatus_DoneWins(t *testing.T) {
	if s := ComposeStatus(true, true); s != StatusDone {
		t.Errorf("done+waiting = %q, want done", s)
	}
	if s := ComposeStatus(false, true); s != StatusWaiting {
		t.Errorf("waiting = %q, want waiting", s)
	}
	if s := ComposeStatus(false, false); s != StatusTodo {
		t.Errorf("neither = %q, want todo", s)
	}
}

func TestRoundTrip_FieldsStable(t *testing.T) {
	lines := []string{
		"- [ ] Call Bob",
		"- [x] Ship the release ✅ 2025-03-14",
		"- [w] Wait for Sarah 📅 2025-11-01",
		"- [ ] Review budget #sphere/work 📅 2025-06-01",
		"- [x] File taxes ✅ 2025-04-15 📅 2025-04-15 #sphere/personal",
		"* [ ] Star bullet with #sphere/errands tag",
	}
	for _, line := range lines {
		first, ok := Parse(line)
		if !ok {
			t.Fatalf("Parse(%q) not ok", line)
		}
		second, ok := Parse(first.Serialize())
		if !ok {
			t.Fatalf("reparse of %q not ok", first.Serialize())
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip for %q:\n first = %+v\nsecond = %+v", line, first, second)
		}
	}
}

func TestExtractText(t *testing.T) {
	// Only the bullet and bracket go; annotations and tags are part of
	// the display text.
	cases := []struct {
		line string
		want string
	}{
		{"- [ ] Call Bob", "Call Bob"},
		{"- [x] Ship it ✅ 2025-03-14", "Ship it ✅ 2025-03-14"},
		{"- [ ] Review budget #sphere/work 📅 2025-06-01", "Review budget #sphere/work 📅 2025-06-01"},
		{"  * [w] Indented star", "Indented star"},
		{"not a task", ""},
	}
	for _, c := range cases {
		if got := ExtractText(c.line); got != c.want {
			t.Errorf("ExtractText(%q) = %q, want %q", c.line, got, c.want)
		}
	}
}
