package docservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/document"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Quarterly / Planning: Q1*", "Quarterly Planning Q1"},
		{"My Cool Project! (v2.0)", "My Cool Project! (v2.0)"},
		{"  spaced\t\tout  ", "spaced out"},
		{"bad\x00control\x1fchars", "badcontrolchars"},
		{`a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"///", ""},
	}
	for _, c := range cases {
		if got := SanitizeFileName(c.in); got != c.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	long := strings.Repeat("x", 150)
	if got := SanitizeFileName(long); len(got) != 100 {
		t.Errorf("len = %d, want 100", len(got))
	}
}

func TestCreateProject_SkeletonWhenNoTemplate(t *testing.T) {
	svc := testService(t)

	res, err := svc.CreateProject(context.Background(), CreateProjectRequest{Title: "Tidy garage"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != "Projects/Tidy garage.md" {
		t.Errorf("path = %q", res.Path)
	}

	got := readBack(t, svc, res.Path)
	want := "---\ncreated: 2025-06-15\npriority: medium\nstatus: active\ntags: []\n---\n\n# Tidy garage\n\n## Next actions\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCreateProject_FromTemplate(t *testing.T) {
	svc := testService(t)
	seed(t, svc, "Templates/Project.md",
		"---\ncreated: {{date}} {{time}}\npriority: {{priority}}\nstatus: active\ntags:\n  - {{sphere}}\n---\n\n# {{title}}\n\n{{description}}\n\n## Next actions\n")

	res, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		Title:       "Garden shed",
		Description: "Build a shed before winter",
		Priority:    "high",
		Tags:        []string{"sphere/home"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := readBack(t, svc, res.Path)
	for _, part := range []string{
		"created: 2025-06-15 10:30",
		"priority: high",
		"  - sphere/home",
		"# Garden shed",
		"Build a shed before winter",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("document missing %q:\n%s", part, got)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unsubstituted placeholder left behind:\n%s", got)
	}
}

func TestCreateProject_FirstActionsAnchored(t *testing.T) {
	svc := testService(t)

	res, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		Title: "Move office",
		Actions: []ActionInput{
			{Text: "Give notice on the lease"},
			{Text: "Shortlist movers", Due: "2025-08-01"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Anchors) != 2 {
		t.Fatalf("anchors = %d, want 2", len(res.Anchors))
	}

	got := readBack(t, svc, res.Path)
	if !strings.HasSuffix(got, "## Next actions\n- [ ] Give notice on the lease\n- [ ] Shortlist movers 📅 2025-08-01\n") {
		t.Errorf("got %q", got)
	}
	for _, a := range res.Anchors {
		line := document.SplitLines(got)[a.Line-1]
		if line != a.Content {
			t.Errorf("anchor line %d = %q, content %q", a.Line, line, a.Content)
		}
	}
}

func TestCreateProject_ParentHeaderField(t *testing.T) {
	svc := testService(t)

	res, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		Title:  "Sub effort",
		Parent: "Projects/Umbrella.md",
	})
	if err != nil {
		t.Fatal(err)
	}

	d := document.Parse(readBack(t, svc, res.Path))
	if got := d.StringField("parent"); got != "Projects/Umbrella.md" {
		t.Errorf("parent = %q", got)
	}
}

func TestCreateProject_AlreadyExists(t *testing.T) {
	svc := testService(t)

	req := CreateProjectRequest{Title: "Tidy garage"}
	if _, err := svc.CreateProject(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateProject(context.Background(), req)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateProject_RejectsUnusableTitles(t *testing.T) {
	svc := testService(t)

	for _, title := range []string{"", "///", strings.Repeat("x", 201)} {
		_, err := svc.CreateProject(context.Background(), CreateProjectRequest{Title: title})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("title %q: err = %v, want ErrValidation", title, err)
		}
	}
}

func TestCreateProject_IndexedImmediately(t *testing.T) {
	svc := testService(t)

	res, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		Title: "Tidy garage",
		Tags:  []string{"sphere/home"},
	})
	if err != nil {
		t.Fatal(err)
	}

	row, err := svc.db.GetProject(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if row == nil {
		t.Fatal("expected index row")
	}
	if row.Title != "Tidy garage" || row.Status != "active" {
		t.Errorf("row = %+v", row)
	}
	if len(row.Tags) != 1 || row.Tags[0] != "sphere/home" {
		t.Errorf("tags = %v", row.Tags)
	}
}
