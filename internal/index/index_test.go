package index

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM projects`).Scan(&count); err != nil {
		t.Fatalf("projects table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM pins`).Scan(&count); err != nil {
		t.Fatalf("pins table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := ProjectRow{
		Path:      "projects/site.md",
		Title:     "Website redesign",
		Status:    "active",
		Priority:  "high",
		Tags:      []string{"sphere/work"},
		OpenTasks: 2,
		DoneTasks: 1,
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertProject(row, "## Next actions\n- [ ] Draft brief"); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}
	cs, err := db.GetChecksum("projects/site.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetProject(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertProject(ProjectRow{
		Path: "p.md", Title: "P", Tags: []string{"sphere/work", "urgent"},
		OpenTasks: 3, Checksum: "1", UpdatedAt: time.Now(),
	}, "body")

	p, err := db.GetProject("p.md")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p == nil {
		t.Fatal("expected a row")
	}
	if p.Title != "P" || p.OpenTasks != 3 {
		t.Errorf("row = %+v", p)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "sphere/work" {
		t.Errorf("tags = %v", p.Tags)
	}

	missing, err := db.GetProject("nope.md")
	if err != nil {
		t.Fatalf("GetProject missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown path, got %+v", missing)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertProject(ProjectRow{Path: "up.md", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body")
	_ = db.UpsertProject(ProjectRow{Path: "up.md", Title: "New", Checksum: "2", Tags: []string{"new"}, UpdatedAt: now}, "new body")

	p, _ := db.GetProject("up.md")
	if p == nil || p.Title != "New" || p.Checksum != "2" {
		t.Errorf("row = %+v, want updated title and checksum", p)
	}
}

func TestDeleteProject_MarksPinsLost(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertProject(ProjectRow{Path: "del.md", Checksum: "x", UpdatedAt: now}, "body")
	_ = db.SavePin(pin("pin-1", "del.md", 3, "- [ ] Keep me"))

	if err := db.DeleteProject("del.md"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted project still has checksum %q", cs)
	}
	p, _ := db.GetPin("pin-1")
	if p == nil || p.State != "lost" {
		t.Errorf("pin = %+v, want state lost", p)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListProjects_FilterAndCount(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertProject(ProjectRow{Path: "a.md", Title: "Alpha", Status: "active", Tags: []string{"sphere/work"}, Checksum: "1", UpdatedAt: now}, "")
	_ = db.UpsertProject(ProjectRow{Path: "b.md", Title: "Beta", Status: "active", Tags: []string{"sphere/home"}, Checksum: "2", UpdatedAt: now}, "")
	_ = db.UpsertProject(ProjectRow{Path: "c.md", Title: "Gamma", Status: "done", Tags: []string{"sphere/work"}, Checksum: "3", UpdatedAt: now}, "")

	rows, total, err := db.ListProjects(ListOptions{Tag: "sphere/work"})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("total = %d, len = %d, want 2 and 2", total, len(rows))
	}

	rows, total, err = db.ListProjects(ListOptions{Tag: "sphere/work", Status: "active"})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Path != "a.md" {
		t.Errorf("rows = %+v, total = %d", rows, total)
	}
}

func TestListProjects_SortAndPage(t *testing.T) {
	db := testDB(t)
	base := time.Now()
	_ = db.UpsertProject(ProjectRow{Path: "b.md", Title: "bravo", Checksum: "1", UpdatedAt: base.Add(-time.Hour)}, "")
	_ = db.UpsertProject(ProjectRow{Path: "a.md", Title: "Alpha", Checksum: "2", UpdatedAt: base}, "")
	_ = db.UpsertProject(ProjectRow{Path: "c.md", Title: "Charlie", Checksum: "3", UpdatedAt: base.Add(-2 * time.Hour)}, "")

	rows, _, err := db.ListProjects(ListOptions{Sort: "title"})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(rows) != 3 || rows[0].Title != "Alpha" || rows[1].Title != "bravo" {
		t.Errorf("title sort order wrong: %+v", rows)
	}

	// Default sort is most recently updated first.
	rows, _, _ = db.ListProjects(ListOptions{Limit: 1})
	if len(rows) != 1 || rows[0].Path != "a.md" {
		t.Errorf("default sort first row = %+v, want a.md", rows)
	}

	rows, total, _ := db.ListProjects(ListOptions{Limit: 2, Offset: 2, Sort: "path"})
	if total != 3 || len(rows) != 1 || rows[0].Path != "c.md" {
		t.Errorf("page = %+v, total = %d", rows, total)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertProject(ProjectRow{Path: "s.md", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

func TestSync_IndexesAndRemoves(t *testing.T) {
	db := testDB(t)
	vault := t.TempDir()
	store, err := storage.NewFS(vault)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("projects/one.md", []byte("---\nstatus: active\ntags:\n  - sphere/work\n---\n# One\n\n## Next actions\n- [ ] First\n- [x] Second ✅ 2025-01-02\n"))
	_ = store.Write("two.md", []byte("# Two\n"))

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	p, _ := db.GetProject("projects/one.md")
	if p == nil {
		t.Fatal("projects/one.md not indexed")
	}
	if p.Title != "One" || p.Status != "active" || p.OpenTasks != 1 || p.DoneTasks != 1 {
		t.Errorf("row = %+v", p)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "sphere/work" {
		t.Errorf("tags = %v", p.Tags)
	}

	// Removing the file and re-syncing drops the row.
	_ = store.Delete("two.md")
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	cs, _ := db.GetChecksum("two.md")
	if cs != "" {
		t.Error("stale entry survived sync")
	}
}
