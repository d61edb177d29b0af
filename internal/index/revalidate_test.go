package index

import (
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

func revalidateEnv(t *testing.T) (*DB, storage.Provider) {
	t.Helper()
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return db, store
}

func TestRevalidatePins_UnchangedStaysOK(t *testing.T) {
	db, store := revalidateEnv(t)
	_ = store.Write("focus.md", []byte("# Focus\n\n- [ ] Call Sam\n"))
	_ = db.SavePin(pin("a", "focus.md", 3, "- [ ] Call Sam"))

	changed, err := RevalidatePins(db, store, "focus.md", time.Now())
	if err != nil {
		t.Fatalf("RevalidatePins: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("changed = %+v, want none", changed)
	}
	got, _ := db.GetPin("a")
	if got.State != models.PinStateOK || got.Line != 3 {
		t.Errorf("pin = %+v", got)
	}
}

func TestRevalidatePins_DriftRelocatesThenHeals(t *testing.T) {
	db, store := revalidateEnv(t)
	// Two lines inserted above push the pinned line from 3 to 5.
	_ = store.Write("focus.md", []byte("# Focus\n\nnote\nnote\n- [ ] Call Sam\n"))
	_ = db.SavePin(pin("a", "focus.md", 3, "- [ ] Call Sam"))

	changed, err := RevalidatePins(db, store, "focus.md", time.Now())
	if err != nil {
		t.Fatalf("RevalidatePins: %v", err)
	}
	if len(changed) != 1 || changed[0].State != models.PinStateRelocated || changed[0].Line != 5 {
		t.Fatalf("changed = %+v, want one relocation to line 5", changed)
	}

	// The pin was re-anchored, so the next sweep finds it in place.
	changed, err = RevalidatePins(db, store, "focus.md", time.Now())
	if err != nil {
		t.Fatalf("second RevalidatePins: %v", err)
	}
	if len(changed) != 1 || changed[0].State != models.PinStateOK || changed[0].Line != 5 {
		t.Errorf("changed = %+v, want ok at line 5", changed)
	}
}

func TestRevalidatePins_EditedLineLost(t *testing.T) {
	db, store := revalidateEnv(t)
	_ = store.Write("focus.md", []byte("# Focus\n\n- [x] Call Sam ✅ 2025-05-01\n"))
	_ = db.SavePin(pin("a", "focus.md", 3, "- [ ] Call Sam"))

	changed, err := RevalidatePins(db, store, "focus.md", time.Now())
	if err != nil {
		t.Fatalf("RevalidatePins: %v", err)
	}
	if len(changed) != 1 || changed[0].State != models.PinStateLost {
		t.Errorf("changed = %+v, want lost", changed)
	}
}

func TestRevalidatePins_MissingDocument(t *testing.T) {
	db, store := revalidateEnv(t)
	_ = db.SavePin(pin("a", "gone.md", 1, "- [ ] X"))

	changed, err := RevalidatePins(db, store, "gone.md", time.Now())
	if err != nil {
		t.Fatalf("RevalidatePins: %v", err)
	}
	if len(changed) != 1 || changed[0].State != models.PinStateLost {
		t.Errorf("changed = %+v, want lost", changed)
	}
}

func TestRevalidateAll_SweepsEveryPath(t *testing.T) {
	db, store := revalidateEnv(t)
	_ = store.Write("a.md", []byte("- [ ] One\n"))
	_ = db.SavePin(pin("a", "a.md", 1, "- [ ] One"))
	_ = db.SavePin(pin("b", "missing.md", 1, "- [ ] Two"))

	changed, err := RevalidateAll(db, store, time.Now())
	if err != nil {
		t.Fatalf("RevalidateAll: %v", err)
	}
	if len(changed) != 1 || changed[0].ID != "b" {
		t.Errorf("changed = %+v, want only the missing-file pin", changed)
	}
}
