package store

import (
	"errors"
	"testing"

	"github.com/climavet/climavet/internal/database"
)

func setupTestDB(t *testing.T) (*SettingsStore, *FilterStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsStore(db), NewFilterStore(db)
}

func TestSettingsGetMissing(t *testing.T) {
	ss, _ := setupTestDB(t)

	_, err := ss.Get("nope")
	if !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("err = %v, want ErrSettingNotFound", err)
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	ss, _ := setupTestDB(t)

	if err := ss.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ss.Set("theme", "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	val, err := ss.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "light" {
		t.Errorf("theme = %q, want %q", val, "light")
	}

	all, err := ss.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 || all["theme"] != "light" {
		t.Errorf("all = %v", all)
	}
}

func TestClinicID(t *testing.T) {
	ss, _ := setupTestDB(t)

	id, err := ss.ClinicID()
	if err != nil {
		t.Fatalf("clinic id: %v", err)
	}
	if id != 0 {
		t.Errorf("unset clinic id = %d, want 0", id)
	}

	if err := ss.SetClinicID(42); err != nil {
		t.Fatalf("set clinic id: %v", err)
	}
	id, err = ss.ClinicID()
	if err != nil {
		t.Fatalf("clinic id: %v", err)
	}
	if id != 42 {
		t.Errorf("clinic id = %d, want 42", id)
	}

	if err := ss.SetClinicID(0); err != nil {
		t.Fatalf("clear clinic id: %v", err)
	}
	if id, _ := ss.ClinicID(); id != 0 {
		t.Errorf("cleared clinic id = %d, want 0", id)
	}

	if err := ss.SetClinicID(-3); err == nil {
		t.Error("expected error for negative clinic id")
	}
}

func TestClinicIDCorrupt(t *testing.T) {
	ss, _ := setupTestDB(t)
	if err := ss.Set(clinicIDKey, "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := ss.ClinicID(); err == nil {
		t.Error("expected parse error")
	}
}
