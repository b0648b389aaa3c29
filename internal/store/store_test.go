package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := testStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='reports'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("reports table should exist after migrations: %v", err)
	}
}

func TestReportRepository_CreateAndGet(t *testing.T) {
	repo := testStore(t).Reports()

	rep := &Report{
		Country:    "Italy",
		City:       "Rome",
		Age:        34,
		FrameCount: 120,
		Text:       "Blinking looks within normal limits.",
		Thumbnail:  []byte{0xff, 0xd8, 0xff},
		PDF:        []byte("%PDF-1.4 fake"),
	}
	if err := repo.Create(rep); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rep.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.GetByID(rep.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Country != "Italy" || got.City != "Rome" || got.Age != 34 {
		t.Errorf("unexpected patient context: %+v", got)
	}
	if got.FrameCount != 120 {
		t.Errorf("frame count = %d, want 120", got.FrameCount)
	}
	if got.Text != rep.Text {
		t.Errorf("text = %q, want %q", got.Text, rep.Text)
	}
	if string(got.PDF) != string(rep.PDF) {
		t.Error("pdf payload did not round-trip")
	}
	if len(got.Thumbnail) != 3 {
		t.Errorf("thumbnail length = %d, want 3", len(got.Thumbnail))
	}
}

func TestReportRepository_GetByID_NotFound(t *testing.T) {
	repo := testStore(t).Reports()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestReportRepository_List(t *testing.T) {
	repo := testStore(t).Reports()

	for _, country := range []string{"Italy", "Egypt", "Japan"} {
		if err := repo.Create(&Report{Country: country, Text: "t", PDF: []byte("p")}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List() returned %d reports, want 3", len(list))
	}
	for _, s := range list {
		if s.ID == "" {
			t.Error("summary is missing an ID")
		}
	}
}

func TestReportRepository_Delete(t *testing.T) {
	repo := testStore(t).Reports()

	rep := &Report{Text: "t", PDF: []byte("p")}
	if err := repo.Create(rep); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(rep.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(rep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(rep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
