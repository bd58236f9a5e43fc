package history

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/ytmm/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func TestRunRepositoryCreateAndList(t *testing.T) {
	repo := NewRunRepository(testDB(t))

	started := time.Now().Add(-time.Minute)
	first := &Run{
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Total:      3,
		Succeeded:  2,
		Failed:     1,
		Errors: []RunError{
			{SourceID: "broken", Reason: "video unavailable"},
		},
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.ID == "" || first.Sequence != 1 {
		t.Errorf("Create() assigned id %q sequence %d", first.ID, first.Sequence)
	}

	second := &Run{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Total:      1,
		Succeeded:  1,
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if second.Sequence != 2 {
		t.Errorf("second run sequence = %d, want 2", second.Sequence)
	}

	runs, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRecent() = %d runs, want 2", len(runs))
	}
	if runs[0].Sequence != 2 || runs[1].Sequence != 1 {
		t.Errorf("runs not newest first: %d, %d", runs[0].Sequence, runs[1].Sequence)
	}
	if len(runs[1].Errors) != 1 || runs[1].Errors[0].SourceID != "broken" {
		t.Errorf("errors = %v, want the recorded failure", runs[1].Errors)
	}
	if len(runs[0].Errors) != 0 {
		t.Errorf("clean run carries errors: %v", runs[0].Errors)
	}
}

func TestRunRepositoryListRecentLimit(t *testing.T) {
	repo := NewRunRepository(testDB(t))
	for range 5 {
		if err := repo.Create(&Run{StartedAt: time.Now(), FinishedAt: time.Now(), Total: 1, Succeeded: 1}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	runs, err := repo.ListRecent(2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("ListRecent(2) = %d runs", len(runs))
	}

	// Zero falls back to the default window.
	runs, err = repo.ListRecent(0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("ListRecent(0) = %d runs, want all 5", len(runs))
	}
}
