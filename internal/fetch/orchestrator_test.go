package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/shared"
)

type mockFetcher struct {
	root     string
	metadata map[string]*Metadata
	failErr  error
}

func (m *mockFetcher) Fetch(ctx context.Context, sourceID string, progress ProgressFunc) (*Metadata, error) {
	meta, ok := m.metadata[sourceID]
	if !ok {
		return nil, m.failErr
	}
	if progress != nil {
		progress(50, 100)
		progress(100, 100)
	}
	if err := os.WriteFile(filepath.Join(m.root, meta.ID+catalog.TrackFormat), []byte("audio"), 0644); err != nil {
		return nil, err
	}
	return meta, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recordingReporter) Progress(ev ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingReporter) Message(string) {}

func testStore(t *testing.T, tracks []catalog.Track) *catalog.Store {
	t.Helper()
	dir := t.TempDir()
	store := catalog.NewStore(filepath.Join(dir, "db.json"), nil)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	store.Catalog.Root = filepath.Join(dir, "music")
	if err := os.MkdirAll(store.Catalog.Root, 0755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	store.Catalog.Tracks = tracks
	return store
}

func TestOrchestratorRun(t *testing.T) {
	store := testStore(t, nil)
	fetcher := &mockFetcher{
		root: store.Catalog.Root,
		metadata: map[string]*Metadata{
			"a1": {ID: "a1", Title: "First Song", Artists: []string{"X"}},
			"b2": {ID: "b2", Title: "Second Song", Artists: []string{"Y"}},
			"c3": {ID: "c3", Title: "Third Song", Artists: []string{"Z"}},
		},
		failErr: errors.New("video unavailable"),
	}
	jobs := []Job{
		{SourceID: "a1", Index: -1},
		{SourceID: "broken", Index: -1},
		{SourceID: "b2", Index: -1},
		{SourceID: "c3", Index: -1},
	}

	reporter := &recordingReporter{}
	o := NewOrchestrator(Opts{Workers: 2, Reporter: reporter})
	errs := o.Run(context.Background(), store, jobs, fetcher)

	if len(errs) != 1 {
		t.Fatalf("Run() returned %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].SourceID != "broken" {
		t.Errorf("failed source = %q, want broken", errs[0].SourceID)
	}
	if len(store.Catalog.Tracks) != 3 {
		t.Errorf("catalog has %d tracks, want 3", len(store.Catalog.Tracks))
	}
	if !store.Dirty() {
		t.Error("successful fetches should mark the store dirty")
	}

	// Files end up under their canonical names.
	for _, name := range []string{"first_song", "second_song", "third_song"} {
		if _, err := os.Stat(filepath.Join(store.Catalog.Root, name+catalog.TrackFormat)); err != nil {
			t.Errorf("missing renamed file %s: %v", name, err)
		}
	}

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	var pending, terminal int
	var maxAggregate float64
	for _, ev := range reporter.events {
		if ev.Phase == PhasePending {
			pending++
		}
		if ev.Phase.Terminal() {
			terminal++
		}
		if ev.Aggregate < 0 || ev.Aggregate > 1 {
			t.Errorf("aggregate %v out of range", ev.Aggregate)
		}
		if ev.Aggregate > maxAggregate {
			maxAggregate = ev.Aggregate
		}
	}
	if pending != len(jobs) {
		t.Errorf("pending events = %d, want %d", pending, len(jobs))
	}
	if terminal != len(jobs) {
		t.Errorf("terminal events = %d, want %d", terminal, len(jobs))
	}
	if maxAggregate != 1 {
		t.Errorf("max aggregate = %v, want 1", maxAggregate)
	}
}

func TestOrchestratorReplaceInPlace(t *testing.T) {
	store := testStore(t, []catalog.Track{
		{ID: "a1", Title: "Old Title"},
		{ID: "b2", Title: "Untouched"},
	})
	fetcher := &mockFetcher{
		root: store.Catalog.Root,
		metadata: map[string]*Metadata{
			"a1": {ID: "a1", Title: "New Title", Artists: []string{"X"}},
		},
	}

	o := NewOrchestrator(Opts{Workers: 1})
	errs := o.Run(context.Background(), store, []Job{{SourceID: "a1", Index: 0}}, fetcher)
	if len(errs) != 0 {
		t.Fatalf("Run() errors = %v", errs)
	}

	if len(store.Catalog.Tracks) != 2 {
		t.Fatalf("catalog has %d tracks, want 2", len(store.Catalog.Tracks))
	}
	if store.Catalog.Tracks[0].Title != "New Title" {
		t.Errorf("slot 0 = %q, want replaced title", store.Catalog.Tracks[0].Title)
	}
	if store.Catalog.Tracks[1].Title != "Untouched" {
		t.Errorf("slot 1 = %q, want untouched", store.Catalog.Tracks[1].Title)
	}
}

func TestOrchestratorNoFetcher(t *testing.T) {
	store := testStore(t, nil)
	o := NewOrchestrator(Opts{})
	errs := o.Run(context.Background(), store, []Job{{SourceID: "a1", Index: -1}}, nil)
	if len(errs) != 1 || !errors.Is(errs[0], shared.ErrNoFetcher) {
		t.Errorf("Run() without fetcher = %v, want ErrNoFetcher", errs)
	}
}

func TestOrchestratorEmptyBatch(t *testing.T) {
	store := testStore(t, nil)
	o := NewOrchestrator(Opts{})
	if errs := o.Run(context.Background(), store, nil, &mockFetcher{}); errs != nil {
		t.Errorf("Run() with no jobs = %v, want nil", errs)
	}
}

func TestOrchestratorCancelledContext(t *testing.T) {
	store := testStore(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{root: store.Catalog.Root, metadata: map[string]*Metadata{}}
	o := NewOrchestrator(Opts{Workers: 1})
	errs := o.Run(ctx, store, []Job{{SourceID: "a1", Index: -1}, {SourceID: "b2", Index: -1}}, fetcher)
	if len(errs) != 2 {
		t.Fatalf("Run() with cancelled context = %d errors, want 2", len(errs))
	}
	for _, fetchErr := range errs {
		if !errors.Is(fetchErr, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", fetchErr)
		}
	}
}
