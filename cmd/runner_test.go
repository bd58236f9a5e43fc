package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/fetch"
	"github.com/desertthunder/ytmm/internal/shared"
	ytmmtesting "github.com/desertthunder/ytmm/internal/testing"
	"github.com/urfave/cli/v3"
)

type testEnv struct {
	dbPath  string
	root    string
	output  *bytes.Buffer
	fetcher *ytmmtesting.FakeFetcher
}

// newTestEnv seeds a database file and wires a Runner into a CLI command
// tree, mirroring the way main assembles the application.
func newTestEnv(t *testing.T, cat *catalog.Catalog) (*testEnv, *cli.Command) {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dbPath:  filepath.Join(dir, "db.json"),
		root:    filepath.Join(dir, "music"),
		output:  &bytes.Buffer{},
		fetcher: &ytmmtesting.FakeFetcher{},
	}
	env.fetcher.Root = env.root

	if cat != nil {
		cat.Root = env.root
		store := catalog.NewStore(env.dbPath, nil)
		store.Catalog = cat
		if err := store.Save(); err != nil {
			t.Fatalf("failed to seed database: %v", err)
		}
	}

	config := shared.DefaultConfig()
	config.Database.Path = env.dbPath
	config.History.Path = ""
	config.Output.Plain = true

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Fetcher: env.fetcher,
		Output:  env.output,
		Input:   strings.NewReader(""),
	})

	app := &cli.Command{
		Name: "ytmm",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db"},
			&cli.StringFlag{Name: "config"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Commands: runner.register(),
	}
	return env, app
}

func (e *testEnv) lines() []string {
	var lines []string
	for _, line := range strings.Split(e.output.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func (e *testEnv) loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	store := catalog.NewStore(e.dbPath, nil)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to reload database: %v", err)
	}
	return store.Catalog
}

func seedTracks() *catalog.Catalog {
	return &catalog.Catalog{
		Tracks: []catalog.Track{
			{ID: "a1", Title: "Blue Monday", Artists: []string{"New Order"}},
			{ID: "b2", Title: "Giant Steps", Artists: []string{"John Coltrane"}},
			{ID: "c3", Title: "Blue Train", Artists: []string{"John Coltrane"}},
		},
		Playlists: map[string][]string{},
	}
}

func TestQueryCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "count",
			args: []string{"ytmm", "query", "-n"},
			want: []string{"3"},
		},
		{
			name: "title filter",
			args: []string{"ytmm", "query", "-T", "Blue"},
			want: []string{"New Order - Blue Monday", "John Coltrane - Blue Train"},
		},
		{
			name: "artist filter case insensitive",
			args: []string{"ytmm", "query", "-A", "coltrane", "-i", "-n"},
			want: []string{"2"},
		},
		{
			name: "first slice",
			args: []string{"ytmm", "query", "-f", "1"},
			want: []string{"New Order - Blue Monday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, app := newTestEnv(t, seedTracks())
			if err := app.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			got := env.lines()
			if len(got) != len(tt.want) {
				t.Fatalf("output = %v, want %v", got, tt.want)
			}
			for i, line := range got {
				if line != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, line, tt.want[i])
				}
			}
		})
	}
}

func TestQueryFilesOutput(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())
	if err := app.Run(context.Background(), []string{"ytmm", "query", "-F", "-T", "Monday"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := env.lines()
	want := filepath.Join(env.root, "blue_monday.mp3")
	if len(got) != 1 || got[0] != want {
		t.Errorf("output = %v, want %q", got, want)
	}
}

func TestAddCommand(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())
	env.fetcher.Metadata = map[string]*fetch.Metadata{
		"z9": {ID: "z9", Title: "New Song", Artists: []string{"Someone"}},
	}

	if err := app.Run(context.Background(), []string{"ytmm", "add", "-y", "z9"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cat := env.loadCatalog(t)
	if len(cat.Tracks) != 4 {
		t.Fatalf("catalog has %d tracks, want 4", len(cat.Tracks))
	}
	added := cat.FindByID("z9")
	if added == nil || added.Title != "New Song" {
		t.Errorf("added track = %v", added)
	}
	if _, err := os.Stat(filepath.Join(env.root, "new_song.mp3")); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

func TestAddCommandReplacesDuplicate(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())
	env.fetcher.Metadata = map[string]*fetch.Metadata{
		"a1": {ID: "a1", Title: "Blue Monday 88", Artists: []string{"New Order"}},
	}

	if err := app.Run(context.Background(), []string{"ytmm", "add", "-y", "--replace-all", "a1"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cat := env.loadCatalog(t)
	if len(cat.Tracks) != 3 {
		t.Fatalf("catalog has %d tracks, want 3", len(cat.Tracks))
	}
	if cat.Tracks[0].Title != "Blue Monday 88" {
		t.Errorf("slot 0 = %q, want replaced title", cat.Tracks[0].Title)
	}
}

func TestAddCommandSkipAll(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())

	if err := app.Run(context.Background(), []string{"ytmm", "add", "-y", "--skip-all", "a1"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cat := env.loadCatalog(t)
	if len(cat.Tracks) != 3 || cat.Tracks[0].Title != "Blue Monday" {
		t.Errorf("skip-all mutated the catalog: %v", cat.Tracks)
	}
}

func TestAddCommandRequiresArguments(t *testing.T) {
	_, app := newTestEnv(t, seedTracks())
	if err := app.Run(context.Background(), []string{"ytmm", "add"}); err == nil {
		t.Error("add without arguments expected error")
	}
}

func TestWritePlainError(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &ytmmtesting.FWriter{}})
	if err := runner.writePlain("hello"); err == nil {
		t.Error("writePlain to a failing writer expected error")
	}
}

func TestRemoveCommand(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())

	if err := app.Run(context.Background(), []string{"ytmm", "rm", "-y", "Blue"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cat := env.loadCatalog(t)
	if len(cat.Tracks) != 1 || cat.Tracks[0].Title != "Giant Steps" {
		t.Errorf("tracks = %v, want only Giant Steps", cat.Tracks)
	}
}

func TestPlaylistCommands(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())

	if err := app.Run(context.Background(), []string{"ytmm", "playlist", "add", "-A", "Coltrane", "jazz"}); err != nil {
		t.Fatalf("playlist add error = %v", err)
	}
	cat := env.loadCatalog(t)
	if got := cat.Playlists["jazz"]; len(got) != 2 {
		t.Fatalf("playlist jazz = %v, want two tracks", got)
	}

	env.output.Reset()
	if err := app.Run(context.Background(), []string{"ytmm", "playlist", "list"}); err != nil {
		t.Fatalf("playlist list error = %v", err)
	}
	if got := env.lines(); len(got) != 1 || got[0] != "jazz (2 tracks)" {
		t.Errorf("playlist list output = %v", got)
	}

	env.output.Reset()
	if err := app.Run(context.Background(), []string{"ytmm", "playlist", "query", "jazz"}); err != nil {
		t.Fatalf("playlist query error = %v", err)
	}
	if got := env.lines(); len(got) != 2 {
		t.Errorf("playlist query output = %v, want two lines", got)
	}

	if err := app.Run(context.Background(), []string{"ytmm", "playlist", "rm", "-T", "Train", "jazz"}); err != nil {
		t.Fatalf("playlist rm error = %v", err)
	}
	cat = env.loadCatalog(t)
	if got := cat.Playlists["jazz"]; len(got) != 1 || got[0] != "b2" {
		t.Errorf("playlist jazz = %v, want [b2]", got)
	}
}

func TestPlaylistExportCommand(t *testing.T) {
	cat := seedTracks()
	cat.Playlists["jazz"] = []string{"b2", "c3"}
	env, app := newTestEnv(t, cat)

	out := filepath.Join(t.TempDir(), "jazz.m3u")
	if err := app.Run(context.Background(), []string{"ytmm", "playlist", "export", "-o", out, "jazz"}); err != nil {
		t.Fatalf("playlist export error = %v", err)
	}

	content := ytmmtesting.MustReadFile(t, out)
	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Errorf("export missing header: %q", content)
	}
	if !strings.Contains(content, filepath.Join(env.root, "giant_steps.mp3")) {
		t.Errorf("export missing entry: %q", content)
	}
}

func TestSyncCommandDownloadsMissing(t *testing.T) {
	cat := seedTracks()
	env, app := newTestEnv(t, cat)
	if err := os.MkdirAll(env.root, 0755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	// One track already present, two missing.
	ytmmtesting.MustWriteFile(t, filepath.Join(env.root, "blue_monday.mp3"), "audio")

	env.fetcher.Metadata = map[string]*fetch.Metadata{
		"b2": {ID: "b2", Title: "Giant Steps", Artists: []string{"John Coltrane"}},
		"c3": {ID: "c3", Title: "Blue Train", Artists: []string{"John Coltrane"}},
	}

	if err := app.Run(context.Background(), []string{"ytmm", "sync", "-y"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{"giant_steps.mp3", "blue_train.mp3"} {
		ytmmtesting.AssertFileExists(t, filepath.Join(env.root, name))
	}
	if cat := env.loadCatalog(t); len(cat.Tracks) != 3 {
		t.Errorf("sync changed catalog size: %d tracks", len(cat.Tracks))
	}
}

func TestSyncCommandRepairsSourceNamedFiles(t *testing.T) {
	env, app := newTestEnv(t, seedTracks())
	if err := os.MkdirAll(env.root, 0755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	ytmmtesting.MustWriteFile(t, filepath.Join(env.root, "blue_monday.mp3"), "audio")
	ytmmtesting.MustWriteFile(t, filepath.Join(env.root, "b2.mp3"), "audio")
	ytmmtesting.MustWriteFile(t, filepath.Join(env.root, "c3.mp3"), "audio")

	if err := app.Run(context.Background(), []string{"ytmm", "sync", "-y"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{"giant_steps.mp3", "blue_train.mp3"} {
		ytmmtesting.AssertFileExists(t, filepath.Join(env.root, name))
	}
	if _, err := os.Stat(filepath.Join(env.root, "b2.mp3")); !os.IsNotExist(err) {
		t.Error("source-id named file still present after repair")
	}
}
