// package playlist maintains named ordered subsets of the catalog and their
// exported playable form.
package playlist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/shared"
)

// Manager mutates and renders the playlists of a catalog. Mutations go
// through the store so the dirty flag stays accurate.
type Manager struct {
	store *catalog.Store
}

// NewManager creates a Manager over the given store.
func NewManager(store *catalog.Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) catalog() *catalog.Catalog { return m.store.Catalog }

// Add appends ids to the named playlist, creating it when absent. Ids
// already present are not duplicated; the remainder keep their given order.
// Returns the number of ids actually added.
func (m *Manager) Add(name string, ids []string) int {
	cat := m.catalog()
	if cat.Playlists == nil {
		cat.Playlists = map[string][]string{}
		m.store.MarkDirty()
	}

	existing := make(map[string]bool, len(cat.Playlists[name]))
	for _, id := range cat.Playlists[name] {
		existing[id] = true
	}

	added := 0
	if _, ok := cat.Playlists[name]; !ok {
		cat.Playlists[name] = []string{}
		m.store.MarkDirty()
	}
	for _, id := range ids {
		if existing[id] {
			continue
		}
		cat.Playlists[name] = append(cat.Playlists[name], id)
		existing[id] = true
		added++
	}
	if added > 0 {
		m.store.MarkDirty()
	}
	return added
}

// Remove deletes the given ids from the named playlist, preserving the
// relative order of survivors. Removing from a playlist that does not exist
// is a no-op surfaced as [shared.ErrPlaylistNotFound] for the caller to
// report.
func (m *Manager) Remove(name string, ids []string) (int, error) {
	cat := m.catalog()
	entries, ok := cat.Playlists[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := entries[:0]
	removed := 0
	for _, id := range entries {
		if drop[id] {
			removed++
			continue
		}
		kept = append(kept, id)
	}
	cat.Playlists[name] = kept
	if removed > 0 {
		m.store.MarkDirty()
	}
	return removed, nil
}

// Tracks resolves the named playlist to its tracks in playlist order. Stale
// ids with no catalog entry are skipped, never deleted.
func (m *Manager) Tracks(name string) ([]catalog.Track, error) {
	cat := m.catalog()
	entries, ok := cat.Playlists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}

	var tracks []catalog.Track
	for _, id := range entries {
		if t := cat.FindByID(id); t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

// Names returns all playlist names sorted for stable listing.
func (m *Manager) Names() []string {
	cat := m.catalog()
	names := make([]string, 0, len(cat.Playlists))
	for name := range cat.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NeedsDownload returns the playlist tracks whose canonical file is absent
// on disk. Purely informational; it triggers no fetch.
func (m *Manager) NeedsDownload(name string) ([]catalog.Track, error) {
	tracks, err := m.Tracks(name)
	if err != nil {
		return nil, err
	}

	var missing []catalog.Track
	for _, t := range tracks {
		path := filepath.Join(m.catalog().Root, catalog.CanonicalName(t.Title)+catalog.TrackFormat)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, t)
		}
	}
	return missing, nil
}

// ExportM3U renders the named playlist as an m3u document: header line plus
// one file path per resolvable entry, in playlist order.
func (m *Manager) ExportM3U(name string) ([]byte, error) {
	tracks, err := m.Tracks(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")
	for _, t := range tracks {
		buf.WriteString(filepath.Join(m.catalog().Root, catalog.CanonicalName(t.Title)+catalog.TrackFormat))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteM3U exports the named playlist to path, defaulting to {name}.m3u.
// Returns the file written.
func (m *Manager) WriteM3U(name, path string) (string, error) {
	if path == "" {
		path = name + ".m3u"
	}

	data, err := m.ExportM3U(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write playlist file: %w", err)
	}
	return path, nil
}
