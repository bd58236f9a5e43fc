// package catalog defines the track catalog data model and its persisted form.
//
// A catalog owns the track list, the named playlists, and the root directory
// holding downloaded files. It is loaded once per invocation, mutated in
// memory, and written back only when something changed.
package catalog

// Track is one catalog entry describing a single audio item sourced from a
// remote id.
type Track struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
	Album   string   `json:"album,omitempty"`
	Year    int      `json:"year,omitempty"`
}

// Catalog is the full collection of tracks, playlists, and the root path of
// the local file store. Track order is display order only; identity is the ID.
type Catalog struct {
	Root      string              `json:"root"`
	Tracks    []Track             `json:"data"`
	Playlists map[string][]string `json:"playlists"`
}

// DefaultRoot is used when a loaded database is missing its root key.
const DefaultRoot = "music"

// TrackFormat is the extension of every managed audio file.
const TrackFormat = ".mp3"

// IndexByID returns a map from track id to its position in the track list.
// When the same id occurs more than once the later position wins.
func (c *Catalog) IndexByID() map[string]int {
	index := make(map[string]int, len(c.Tracks))
	for i, t := range c.Tracks {
		index[t.ID] = i
	}
	return index
}

// FilenameSet returns the set of canonical filenames (without extension)
// derived from every track title.
func (c *Catalog) FilenameSet() map[string]bool {
	set := make(map[string]bool, len(c.Tracks))
	for _, t := range c.Tracks {
		set[CanonicalName(t.Title)] = true
	}
	return set
}

// FindByID returns the track with the given id, or nil when absent.
func (c *Catalog) FindByID(id string) *Track {
	for i := range c.Tracks {
		if c.Tracks[i].ID == id {
			return &c.Tracks[i]
		}
	}
	return nil
}
