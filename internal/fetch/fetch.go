// package fetch implements the concurrent download engine.
//
// The core abstraction is Orchestrator, which runs a batch of fetch jobs
// under a bounded worker pool. Jobs emit progress events via an injected
// Reporter for non-blocking status reporting to CLI/UI layers; the actual
// retrieval of a source id into a local audio file is delegated to a Fetcher.
package fetch

import (
	"context"
	"regexp"
	"strconv"

	"github.com/desertthunder/ytmm/internal/catalog"
)

// Job is one unit of fetch work. Index >= 0 replaces the catalog slot at
// that position; -1 appends a new track.
type Job struct {
	SourceID string
	Index    int
}

// ProgressFunc relays download progress from a Fetcher. total <= 0 means the
// total size is unknown.
type ProgressFunc func(done, total int64)

// Fetcher turns a source id into a downloaded audio file plus metadata.
//
// On success a file named {sourceID}.mp3 must exist in the catalog root. The
// progress callback may be invoked zero or more times before returning.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string, progress ProgressFunc) (*Metadata, error)
}

// Metadata describes a fetched track. Either the structured fields (Title,
// Artists, ...) are populated, or only RawTitle is present and the artist
// and title are parsed out of it.
type Metadata struct {
	ID          string
	Title       string
	Artists     []string
	Album       string
	Year        int
	RawTitle    string
	Description string
}

var reReleasedOn = regexp.MustCompile(`Released on: (\d{4})`)

// TrackFromMetadata derives a catalog entry from fetched metadata.
//
// When structured metadata is absent the raw title is parsed; the parser's
// degenerate single-empty-artist result is dropped so catalog entries never
// persist an empty artist. A missing year is recovered from the description
// text when it carries a "Released on: YYYY" marker.
func TrackFromMetadata(m *Metadata) catalog.Track {
	track := catalog.Track{ID: m.ID}

	if m.Title != "" {
		track.Title = m.Title
		track.Artists = m.Artists
		track.Album = m.Album
		track.Year = m.Year
	} else {
		artists, title := catalog.ParseArtistsAndTitle(m.RawTitle)
		if len(artists) == 1 && artists[0] == "" {
			artists = nil
		}
		track.Title = title
		track.Artists = artists
	}

	if track.Year == 0 && m.Description != "" {
		if match := reReleasedOn.FindStringSubmatch(m.Description); match != nil {
			if year, err := strconv.Atoi(match[1]); err == nil {
				track.Year = year
			}
		}
	}

	return track
}
