package catalog

import (
	"fmt"
	"regexp"
)

// Filter narrows a track list by title and artist patterns. Either side may
// be nil; a nil pattern never disqualifies a track.
type Filter struct {
	Title  *regexp.Regexp
	Artist *regexp.Regexp
}

// NewFilter compiles title and artist patterns into a Filter. Empty strings
// compile to nil sides. Case-insensitive matching is requested by the caller
// with a "(?i)" prefix.
func NewFilter(titlePattern, artistPattern string) (*Filter, error) {
	f := &Filter{}

	if titlePattern != "" {
		re, err := regexp.Compile(titlePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid title pattern: %w", err)
		}
		f.Title = re
	}

	if artistPattern != "" {
		re, err := regexp.Compile(artistPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid artist pattern: %w", err)
		}
		f.Artist = re
	}

	return f, nil
}

// Empty reports whether the filter has no patterns.
func (f *Filter) Empty() bool {
	return f == nil || (f.Title == nil && f.Artist == nil)
}

// Matches reports whether a track passes the filter: a present title pattern
// searching the title, or a present artist pattern searching any artist.
func (f *Filter) Matches(t Track) bool {
	if f.Empty() {
		return true
	}
	if f.Title != nil && f.Title.MatchString(t.Title) {
		return true
	}
	if f.Artist != nil {
		for _, a := range t.Artists {
			if f.Artist.MatchString(a) {
				return true
			}
		}
	}
	return false
}

// Apply returns the tracks passing the filter, preserving order. An empty
// filter returns the input unchanged.
func (f *Filter) Apply(tracks []Track) []Track {
	if f.Empty() {
		return tracks
	}
	var kept []Track
	for _, t := range tracks {
		if f.Matches(t) {
			kept = append(kept, t)
		}
	}
	return kept
}
