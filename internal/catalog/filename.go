package catalog

import (
	"regexp"
	"strings"
)

var (
	reGarbage = regexp.MustCompile(`\(Official .*\)|\(From .*\)|\(feat\. .*\)`)
	reInvalid = regexp.MustCompile(`[^ 0-9A-Za-z_]`)
	reSpace   = regexp.MustCompile(`\s+`)
	reBracket = regexp.MustCompile(`\[.*\]`)
)

// CanonicalName derives the filesystem-safe filename (without extension) for
// a track title: noise annotations stripped, invalid characters removed,
// whitespace collapsed, lowercased, spaces replaced with underscores.
// Deterministic and total; an empty title yields an empty string.
func CanonicalName(title string) string {
	title = strings.TrimSpace(reGarbage.ReplaceAllString(title, ""))
	title = strings.TrimSpace(reInvalid.ReplaceAllString(title, ""))
	title = reSpace.ReplaceAllString(title, " ")
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// ParseArtistsAndTitle splits a raw source title into an artist list and a
// clean title. Noise annotations are stripped first, then the string is split
// on the first " – " (em dash) or " - " separator; the em dash is checked
// first since it may itself be preceded by the plain separator. The left
// side is a comma-separated artist list, the right side has bracketed
// segments removed.
//
// When no separator is present the whole input becomes the title and the
// artist list holds a single empty string. Callers that persist tracks
// should drop the empty entry.
func ParseArtistsAndTitle(raw string) ([]string, string) {
	raw = strings.TrimSpace(reGarbage.ReplaceAllString(raw, ""))

	var left, title string
	var found bool
	if strings.Contains(raw, "–") {
		left, title, found = strings.Cut(raw, " – ")
	} else {
		left, title, found = strings.Cut(raw, " - ")
	}
	if !found {
		// Degenerate case: no artist side at all.
		left, title = "", raw
	}

	artists := strings.Split(left, ",")
	for i, a := range artists {
		artists[i] = strings.TrimSpace(a)
	}

	title = strings.TrimSpace(reBracket.ReplaceAllString(title, ""))
	return artists, title
}
