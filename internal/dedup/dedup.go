// package dedup resolves duplicate submissions against the existing catalog.
//
// Newly submitted source ids are classified as new, duplicate-replace, or
// duplicate-skip. The replace-or-skip choice is a caller-injected policy so
// interactive prompting and batch modes are both just policy implementations.
package dedup

import (
	"strings"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/fetch"
)

// Resolution is the outcome of a duplicate decision.
type Resolution int

const (
	Replace Resolution = iota
	Skip
)

// Decision chooses what to do with a submission matching an existing track.
type Decision func(existing catalog.Track) Resolution

// ReplaceAll is a batch Decision that always replaces.
func ReplaceAll(catalog.Track) Resolution { return Replace }

// SkipAll is a batch Decision that always skips.
func SkipAll(catalog.Track) Resolution { return Skip }

type outcome struct {
	index int
	skip  bool
}

// Classify builds the fetch job list for a set of submitted source ids.
//
// A submission matches an existing track when the track id is contained in
// the submitted string, so full URLs and bare ids are both accepted. Matches
// are found by a single linear pass over the existing tracks, calling decide
// once per match: Replace yields a job targeting the existing index, Skip
// drops the submission, and unmatched submissions append (index -1). Job
// order follows the submitted order minus skips.
//
// When the catalog already contains duplicate ids, both matches invoke
// decide and the later resolution wins.
func Classify(existing []catalog.Track, submitted []string, decide Decision) []fetch.Job {
	outcomes := make(map[string]outcome)

	for i, track := range existing {
		for _, sub := range submitted {
			if track.ID == "" || !strings.Contains(sub, track.ID) {
				continue
			}
			switch decide(track) {
			case Replace:
				outcomes[sub] = outcome{index: i}
			case Skip:
				outcomes[sub] = outcome{skip: true}
			}
			break
		}
	}

	var jobs []fetch.Job
	for _, sub := range submitted {
		if o, ok := outcomes[sub]; ok {
			if o.skip {
				continue
			}
			jobs = append(jobs, fetch.Job{SourceID: sub, Index: o.index})
			continue
		}
		jobs = append(jobs, fetch.Job{SourceID: sub, Index: -1})
	}
	return jobs
}
