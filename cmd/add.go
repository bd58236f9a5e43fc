package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/dedup"
	"github.com/desertthunder/ytmm/internal/shared"
	"github.com/urfave/cli/v3"
)

// Add submits source ids or URLs, resolves duplicates against the catalog,
// and downloads the survivors.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	sources := cmd.Args().Slice()
	if len(sources) == 0 {
		return fmt.Errorf("%w: at least one id or URL", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	r.section("Checking for duplicates...")
	jobs := dedup.Classify(r.store.Catalog.Tracks, sources, r.dedupDecision(cmd))
	if len(jobs) == 0 {
		r.status("nothing to do")
		return nil
	}

	if err := os.MkdirAll(r.store.Catalog.Root, 0755); err != nil {
		return fmt.Errorf("failed to create root: %w", err)
	}

	r.section("Downloading music...")
	r.runFetch(ctx, cmd, jobs)
	return nil
}

// dedupDecision builds the duplicate policy from the --replace-all and
// --skip-all flags, prompting per track otherwise.
func (r *Runner) dedupDecision(cmd *cli.Command) dedup.Decision {
	switch {
	case cmd.Bool("replace-all"):
		return dedup.ReplaceAll
	case cmd.Bool("skip-all"):
		return dedup.SkipAll
	default:
		return func(t catalog.Track) dedup.Resolution {
			r.status("%q is already in the database", t.Title)
			if r.ask(cmd, "Replace it?") {
				return dedup.Replace
			}
			return dedup.Skip
		}
	}
}

// Remove deletes matching tracks from the catalog. Files on disk are left
// alone; the next sync reports them as orphans.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	pattern := cmd.StringArg("pattern")
	if pattern == "" {
		return fmt.Errorf("%w: title pattern", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	title := pattern
	artist := cmd.String("artist")
	if cmd.Bool("i") {
		title = "(?i)" + title
		if artist != "" {
			artist = "(?i)" + artist
		}
	}
	filter, err := catalog.NewFilter(title, artist)
	if err != nil {
		return err
	}
	if filter.Empty() {
		return fmt.Errorf("%w: empty pattern", shared.ErrInvalidInput)
	}

	cat := r.store.Catalog
	var matched []int
	for i, t := range cat.Tracks {
		if filter.Matches(t) {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		r.status("no matching tracks")
		return nil
	}

	r.section("Tracks to remove:")
	for _, i := range matched {
		r.status("%s", cat.Tracks[i].Title)
	}
	if !r.ask(cmd, fmt.Sprintf("Remove %d tracks from the database?", len(matched))) {
		return nil
	}

	drop := make(map[int]bool, len(matched))
	for _, i := range matched {
		drop[i] = true
	}
	kept := cat.Tracks[:0]
	for i, t := range cat.Tracks {
		if drop[i] {
			continue
		}
		kept = append(kept, t)
	}
	cat.Tracks = kept
	r.store.MarkDirty()

	r.status("removed %d tracks", len(matched))
	return nil
}
