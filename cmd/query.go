package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/urfave/cli/v3"
)

// Query lists catalog tracks matching the filter and selection flags.
func (r *Runner) Query(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	tracks, err := r.selectTracks(cmd, r.store.Catalog.Tracks)
	if err != nil {
		return err
	}

	r.printTracks(cmd, tracks)
	return nil
}

// selectTracks applies the filter, downloaded, and slice flags to the given
// tracks, in that order.
func (r *Runner) selectTracks(cmd *cli.Command, tracks []catalog.Track) ([]catalog.Track, error) {
	filter, err := r.buildFilter(cmd)
	if err != nil {
		return nil, err
	}
	tracks = filter.Apply(tracks)
	tracks = r.applyDownloaded(cmd, tracks)
	return applySlices(cmd, tracks), nil
}

// applyDownloaded keeps tracks with (or without) a canonical file on disk
// when the corresponding flag is set.
func (r *Runner) applyDownloaded(cmd *cli.Command, tracks []catalog.Track) []catalog.Track {
	downloaded := cmd.Bool("downloaded")
	notDownloaded := cmd.Bool("not-downloaded")
	if !downloaded && !notDownloaded {
		return tracks
	}

	root := r.store.Catalog.Root
	var kept []catalog.Track
	for _, t := range tracks {
		_, err := os.Stat(filepath.Join(root, catalog.CanonicalName(t.Title)+catalog.TrackFormat))
		present := err == nil
		if (downloaded && present) || (notDownloaded && !present) {
			kept = append(kept, t)
		}
	}
	return kept
}

// applySlices narrows to the first then last N tracks per the slice flags.
func applySlices(cmd *cli.Command, tracks []catalog.Track) []catalog.Track {
	if first := int(cmd.Int("first")); first > 0 && first < len(tracks) {
		tracks = tracks[:first]
	}
	if last := int(cmd.Int("last")); last > 0 && last < len(tracks) {
		tracks = tracks[len(tracks)-last:]
	}
	return tracks
}

// printTracks renders a selection honoring the --count and --files flags.
func (r *Runner) printTracks(cmd *cli.Command, tracks []catalog.Track) {
	if cmd.Bool("count") {
		r.status("%d", len(tracks))
		return
	}

	if cmd.Bool("files") {
		root := r.store.Catalog.Root
		for _, t := range tracks {
			r.status("%s", filepath.Join(root, catalog.CanonicalName(t.Title)+catalog.TrackFormat))
		}
		return
	}

	for _, t := range tracks {
		r.status("%s - %s", strings.Join(t.Artists, ", "), t.Title)
	}
}
