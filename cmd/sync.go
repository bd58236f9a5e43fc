package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/fetch"
	"github.com/desertthunder/ytmm/internal/reconcile"
	"github.com/urfave/cli/v3"
)

// Sync reconciles the catalog against the root directory and downloads
// every missing track.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	if out := cmd.String("output"); out != "" {
		r.store.Catalog.Root = out
		r.store.MarkDirty()
	}

	r.section("Synchronizing music files...")

	filter, err := r.buildFilter(cmd)
	if err != nil {
		return err
	}

	rec := reconcile.NewReconciler(messageReporter{runner: r})
	missing, actions, err := rec.Reconcile(r.store.Catalog, filter)
	if err != nil {
		if !errors.Is(err, reconcile.ErrRootNotFound) {
			return err
		}

		r.status("root %q not found", r.store.Catalog.Root)
		if !r.ask(cmd, "Create new root directory?") {
			return nil
		}
		r.status("creating directory...")
		if err := os.MkdirAll(r.store.Catalog.Root, 0755); err != nil {
			return fmt.Errorf("failed to create root: %w", err)
		}
	}

	rec.Apply(actions, r.orphanPolicy(cmd))

	if len(missing) == 0 {
		r.status("nothing to do")
		return nil
	}

	r.section("Music to download:")
	for _, t := range missing {
		r.status("%s", catalog.CanonicalName(t.Title))
	}

	if !r.ask(cmd, "Proceed to download?") {
		return nil
	}

	r.runFetch(ctx, cmd, jobsForTracks(r.store.Catalog, missing))
	return nil
}

// jobsForTracks builds replace-in-place jobs for tracks already present in
// the catalog, so a fetch refreshes the existing slot instead of appending.
func jobsForTracks(cat *catalog.Catalog, tracks []catalog.Track) []fetch.Job {
	idIndex := cat.IndexByID()
	jobs := make([]fetch.Job, 0, len(tracks))
	for _, t := range tracks {
		index, ok := idIndex[t.ID]
		if !ok {
			index = -1
		}
		jobs = append(jobs, fetch.Job{SourceID: t.ID, Index: index})
	}
	return jobs
}

// orphanPolicy prompts per orphaned file. With --yes the prompts are
// suppressed and orphans are left in place rather than mass-deleted.
func (r *Runner) orphanPolicy(cmd *cli.Command) reconcile.RemoveDecision {
	return func(path string) bool {
		if cmd.Bool("yes") {
			return false
		}
		return r.ask(cmd, fmt.Sprintf("Remove orphaned file %q?", filepath.Base(path)))
	}
}

// buildFilter compiles the --title/--artist flags, applying "(?i)" when -i
// is set.
func (r *Runner) buildFilter(cmd *cli.Command) (*catalog.Filter, error) {
	title := cmd.String("title")
	artist := cmd.String("artist")
	if cmd.Bool("i") {
		if title != "" {
			title = "(?i)" + title
		}
		if artist != "" {
			artist = "(?i)" + artist
		}
	}
	return catalog.NewFilter(title, artist)
}
