package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/playlist"
	"github.com/desertthunder/ytmm/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistSync downloads the missing tracks of every playlist whose name
// matches the given pattern, or of all playlists when none is given.
func (r *Runner) PlaylistSync(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	pattern := cmd.StringArg("playlist")
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}

	mgr := playlist.NewManager(r.store)
	seen := map[string]bool{}
	var missing []catalog.Track
	for _, name := range mgr.Names() {
		if re != nil && !re.MatchString(name) {
			continue
		}
		tracks, err := mgr.NeedsDownload(name)
		if err != nil {
			return err
		}
		for _, t := range tracks {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			missing = append(missing, t)
		}
	}

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

// PlaylistAdd adds the selected tracks to the named playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("playlist")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	tracks, err := r.selectTracks(cmd, r.store.Catalog.Tracks)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	added := playlist.NewManager(r.store).Add(name, ids)
	r.status("added %d tracks to %q", added, name)
	return nil
}

// PlaylistRemove removes the selected tracks from the named playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("playlist")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	tracks, err := r.selectTracks(cmd, r.store.Catalog.Tracks)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	removed, err := playlist.NewManager(r.store).Remove(name, ids)
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			r.status("playlist %q not found", name)
			return nil
		}
		return err
	}
	r.status("removed %d tracks from %q", removed, name)
	return nil
}

// PlaylistQuery lists the tracks of the named playlist in playlist order.
func (r *Runner) PlaylistQuery(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("playlist")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	tracks, err := playlist.NewManager(r.store).Tracks(name)
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			r.status("playlist %q not found", name)
			return nil
		}
		return err
	}

	r.printTracks(cmd, tracks)
	return nil
}

// PlaylistList lists every playlist with its entry count.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	cat := r.store.Catalog
	for _, name := range playlist.NewManager(r.store).Names() {
		r.status("%s (%d tracks)", name, len(cat.Playlists[name]))
	}
	return nil
}

// PlaylistExport writes the named playlist to an m3u file.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("playlist")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	if err := r.openStore(cmd); err != nil {
		return err
	}
	defer r.closeStore()

	path, err := playlist.NewManager(r.store).WriteM3U(name, cmd.String("output"))
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			r.status("playlist %q not found", name)
			return nil
		}
		return err
	}
	r.status("wrote %s", path)
	return nil
}
