package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytmm/internal/history"
	"github.com/desertthunder/ytmm/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recent fetch runs from the journal, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)
	if r.config.History.Path == "" {
		return fmt.Errorf("%w: history.path", shared.ErrMissingConfig)
	}

	db, err := shared.NewDatabase(r.config.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	runs, err := history.NewRunRepository(db).ListRecent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		r.status("no recorded runs")
		return nil
	}

	for _, run := range runs {
		r.section(fmt.Sprintf("Run %d (%s)", run.Sequence, run.StartedAt.Format("2006-01-02 15:04")))
		r.status("%d total, %d succeeded, %d failed", run.Total, run.Succeeded, run.Failed)
		for _, runErr := range run.Errors {
			r.status("%s: %s", runErr.SourceID, runErr.Reason)
		}
	}
	return nil
}

// Setup writes the example config file and initializes the fetch journal.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		r.logger.Warn("skipping config file", "err", err)
	} else {
		r.status("created %s", path)
	}

	if r.config.History.Path == "" {
		return nil
	}

	db, err := shared.NewDatabase(r.config.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}
	r.status("fetch journal ready at %s", r.config.History.Path)
	return nil
}
