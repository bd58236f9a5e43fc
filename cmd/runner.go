package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/fetch"
	"github.com/desertthunder/ytmm/internal/history"
	"github.com/desertthunder/ytmm/internal/shared"
	"github.com/desertthunder/ytmm/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

var sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	fetcher fetch.Fetcher
	logger  *log.Logger
	output  io.Writer
	input   io.Reader
	store   *catalog.Store
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Fetcher fetch.Fetcher
	Logger  *log.Logger
	Output  io.Writer
	Input   io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:  opts.Config,
		fetcher: opts.Fetcher,
		logger:  opts.Logger,
		output:  opts.Output,
		input:   opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, addCommand, removeCommand, queryCommand, playlistCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore loads the catalog database named by the --db flag (falling back
// to the configured path). Corrupt databases are the only unrecoverable
// failure; the caller propagates them for a fatal exit.
func (r *Runner) openStore(cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.loadConfig(cmd)

	path := cmd.String("db")
	if path == "" {
		path = r.config.Database.Path
	}
	store := catalog.NewStore(path, r.logger)
	if err := store.Load(); err != nil {
		return err
	}
	r.store = store
	return nil
}

// loadConfig swaps in the config file named by the --config flag. Load
// failures keep the current config and warn.
func (r *Runner) loadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	loaded, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config", "path", path, "err", err)
		return
	}
	r.config = loaded
}

// closeStore persists the catalog when dirty. Save failures are reported,
// never fatal; the user may lose the session's changes.
func (r *Runner) closeStore() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Error("failed to write to database file", "err", err)
	}
}

// runFetch executes a job batch under the orchestrator, attaching the
// progress view unless plain output is requested. The outcome is written to
// the fetch journal best-effort and failures are listed for the user.
func (r *Runner) runFetch(ctx context.Context, cmd *cli.Command, jobs []fetch.Job) []fetch.FetchError {
	if len(jobs) == 0 {
		return nil
	}

	// The downloader needs the catalog root, which is only known once the
	// store is open, so injected fetchers take precedence and the real one
	// is built here.
	fetcher := r.fetcher
	if fetcher == nil {
		fetcher = fetch.NewYTDLP(r.config.Fetch.Binary, r.store.Catalog.Root)
	}

	opts := fetch.Opts{Workers: r.config.Fetch.Workers}
	if r.config.Fetch.RateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(r.config.Fetch.RateLimit), 1)
	}

	started := time.Now()
	var errs []fetch.FetchError
	if cmd.Bool("plain") || r.config.Output.Plain || !r.interactive() {
		opts.Reporter = logReporter{logger: r.logger}
		errs = fetch.NewOrchestrator(opts).Run(ctx, r.store, jobs, fetcher)
	} else {
		errs = ui.RunFetch(ctx, opts, r.store, jobs, fetcher)
	}

	r.recordRun(started, len(jobs), errs)

	for _, fetchErr := range errs {
		r.logger.Error("fetch failed", "source", fetchErr.SourceID, "err", fetchErr.Err)
	}
	return errs
}

// recordRun appends the run to the fetch journal. Journal failures are
// warnings only.
func (r *Runner) recordRun(started time.Time, total int, errs []fetch.FetchError) {
	if r.config.History.Path == "" {
		return
	}

	db, err := shared.NewDatabase(r.config.History.Path)
	if err != nil {
		r.logger.Warn("fetch journal unavailable", "err", err)
		return
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("fetch journal migration failed", "err", err)
		return
	}

	run := &history.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Total:      total,
		Succeeded:  total - len(errs),
		Failed:     len(errs),
	}
	for _, fetchErr := range errs {
		run.Errors = append(run.Errors, history.RunError{
			SourceID: fetchErr.SourceID,
			Reason:   fetchErr.Err.Error(),
		})
	}

	if err := history.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record fetch run", "err", err)
	}
}

// interactive reports whether output goes to a terminal. Piped output gets
// the plain reporter instead of the progress view.
func (r *Runner) interactive() bool {
	f, ok := r.output.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// ask prompts for a yes/no answer, defaulting to yes. The --yes flag answers
// every prompt affirmatively without reading input.
func (r *Runner) ask(cmd *cli.Command, msg string) bool {
	if cmd.Bool("yes") {
		return true
	}
	r.writePlain("%s %s ", sectionStyle.Render("::"), msg+" [Y/n]")
	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

func (r *Runner) section(msg string) {
	r.writePlain("%s %s\n", sectionStyle.Render("::"), msg)
}

func (r *Runner) status(format string, args ...any) {
	r.writePlain(" "+format+"\n", args...)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// logReporter narrates fetch progress through the structured logger for
// plain output mode. Terminal phases log at info; the byte-level stream
// stays at debug.
type logReporter struct {
	logger *log.Logger
}

func (l logReporter) Progress(ev fetch.ProgressEvent) {
	switch ev.Phase {
	case fetch.PhaseFinished:
		l.logger.Info("fetched", "source", ev.SourceID, "aggregate", fmt.Sprintf("%.0f%%", ev.Aggregate*100))
	case fetch.PhaseFailed:
		l.logger.Error("fetch failed", "source", ev.SourceID, "err", ev.Err)
	case fetch.PhaseDownloading:
		l.logger.Debug("downloading", "source", ev.SourceID, "done", ev.BytesDone, "total", ev.BytesTotal)
	}
}

func (l logReporter) Message(text string) {
	l.logger.Info(text)
}

// messageReporter adapts the runner's styled output for reconciliation
// narration.
type messageReporter struct {
	runner *Runner
}

func (m messageReporter) Message(text string) {
	m.runner.status("%s", text)
}
