// package ui renders live fetch progress with bubbletea.
//
// The view shows one progress bar per job plus an aggregate line, fed by
// orchestrator events forwarded into the program. Quitting the view detaches
// it; the run itself is never cancelled from here.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/fetch"
)

const barWidth = 30

// row is the display state of one job.
type row struct {
	sourceID string
	phase    fetch.Phase
	fraction float64
	bar      progress.Model
	err      error
}

// doneMsg signals that the orchestrator returned.
type doneMsg struct {
	errs []fetch.FetchError
}

// Model is the fetch progress view.
type Model struct {
	rows      []row
	aggregate float64
	total     progress.Model
	done      bool
	detached  bool
	errs      []fetch.FetchError
}

// NewModel creates a progress view for the given batch.
func NewModel(jobs []fetch.Job) Model {
	rows := make([]row, len(jobs))
	for i, job := range jobs {
		rows[i] = row{
			sourceID: job.SourceID,
			phase:    fetch.PhasePending,
			bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		}
	}
	return Model{
		rows:  rows,
		total: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.detached = true
			return m, tea.Quit
		}
	case fetch.ProgressEvent:
		if msg.JobIndex >= 0 && msg.JobIndex < len(m.rows) {
			r := &m.rows[msg.JobIndex]
			r.phase = msg.Phase
			r.fraction = msg.Fraction()
			r.err = msg.Err
		}
		m.aggregate = msg.Aggregate
		return m, nil
	case doneMsg:
		m.done = true
		m.errs = msg.errs
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Retrieving music..."))
	b.WriteString("\n\n")

	for _, r := range m.rows {
		b.WriteString(fmt.Sprintf("%-36.36s %s %s\n", r.sourceID, r.bar.ViewAs(r.fraction), m.phaseLabel(r)))
	}

	b.WriteString(fmt.Sprintf("\n%-36.36s %s\n", "total", m.total.ViewAs(m.aggregate)))
	b.WriteString(styles.help.Render("q: detach"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) phaseLabel(r row) string {
	switch r.phase {
	case fetch.PhaseFinished:
		return styles.ok.Render("done")
	case fetch.PhaseFailed:
		return styles.err.Render("failed")
	default:
		return styles.warn.Render(r.phase.String())
	}
}

// programReporter forwards orchestrator events into a running program.
type programReporter struct {
	p *tea.Program
}

func (r programReporter) Progress(ev fetch.ProgressEvent) { r.p.Send(ev) }
func (r programReporter) Message(string)                  {}

// RunFetch executes the batch with the progress view attached and returns
// the orchestrator's collected failures.
func RunFetch(ctx context.Context, opts fetch.Opts, store *catalog.Store, jobs []fetch.Job, fetcher fetch.Fetcher) []fetch.FetchError {
	p := tea.NewProgram(NewModel(jobs))

	errCh := make(chan []fetch.FetchError, 1)
	go func() {
		opts.Reporter = programReporter{p: p}
		errs := fetch.NewOrchestrator(opts).Run(ctx, store, jobs, fetcher)
		errCh <- errs
		p.Send(doneMsg{errs: errs})
	}()

	if _, err := p.Run(); err != nil {
		// Terminal failure; fall through and wait for the run itself.
		return <-errCh
	}
	return <-errCh
}
