package fetch

// ProgressEvent represents a progress update for one fetch job.
//
// Events are delivered to the Reporter as they happen; Aggregate carries the
// mean fractional completion across the whole batch at the time of delivery.
type ProgressEvent struct {
	JobID      string  // Unique id for this job within the run
	JobIndex   int     // Position in the submitted batch, for stable display
	SourceID   string  // Remote source identifier
	Phase      Phase   // Current phase
	BytesDone  int64   // Bytes downloaded so far (downloading phase)
	BytesTotal int64   // Total bytes, <= 0 when unknown
	Aggregate  float64 // Mean batch completion in [0, 1]
	Err        error   // Failure reason (failed phase)
}

// Fraction returns the job's own clamped completion fraction. Unknown totals
// contribute zero until the job finishes.
func (e ProgressEvent) Fraction() float64 {
	switch e.Phase {
	case PhaseFinished, PhaseFailed:
		return 1
	case PhaseDownloading:
		if e.BytesTotal <= 0 {
			return 0
		}
		f := float64(e.BytesDone) / float64(e.BytesTotal)
		if f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	default:
		return 0
	}
}

// Job phase enumeration
type Phase int

const (
	PhasePending Phase = iota
	PhaseActive
	PhaseDownloading
	PhaseFinished
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseDownloading:
		return "downloading"
	case PhaseFinished:
		return "finished"
	case PhaseFailed:
		return "failed"
	default:
		return ""
	}
}

// Terminal reports whether the phase ends a job.
func (p Phase) Terminal() bool {
	return p == PhaseFinished || p == PhaseFailed
}

// Reporter receives progress events and narration during a fetch run.
//
// Implementations must be safe for concurrent use; workers deliver events
// from multiple goroutines.
type Reporter interface {
	Progress(ProgressEvent)
	Message(text string)
}

type nopReporter struct{}

func (nopReporter) Progress(ProgressEvent) {}
func (nopReporter) Message(string)         {}
