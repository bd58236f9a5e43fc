// package reconcile diffs the catalog against the local file store.
//
// Reconciliation classifies every on-disk file as matched, repairable, or
// orphaned, and computes the set of catalog tracks with no local file. It
// proposes actions but never mutates the catalog's track list; renames and
// removals are applied separately under caller-supplied policy.
package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ytmm/internal/catalog"
)

// ErrRootNotFound indicates the catalog root directory does not exist.
// Callers decide whether to create it and treat the whole catalog as missing.
var ErrRootNotFound = errors.New("root directory not found")

// ActionKind classifies a file action.
type ActionKind int

const (
	// ActionRepair renames a file still named by its source id to the
	// canonical filename of its track.
	ActionRepair ActionKind = iota
	// ActionOrphan marks a file no catalog entry accounts for; removal is
	// deferred to the caller's policy.
	ActionOrphan
)

func (k ActionKind) String() string {
	switch k {
	case ActionRepair:
		return "repair"
	case ActionOrphan:
		return "orphan"
	default:
		return ""
	}
}

// FileAction is one proposed change to the local file store.
type FileAction struct {
	Kind   ActionKind
	Path   string         // Current file location
	Target string         // Rename destination (repair only)
	Track  *catalog.Track // Track the repair belongs to (repair only)
}

// Reporter narrates reconciliation as it happens.
type Reporter interface {
	Message(text string)
}

type nopReporter struct{}

func (nopReporter) Message(string) {}

// RemoveDecision is the caller's per-file removal policy for orphans.
type RemoveDecision func(path string) bool

// Reconciler walks the catalog root and classifies files against the catalog.
type Reconciler struct {
	reporter Reporter
}

// NewReconciler creates a Reconciler narrating through reporter, which may
// be nil.
func NewReconciler(reporter Reporter) *Reconciler {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Reconciler{reporter: reporter}
}

// Reconcile classifies every file under the catalog root and returns the
// filtered tracks whose canonical file is absent, plus the proposed repair
// and orphan actions.
//
// The catalog's track list is never mutated; running Reconcile twice with no
// filesystem changes in between yields identical results. A missing root
// fails with [ErrRootNotFound] and every filtered track reported missing.
func (r *Reconciler) Reconcile(cat *catalog.Catalog, filter *catalog.Filter) ([]catalog.Track, []FileAction, error) {
	filtered := filter.Apply(cat.Tracks)

	if _, err := os.Stat(cat.Root); os.IsNotExist(err) {
		missing := make([]catalog.Track, len(filtered))
		copy(missing, filtered)
		return missing, nil, fmt.Errorf("%w: %s", ErrRootNotFound, cat.Root)
	}

	filenames := cat.FilenameSet()
	idIndex := cat.IndexByID()

	// Stems present on disk, counting repairable files as their post-rename
	// canonical name.
	present := make(map[string]bool)
	var actions []FileAction

	err := filepath.WalkDir(cat.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), catalog.TrackFormat) {
			return nil
		}

		stem := strings.TrimSuffix(d.Name(), filepath.Ext(path))
		switch {
		case filenames[stem]:
			present[stem] = true
		case hasIndex(idIndex, stem):
			track := &cat.Tracks[idIndex[stem]]
			canonical := catalog.CanonicalName(track.Title)
			actions = append(actions, FileAction{
				Kind:   ActionRepair,
				Path:   path,
				Target: filepath.Join(filepath.Dir(path), canonical+catalog.TrackFormat),
				Track:  track,
			})
			present[canonical] = true
		default:
			actions = append(actions, FileAction{Kind: ActionOrphan, Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk root: %w", err)
	}

	var missing []catalog.Track
	for _, t := range filtered {
		if !present[catalog.CanonicalName(t.Title)] {
			r.reporter.Message(fmt.Sprintf("%s%s not found", catalog.CanonicalName(t.Title), catalog.TrackFormat))
			missing = append(missing, t)
		}
	}

	return missing, actions, nil
}

// Apply performs the proposed actions: repairs are renamed in place, orphans
// are removed only when the policy approves. Filesystem failures are
// reported and collected; the affected file keeps its classification for the
// next reconciliation pass.
func (r *Reconciler) Apply(actions []FileAction, remove RemoveDecision) []error {
	var errs []error
	for _, action := range actions {
		switch action.Kind {
		case ActionRepair:
			if err := os.Rename(action.Path, action.Target); err != nil {
				r.reporter.Message(fmt.Sprintf("failed to rename %s: %v", action.Path, err))
				errs = append(errs, err)
				continue
			}
			r.reporter.Message(fmt.Sprintf("renamed %s -> %s", filepath.Base(action.Path), filepath.Base(action.Target)))
		case ActionOrphan:
			if remove == nil || !remove(action.Path) {
				continue
			}
			if err := os.Remove(action.Path); err != nil {
				r.reporter.Message(fmt.Sprintf("failed to remove %s: %v", action.Path, err))
				errs = append(errs, err)
				continue
			}
			r.reporter.Message(fmt.Sprintf("removed %s", filepath.Base(action.Path)))
		}
	}
	return errs
}

func hasIndex(index map[string]int, key string) bool {
	_, ok := index[key]
	return ok
}
