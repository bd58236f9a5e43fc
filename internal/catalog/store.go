package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmm/internal/shared"
)

// Store owns the in-memory catalog and its persisted form on disk.
//
// Load repairs missing schema keys with defaults and marks the store dirty so
// the next save normalizes the file. Save is expected to run once at process
// end, and only when a mutation occurred.
type Store struct {
	path    string
	logger  *log.Logger
	dirty   bool
	Catalog *Catalog
}

// NewStore creates a store for the database file at path. The catalog is not
// loaded until Load is called.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Dirty reports whether the in-memory catalog diverges from the file.
func (s *Store) Dirty() bool { return s.dirty }

// MarkDirty flags the catalog as mutated so Close persists it.
func (s *Store) MarkDirty() { s.dirty = true }

// Load reads the database file into memory.
//
// A missing file yields an empty catalog with the dirty flag set. A file
// that exists but cannot be parsed fails with [shared.ErrCorruptDatabase].
// Missing top-level keys are defaulted (empty track list, "music" root,
// empty playlist map), each setting the dirty flag.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("database not found, creating new database", "path", s.path)
		s.Catalog = &Catalog{Root: DefaultRoot, Tracks: []Track{}, Playlists: map[string][]string{}}
		s.dirty = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCorruptDatabase, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCorruptDatabase, err)
	}

	cat := &Catalog{}

	if msg, ok := raw["data"]; ok {
		if err := json.Unmarshal(msg, &cat.Tracks); err != nil {
			return fmt.Errorf("%w: invalid track list: %v", shared.ErrCorruptDatabase, err)
		}
	} else {
		s.logger.Warn("'data' not found, creating empty track list")
		cat.Tracks = []Track{}
		s.dirty = true
	}

	if msg, ok := raw["root"]; ok {
		if err := json.Unmarshal(msg, &cat.Root); err != nil {
			return fmt.Errorf("%w: invalid root: %v", shared.ErrCorruptDatabase, err)
		}
	} else {
		s.logger.Warn("'root' not found, using default", "root", DefaultRoot)
		cat.Root = DefaultRoot
		s.dirty = true
	}

	if msg, ok := raw["playlists"]; ok {
		if err := json.Unmarshal(msg, &cat.Playlists); err != nil {
			return fmt.Errorf("%w: invalid playlists: %v", shared.ErrCorruptDatabase, err)
		}
	} else {
		s.logger.Warn("'playlists' not found, creating empty playlist map")
		cat.Playlists = map[string][]string{}
		s.dirty = true
	}

	s.Catalog = cat
	return nil
}

// Save writes the catalog back to the database file. Failures wrap
// [shared.ErrSaveFailed] and are reported by the caller, never fatal.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.Catalog, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSaveFailed, err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSaveFailed, err)
	}
	s.dirty = false
	return nil
}

// Close persists the catalog when it was mutated during the invocation.
func (s *Store) Close() error {
	if !s.dirty || s.Catalog == nil {
		return nil
	}
	s.logger.Info("saving changes", "path", s.path)
	return s.Save()
}
