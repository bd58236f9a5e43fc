// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/ytmm/internal/fetch"
)

// FakeFetcher is a test double for [fetch.Fetcher]. Metadata maps source ids
// to results; ids without an entry fail with Err. When Root is set a stand-in
// audio file is dropped there, mimicking the real downloader's on-disk
// contract.
type FakeFetcher struct {
	Root     string
	Metadata map[string]*fetch.Metadata
	Err      error
}

func (f *FakeFetcher) Fetch(ctx context.Context, sourceID string, progress fetch.ProgressFunc) (*fetch.Metadata, error) {
	meta, ok := f.Metadata[sourceID]
	if !ok {
		err := f.Err
		if err == nil {
			err = errors.New("no metadata for " + sourceID)
		}
		return nil, err
	}
	if progress != nil {
		progress(50, 100)
		progress(100, 100)
	}
	if f.Root != "" {
		name := meta.ID
		if name == "" {
			name = sourceID
		}
		if err := os.WriteFile(filepath.Join(f.Root, name+".mp3"), []byte("audio"), 0644); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
