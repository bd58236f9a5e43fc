package fetch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/ytmm/internal/shared"
)

// DefaultBinary is the downloader executable looked up on PATH.
const DefaultBinary = "yt-dlp"

// YTDLP fetches tracks by shelling out to the yt-dlp binary, extracting
// audio to mp3 named by source id inside the catalog root.
type YTDLP struct {
	binary string
	root   string
}

// NewYTDLP creates a Fetcher invoking the given binary with downloads
// landing in root. An empty binary falls back to DefaultBinary.
func NewYTDLP(binary, root string) *YTDLP {
	if binary == "" {
		binary = DefaultBinary
	}
	return &YTDLP{binary: binary, root: root}
}

// ytdlpInfo is the subset of yt-dlp's info JSON this tool consumes.
type ytdlpInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Track       string   `json:"track"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ReleaseYear int      `json:"release_year"`
	Description string   `json:"description"`
}

// Progress lines look like:
//
//	[download]  42.7% of 3.52MiB at 1.21MiB/s ETA 00:01
var reDownloadLine = regexp.MustCompile(`\[download\]\s+([\d.]+)% of ~?\s*([\d.]+)(KiB|MiB|GiB)`)

// Fetch downloads one source id. Progress is parsed from yt-dlp's
// line-buffered output; the info JSON printed after the download becomes the
// track metadata. On failure the combined output is the error detail.
func (y *YTDLP) Fetch(ctx context.Context, sourceID string, progress ProgressFunc) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, y.binary,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "5",
		"--output", filepath.Join(y.root, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--newline",
		"--print-json",
		"--retries", "10",
		"--fragment-retries", "10",
		sourceURL(sourceID),
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	var infoLine string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "{") {
			infoLine = line
			continue
		}
		if progress == nil {
			continue
		}
		if match := reDownloadLine.FindStringSubmatch(line); match != nil {
			pct, _ := strconv.ParseFloat(match[1], 64)
			size, _ := strconv.ParseFloat(match[2], 64)
			total := int64(size * unitBytes(match[3]))
			progress(int64(pct/100*float64(total)), total)
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, strings.TrimSpace(stderr.String()))
	}
	if infoLine == "" {
		return nil, fmt.Errorf("%w: no metadata in downloader output", shared.ErrFetchFailed)
	}

	var info ytdlpInfo
	if err := json.Unmarshal([]byte(infoLine), &info); err != nil {
		return nil, fmt.Errorf("%w: invalid metadata: %v", shared.ErrFetchFailed, err)
	}

	meta := &Metadata{
		ID:          info.ID,
		Album:       info.Album,
		Year:        info.ReleaseYear,
		Description: info.Description,
	}
	if info.Track != "" {
		// Structured music metadata is present.
		meta.Title = info.Track
		meta.Artists = info.Artists
	} else {
		meta.RawTitle = info.Title
	}
	return meta, nil
}

// sourceURL accepts bare video ids as well as full URLs.
func sourceURL(sourceID string) string {
	if strings.Contains(sourceID, "://") {
		return sourceID
	}
	return "https://www.youtube.com/watch?v=" + sourceID
}

func unitBytes(unit string) float64 {
	switch unit {
	case "KiB":
		return 1 << 10
	case "MiB":
		return 1 << 20
	case "GiB":
		return 1 << 30
	default:
		return 1
	}
}
