package fetch

import "testing"

func TestSourceURL(t *testing.T) {
	tests := []struct {
		name     string
		sourceID string
		want     string
	}{
		{
			name:     "bare id",
			sourceID: "dQw4w9WgXcQ",
			want:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:     "full URL passes through",
			sourceID: "https://youtu.be/dQw4w9WgXcQ",
			want:     "https://youtu.be/dQw4w9WgXcQ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceURL(tt.sourceID); got != tt.want {
				t.Errorf("sourceURL(%q) = %q, want %q", tt.sourceID, got, tt.want)
			}
		})
	}
}

func TestDownloadLineParsing(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantMatch bool
		wantPct   string
		wantSize  string
		wantUnit  string
	}{
		{
			name:      "typical progress line",
			line:      "[download]  42.7% of 3.52MiB at 1.21MiB/s ETA 00:01",
			wantMatch: true,
			wantPct:   "42.7",
			wantSize:  "3.52",
			wantUnit:  "MiB",
		},
		{
			name:      "estimated total",
			line:      "[download]   5.0% of ~ 120.00KiB at 10.00KiB/s",
			wantMatch: true,
			wantPct:   "5.0",
			wantSize:  "120.00",
			wantUnit:  "KiB",
		},
		{
			name: "destination line ignored",
			line: "[download] Destination: music/dQw4w9WgXcQ.webm",
		},
		{
			name: "extraction line ignored",
			line: "[ExtractAudio] Destination: music/dQw4w9WgXcQ.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := reDownloadLine.FindStringSubmatch(tt.line)
			if !tt.wantMatch {
				if match != nil {
					t.Errorf("line matched unexpectedly: %v", match)
				}
				return
			}
			if match == nil {
				t.Fatal("line did not match")
			}
			if match[1] != tt.wantPct || match[2] != tt.wantSize || match[3] != tt.wantUnit {
				t.Errorf("parsed (%s, %s, %s), want (%s, %s, %s)",
					match[1], match[2], match[3], tt.wantPct, tt.wantSize, tt.wantUnit)
			}
		})
	}
}

func TestUnitBytes(t *testing.T) {
	tests := []struct {
		unit string
		want float64
	}{
		{"KiB", 1024},
		{"MiB", 1048576},
		{"GiB", 1073741824},
		{"B", 1},
	}
	for _, tt := range tests {
		if got := unitBytes(tt.unit); got != tt.want {
			t.Errorf("unitBytes(%q) = %v, want %v", tt.unit, got, tt.want)
		}
	}
}
