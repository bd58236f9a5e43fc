package catalog

import (
	"reflect"
	"testing"
)

func TestFilterMatches(t *testing.T) {
	tracks := []Track{
		{ID: "a1", Title: "Blue Monday", Artists: []string{"New Order"}},
		{ID: "b2", Title: "Blue Train", Artists: []string{"John Coltrane"}},
		{ID: "c3", Title: "Giant Steps", Artists: []string{"John Coltrane"}},
	}

	tests := []struct {
		name    string
		title   string
		artist  string
		wantIDs []string
	}{
		{
			name:    "empty filter keeps everything",
			wantIDs: []string{"a1", "b2", "c3"},
		},
		{
			name:    "title pattern",
			title:   "Blue",
			wantIDs: []string{"a1", "b2"},
		},
		{
			name:    "artist pattern",
			artist:  "Coltrane",
			wantIDs: []string{"b2", "c3"},
		},
		{
			name:    "either side matching keeps the track",
			title:   "Monday",
			artist:  "Coltrane",
			wantIDs: []string{"a1", "b2", "c3"},
		},
		{
			name:    "case insensitive prefix",
			title:   "(?i)blue",
			wantIDs: []string{"a1", "b2"},
		},
		{
			name:    "no matches",
			title:   "Nothing",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewFilter(tt.title, tt.artist)
			if err != nil {
				t.Fatalf("NewFilter() error = %v", err)
			}

			var gotIDs []string
			for _, track := range filter.Apply(tracks) {
				gotIDs = append(gotIDs, track.ID)
			}
			if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Errorf("Apply() = %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}
}

func TestFilterInvalidPattern(t *testing.T) {
	if _, err := NewFilter("[", ""); err == nil {
		t.Error("NewFilter() with invalid title pattern should fail")
	}
	if _, err := NewFilter("", "("); err == nil {
		t.Error("NewFilter() with invalid artist pattern should fail")
	}
}

func TestFilterEmptyIsIdentity(t *testing.T) {
	tracks := []Track{{ID: "a1"}, {ID: "b2"}}
	filter, err := NewFilter("", "")
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	if !filter.Empty() {
		t.Error("filter with no patterns should be empty")
	}
	got := filter.Apply(tracks)
	if len(got) != len(tracks) {
		t.Fatalf("Apply() dropped tracks: %v", got)
	}
	var nilFilter *Filter
	if !nilFilter.Empty() {
		t.Error("nil filter should be empty")
	}
	if got := nilFilter.Apply(tracks); len(got) != len(tracks) {
		t.Errorf("nil filter Apply() = %v, want identity", got)
	}
}
