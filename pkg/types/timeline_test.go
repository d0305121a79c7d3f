package types

import (
	"encoding/json"
	"testing"
	"time"
)

// The external cache persists and rehydrates timelines by these exact
// field names. Renaming any of them breaks rehydration of existing
// cache rows.
func TestTimelineFieldContract(t *testing.T) {
	t.Parallel()

	eps := 12
	premiere := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tl := Timeline{
		RootID: "root-1",
		Entries: []TimelineEntry{
			{
				Record: &Record{
					ID:           "root-1",
					Title:        "Root",
					MediaType:    MediaTypeSeries,
					PremiereDate: &premiere,
					EpisodeCount: &eps,
				},
				ChronologicalOrder: 1,
				IsMainEntry:        true,
			},
		},
		TotalEntries:      1,
		MainTimelineCount: 1,
		LastUpdated:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(tl)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, name := range []string{"rootId", "entries", "totalEntries", "mainTimelineCount", "lastUpdated"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("serialized timeline missing contract field %q", name)
		}
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(fields["entries"], &entries); err != nil {
		t.Fatalf("unmarshal entries: %v", err)
	}
	for _, name := range []string{"record", "chronologicalOrder", "isMainEntry"} {
		if _, ok := entries[0][name]; !ok {
			t.Errorf("serialized entry missing field %q", name)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	t.Parallel()

	r := &Record{}
	if err := r.Validate(); err != ErrEmptyID {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	r.ID = "a"
	if err := r.Validate(); err != ErrEmptyTitle {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	r.Title = "A"
	if err := r.Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestRecordHelpers(t *testing.T) {
	t.Parallel()

	r := &Record{ID: "a", Title: "A", MediaType: MediaTypeSpecial}
	if r.IsMainType() {
		t.Error("special must not be a main type")
	}
	if r.HasPremiereDate() {
		t.Error("record without date must report no premiere date")
	}
	if r.Episodes() != 0 {
		t.Error("missing episode count must read as 0")
	}

	r.MediaType = MediaTypeFilm
	if !r.IsMainType() {
		t.Error("film must be a main type")
	}

	zero := time.Time{}
	r.PremiereDate = &zero
	if r.HasPremiereDate() {
		t.Error("zero premiere date must count as undated")
	}
}
