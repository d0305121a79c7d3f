package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyID    = errors.New("id cannot be empty")
	ErrEmptyTitle = errors.New("title cannot be empty")
)

// MediaType classifies a record within the small fixed enumeration the
// sorter and the main-timeline classifier understand.
type MediaType string

const (
	// MediaTypeSeries is a multi-episode broadcast run.
	MediaTypeSeries MediaType = "series"
	// MediaTypeFilm is a theatrical or standalone feature.
	MediaTypeFilm MediaType = "film"
	// MediaTypeShortForm covers shorts, ONAs and similar brief formats.
	MediaTypeShortForm MediaType = "short_form"
	// MediaTypeSpecial covers OVAs, recap specials and extras.
	MediaTypeSpecial MediaType = "special"
	// MediaTypeUnknown is the fallback when the source gives no type.
	MediaTypeUnknown MediaType = "unknown"
)

// Record is a media item's descriptive data as supplied by the
// relationship store. Immutable from the engine's perspective.
type Record struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	TitleEnglish  string     `json:"titleEnglish,omitempty"`
	TitleJapanese string     `json:"titleJapanese,omitempty"`
	MediaType     MediaType  `json:"mediaType"`
	PremiereDate  *time.Time `json:"premiereDate,omitempty"`
	EpisodeCount  *int       `json:"episodeCount,omitempty"`
	Status        string     `json:"status,omitempty"`
	Source        string     `json:"source,omitempty"`
	Studio        string     `json:"studio,omitempty"`
	Genres        []string   `json:"genres,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt,omitempty"`
}

// Validate checks if the Record has all required fields set.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}

// IsMainType reports whether the record's media type counts toward the
// main timeline (series and films, as opposed to ancillary content).
func (r *Record) IsMainType() bool {
	return r.MediaType == MediaTypeSeries || r.MediaType == MediaTypeFilm
}

// HasPremiereDate reports whether the record carries a premiere date.
func (r *Record) HasPremiereDate() bool {
	return r.PremiereDate != nil && !r.PremiereDate.IsZero()
}

// Episodes returns the episode count, or 0 when the source omitted it.
func (r *Record) Episodes() int {
	if r.EpisodeCount == nil {
		return 0
	}
	return *r.EpisodeCount
}
