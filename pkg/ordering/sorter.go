// Package ordering turns an unordered set of discovered records into a
// totally ordered timeline with stable positional metadata.
package ordering

import (
	"sort"

	"github.com/watchgraph/chronicle/pkg/types"
)

// mediaTypeRanks breaks exact premiere-date ties: series rank before
// films, which rank before short-form and special content.
var mediaTypeRanks = map[types.MediaType]int{
	types.MediaTypeSeries:    0,
	types.MediaTypeFilm:      1,
	types.MediaTypeShortForm: 2,
	types.MediaTypeSpecial:   3,
	types.MediaTypeUnknown:   4,
}

func mediaTypeRank(t types.MediaType) int {
	if r, ok := mediaTypeRanks[t]; ok {
		return r
	}
	return len(mediaTypeRanks)
}

// Sorter produces chronologically ordered timeline entries. It holds no
// state; the zero value is ready to use.
type Sorter struct{}

// NewSorter creates a Sorter.
func NewSorter() *Sorter {
	return &Sorter{}
}

// Sort orders records with a single stable sort over four keys:
//
//  1. dated records before undated ones;
//  2. premiere date ascending;
//  3. media-type rank on exact-date ties;
//  4. episode count descending, missing counts lowest.
//
// Ties beyond all four keys keep the original input order. Positions are
// assigned 1-based after ordering, and entries whose media type is
// series or film are classified as main timeline entries. Sorting is
// pure: the input slice is not modified, and re-sorting an already
// ordered sequence reproduces it.
func (s *Sorter) Sort(records []*types.Record, rootID string) []types.TimelineEntry {
	if len(records) == 0 {
		return []types.TimelineEntry{}
	}

	ordered := make([]*types.Record, len(records))
	copy(ordered, records)

	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})

	entries := make([]types.TimelineEntry, len(ordered))
	for i, rec := range ordered {
		entries[i] = types.TimelineEntry{
			Record:             rec,
			ChronologicalOrder: i + 1,
			IsMainEntry:        rec.IsMainType(),
		}
	}
	return entries
}

func less(a, b *types.Record) bool {
	aDated, bDated := a.HasPremiereDate(), b.HasPremiereDate()
	if aDated != bDated {
		return aDated
	}

	if aDated && bDated {
		if !a.PremiereDate.Equal(*b.PremiereDate) {
			return a.PremiereDate.Before(*b.PremiereDate)
		}
	}

	if ra, rb := mediaTypeRank(a.MediaType), mediaTypeRank(b.MediaType); ra != rb {
		return ra < rb
	}

	// More episodes sort earlier; a missing count reads as 0.
	return a.Episodes() > b.Episodes()
}
