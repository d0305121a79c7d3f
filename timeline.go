package chronicle

import (
	"context"
	"time"

	"github.com/watchgraph/chronicle/pkg/types"
)

// GenerateTimeline discovers everything reachable from rootID, orders
// it chronologically, and assembles the result. A root that fails to
// resolve yields a timeline with zero entries, not an error. The
// operation performs no caching; pkg/cache layers a versioned cache on
// top of this call.
func (c *Client) GenerateTimeline(ctx context.Context, rootID string) (*types.Timeline, error) {
	records, err := c.FindAllRelated(ctx, rootID)
	if err != nil {
		return nil, err
	}

	entries := c.sorter.Sort(records, rootID)

	mainCount := 0
	for _, e := range entries {
		if e.IsMainEntry {
			mainCount++
		}
	}

	c.logger.Debug("timeline assembled",
		"root", rootID,
		"entries", len(entries),
		"main_entries", mainCount)

	return &types.Timeline{
		RootID:            rootID,
		Entries:           entries,
		TotalEntries:      len(entries),
		MainTimelineCount: mainCount,
		LastUpdated:       time.Now().UTC(),
	}, nil
}
