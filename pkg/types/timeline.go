package types

import "time"

// Cycle is an ordered chain of record identifiers that loop back onto
// themselves through relationship edges.
type Cycle []string

// TraversalResult captures everything a graph walk discovered from one
// root identifier.
type TraversalResult struct {
	RootID string `json:"rootId"`
	// Nodes maps identifier to record, one entry per successfully
	// resolved node. Missing records are excluded silently.
	Nodes map[string]*Record `json:"nodes"`
	// VisitedOrder is the BFS discovery order, no duplicates.
	VisitedOrder []string `json:"visitedOrder"`
	// Adjacency records the target lists actually walked per node.
	Adjacency map[string][]string `json:"adjacency"`
	// Cycles detected during the walk, deduplicated by identifier set.
	Cycles []Cycle `json:"cyclesDetected"`
}

// TimelineEntry wraps a record with its assigned position.
type TimelineEntry struct {
	Record *Record `json:"record"`
	// ChronologicalOrder is 1-based and contiguous within one timeline.
	ChronologicalOrder int `json:"chronologicalOrder"`
	// IsMainEntry is true for series and film records.
	IsMainEntry bool `json:"isMainEntry"`
}

// Timeline is the assembled, chronologically ordered view of every
// record reachable from a root. The JSON field names are a
// compatibility contract with the external versioned cache; do not
// rename them.
type Timeline struct {
	RootID            string          `json:"rootId"`
	Entries           []TimelineEntry `json:"entries"`
	TotalEntries      int             `json:"totalEntries"`
	MainTimelineCount int             `json:"mainTimelineCount"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}
