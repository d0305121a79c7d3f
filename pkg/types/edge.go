package types

import "time"

// RelationType tags a directed relationship edge between two records.
type RelationType string

const (
	RelationPrequel            RelationType = "prequel"
	RelationSequel             RelationType = "sequel"
	RelationParentStory        RelationType = "parent_story"
	RelationSideStory          RelationType = "side_story"
	RelationAlternativeVersion RelationType = "alternative_version"
	RelationAlternativeSetting RelationType = "alternative_setting"
	RelationSpinOff            RelationType = "spin_off"
	RelationSummary            RelationType = "summary"
	RelationFullStory          RelationType = "full_story"
	RelationCharacter          RelationType = "character"
	RelationOther              RelationType = "other"
)

// UnrecognizedRelationPriority is assigned to relationship types outside
// the fixed table. Strictly greater than every recognized priority, so
// unknown tags are never treated as most primary.
const UnrecognizedRelationPriority = 99

// relationPriorities is the fixed ordering table; lower value means more
// primary. Read-only.
var relationPriorities = map[RelationType]int{
	RelationPrequel:            1,
	RelationSequel:             2,
	RelationParentStory:        3,
	RelationSideStory:          4,
	RelationAlternativeVersion: 5,
	RelationAlternativeSetting: 6,
	RelationSpinOff:            7,
	RelationSummary:            8,
	RelationFullStory:          9,
	RelationCharacter:          10,
	RelationOther:              11,
}

// PriorityOf returns the ordering priority for a relationship type.
// Unrecognized types receive UnrecognizedRelationPriority.
func PriorityOf(t RelationType) int {
	if p, ok := relationPriorities[t]; ok {
		return p
	}
	return UnrecognizedRelationPriority
}

// RelationshipEdge is a directed, typed link between two records. The
// store is expected to hold each semantic relationship as two
// independently stored directed rows (a sequel edge A->B paired with a
// prequel edge B->A), so the engine only ever follows outgoing edges.
type RelationshipEdge struct {
	SourceID  string       `json:"sourceId"`
	TargetID  string       `json:"targetId"`
	Type      RelationType `json:"relationshipType"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FilterEdgesByType returns, in original order, exactly the edges whose
// type is a member of allowed. No match yields an empty slice.
func FilterEdgesByType(edges []RelationshipEdge, allowed []RelationType) []RelationshipEdge {
	allowedSet := make(map[RelationType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	filtered := make([]RelationshipEdge, 0, len(edges))
	for _, e := range edges {
		if _, ok := allowedSet[e.Type]; ok {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
