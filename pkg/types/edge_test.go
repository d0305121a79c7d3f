package types

import (
	"testing"
	"time"
)

func TestPriorityOfOrdering(t *testing.T) {
	t.Parallel()

	if !(PriorityOf(RelationPrequel) < PriorityOf(RelationSequel)) {
		t.Error("prequel must rank before sequel")
	}
	if !(PriorityOf(RelationSequel) < PriorityOf(RelationParentStory)) {
		t.Error("sequel must rank before parent_story")
	}
	if !(PriorityOf(RelationParentStory) < PriorityOf(RelationSideStory)) {
		t.Error("parent_story must rank before side_story")
	}
	if !(PriorityOf(RelationSideStory) < PriorityOf(RelationAlternativeVersion)) {
		t.Error("side_story must rank before alternative_version")
	}
}

func TestPriorityOfUnrecognized(t *testing.T) {
	t.Parallel()

	p := PriorityOf(RelationType("some_unrecognized_tag"))
	if p <= 0 {
		t.Fatalf("unrecognized priority must be positive, got %d", p)
	}

	recognized := []RelationType{
		RelationPrequel, RelationSequel, RelationParentStory,
		RelationSideStory, RelationAlternativeVersion,
		RelationAlternativeSetting, RelationSpinOff, RelationSummary,
		RelationFullStory, RelationCharacter, RelationOther,
	}
	for _, rt := range recognized {
		if PriorityOf(rt) >= p {
			t.Errorf("recognized type %q priority %d must be below fallback %d", rt, PriorityOf(rt), p)
		}
	}
}

func TestFilterEdgesByType(t *testing.T) {
	t.Parallel()

	now := time.Now()
	edges := []RelationshipEdge{
		{SourceID: "a", TargetID: "b", Type: RelationSequel, CreatedAt: now},
		{SourceID: "a", TargetID: "c", Type: RelationSideStory, CreatedAt: now},
		{SourceID: "a", TargetID: "d", Type: RelationPrequel, CreatedAt: now},
		{SourceID: "a", TargetID: "e", Type: RelationSequel, CreatedAt: now},
	}

	t.Run("preserves original order", func(t *testing.T) {
		got := FilterEdgesByType(edges, []RelationType{RelationSequel, RelationPrequel})
		if len(got) != 3 {
			t.Fatalf("expected 3 edges, got %d", len(got))
		}
		wantTargets := []string{"b", "d", "e"}
		for i, e := range got {
			if e.TargetID != wantTargets[i] {
				t.Errorf("edge %d: expected target %q, got %q", i, wantTargets[i], e.TargetID)
			}
		}
	})

	t.Run("no match yields empty", func(t *testing.T) {
		got := FilterEdgesByType(edges, []RelationType{RelationSummary})
		if len(got) != 0 {
			t.Fatalf("expected empty result, got %d edges", len(got))
		}
	})

	t.Run("empty allowed set", func(t *testing.T) {
		got := FilterEdgesByType(edges, nil)
		if len(got) != 0 {
			t.Fatalf("expected empty result, got %d edges", len(got))
		}
	})
}
