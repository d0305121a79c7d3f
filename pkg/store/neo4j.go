package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/watchgraph/chronicle/pkg/types"
)

// Neo4jStore implements RelationshipStore and RecordWriter on top of a
// Neo4j database. Records are stored as (:Media) nodes keyed by id;
// relationships as [:RELATES_TO] edges carrying the relationship type.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a Neo4j-backed store.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{
		client:   driver,
		database: database,
	}, nil
}

// ResolveRecord implements RelationshipStore.
func (s *Neo4jStore) ResolveRecord(ctx context.Context, id string) (*types.Record, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (m:Media {id: $id})
			RETURN m
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}

		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		return records[0], nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNotFound
	}

	nodeValue, found := result.(*neo4j.Record).Get("m")
	if !found {
		return nil, ErrNotFound
	}
	node, ok := nodeValue.(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected type for media node: got %T", nodeValue)
	}
	return recordFromDBNode(node), nil
}

// OutgoingEdges implements RelationshipStore. Edges are ordered by
// creation time, then by target id, so repeated calls see a stable
// sequence.
func (s *Neo4jStore) OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Media {id: $id})-[e:RELATES_TO]->(b:Media)
			RETURN a.id AS source_id, b.id AS target_id,
			       e.relationship_type AS relationship_type,
			       e.created_at AS created_at
			ORDER BY e.created_at, b.id
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*neo4j.Record)
	edges := make([]types.RelationshipEdge, 0, len(records))
	for _, rec := range records {
		edge := types.RelationshipEdge{}
		if v, ok := rec.Get("source_id"); ok {
			edge.SourceID, _ = v.(string)
		}
		if v, ok := rec.Get("target_id"); ok {
			edge.TargetID, _ = v.(string)
		}
		if v, ok := rec.Get("relationship_type"); ok {
			if t, ok := v.(string); ok {
				edge.Type = types.RelationType(t)
			}
		}
		if v, ok := rec.Get("created_at"); ok {
			if t, ok := v.(time.Time); ok {
				edge.CreatedAt = t
			}
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// PutRecord implements RecordWriter.
func (s *Neo4jStore) PutRecord(ctx context.Context, rec *types.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	props := map[string]any{
		"id":             rec.ID,
		"title":          rec.Title,
		"title_english":  rec.TitleEnglish,
		"title_japanese": rec.TitleJapanese,
		"media_type":     string(rec.MediaType),
		"status":         rec.Status,
		"source":         rec.Source,
		"studio":         rec.Studio,
		"genres":         rec.Genres,
		"updated_at":     time.Now().UTC(),
	}
	if rec.PremiereDate != nil {
		props["premiere_date"] = *rec.PremiereDate
	}
	if rec.EpisodeCount != nil {
		props["episode_count"] = int64(*rec.EpisodeCount)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (m:Media {id: $id})
			ON CREATE SET m.created_at = datetime()
			SET m += $props
		`, map[string]any{"id": rec.ID, "props": props})
	})
	return err
}

// PutRelationship implements RecordWriter.
func (s *Neo4jStore) PutRelationship(ctx context.Context, edge types.RelationshipEdge) error {
	if edge.SourceID == "" || edge.TargetID == "" {
		return types.ErrEmptyID
	}
	createdAt := edge.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (a:Media {id: $source_id})
			MATCH (b:Media {id: $target_id})
			MERGE (a)-[e:RELATES_TO {relationship_type: $type}]->(b)
			ON CREATE SET e.created_at = $created_at
		`, map[string]any{
			"source_id":  edge.SourceID,
			"target_id":  edge.TargetID,
			"type":       string(edge.Type),
			"created_at": createdAt,
		})
	})
	return err
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// recordFromDBNode maps a Neo4j node's properties onto a Record.
func recordFromDBNode(node dbtype.Node) *types.Record {
	rec := &types.Record{MediaType: types.MediaTypeUnknown}

	if v, ok := node.Props["id"].(string); ok {
		rec.ID = v
	}
	if v, ok := node.Props["title"].(string); ok {
		rec.Title = v
	}
	if v, ok := node.Props["title_english"].(string); ok {
		rec.TitleEnglish = v
	}
	if v, ok := node.Props["title_japanese"].(string); ok {
		rec.TitleJapanese = v
	}
	if v, ok := node.Props["media_type"].(string); ok && v != "" {
		rec.MediaType = types.MediaType(v)
	}
	if v, ok := node.Props["premiere_date"].(time.Time); ok {
		rec.PremiereDate = &v
	}
	if v, ok := node.Props["episode_count"].(int64); ok {
		count := int(v)
		rec.EpisodeCount = &count
	}
	if v, ok := node.Props["status"].(string); ok {
		rec.Status = v
	}
	if v, ok := node.Props["source"].(string); ok {
		rec.Source = v
	}
	if v, ok := node.Props["studio"].(string); ok {
		rec.Studio = v
	}
	if v, ok := node.Props["genres"].([]any); ok {
		for _, g := range v {
			if s, ok := g.(string); ok {
				rec.Genres = append(rec.Genres, s)
			}
		}
	}
	if v, ok := node.Props["created_at"].(time.Time); ok {
		rec.CreatedAt = v
	}
	if v, ok := node.Props["updated_at"].(time.Time); ok {
		rec.UpdatedAt = v
	}
	return rec
}
