// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/watchgraph/chronicle/pkg/types"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// IngestRecordRequest is the body of POST /api/v1/records.
type IngestRecordRequest struct {
	ID            string     `json:"id" binding:"required"`
	Title         string     `json:"title" binding:"required"`
	TitleEnglish  string     `json:"titleEnglish,omitempty"`
	TitleJapanese string     `json:"titleJapanese,omitempty"`
	MediaType     string     `json:"mediaType,omitempty"`
	PremiereDate  *time.Time `json:"premiereDate,omitempty"`
	EpisodeCount  *int       `json:"episodeCount,omitempty"`
	Status        string     `json:"status,omitempty"`
	Source        string     `json:"source,omitempty"`
	Studio        string     `json:"studio,omitempty"`
	Genres        []string   `json:"genres,omitempty"`
}

// ToRecord converts the request into a domain record.
func (r *IngestRecordRequest) ToRecord() *types.Record {
	mediaType := types.MediaType(r.MediaType)
	if r.MediaType == "" {
		mediaType = types.MediaTypeUnknown
	}
	now := time.Now().UTC()
	return &types.Record{
		ID:            r.ID,
		Title:         r.Title,
		TitleEnglish:  r.TitleEnglish,
		TitleJapanese: r.TitleJapanese,
		MediaType:     mediaType,
		PremiereDate:  r.PremiereDate,
		EpisodeCount:  r.EpisodeCount,
		Status:        r.Status,
		Source:        r.Source,
		Studio:        r.Studio,
		Genres:        r.Genres,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IngestRelationRequest is the body of POST /api/v1/relations.
type IngestRelationRequest struct {
	SourceID string `json:"sourceId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
	Type     string `json:"relationshipType" binding:"required"`
}

// Validate performs structural validation beyond binding tags.
func (r *IngestRelationRequest) Validate() error {
	if strings.TrimSpace(r.SourceID) == "" {
		return errors.New("sourceId cannot be blank")
	}
	if strings.TrimSpace(r.TargetID) == "" {
		return errors.New("targetId cannot be blank")
	}
	if r.SourceID == r.TargetID {
		return errors.New("sourceId and targetId must differ")
	}
	if strings.TrimSpace(r.Type) == "" {
		return errors.New("relationshipType cannot be blank")
	}
	return nil
}

// ToEdge converts the request into a relationship edge.
func (r *IngestRelationRequest) ToEdge() types.RelationshipEdge {
	return types.RelationshipEdge{
		SourceID:  r.SourceID,
		TargetID:  r.TargetID,
		Type:      types.RelationType(r.Type),
		CreatedAt: time.Now().UTC(),
	}
}

// IngestResponse acknowledges a write.
type IngestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RelatedResponse is the body of GET /api/v1/related/:id.
type RelatedResponse struct {
	RootID  string          `json:"rootId"`
	Total   int             `json:"total"`
	Records []*types.Record `json:"records"`
}

// CyclesResponse is the body of GET /api/v1/cycles/:id.
type CyclesResponse struct {
	RootID string        `json:"rootId"`
	Total  int           `json:"total"`
	Cycles []types.Cycle `json:"cycles"`
}

// InvalidateResponse acknowledges a cache invalidation.
type InvalidateResponse struct {
	Success bool   `json:"success"`
	RootID  string `json:"rootId"`
}
