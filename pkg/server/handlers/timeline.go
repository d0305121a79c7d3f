package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/watchgraph/chronicle"
	"github.com/watchgraph/chronicle/pkg/server/dto"
	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/traversal"
	"github.com/watchgraph/chronicle/pkg/types"
)

// TimelineService is the timeline capability the handlers consume. The
// cached service and the direct generator both satisfy it.
type TimelineService interface {
	Timeline(ctx context.Context, rootID string) (*types.Timeline, error)
	Invalidate(rootID string) error
}

// TimelineHandler handles timeline, traversal, and ingest requests.
type TimelineHandler struct {
	traverser chronicle.Traverser
	querier   chronicle.RelationQuerier
	timelines TimelineService
	writer    store.RecordWriter
}

// NewTimelineHandler creates a new timeline handler. writer may be nil
// when the configured store is read-only.
func NewTimelineHandler(traverser chronicle.Traverser, querier chronicle.RelationQuerier, timelines TimelineService, writer store.RecordWriter) *TimelineHandler {
	return &TimelineHandler{
		traverser: traverser,
		querier:   querier,
		timelines: timelines,
		writer:    writer,
	}
}

// GetTimeline handles GET /api/v1/timeline/:id.
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "record id is required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.querier.GetRecord(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "record_not_found", Message: "no record with id " + id})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "store_failure", Message: err.Error()})
		return
	}

	timeline, err := h.timelines.Timeline(ctx, id)
	if err != nil {
		status, code := classify(err)
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, timeline)
}

// InvalidateTimeline handles DELETE /api/v1/timeline/:id.
func (h *TimelineHandler) InvalidateTimeline(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "record id is required"})
		return
	}

	if err := h.timelines.Invalidate(id); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "invalidation_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.InvalidateResponse{Success: true, RootID: id})
}

// GetRelated handles GET /api/v1/related/:id.
func (h *TimelineHandler) GetRelated(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "record id is required"})
		return
	}

	records, err := h.traverser.FindAllRelated(c.Request.Context(), id)
	if err != nil {
		status, code := classify(err)
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	if records == nil {
		records = []*types.Record{}
	}
	c.JSON(http.StatusOK, dto.RelatedResponse{
		RootID:  id,
		Total:   len(records),
		Records: records,
	})
}

// GetCycles handles GET /api/v1/cycles/:id.
func (h *TimelineHandler) GetCycles(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "record id is required"})
		return
	}

	result, err := h.traverser.PerformGraphTraversal(c.Request.Context(), id)
	if err != nil {
		status, code := classify(err)
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	cycles := h.traverser.DetectCycles(result)
	if cycles == nil {
		cycles = []types.Cycle{}
	}
	c.JSON(http.StatusOK, dto.CyclesResponse{
		RootID: id,
		Total:  len(cycles),
		Cycles: cycles,
	})
}

// AddRecord handles POST /api/v1/records.
func (h *TimelineHandler) AddRecord(c *gin.Context) {
	if h.writer == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "ingest_unsupported", Message: "the configured store is read-only"})
		return
	}

	var req dto.IngestRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	rec := req.ToRecord()
	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_record", Message: err.Error()})
		return
	}

	if err := h.writer.PutRecord(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "write_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success: true,
		Message: "record " + rec.ID + " stored",
	})
}

// AddRelation handles POST /api/v1/relations.
func (h *TimelineHandler) AddRelation(c *gin.Context) {
	if h.writer == nil {
		c.JSON(http.StatusNotImplemented, dto.ErrorResponse{Error: "ingest_unsupported", Message: "the configured store is read-only"})
		return
	}

	var req dto.IngestRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_relation", Message: err.Error()})
		return
	}

	if err := h.writer.PutRelationship(c.Request.Context(), req.ToEdge()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "write_failed", Message: err.Error()})
		return
	}

	// A new edge can change any timeline that reaches either endpoint.
	// Invalidating the endpoints covers the common case; TTL expiry
	// covers the rest.
	_ = h.timelines.Invalidate(req.SourceID)
	_ = h.timelines.Invalidate(req.TargetID)

	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success: true,
		Message: req.SourceID + " -> " + req.TargetID + " stored",
	})
}

// classify maps engine errors onto HTTP statuses.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "record_not_found"
	case errors.Is(err, traversal.ErrGraphTooLarge):
		return http.StatusUnprocessableEntity, "graph_too_large"
	default:
		return http.StatusInternalServerError, "traversal_failed"
	}
}
