package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchgraph/chronicle"
	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// directTimelines generates on every call, no caching.
type directTimelines struct {
	client *chronicle.Client
}

func (d directTimelines) Timeline(ctx context.Context, rootID string) (*types.Timeline, error) {
	return d.client.GenerateTimeline(ctx, rootID)
}

func (d directTimelines) Invalidate(string) error { return nil }

func date(year int) *time.Time {
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	records := []*types.Record{
		{ID: "origin", Title: "Origin", MediaType: types.MediaTypeSeries, PremiereDate: date(2001)},
		{ID: "followup", Title: "Followup", MediaType: types.MediaTypeSeries, PremiereDate: date(2004)},
		{ID: "recap", Title: "Recap", MediaType: types.MediaTypeSpecial, PremiereDate: date(2005)},
	}
	for _, rec := range records {
		require.NoError(t, s.PutRecord(ctx, rec))
	}

	edges := []types.RelationshipEdge{
		{SourceID: "origin", TargetID: "followup", Type: types.RelationSequel},
		{SourceID: "followup", TargetID: "origin", Type: types.RelationPrequel},
		{SourceID: "followup", TargetID: "recap", Type: types.RelationSummary},
	}
	for _, e := range edges {
		require.NoError(t, s.PutRelationship(ctx, e))
	}
	return s
}

func newTestRouter(t *testing.T, s *store.MemoryStore, writable bool) *gin.Engine {
	t.Helper()
	client, err := chronicle.NewClient(s, nil, nil)
	require.NoError(t, err)

	var writer store.RecordWriter
	if writable {
		writer = s
	}
	h := NewTimelineHandler(client, client, directTimelines{client: client}, writer)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/timeline/:id", h.GetTimeline)
	v1.DELETE("/timeline/:id", h.InvalidateTimeline)
	v1.GET("/related/:id", h.GetRelated)
	v1.GET("/cycles/:id", h.GetCycles)
	v1.POST("/records", h.AddRecord)
	v1.POST("/relations", h.AddRelation)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetTimeline(t *testing.T) {
	r := newTestRouter(t, seedStore(t), false)

	w := doRequest(r, http.MethodGet, "/api/v1/timeline/followup", "")
	require.Equal(t, http.StatusOK, w.Code)

	var timeline types.Timeline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &timeline))

	assert.Equal(t, "followup", timeline.RootID)
	assert.Equal(t, 3, timeline.TotalEntries)
	require.Len(t, timeline.Entries, 3)
	assert.Equal(t, "origin", timeline.Entries[0].Record.ID)
	assert.Equal(t, 1, timeline.Entries[0].ChronologicalOrder)
	assert.Equal(t, "recap", timeline.Entries[2].Record.ID)
}

func TestGetTimelineUnknownRoot(t *testing.T) {
	r := newTestRouter(t, seedStore(t), false)

	w := doRequest(r, http.MethodGet, "/api/v1/timeline/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "record_not_found", resp["error"])
}

func TestGetRelated(t *testing.T) {
	r := newTestRouter(t, seedStore(t), false)

	w := doRequest(r, http.MethodGet, "/api/v1/related/origin", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RootID  string          `json:"rootId"`
		Total   int             `json:"total"`
		Records []*types.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "origin", resp.RootID)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, "origin", resp.Records[0].ID)
}

func TestGetCycles(t *testing.T) {
	r := newTestRouter(t, seedStore(t), false)

	w := doRequest(r, http.MethodGet, "/api/v1/cycles/origin", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RootID string        `json:"rootId"`
		Total  int           `json:"total"`
		Cycles []types.Cycle `json:"cycles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// origin <-> followup is a two-node loop.
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Cycles, 1)
}

func TestAddRecord(t *testing.T) {
	s := seedStore(t)
	r := newTestRouter(t, s, true)

	body := `{"id":"side","title":"Side Story","mediaType":"short_form","episodeCount":4}`
	w := doRequest(r, http.MethodPost, "/api/v1/records", body)
	require.Equal(t, http.StatusCreated, w.Code)

	rec, err := s.ResolveRecord(context.Background(), "side")
	require.NoError(t, err)
	assert.Equal(t, "Side Story", rec.Title)
	assert.Equal(t, types.MediaTypeShortForm, rec.MediaType)
	assert.Equal(t, 4, rec.Episodes())
}

func TestAddRecordMissingTitle(t *testing.T) {
	r := newTestRouter(t, seedStore(t), true)

	w := doRequest(r, http.MethodPost, "/api/v1/records", `{"id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddRelation(t *testing.T) {
	s := seedStore(t)
	r := newTestRouter(t, s, true)

	body := `{"sourceId":"origin","targetId":"recap","relationshipType":"side_story"}`
	w := doRequest(r, http.MethodPost, "/api/v1/relations", body)
	require.Equal(t, http.StatusCreated, w.Code)

	edges, err := s.OutgoingEdges(context.Background(), "origin")
	require.NoError(t, err)
	require.Len(t, edges, 2)
}

func TestAddRelationSelfLoopRejected(t *testing.T) {
	r := newTestRouter(t, seedStore(t), true)

	body := `{"sourceId":"origin","targetId":"origin","relationshipType":"sequel"}`
	w := doRequest(r, http.MethodPost, "/api/v1/relations", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestDisabledForReadOnlyStore(t *testing.T) {
	r := newTestRouter(t, seedStore(t), false)

	w := doRequest(r, http.MethodPost, "/api/v1/records", `{"id":"x","title":"X"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/relations", `{"sourceId":"a","targetId":"b","relationshipType":"sequel"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestInvalidateTimeline(t *testing.T) {
	r := newTestRouter(t, seedStore(t), false)

	w := doRequest(r, http.MethodDelete, "/api/v1/timeline/origin", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		RootID  string `json:"rootId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "origin", resp.RootID)
}
