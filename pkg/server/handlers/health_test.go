package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchgraph/chronicle"
	"github.com/watchgraph/chronicle/pkg/store"
)

func newHealthRouter(t *testing.T, withClient bool) *gin.Engine {
	t.Helper()

	var h *HealthHandler
	if withClient {
		client, err := chronicle.NewClient(store.NewMemoryStore(), nil, nil)
		require.NoError(t, err)
		h = NewHealthHandler(client)
	} else {
		h = NewHealthHandler(nil)
	}

	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
	r.GET("/health/detailed", h.DetailedHealthCheck)
	return r
}

func TestHealthCheck(t *testing.T) {
	r := newHealthRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "chronicle", response["service"])
	assert.Contains(t, response, "timestamp")
	assert.Contains(t, response, "version")
}

func TestLivenessCheck(t *testing.T) {
	r := newHealthRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "alive", response["status"])
}

func TestReadinessCheck(t *testing.T) {
	r := newHealthRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ready", response["status"])

	checks, ok := response["checks"].(map[string]interface{})
	require.True(t, ok)
	storeCheck, ok := checks["store"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", storeCheck["status"])
}

func TestReadinessCheckWithNilClient(t *testing.T) {
	r := newHealthRouter(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_ready", response["status"])

	checks, ok := response["checks"].(map[string]interface{})
	require.True(t, ok)
	storeCheck, ok := checks["store"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "unhealthy", storeCheck["status"])
}

func TestDetailedHealthCheck(t *testing.T) {
	r := newHealthRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "healthy", response["status"])
	assert.Contains(t, response, "build_info")

	metrics, ok := response["metrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, metrics, "response_time_ms")

	checks, ok := response["checks"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, checks, "store_lookup")
	assert.Contains(t, checks, "store_edges")
	assert.Contains(t, checks, "system")
}

func TestGetSystemMetrics(t *testing.T) {
	h := NewHealthHandler(nil)

	metrics := h.getSystemMetrics()

	assert.NotEmpty(t, metrics.MemoryUsage)
	assert.GreaterOrEqual(t, metrics.Goroutines, 1)
}
