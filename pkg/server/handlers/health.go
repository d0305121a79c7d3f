package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/watchgraph/chronicle"
	"github.com/watchgraph/chronicle/pkg/store"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	querier chronicle.RelationQuerier
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(q chronicle.RelationQuerier) *HealthHandler {
	return &HealthHandler{querier: q}
}

// HealthCheck handles GET /health - basic liveness check.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "chronicle",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":    "ready",
		"service":   "chronicle",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.querier != nil {
		// A lookup of a non-existent identifier exercises store
		// connectivity without side effects. ErrNotFound is the
		// expected healthy outcome.
		startTime := time.Now()
		_, err := h.querier.GetRecord(ctx, "health-check-non-existent-id")
		duration := time.Since(startTime)

		switch {
		case err == nil, errors.Is(err, store.ErrNotFound):
			checks["store"] = gin.H{
				"status":   "healthy",
				"duration": duration.String(),
			}
		case ctx.Err() != nil:
			checks["store"] = gin.H{
				"status":   "unhealthy",
				"error":    "store connection timeout",
				"duration": duration.String(),
			}
			allHealthy = false
		default:
			checks["store"] = gin.H{
				"status":   "unhealthy",
				"error":    err.Error(),
				"duration": duration.String(),
			}
			allHealthy = false
		}
	} else {
		checks["store"] = gin.H{
			"status": "unhealthy",
			"error":  "chronicle client not initialized",
		}
		allHealthy = false
	}

	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "chronicle",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive
// health information including runtime metrics.
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	startTime := time.Now()
	response := gin.H{
		"status":  "healthy",
		"service": "chronicle",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"checks":  gin.H{},
		"metrics": gin.H{},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.querier != nil {
		lookupStart := time.Now()
		_, err := h.querier.GetRecord(ctx, "health-check-detailed")
		lookupDuration := time.Since(lookupStart)

		lookupStatus := gin.H{
			"status":      "healthy",
			"duration_ms": lookupDuration.Milliseconds(),
			"operation":   "GetRecord",
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			lookupStatus["status"] = "unhealthy"
			lookupStatus["error"] = err.Error()
			allHealthy = false
		}
		checks["store_lookup"] = lookupStatus

		edgesStart := time.Now()
		_, err = h.querier.OutgoingEdges(ctx, "health-check-detailed")
		edgesDuration := time.Since(edgesStart)

		edgesStatus := gin.H{
			"status":      "healthy",
			"duration_ms": edgesDuration.Milliseconds(),
			"operation":   "OutgoingEdges",
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			edgesStatus["status"] = "unhealthy"
			edgesStatus["error"] = err.Error()
			allHealthy = false
		}
		checks["store_edges"] = edgesStatus
	} else {
		checks["chronicle_client"] = gin.H{
			"status": "unhealthy",
			"error":  "client not initialized",
		}
		allHealthy = false
	}

	systemMetrics := h.getSystemMetrics()
	checks["system"] = gin.H{
		"status":       "healthy",
		"memory_usage": systemMetrics.MemoryUsage,
		"goroutines":   systemMetrics.Goroutines,
		"gc_cycles":    systemMetrics.GCCycles,
		"heap_objects": systemMetrics.HeapObjects,
	}

	response["metrics"].(gin.H)["response_time_ms"] = time.Since(startTime).Milliseconds()

	if !allHealthy {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SystemMetrics holds system runtime metrics.
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
}

// getSystemMetrics collects current system runtime metrics.
func (h *HealthHandler) getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
	}
}
