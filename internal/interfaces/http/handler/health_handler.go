package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hapkiduki/apnacart/internal/application/dto"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version string
	started time.Time
	db      Pinger
}

// NewHealthHandler creates a HealthHandler. db may be nil, in which case
// readiness only reports the process itself.
func NewHealthHandler(version string, db Pinger) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now(), db: db}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  map[string]dto.HealthCheckResult{},
	})
}

// Ready handles GET /ready. It fails with 503 when the database is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{
		Status:  "ready",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  map[string]dto.HealthCheckResult{},
	}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		check := dto.HealthCheckResult{Status: "up"}
		if err := h.db.Ping(ctx); err != nil {
			check.Status = "down"
			check.Message = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
		check.ResponseTimeMs = time.Since(start).Milliseconds()
		resp.Checks["database"] = check
	}

	respond(w, r, status, resp)
}
