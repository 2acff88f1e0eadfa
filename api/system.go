package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	db Pinger
}

func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
}

// HealthHandler answers 503 when the database does not respond to a ping.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Status: "ok", Service: "jobboard"}
	if h.db == nil {
		writeJSON(w, res, http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.Warn("health check failed", slog.Any("err", err))
		res.Status = "unavailable"
		res.Database = "unreachable"
		writeJSON(w, res, http.StatusServiceUnavailable)
		return
	}
	res.Database = "ok"
	writeJSON(w, res, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}
