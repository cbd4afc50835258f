package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// BackendPinger reports whether the study/club backend answers.
// *backend.Client satisfies it.
type BackendPinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Backend BackendPinger
	Log     *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(client *mongo.Client, api BackendPinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Backend: api,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"reachable" }
//
// When either dependency fails: 503 with "status":"error" and the failing
// side marked.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  "reachable",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
	}

	if h.Backend != nil {
		if err := h.Backend.Ping(ctx); err != nil {
			h.Log.Error("health-check: backend ping failed", zap.Error(err))
			resp.Backend = "unreachable"
			if resp.Status == "ok" {
				resp.Status = "error"
				resp.Message = "Backend unavailable"
				resp.Error = err.Error()
			}
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
