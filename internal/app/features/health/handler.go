package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/signup/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// StaticData reports whether the reference-data cache has been preloaded.
type StaticData interface {
	Loaded() bool
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client     *mongo.Client
	StaticData StaticData
	Log        *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the static
// data cache and logger.
func NewHandler(client *mongo.Client, cache StaticData, logger *zap.Logger) *Handler {
	return &Handler{
		Client:     client,
		StaticData: cache,
		Log:        logger,
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	StaticData string `json:"static_data"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "static_data":"loaded" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
//
// An empty static-data cache is reported but does not fail the check.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:     "ok",
		Database:   "connected",
		StaticData: "empty",
	}
	if h.StaticData != nil && h.StaticData.Loaded() {
		resp.StaticData = "loaded"
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
