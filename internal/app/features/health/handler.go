package health

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/system/timeouts"
)

// Handler holds the Mongo clients the health check pings.
type Handler struct {
	Community *mongo.Client
	Poketwo   *mongo.Client
	Log       *zap.Logger
}

func NewHandler(community, poketwo *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Community: community,
		Poketwo:   poketwo,
		Log:       logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status    string `json:"status"`
	Community string `json:"community_db"`
	Poketwo   string `json:"poketwo_db"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Serve handles GET /health. Both databases must answer a ping within the
// ping timeout or the endpoint reports 503.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:    "ok",
		Community: "connected",
		Poketwo:   "connected",
	}

	if err := h.Community.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: community mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Community = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
	}
	if h.Poketwo != nil && h.Poketwo != h.Community {
		if err := h.Poketwo.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: poketwo mongo ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Poketwo = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
