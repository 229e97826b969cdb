package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

type pingHandler struct {
	logger *slog.Logger
}

// NewPingHandler - liveness check for load balancers. It answers without touching the session store.
func NewPingHandler(logger *slog.Logger) PingHandler {
	return &pingHandler{logger: logger.With("component", "ping")}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	// the status is already sent, a failed write can only be logged
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Warn("failed to write ping response",
			"requestID", middleware.GetReqID(r.Context()),
			"error", err)
	}
}
