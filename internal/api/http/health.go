package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any dependency whose reachability shows up in /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Sink      string    `json:"sink,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	sink        Pinger
}

// NewHealthHandler reports the result sink as "disabled" when sink is nil.
func NewHealthHandler(serviceName, version string, sink Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		sink:        sink,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	sinkStatus := "disabled"
	if h.sink != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.sink.Ping(pingCtx); err != nil {
			sinkStatus = "down"
		} else {
			sinkStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Sink:      sinkStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
