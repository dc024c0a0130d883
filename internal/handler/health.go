package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/gin-gonic/gin"
)

// Pinger зависимость, доступность которой проверяет health
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	probes map[string]Pinger
	clicks service.ClickProcessor
}

func NewHealthHandler(probes map[string]Pinger, clicks service.ClickProcessor) *HealthHandler {
	return &HealthHandler{probes: probes, clicks: clicks}
}

type HealthResponse struct {
	Status string               `json:"status"`
	Checks map[string]string    `json:"checks"`
	Clicks service.ChannelStats `json:"clicks"`
}

// HealthCheck godoc
// @Summary Service health
// @Description Pings PostgreSQL and Redis and reports click queue usage
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.probes))}
	status := http.StatusOK

	for name, probe := range h.probes {
		if err := probe.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	if h.clicks != nil {
		resp.Clicks = h.clicks.GetChannelStats()
	}

	c.JSON(status, resp)
}
