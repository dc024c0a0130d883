package handler

import (
	"net/http"
	"strconv"

	"github.com/SergeiKhy/linkstack/internal/analytics"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	sessions  *service.SessionRegistry
	analytics service.AnalyticsService
	logger    *zap.Logger
}

func NewDashboardHandler(sessions *service.SessionRegistry, analytics service.AnalyticsService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		sessions:  sessions,
		analytics: analytics,
		logger:    logger,
	}
}

// GetAnalytics godoc
// @Summary Click and visitor analytics of the current profile
// @Tags dashboard
// @Produce json
// @Param days query int false "Window: 7, 30 or 90" default(7)
// @Success 200 {object} analytics.Report
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/dashboard/analytics [get]
func (h *DashboardHandler) GetAnalytics(c *gin.Context) {
	days := analytics.DefaultWindow
	if d := c.Query("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil {
			days = v
		}
	}

	report, ok := h.report(c, days)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *DashboardHandler) report(c *gin.Context, days int) (*analytics.Report, bool) {
	pc, err := h.sessions.Context(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	current := pc.Current()
	if current == nil {
		respondError(c, h.logger, service.ErrNoProfile)
		return nil, false
	}

	report, err := h.analytics.Report(c.Request.Context(), pc.UserID(), current.Username, days)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return report, true
}
