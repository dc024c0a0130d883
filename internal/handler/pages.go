package handler

import (
	"net/http"

	"github.com/SergeiKhy/linkstack/internal/analytics"
	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// LoginPage godoc
// @Summary Sign-in page
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /login [get]
func LoginPage(c *gin.Context) {
	// Уже вошедший пользователь попадает сразу в дашборд
	if _, ok := middleware.UserIDFromContext(c); ok {
		c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", nil)
}

// Page godoc
// @Summary Dashboard page of the current profile
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 307 {object} nil "Redirect to /login without a session"
// @Router /dashboard [get]
func (h *DashboardHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	pc, err := h.sessions.Context(ctx, currentUser(c))
	if err != nil {
		status, _ := errorStatus(err)
		if status == http.StatusUnauthorized {
			c.Redirect(http.StatusTemporaryRedirect, middleware.LoginPath)
			return
		}
		respondError(c, h.logger, err)
		return
	}

	view := dashboardView{
		User:     pc.User(),
		Profiles: pc.Profiles(),
		Current:  pc.Current(),
	}

	if view.Current != nil {
		m, _, err := h.sessions.Links(ctx, pc.UserID())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		view.Links = m.Snapshot()

		report, ok := h.report(c, analytics.DefaultWindow)
		if !ok {
			return
		}
		view.Report = report
	}

	c.HTML(http.StatusOK, "dashboard.html", view)
}
