package handler

import (
	"net/http"
	"strings"

	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublicHandler публичные страницы профилей и учёт посещений и кликов
type PublicHandler struct {
	public service.PublicService
	logger *zap.Logger
}

func NewPublicHandler(public service.PublicService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		public: public,
		logger: logger,
	}
}

type ClickResponse struct {
	URL string `json:"url"`
}

func viewer(c *gin.Context) *uuid.UUID {
	if userID, ok := middleware.UserIDFromContext(c); ok {
		return &userID
	}
	return nil
}

// load получает страницу и учитывает посещение; ошибки учёта не мешают показу
func (h *PublicHandler) load(c *gin.Context) (*models.PublicProfile, error) {
	ctx := c.Request.Context()
	page, err := h.public.GetProfile(ctx, c.Param("username"))
	if err != nil {
		return nil, err
	}

	_, err = h.public.TrackVisit(ctx, page, models.VisitInput{
		PagePath:    "/" + page.Profile.Username,
		Referrer:    c.Request.Referer(),
		UserAgent:   c.Request.UserAgent(),
		ViewerID:    viewer(c),
		AnonymousID: middleware.VisitorIDFromContext(c),
	})
	if err != nil {
		h.logger.Warn("Failed to track visit",
			zap.String("username", page.Profile.Username),
			zap.Error(err),
		)
	}
	return page, nil
}

// GetPublicProfile godoc
// @Summary Public profile with its active links
// @Tags public
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/public/{username} [get]
func (h *PublicHandler) GetPublicProfile(c *gin.Context) {
	page, err := h.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// TrackClick godoc
// @Summary Record a click on a public link
// @Description Clicks of the profile owner are not recorded
// @Tags public
// @Produce json
// @Param username path string true "Username"
// @Param id path string true "Link ID"
// @Success 200 {object} ClickResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/public/{username}/links/{id}/click [post]
func (h *PublicHandler) TrackClick(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	link, err := h.public.TrackClick(c.Request.Context(), c.Param("username"), id, viewer(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ClickResponse{URL: link.URL})
}

// Page godoc
// @Summary Rendered public profile page
// @Tags public
// @Produce html
// @Param username path string true "Username"
// @Success 200 {string} string "HTML page"
// @Failure 404 {string} string "HTML page"
// @Router /{username} [get]
func (h *PublicHandler) Page(c *gin.Context) {
	page, err := h.load(c)
	if err != nil {
		status, _ := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to render public page", zap.Error(err))
		}
		c.HTML(status, "not_found.html", gin.H{"Username": c.Param("username")})
		return
	}

	viewerID := viewer(c)
	c.HTML(http.StatusOK, "public.html", newPublicView(page, viewerID != nil && *viewerID == page.Profile.ID))
}

// Redirect godoc
// @Summary Record a click and redirect to the link URL
// @Tags public
// @Param username path string true "Username"
// @Param id path string true "Link ID"
// @Success 307 {object} nil
// @Failure 404 {string} string "HTML page"
// @Router /{username}/go/{id} [get]
func (h *PublicHandler) Redirect(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{"Username": c.Param("username")})
		return
	}

	link, err := h.public.TrackClick(c.Request.Context(), c.Param("username"), id, viewer(c))
	if err != nil {
		status, _ := errorStatus(err)
		c.HTML(status, "not_found.html", gin.H{"Username": c.Param("username")})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, link.URL)
}

func initial(p models.Profile) string {
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}
