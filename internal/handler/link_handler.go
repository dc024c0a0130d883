package handler

import (
	"context"
	"net/http"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LinkHandler ссылки текущего профиля: canvas и available
type LinkHandler struct {
	sessions *service.SessionRegistry
	logger   *zap.Logger
}

func NewLinkHandler(sessions *service.SessionRegistry, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type ReorderRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func (h *LinkHandler) manager(c *gin.Context) (*service.LinkManager, bool) {
	m, _, err := h.sessions.Links(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return m, true
}

// ListLinks godoc
// @Summary Links of the current profile split into canvas and available
// @Tags links
// @Produce json
// @Success 200 {object} models.LinkSet
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, m.Snapshot())
}

// CreateLink godoc
// @Summary Add a link to the available list
// @Tags links
// @Accept json
// @Produce json
// @Param request body models.LinkInput true "Link"
// @Success 201 {object} models.Link
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var input models.LinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	m, ok := h.manager(c)
	if !ok {
		return
	}

	link, err := m.Add(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// UpdateLink godoc
// @Summary Edit title, URL and icon of a link
// @Tags links
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param request body models.LinkInput true "Link"
// @Success 200 {object} models.Link
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id} [put]
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.LinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	m, ok := h.manager(c)
	if !ok {
		return
	}

	link, err := m.Edit(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary Delete a link
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} models.LinkSet
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	h.move(c, (*service.LinkManager).Delete)
}

// ActivateLink godoc
// @Summary Move a link to the end of the canvas
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} models.LinkSet
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id}/activate [post]
func (h *LinkHandler) ActivateLink(c *gin.Context) {
	h.move(c, (*service.LinkManager).Activate)
}

// DeactivateLink godoc
// @Summary Move a link from the canvas to the available list
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} models.LinkSet
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id}/deactivate [post]
func (h *LinkHandler) DeactivateLink(c *gin.Context) {
	h.move(c, (*service.LinkManager).Deactivate)
}

// RemoveLink godoc
// @Summary Drag a link off the canvas and renumber the rest
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} models.LinkSet
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id}/remove [post]
func (h *LinkHandler) RemoveLink(c *gin.Context) {
	h.move(c, (*service.LinkManager).DragToAvailable)
}

func (h *LinkHandler) move(c *gin.Context, fn func(m *service.LinkManager, ctx context.Context, id uuid.UUID) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}

	if err := fn(m, c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m.Snapshot())
}

// ReorderLinks godoc
// @Summary Move a canvas link from one index to another
// @Tags links
// @Accept json
// @Produce json
// @Param request body ReorderRequest true "Indices"
// @Success 200 {object} models.LinkSet
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/links/reorder [post]
func (h *LinkHandler) ReorderLinks(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, ok := h.manager(c)
	if !ok {
		return
	}

	if err := m.Reorder(c.Request.Context(), *req.From, *req.To); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m.Snapshot())
}
