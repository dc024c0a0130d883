package handler

import (
	"net/http"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/theme"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ThemeHandler struct {
	generator theme.Generator
	logger    *zap.Logger
}

func NewThemeHandler(generator theme.Generator, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{
		generator: generator,
		logger:    logger,
	}
}

// GeneratedPresetsResponse результат генерации: state ok с пресетами или error с сообщением
type GeneratedPresetsResponse struct {
	State   string          `json:"state"`
	Presets []models.Preset `json:"presets"`
	Message string          `json:"message,omitempty"`
}

// ListPresets godoc
// @Summary Catalog of theme presets
// @Tags themes
// @Produce json
// @Success 200 {array} models.Preset
// @Router /api/v1/themes/presets [get]
func (h *ThemeHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, theme.Presets())
}

// GeneratePresets godoc
// @Summary Generate three theme presets with a language model
// @Tags themes
// @Produce json
// @Success 200 {object} GeneratedPresetsResponse
// @Failure 502 {object} GeneratedPresetsResponse
// @Router /api/v1/themes/ai [post]
func (h *ThemeHandler) GeneratePresets(c *gin.Context) {
	presets, err := h.generator.Generate(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to generate presets", zap.Error(err))
		status, _ := errorStatus(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, GeneratedPresetsResponse{
			State:   StateError,
			Presets: []models.Preset{},
			Message: "Не удалось сгенерировать темы, попробуйте ещё раз",
		})
		return
	}

	c.JSON(http.StatusOK, GeneratedPresetsResponse{State: StateOK, Presets: presets})
}
