package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/linkstack/internal/media"
	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/SergeiKhy/linkstack/internal/theme"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Состояния результата генерации тем
const (
	StateOK    = "ok"
	StateError = "error"
)

// errorStatus сопоставляет ошибку сервисного слоя с HTTP-статусом и кодом ответа
func errorStatus(err error) (int, string) {
	switch {
	case service.IsValidation(err),
		errors.Is(err, models.ErrInvalidTheme),
		errors.Is(err, theme.ErrPresetNotFound):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrDecode):
		return http.StatusBadRequest, "invalid_image"
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	case errors.Is(err, service.ErrEmailInUse):
		return http.StatusConflict, "email_in_use"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrNoProfile):
		return http.StatusNotFound, "no_profile"
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound, "profile_not_found"
	case errors.Is(err, service.ErrLinkNotFound):
		return http.StatusNotFound, "link_not_found"
	case errors.Is(err, theme.ErrAIUnavailable), errors.Is(err, theme.ErrNoCredentials):
		return http.StatusBadGateway, "ai_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := errorStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Ошибка обработки запроса",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "Внутренняя ошибка сервера"
	}

	c.JSON(status, ErrorResponse{Error: code, Message: message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
	})
}

// currentUser id из сессии; маршрут всегда защищён Session.Require
func currentUser(c *gin.Context) uuid.UUID {
	userID, _ := middleware.UserIDFromContext(c)
	return userID
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Невалидный идентификатор",
		})
		return uuid.Nil, false
	}
	return id, true
}
