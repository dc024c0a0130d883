package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SergeiKhy/linkstack/internal/media"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/SergeiKhy/linkstack/internal/theme"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", service.ErrInvalidURL, http.StatusBadRequest, "validation_error"},
		{"wrapped validation", fmt.Errorf("create: %w", service.ErrUsernameReserved), http.StatusBadRequest, "validation_error"},
		{"theme", fmt.Errorf("%w: unknown buttonStyle", models.ErrInvalidTheme), http.StatusBadRequest, "validation_error"},
		{"preset", theme.ErrPresetNotFound, http.StatusBadRequest, "validation_error"},
		{"too large", media.ErrTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
		{"bad image", media.ErrDecode, http.StatusBadRequest, "invalid_image"},
		{"taken", service.ErrUsernameTaken, http.StatusConflict, "username_taken"},
		{"email", service.ErrEmailInUse, http.StatusConflict, "email_in_use"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"token", service.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
		{"no profile", service.ErrNoProfile, http.StatusNotFound, "no_profile"},
		{"link", service.ErrLinkNotFound, http.StatusNotFound, "link_not_found"},
		{"ai", fmt.Errorf("%w: quota", theme.ErrAIUnavailable), http.StatusBadGateway, "ai_unavailable"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestInitial(t *testing.T) {
	name := "élodie"
	assert.Equal(t, "É", initial(models.Profile{Username: "x", DisplayName: &name}))
	assert.Equal(t, "J", initial(models.Profile{Username: "john"}))
}
