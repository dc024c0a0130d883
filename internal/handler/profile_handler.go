package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/SergeiKhy/linkstack/internal/theme"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileHandler профили пользователя и черновик текущего профиля
type ProfileHandler struct {
	sessions *service.SessionRegistry
	profiles service.ProfileService
	logger   *zap.Logger
}

func NewProfileHandler(sessions *service.SessionRegistry, profiles service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		sessions: sessions,
		profiles: profiles,
		logger:   logger,
	}
}

type ProfilesResponse struct {
	Profiles []models.Profile `json:"profiles"`
	Current  *models.Profile  `json:"current"`
}

type UsernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type SwitchProfileRequest struct {
	Username string `json:"username" binding:"required"`
}

type ApplyPresetRequest struct {
	Name   string         `json:"name"`
	Preset *models.Preset `json:"preset,omitempty"`
}

// context контекст профилей пользователя; при ошибке ответ уже отправлен
func (h *ProfileHandler) context(c *gin.Context) (*service.ProfileContext, bool) {
	pc, err := h.sessions.Context(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return pc, true
}

// ListProfiles godoc
// @Summary List profiles of the current user
// @Tags profiles
// @Produce json
// @Success 200 {object} ProfilesResponse
// @Router /api/v1/profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	pc, ok := h.context(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ProfilesResponse{Profiles: pc.Profiles(), Current: pc.Current()})
}

// CreateProfile godoc
// @Summary Create a profile and make it current
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body models.CreateProfileInput true "Profile"
// @Success 201 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/profiles [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var input models.CreateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}

	pc, ok := h.context(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	profile, err := h.profiles.Create(ctx, pc.UserID(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := pc.Refresh(ctx); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if _, err := pc.SwitchProfile(ctx, profile.Username); err != nil {
		h.logger.Warn("Failed to persist selected profile", zap.Error(err))
	}

	c.JSON(http.StatusCreated, profile)
}

// CheckUsername godoc
// @Summary Check whether a username can be claimed
// @Tags profiles
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} UsernameCheckResponse
// @Router /api/v1/profiles/check-username [get]
func (h *ProfileHandler) CheckUsername(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))

	err := h.profiles.CheckUsername(c.Request.Context(), username)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, UsernameCheckResponse{Username: username, Available: true})
	case service.IsValidation(err), errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusOK, UsernameCheckResponse{Username: username, Reason: err.Error()})
	default:
		respondError(c, h.logger, err)
	}
}

// SwitchProfile godoc
// @Summary Switch the current profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body SwitchProfileRequest true "Username of an owned profile"
// @Success 200 {object} models.Profile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/profiles/current [put]
func (h *ProfileHandler) SwitchProfile(c *gin.Context) {
	var req SwitchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pc, ok := h.context(c)
	if !ok {
		return
	}

	switched, err := pc.SwitchProfile(c.Request.Context(), req.Username)
	if !switched {
		respondError(c, h.logger, service.ErrProfileNotFound)
		return
	}
	if err != nil {
		// Переключение состоялось, не сохранилось только предпочтение
		h.logger.Warn("Failed to persist selected profile", zap.Error(err))
	}

	c.JSON(http.StatusOK, pc.Current())
}

// GetProfile godoc
// @Summary Current profile with unsaved edits
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	pc, ok := h.context(c)
	if !ok {
		return
	}
	current := pc.Current()
	if current == nil {
		respondError(c, h.logger, service.ErrNoProfile)
		return
	}
	c.JSON(http.StatusOK, current)
}

// UpdateProfile godoc
// @Summary Edit display name and bio of the draft
// @Tags profile
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileInput true "Fields to change"
// @Success 200 {object} models.Profile
// @Router /api/v1/profile [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var input models.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	pc, ok := h.context(c)
	if !ok {
		return
	}

	draft, err := pc.UpdateCurrent(func(p *models.Profile) {
		if input.DisplayName != nil {
			p.DisplayName = input.DisplayName
		}
		if input.Bio != nil {
			p.Bio = input.Bio
		}
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SaveProfile godoc
// @Summary Persist the draft of the current profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile
// @Router /api/v1/profile/save [post]
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	pc, ok := h.context(c)
	if !ok {
		return
	}
	draft := pc.Current()
	if draft == nil {
		respondError(c, h.logger, service.ErrNoProfile)
		return
	}

	ctx := c.Request.Context()
	if err := h.profiles.Save(ctx, draft); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := pc.Refresh(ctx); err != nil {
		h.logger.Warn("Failed to refresh profiles after save", zap.Error(err))
	}

	c.JSON(http.StatusOK, pc.Current())
}

// SaveTheme godoc
// @Summary Validate and persist the theme of the current profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body models.ThemeConfig true "Theme"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/profile/theme [put]
func (h *ProfileHandler) SaveTheme(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := models.ParseThemeConfig(body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pc, ok := h.context(c)
	if !ok {
		return
	}
	current := pc.Current()
	if current == nil {
		respondError(c, h.logger, service.ErrNoProfile)
		return
	}

	saved, err := h.profiles.SaveTheme(c.Request.Context(), pc.UserID(), current.Username, cfg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	draft, _ := pc.UpdateCurrent(func(p *models.Profile) { p.ThemeConfig = saved.ThemeConfig })
	c.JSON(http.StatusOK, draft)
}

// ApplyPreset godoc
// @Summary Apply a catalog or generated preset to the draft theme
// @Description Either name of a catalog preset or a full preset object. Persisted only by PUT /profile/theme or /profile/save.
// @Tags profile
// @Accept json
// @Produce json
// @Param request body ApplyPresetRequest true "Preset"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/profile/theme/preset [post]
func (h *ProfileHandler) ApplyPreset(c *gin.Context) {
	var req ApplyPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var preset models.Preset
	if req.Preset != nil {
		if err := req.Preset.Validate(); err != nil {
			respondError(c, h.logger, err)
			return
		}
		preset = *req.Preset
	} else {
		found, err := theme.Find(req.Name)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		preset = found
	}

	pc, ok := h.context(c)
	if !ok {
		return
	}

	draft, err := pc.UpdateCurrent(func(p *models.Profile) {
		p.ThemeConfig = theme.Apply(p.ThemeConfig, preset)
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type uploadFunc func(c *gin.Context, pc *service.ProfileContext, username string, upload service.Upload) (*models.Profile, error)

// UploadAvatar godoc
// @Summary Upload an avatar (jpg, jpeg, png; up to 2MB)
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /api/v1/profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, func(c *gin.Context, pc *service.ProfileContext, username string, upload service.Upload) (*models.Profile, error) {
		return h.profiles.UploadAvatar(c.Request.Context(), pc.UserID(), username, upload)
	})
}

// UploadBackground godoc
// @Summary Upload a background image (jpg, jpeg, png, gif; up to 2MB)
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /api/v1/profile/background [post]
func (h *ProfileHandler) UploadBackground(c *gin.Context) {
	h.upload(c, func(c *gin.Context, pc *service.ProfileContext, username string, upload service.Upload) (*models.Profile, error) {
		return h.profiles.UploadBackground(c.Request.Context(), pc.UserID(), username, upload)
	})
}

func (h *ProfileHandler) upload(c *gin.Context, fn uploadFunc) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}

	pc, ok := h.context(c)
	if !ok {
		return
	}
	current := pc.Current()
	if current == nil {
		respondError(c, h.logger, service.ErrNoProfile)
		return
	}

	file, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	saved, err := fn(c, pc, current.Username, service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.mirrorImages(pc, saved))
}

// DeleteAvatar godoc
// @Summary Remove the avatar
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile
// @Router /api/v1/profile/avatar [delete]
func (h *ProfileHandler) DeleteAvatar(c *gin.Context) {
	h.remove(c, h.profiles.RemoveAvatar)
}

// DeleteBackground godoc
// @Summary Remove the background image
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile
// @Router /api/v1/profile/background [delete]
func (h *ProfileHandler) DeleteBackground(c *gin.Context) {
	h.remove(c, h.profiles.RemoveBackground)
}

func (h *ProfileHandler) remove(c *gin.Context, fn func(ctx context.Context, userID uuid.UUID, username string) (*models.Profile, error)) {
	pc, ok := h.context(c)
	if !ok {
		return
	}
	current := pc.Current()
	if current == nil {
		respondError(c, h.logger, service.ErrNoProfile)
		return
	}

	saved, err := fn(c.Request.Context(), pc.UserID(), current.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.mirrorImages(pc, saved))
}

// mirrorImages переносит сохранённые изображения в черновик, не трогая остальные правки
func (h *ProfileHandler) mirrorImages(pc *service.ProfileContext, saved *models.Profile) *models.Profile {
	draft, err := pc.UpdateCurrent(func(p *models.Profile) {
		if p.Username != saved.Username {
			return
		}
		p.AvatarURL = saved.AvatarURL
		p.ThemeConfig.BackgroundImage = saved.ThemeConfig.BackgroundImage
	})
	if err != nil {
		return saved
	}
	return draft
}
