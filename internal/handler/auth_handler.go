package handler

import (
	"net/http"
	"time"

	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth         service.AuthService
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandler(auth service.AuthService, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SignUp godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Email and password"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		h.logger.Warn("Invalid signup body", zap.Error(err))
		badRequest(c, err)
		return
	}

	session, err := h.auth.SignUp(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.startSession(c, http.StatusCreated, session)
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Email and password"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.startSession(c, http.StatusOK, session)
}

func (h *AuthHandler) startSession(c *gin.Context, status int, session *service.Session) {
	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt, h.secureCookie)
	c.JSON(status, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	})
}

// Logout godoc
// @Summary Sign out and clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID, ok := middleware.UserIDFromContext(c); ok {
		h.auth.SignOut(c.Request.Context(), userID)
	}
	middleware.ClearSessionCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
