package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie имя cookie с JWT сессии
	SessionCookie = "auth_token"
	// LoginPath куда перенаправляется браузер без сессии
	LoginPath = "/login"

	userIDKey = "user_id"
)

// TokenParser проверяет токен сессии и возвращает id пользователя
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// Session извлекает пользователя из cookie auth_token или заголовка Authorization: Bearer
type Session struct {
	parser TokenParser
}

func NewSession(parser TokenParser) *Session {
	return &Session{parser: parser}
}

func (s *Session) resolve(c *gin.Context) (uuid.UUID, bool) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return uuid.Nil, false
		}
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	userID, err := s.parser.ParseToken(token)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// Require пропускает только запросы с валидной сессией.
// API получает 401, браузер перенаправляется на страницу входа.
func (s *Session) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.resolve(c)
		if !ok {
			if isAPIRequest(c.Request) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "unauthorized",
					"message": "Требуется вход в аккаунт",
				})
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, LoginPath)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// Optional определяет пользователя, если сессия есть, и никогда не отклоняет запрос
func (s *Session) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := s.resolve(c); ok {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// UserIDFromContext id пользователя, установленный Require или Optional
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// SetSessionCookie выставляет cookie с токеном до момента его истечения
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
