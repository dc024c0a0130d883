package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SergeiKhy/linkstack/internal/config"
	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stubParser принимает единственный токен
type stubParser struct {
	token  string
	userID uuid.UUID
}

func (p stubParser) ParseToken(token string) (uuid.UUID, error) {
	if token != p.token {
		return uuid.Nil, errors.New("invalid token")
	}
	return p.userID, nil
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Первые 5 запросов в пределах burst
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimiter_MiddlewareWithKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		BurstSize:         2,
	})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.MiddlewareWithKey(func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	send := func(user string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("X-User-ID", user)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("user1"))
	assert.Equal(t, http.StatusOK, send("user1"))
	assert.Equal(t, http.StatusTooManyRequests, send("user1"))

	// Другой ключ имеет свой bucket
	assert.Equal(t, http.StatusOK, send("user2"))
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := middleware.RateLimiterConfigFrom(config.RateLimitConfig{RequestsPerSecond: 3})
	assert.Equal(t, 3.0, cfg.RequestsPerSecond)
	assert.Equal(t, middleware.DefaultRateLimiterConfig.BurstSize, cfg.BurstSize)
}

func newSessionRouter(parser stubParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	session := middleware.NewSession(parser)

	router := gin.New()
	handler := func(c *gin.Context) {
		userID, ok := middleware.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "authenticated": ok})
	}
	router.GET("/api/v1/me", session.Require(), handler)
	router.GET("/dashboard", session.Require(), handler)
	router.GET("/public", session.Optional(), handler)
	return router
}

func TestSession_Require(t *testing.T) {
	parser := stubParser{token: "valid-token", userID: uuid.New()}
	router := newSessionRouter(parser)

	t.Run("API без сессии получает 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/me", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("браузер перенаправляется на вход", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/dashboard", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))
	})

	t.Run("невалидный токен", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "forged"})
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "valid-token"})
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), parser.userID.String())
	})

	t.Run("Bearer токен", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSession_Optional(t *testing.T) {
	router := newSessionRouter(stubParser{token: "valid-token", userID: uuid.New()})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/public", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/public", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "valid-token"})
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}

func TestSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	middleware.SetSessionCookie(c, "token", time.Now().Add(time.Hour), true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	middleware.ClearSessionCookie(c, false)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestVisitorID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.VisitorID(false))
	router.GET("/page", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.VisitorIDFromContext(c))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/page", nil)
	router.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	issued := cookies[0].Value
	_, err := ksuid.Parse(issued)
	require.NoError(t, err)
	assert.Equal(t, issued, w.Body.String())

	// Существующий идентификатор сохраняется
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/page", nil)
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: issued})
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, issued, w.Body.String())

	// Повреждённый заменяется новым
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/page", nil)
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: "garbage"})
	router.ServeHTTP(w, req)
	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "garbage", w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(middleware.RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/fail"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)
	}

	entries := logs.FilterMessage("Request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "/fail", entries[1].ContextMap()["path"])
	assert.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}
