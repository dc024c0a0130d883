package handler

import (
	"html/template"
	"net/http"

	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/SergeiKhy/linkstack/internal/theme"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps зависимости HTTP-слоя
type RouterDeps struct {
	Auth      service.AuthService
	Sessions  *service.SessionRegistry
	Profiles  service.ProfileService
	Public    service.PublicService
	Analytics service.AnalyticsService
	Generator theme.Generator
	Clicks    service.ClickProcessor
	Probes    map[string]Pinger

	RateLimiter  *middleware.RateLimiter
	MediaDir     string
	MediaPrefix  string
	SecureCookie bool
	Logger       *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.SetHTMLTemplate(template.Must(LoadTemplates()))

	session := middleware.NewSession(deps.Auth)
	visitor := middleware.VisitorID(deps.SecureCookie)

	// Ограничение частоты только для входа и публичного трекинга
	limit := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware()
	}

	authHandler := NewAuthHandler(deps.Auth, deps.SecureCookie, logger)
	profileHandler := NewProfileHandler(deps.Sessions, deps.Profiles, logger)
	linkHandler := NewLinkHandler(deps.Sessions, logger)
	themeHandler := NewThemeHandler(deps.Generator, logger)
	dashboardHandler := NewDashboardHandler(deps.Sessions, deps.Analytics, logger)
	publicHandler := NewPublicHandler(deps.Public, logger)
	healthHandler := NewHealthHandler(deps.Probes, deps.Clicks)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.HealthCheck)

		auth := v1.Group("/auth")
		auth.POST("/signup", limit, authHandler.SignUp)
		auth.POST("/login", limit, authHandler.Login)
		auth.POST("/logout", session.Optional(), authHandler.Logout)

		public := v1.Group("/public", limit, session.Optional())
		public.GET("/:username", visitor, publicHandler.GetPublicProfile)
		public.POST("/:username/links/:id/click", publicHandler.TrackClick)

		protected := v1.Group("", session.Require())
		protected.GET("/me", authHandler.Me)

		protected.GET("/profiles", profileHandler.ListProfiles)
		protected.POST("/profiles", profileHandler.CreateProfile)
		protected.GET("/profiles/check-username", profileHandler.CheckUsername)
		protected.PUT("/profiles/current", profileHandler.SwitchProfile)

		protected.GET("/profile", profileHandler.GetProfile)
		protected.PATCH("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/save", profileHandler.SaveProfile)
		protected.PUT("/profile/theme", profileHandler.SaveTheme)
		protected.POST("/profile/theme/preset", profileHandler.ApplyPreset)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)
		protected.DELETE("/profile/avatar", profileHandler.DeleteAvatar)
		protected.POST("/profile/background", profileHandler.UploadBackground)
		protected.DELETE("/profile/background", profileHandler.DeleteBackground)

		protected.GET("/links", linkHandler.ListLinks)
		protected.POST("/links", linkHandler.CreateLink)
		protected.POST("/links/reorder", linkHandler.ReorderLinks)
		protected.PUT("/links/:id", linkHandler.UpdateLink)
		protected.DELETE("/links/:id", linkHandler.DeleteLink)
		protected.POST("/links/:id/activate", linkHandler.ActivateLink)
		protected.POST("/links/:id/deactivate", linkHandler.DeactivateLink)
		protected.POST("/links/:id/remove", linkHandler.RemoveLink)

		protected.GET("/themes/presets", themeHandler.ListPresets)
		protected.POST("/themes/ai", themeHandler.GeneratePresets)

		protected.GET("/dashboard/analytics", dashboardHandler.GetAnalytics)
	}

	if deps.MediaDir != "" {
		prefix := deps.MediaPrefix
		if prefix == "" {
			prefix = "/media"
		}
		router.Static(prefix, deps.MediaDir)
	}

	// HTML страницы
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
	})
	router.GET("/login", session.Optional(), LoginPage)
	router.GET("/dashboard", session.Require(), dashboardHandler.Page)

	// Публичные страницы профилей (корневой путь)
	router.GET("/:username", limit, session.Optional(), visitor, publicHandler.Page)
	router.GET("/:username/go/:id", limit, session.Optional(), publicHandler.Redirect)

	return router
}
