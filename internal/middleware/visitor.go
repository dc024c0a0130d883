package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
)

const (
	// VisitorCookie анонимный идентификатор посетителя публичных страниц
	VisitorCookie = "visitor_id"

	visitorIDKey = "visitor_id"
	visitorTTL   = 365 * 24 * time.Hour
)

// VisitorID выдаёт посетителю ksuid в cookie, если его ещё нет или он повреждён
func VisitorID(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if raw, err := c.Cookie(VisitorCookie); err == nil {
			if parsed, err := ksuid.Parse(raw); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = ksuid.New().String()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Expires:  time.Now().Add(visitorTTL),
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(visitorIDKey, id)
		c.Next()
	}
}

func VisitorIDFromContext(c *gin.Context) string {
	return c.GetString(visitorIDKey)
}
