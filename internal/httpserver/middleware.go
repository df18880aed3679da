package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"storefront/internal/session"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// sessionMiddleware resolves the visitor's session from the cookie, issuing a
// fresh id when the cookie is missing or malformed. A store outage answers 503
// so the visitor can retry without losing anything.
func sessionMiddleware(sessions sessionManager, cookieName string, maxAge time.Duration, secure bool, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)
		s, err := sessions.Get(c.Request.Context(), id)
		if errors.Is(err, session.ErrInvalidID) {
			id, err = sessions.NewID()
			if err == nil {
				s, err = sessions.Get(c.Request.Context(), id)
			}
			if err == nil {
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(cookieName, id, int(maxAge.Seconds()), "/", "", secure, true)
			}
		}
		if errors.Is(err, session.ErrUnavailable) {
			logger.Printf("session middleware: error=%v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session unavailable"})
			return
		}
		if err != nil {
			logger.Printf("session middleware: error=%v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, s)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	s, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return s
}

// adminGuard sends unauthenticated visitors to sign in and non-admins home.
func adminGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, _ := c.Cookie("authenticated"); v != "true" {
			c.Redirect(http.StatusFound, "/auth/signin")
			c.Abort()
			return
		}
		if v, _ := c.Cookie("isAdmin"); v != "true" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
