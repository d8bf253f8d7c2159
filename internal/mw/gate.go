package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inspection-portal/internal/session"
)

// Public routes are the login screens; they never require a session.
var publicPaths = map[string]bool{
	"/":        true,
	"/signup":  true,
	"/admin":   true,
	"/partner": true,
}

// Gate is the routing gate, evaluated statelessly per navigation:
// static assets and JSON API routes bypass it; unauthenticated
// requests for protected pages bounce to the root login; authenticated
// requests for login pages, or for the other role's section, bounce to
// the session's own dashboard.
func Gate(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/static/") ||
			strings.Contains(path, "favicon.ico") {
			c.Next()
			return
		}

		sess, ok := sessions.Get(c)

		if !ok {
			if publicPaths[path] {
				c.Next()
				return
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		if publicPaths[path] {
			c.Redirect(http.StatusFound, sess.Role.DashboardPath())
			c.Abort()
			return
		}

		if sess.Role != session.RoleAdmin && strings.HasPrefix(path, "/admin") {
			c.Redirect(http.StatusFound, session.RolePartner.DashboardPath())
			c.Abort()
			return
		}
		if sess.Role == session.RoleAdmin && strings.HasPrefix(path, "/partner") {
			c.Redirect(http.StatusFound, session.RoleAdmin.DashboardPath())
			c.Abort()
			return
		}

		c.Next()
	}
}
