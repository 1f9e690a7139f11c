package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/sessions"
)

// ContextUserID is the gin context key carrying the resolved user id.
const ContextUserID = "user_id"

// RequireAuthenticated resolves the session cookie and redirects
// anonymous requests to the login page. Handlers that want to inspect
// the identity without the hard redirect call Manager.Resolve
// themselves.
func RequireAuthenticated(mgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := mgr.Resolve(c.Writer, c.Request)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// RequireAnonymous redirects already-authenticated requests home; the
// auth flows only make sense for logged-out visitors.
func RequireAnonymous(mgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := mgr.Resolve(c.Writer, c.Request); ok {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
