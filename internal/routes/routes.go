package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/handlers"
	"authcore/internal/middleware"
	"authcore/internal/sessions"
)

func SetupRoutes(
	r *gin.Engine,
	mgr *sessions.Manager,
	authHandler *handlers.AuthHandler,
	registerHandler *handlers.RegisterHandler,
	verifyHandler *handlers.VerifyHandler,
	passwordHandler *handlers.PasswordHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// logout is deliberately unguarded: stale cookies get cleared too
	r.POST("/logout", authHandler.Logout)

	// ---- anonymous-only flows
	anon := r.Group("", middleware.RequireAnonymous(mgr))
	{
		anon.POST("/login", authHandler.Login)
		anon.POST("/register", registerHandler.Register)
		anon.GET("/verify", verifyHandler.Verify) // emailed link, code in query
		anon.POST("/verify", verifyHandler.Verify)
		anon.POST("/onboarding", registerHandler.Onboarding)
		anon.POST("/forgot-password", passwordHandler.ForgotPassword)
		anon.POST("/reset-password", passwordHandler.ResetPassword)
	}

	// ---- session required
	private := r.Group("", middleware.RequireAuthenticated(mgr))
	{
		private.GET("/me", authHandler.Me)
	}

	return r
}
