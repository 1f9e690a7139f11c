package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/middleware"
	"authcore/internal/models"
	"authcore/internal/services"
	"authcore/internal/sessions"
)

type AuthHandler struct {
	auth     services.AuthService
	sessions *sessions.Manager
}

func NewAuthHandler(auth services.AuthService, mgr *sessions.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: mgr}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// same message for unknown user and wrong password
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		log.Printf("[auth][login] failed for username=%q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if err := h.sessions.Attach(c.Writer, session, req.Remember); err != nil {
		log.Printf("[auth][login] attach session failed sid=%s: %v", session.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Logout tears the session down best-effort and redirects
// unconditionally; a store failure never strands the user logged in.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Destroy(c.Writer, c.Request)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := h.auth.GetUserByID(userID)
	if err != nil {
		log.Printf("[auth][me] lookup failed user_id=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if user == nil {
		// session outlived the account
		h.sessions.Destroy(c.Writer, c.Request)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
