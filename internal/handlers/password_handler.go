package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"authcore/internal/models"
	"authcore/internal/services"
	"authcore/internal/sessions"
)

// PasswordHandler drives the reset state machine: forgot-password ->
// emailed code -> reset-password -> log in again.
type PasswordHandler struct {
	auth          services.AuthService
	verifications services.VerificationService
	emails        services.EmailService
	codec         *sessions.CookieCodec
	codeTTL       time.Duration
}

func NewPasswordHandler(
	auth services.AuthService,
	verifications services.VerificationService,
	emails services.EmailService,
	codec *sessions.CookieCodec,
	codeTTL time.Duration,
) *PasswordHandler {
	return &PasswordHandler{
		auth:          auth,
		verifications: verifications,
		emails:        emails,
		codec:         codec,
		codeTTL:       codeTTL,
	}
}

func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "usernameOrEmail"})
		return
	}

	user, err := h.auth.GetUserByEmailOrUsername(req.UsernameOrEmail)
	if err != nil {
		log.Printf("[forgot-password] lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No user exists with this username or email", "field": "usernameOrEmail"})
		return
	}

	// the challenge is bound to the account email regardless of which
	// identifier the form carried
	issued, err := h.verifications.Issue(user.Email, models.VerificationTypeResetPassword, h.codeTTL, "")
	if err != nil {
		log.Printf("[forgot-password] issue verification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
		return
	}

	if err := h.emails.SendPasswordResetEmail(user.Email, issued.OTP, issued.VerifyURL); err != nil {
		log.Printf("[forgot-password] send email failed to=%s: %v", user.Email, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "There was an error sending the email"})
		return
	}

	c.Redirect(http.StatusSeeOther, issued.RedirectTo)
}

// ResetPassword requires the verification cookie minted by the verify
// step; a request without one goes back to the start of the flow.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	pending, ok := h.codec.ReadVerifyCookie(c.Request)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/forgot-password")
		return
	}

	user, err := h.auth.GetUserByEmailOrUsername(pending)
	if err != nil {
		log.Printf("[reset-password] lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		return
	}
	if user == nil {
		c.Redirect(http.StatusSeeOther, "/forgot-password")
		return
	}

	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "password"})
		return
	}

	if err := h.auth.ResetPassword(user.Username, req.Password); err != nil {
		log.Printf("[reset-password] reset failed user=%s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		return
	}

	h.codec.ClearVerifyCookie(c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
}
