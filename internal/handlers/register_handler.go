package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"authcore/internal/models"
	"authcore/internal/services"
	"authcore/internal/sessions"
)

// RegisterHandler drives the signup state machine: register(email) ->
// emailed code -> onboarding(profile) -> authenticated.
type RegisterHandler struct {
	auth          services.AuthService
	verifications services.VerificationService
	emails        services.EmailService
	sessions      *sessions.Manager
	codec         *sessions.CookieCodec
	codeTTL       time.Duration
}

func NewRegisterHandler(
	auth services.AuthService,
	verifications services.VerificationService,
	emails services.EmailService,
	mgr *sessions.Manager,
	codec *sessions.CookieCodec,
	codeTTL time.Duration,
) *RegisterHandler {
	return &RegisterHandler{
		auth:          auth,
		verifications: verifications,
		emails:        emails,
		sessions:      mgr,
		codec:         codec,
		codeTTL:       codeTTL,
	}
}

func (h *RegisterHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "email"})
		return
	}

	existing, err := h.auth.GetUserByEmail(req.Email)
	if err != nil {
		log.Printf("[register] email lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "There is already an account with this email", "field": "email"})
		return
	}

	issued, err := h.verifications.Issue(req.Email, models.VerificationTypeOnboarding, h.codeTTL, "/onboarding")
	if err != nil {
		log.Printf("[register] issue verification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	// the challenge row is already upserted; a resubmit after a send
	// failure re-upserts and retries the send
	if err := h.emails.SendVerificationEmail(req.Email, issued.OTP, issued.VerifyURL); err != nil {
		log.Printf("[register] send email failed to=%s: %v", req.Email, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "There was an error sending the email"})
		return
	}

	c.Redirect(http.StatusSeeOther, issued.RedirectTo)
}

// Onboarding finishes signup for an email that already passed
// verification; the pending email travels in the verification cookie,
// never in the URL.
func (h *RegisterHandler) Onboarding(c *gin.Context) {
	email, ok := h.codec.ReadVerifyCookie(c.Request)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}

	var req models.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username, err := validateUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "username"})
		return
	}
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "password"})
		return
	}

	session, err := h.auth.Signup(email, username, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "A user already exists with this username", "field": "username"})
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "There is already an account with this email", "field": "email"})
		default:
			log.Printf("[onboarding] signup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		}
		return
	}

	h.codec.ClearVerifyCookie(c.Writer)
	if err := h.sessions.Attach(c.Writer, session, req.Remember); err != nil {
		log.Printf("[onboarding] attach session failed sid=%s: %v", session.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
