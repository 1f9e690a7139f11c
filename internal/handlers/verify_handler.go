package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/models"
	"authcore/internal/services"
	"authcore/internal/sessions"
)

// VerifyHandler redeems emailed one-time codes. GET serves the emailed
// link (code in the query string), POST serves the manual form.
type VerifyHandler struct {
	verifications services.VerificationService
	codec         *sessions.CookieCodec
}

func NewVerifyHandler(verifications services.VerificationService, codec *sessions.CookieCodec) *VerifyHandler {
	return &VerifyHandler{verifications: verifications, codec: codec}
}

func (h *VerifyHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != models.VerificationTypeOnboarding && req.Type != models.VerificationTypeResetPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown verification type", "field": "type"})
		return
	}

	ok, err := h.verifications.Consume(req.Target, req.Type, req.Code)
	if err != nil {
		log.Printf("[verify] consume failed target=%q type=%s: %v", req.Target, req.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}
	if !ok {
		// bad, expired and superseded codes all look the same
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code", "field": "code"})
		return
	}

	// carry the verified target into the next step via the short-lived
	// verification cookie instead of the URL
	if err := h.codec.SetVerifyCookie(c.Writer, req.Target); err != nil {
		log.Printf("[verify] set cookie failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	switch req.Type {
	case models.VerificationTypeOnboarding:
		c.Redirect(http.StatusSeeOther, safeRedirect(req.RedirectTo, "/onboarding"))
	case models.VerificationTypeResetPassword:
		c.Redirect(http.StatusSeeOther, safeRedirect(req.RedirectTo, "/reset-password"))
	}
}
