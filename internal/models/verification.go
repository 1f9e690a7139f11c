package models

import "time"

// Verification types supported by the verify flow.
const (
	VerificationTypeOnboarding    = "onboarding"
	VerificationTypeResetPassword = "reset-password"
)

// Verification is a pending one-time-code challenge, at most one per
// (target, type) pair. ExpiresAt == nil means the challenge never
// expires on its own.
type Verification struct {
	Target    string     `json:"target"`
	Type      string     `json:"type"`
	Secret    string     `json:"-"`
	Algorithm string     `json:"algorithm"`
	Digits    int        `json:"digits"`
	Period    int        `json:"period"`
	CharSet   string     `json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type VerifyRequest struct {
	Code       string `json:"code" form:"code" binding:"required"`
	Type       string `json:"type" form:"type" binding:"required"`
	Target     string `json:"target" form:"target" binding:"required"`
	RedirectTo string `json:"redirectTo" form:"redirectTo"`
}
