package models

import "time"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`

	// populated only by credential lookups, never serialized
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OnboardingRequest struct {
	Username        string `json:"username" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Remember        bool   `json:"remember"`
}

type ForgotPasswordRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
