package handlers

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername mirrors the signup form rules and returns the
// case-folded username.
func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return "", fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 20 {
		return "", fmt.Errorf("username must be at most 20 characters long")
	}
	if !usernameRe.MatchString(username) {
		return "", fmt.Errorf("username can only include letters, numbers, and underscores")
	}
	return strings.ToLower(username), nil
}

func validatePassword(password, confirm string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(password) > 20 {
		return fmt.Errorf("password must be at most 20 characters long")
	}
	if password != confirm {
		return fmt.Errorf("the passwords must match")
	}
	return nil
}

// safeRedirect keeps emailed redirect targets on-site.
func safeRedirect(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return fallback
}
