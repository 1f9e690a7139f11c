package sessions

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "en_session"
	VerifyCookieName  = "en_verification"

	// the verification cookie shepherds a multi-step flow and dies on
	// its own after 10 minutes, independent of the challenge row's TTL
	verifyCookieMaxAge = 10 * time.Minute
)

var ErrBadCookie = errors.New("invalid session cookie")

// CookieCodec signs and reads the session and verification cookies.
// Values are HS256 tokens, so a tampered cookie fails signature
// verification instead of being trusted.
type CookieCodec struct {
	signingKey []byte
	secure     bool
}

func NewCookieCodec(signingKey string, secure bool) *CookieCodec {
	return &CookieCodec{signingKey: []byte(signingKey), secure: secure}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type verifyClaims struct {
	Pending string `json:"pending"`
	jwt.RegisteredClaims
}

// SetSessionCookie mirrors the session row in the cookie. Without
// remember the cookie gets no Expires and dies with the browser
// session, even though the row itself lives on.
func (c *CookieCodec) SetSessionCookie(w http.ResponseWriter, sessionID string, expires time.Time, remember bool) error {
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	cookie := c.baseCookie(SessionCookieName, value)
	if remember {
		cookie.Expires = expires
	}
	http.SetCookie(w, cookie)
	return nil
}

// DecodeSessionCookie returns the session id carried by a cookie
// value, or ErrBadCookie for anything unsigned, tampered or expired.
func (c *CookieCodec) DecodeSessionCookie(value string) (string, error) {
	claims := &sessionClaims{}
	if err := c.parse(value, claims); err != nil {
		return "", err
	}
	if claims.SessionID == "" {
		return "", ErrBadCookie
	}
	return claims.SessionID, nil
}

func (c *CookieCodec) ClearSessionCookie(w http.ResponseWriter) {
	cookie := c.baseCookie(SessionCookieName, "")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

// SetVerifyCookie stores the pending target (email or username) for
// the next step of an onboarding or reset flow.
func (c *CookieCodec) SetVerifyCookie(w http.ResponseWriter, pending string) error {
	claims := &verifyClaims{
		Pending: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(verifyCookieMaxAge)),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return fmt.Errorf("sign verification cookie: %w", err)
	}

	cookie := c.baseCookie(VerifyCookieName, value)
	cookie.MaxAge = int(verifyCookieMaxAge.Seconds())
	http.SetCookie(w, cookie)
	return nil
}

// ReadVerifyCookie returns the pending target, if a valid verification
// cookie accompanies the request.
func (c *CookieCodec) ReadVerifyCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(VerifyCookieName)
	if err != nil {
		return "", false
	}
	claims := &verifyClaims{}
	if err := c.parse(cookie.Value, claims); err != nil {
		return "", false
	}
	if claims.Pending == "" {
		return "", false
	}
	return claims.Pending, true
}

func (c *CookieCodec) ClearVerifyCookie(w http.ResponseWriter) {
	cookie := c.baseCookie(VerifyCookieName, "")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func (c *CookieCodec) parse(value string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.signingKey, nil
	})
	if err != nil || !token.Valid {
		return ErrBadCookie
	}
	return nil
}

func (c *CookieCodec) baseCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
