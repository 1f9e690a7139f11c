// Package otp implements time-based one-time codes (RFC 6238 shape)
// with a configurable output character set, so the same engine serves
// numeric email codes and alphanumeric ones.
package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash"
	"strings"
	"time"
)

const (
	AlgorithmSHA1   = "SHA1"
	AlgorithmSHA256 = "SHA256"
	AlgorithmSHA512 = "SHA512"

	// DefaultCharSet yields the classic numeric code.
	DefaultCharSet = "0123456789"

	defaultAlgorithm = AlgorithmSHA256
	defaultPeriod    = 30
	defaultDigits    = 6

	// entropy floor: a code shorter than 6 chars or drawn from fewer
	// than 10 symbols is rejected rather than left to call-site
	// discipline
	minDigits      = 6
	minCharSetSize = 10

	secretSize = 20 // 160-bit secret
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config describes how codes are derived. Zero values fall back to
// SHA256 / 30s / 6 numeric digits.
type Config struct {
	Algorithm string
	Period    int // seconds per time window
	Digits    int
	CharSet   string
}

// Key is everything needed to re-verify a generated code later.
type Key struct {
	Secret    string // base32, no padding
	Algorithm string
	Period    int
	Digits    int
	CharSet   string
}

func (c Config) withDefaults() Config {
	if c.Algorithm == "" {
		c.Algorithm = defaultAlgorithm
	}
	if c.Period == 0 {
		c.Period = defaultPeriod
	}
	if c.Digits == 0 {
		c.Digits = defaultDigits
	}
	if c.CharSet == "" {
		c.CharSet = DefaultCharSet
	}
	return c
}

func (c Config) validate() error {
	if _, ok := hashFuncFor(c.Algorithm); !ok {
		return fmt.Errorf("otp: unsupported algorithm %q", c.Algorithm)
	}
	if c.Period <= 0 {
		return fmt.Errorf("otp: period must be positive, got %d", c.Period)
	}
	if c.Digits < minDigits {
		return fmt.Errorf("otp: at least %d digits required, got %d", minDigits, c.Digits)
	}
	if len(c.CharSet) < minCharSetSize {
		return fmt.Errorf("otp: charset needs at least %d symbols, got %d", minCharSetSize, len(c.CharSet))
	}
	return nil
}

// Generate creates a fresh random secret and the code valid for the
// current time window. A malformed config is a caller bug and comes
// back as an error.
func Generate(cfg Config) (string, Key, error) {
	return generateAt(cfg, time.Now())
}

func generateAt(cfg Config, t time.Time) (string, Key, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return "", Key{}, err
	}

	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", Key{}, fmt.Errorf("otp: generate secret: %w", err)
	}

	key := Key{
		Secret:    b32.EncodeToString(secret),
		Algorithm: cfg.Algorithm,
		Period:    cfg.Period,
		Digits:    cfg.Digits,
		CharSet:   cfg.CharSet,
	}
	code, err := codeAt(key, t)
	if err != nil {
		return "", Key{}, err
	}
	return code, key, nil
}

// Verify reports whether code matches key for the current time window,
// allowing the conventional ±1 window of clock skew. It is a pure
// function of its inputs and the wall clock; garbage keys verify as
// false rather than erroring.
func Verify(code string, key Key) bool {
	return verifyAt(code, key, time.Now())
}

func verifyAt(code string, key Key, t time.Time) bool {
	if code == "" || key.Period <= 0 || key.Digits <= 0 || key.CharSet == "" {
		return false
	}
	counter := uint64(t.Unix()) / uint64(key.Period)

	match := false
	for _, c := range []uint64{counter - 1, counter, counter + 1} {
		want, err := hotp(key, c)
		if err != nil {
			return false
		}
		// no early exit, every window costs the same
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			match = true
		}
	}
	return match
}

func codeAt(key Key, t time.Time) (string, error) {
	return hotp(key, uint64(t.Unix())/uint64(key.Period))
}

// hotp is RFC 4226 dynamic truncation with the decimal step
// generalized to an arbitrary character set.
func hotp(key Key, counter uint64) (string, error) {
	h, ok := hashFuncFor(key.Algorithm)
	if !ok {
		return "", fmt.Errorf("otp: unsupported algorithm %q", key.Algorithm)
	}
	secret, err := b32.DecodeString(strings.ToUpper(strings.TrimRight(key.Secret, "=")))
	if err != nil {
		return "", fmt.Errorf("otp: decode secret: %w", err)
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)
	mac := hmac.New(h, secret)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	v := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	n := uint32(len(key.CharSet))
	out := make([]byte, key.Digits)
	for i := key.Digits - 1; i >= 0; i-- {
		out[i] = key.CharSet[v%n]
		v /= n
	}
	return string(out), nil
}

func hashFuncFor(algorithm string) (func() hash.Hash, bool) {
	switch strings.ToUpper(algorithm) {
	case AlgorithmSHA1:
		return sha1.New, true
	case AlgorithmSHA256:
		return sha256.New, true
	case AlgorithmSHA512:
		return sha512.New, true
	}
	return nil, false
}
