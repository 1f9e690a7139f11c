package services

import (
	"fmt"
	"net/url"
	"time"

	"authcore/internal/models"
	"authcore/internal/otp"
	"authcore/internal/repositories"
)

// IssuedVerification is what a flow needs after issuing a challenge:
// the code for the email body, the emailed link with the code baked in
// for auto-fill, and the same link without the code to redirect the
// submitting browser to.
type IssuedVerification struct {
	OTP        string
	VerifyURL  string
	RedirectTo string
}

type VerificationService interface {
	Issue(target, vtype string, period time.Duration, redirectTo string) (*IssuedVerification, error)
	Consume(target, vtype, code string) (bool, error)
}

type verificationService struct {
	repo    repositories.VerificationRepository
	baseURL string
}

func NewVerificationService(repo repositories.VerificationRepository, baseURL string) VerificationService {
	return &verificationService{repo: repo, baseURL: baseURL}
}

// Issue generates a fresh challenge for (target, type) and upserts it,
// superseding any outstanding one for the same pair even before its
// natural expiry.
func (s *verificationService) Issue(target, vtype string, period time.Duration, redirectTo string) (*IssuedVerification, error) {
	code, key, err := otp.Generate(otp.Config{
		Algorithm: otp.AlgorithmSHA256,
		Period:    int(period.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("issue verification: %w", err)
	}

	expiresAt := time.Now().Add(period)
	v := &models.Verification{
		Target:    target,
		Type:      vtype,
		Secret:    key.Secret,
		Algorithm: key.Algorithm,
		Digits:    key.Digits,
		Period:    key.Period,
		CharSet:   key.CharSet,
		ExpiresAt: &expiresAt,
	}
	if err := s.repo.Upsert(v); err != nil {
		return nil, err
	}

	verifyURL, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("issue verification: bad base url %q: %w", s.baseURL, err)
	}
	verifyURL.Path = "/verify"

	q := verifyURL.Query()
	q.Set("type", vtype)
	q.Set("target", target)
	if redirectTo != "" {
		q.Set("redirectTo", redirectTo)
	}
	verifyURL.RawQuery = q.Encode()
	plain := verifyURL.String()

	q.Set("code", code)
	verifyURL.RawQuery = q.Encode()

	return &IssuedVerification{
		OTP:        code,
		VerifyURL:  verifyURL.String(),
		RedirectTo: plain,
	}, nil
}

// Consume redeems a code. Expired challenges count as absent, a wrong
// code leaves the challenge in place for a retry, and the final delete
// is conditioned on the row still existing so concurrent duplicate
// submissions succeed at most once.
func (s *verificationService) Consume(target, vtype, code string) (bool, error) {
	v, err := s.repo.GetActive(target, vtype)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}

	key := otp.Key{
		Secret:    v.Secret,
		Algorithm: v.Algorithm,
		Period:    v.Period,
		Digits:    v.Digits,
		CharSet:   v.CharSet,
	}
	if !otp.Verify(code, key) {
		return false, nil
	}

	deleted, err := s.repo.Delete(target, vtype)
	if err != nil {
		return false, err
	}
	return deleted, nil
}
