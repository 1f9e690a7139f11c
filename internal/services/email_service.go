package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationEmail(to, code, verifyURL string) error
	SendPasswordResetEmail(to, code, verifyURL string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationEmail(to, code, verifyURL string) error {
	body := fmt.Sprintf(`
		<h3>Email verification</h3>
		<p>Your verification code: <strong>%s</strong></p>
		<p>Or <a href="%s">click here</a> to verify automatically.</p>
		<p>The code expires in 10 minutes.</p>
	`, code, verifyURL)

	if err := s.send(to, "Email verification", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(to, code, verifyURL string) error {
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p>Your verification code: <strong>%s</strong></p>
		<p>Or <a href="%s">click here</a> to continue.</p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, code, verifyURL)

	if err := s.send(to, "Password reset request", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *emailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}
