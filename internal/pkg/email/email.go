package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService sends account lifecycle emails
type EmailService interface {
	SendApprovalEmail(toEmail, toName string) error
	SendRejectionEmail(toEmail, toName, reason string) error
	SendPendingReviewEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string
}

// Configured reports whether credentials are present
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(toEmail, subject, htmlBody string) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.sendHTMLEmail
	return s
}

// SendApprovalEmail tells an account holder they can now sign in
func (s *EmailServiceImpl) SendApprovalEmail(toEmail, toName string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your CareerCompass account has been approved. You can now <a href="%s">sign in</a>.</p>
<p>Best regards,<br>The CareerCompass Team</p>`, html.EscapeString(toName), html.EscapeString(s.loginURL()))
	return s.deliver(toEmail, "Your CareerCompass account is approved", body)
}

// SendRejectionEmail tells an account holder their registration was declined
func (s *EmailServiceImpl) SendRejectionEmail(toEmail, toName, reason string) error {
	reasonHTML := ""
	if strings.TrimSpace(reason) != "" {
		reasonHTML = fmt.Sprintf("<p>Reason given by the reviewer: <em>%s</em></p>\n", html.EscapeString(reason))
	}
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your CareerCompass registration was not approved.</p>
%s<p>Reply to this email if you believe this is a mistake.</p>
<p>Best regards,<br>The CareerCompass Team</p>`, html.EscapeString(toName), reasonHTML)
	return s.deliver(toEmail, "Your CareerCompass registration", body)
}

// SendPendingReviewEmail tells an account holder their approval was reopened
func (s *EmailServiceImpl) SendPendingReviewEmail(toEmail, toName string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your CareerCompass account is under review again. We will email you once a decision is made.</p>
<p>Best regards,<br>The CareerCompass Team</p>`, html.EscapeString(toName))
	return s.deliver(toEmail, "Your CareerCompass account is under review", body)
}

func (s *EmailServiceImpl) loginURL() string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/login"
}

func (s *EmailServiceImpl) deliver(toEmail, subject, body string) error {
	if !s.config.Configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}
	page := `<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">` + body + `</div></body></html>`
	return s.send(toEmail, subject, page)
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := s.buildMessage(toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
