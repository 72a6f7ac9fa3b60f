// -----------------------------------------------------------------------
// Mailer Service - SMTP digest delivery using user credentials
// Credentials from KeyValue storage (smtp_ prefix) override config values
// -----------------------------------------------------------------------

package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// Config holds resolved SMTP settings for one send
type Config struct {
	Host     string `json:"smtp_host"`
	Port     int    `json:"smtp_port"`
	Username string `json:"smtp_username"`
	Password string `json:"smtp_password"`
	From     string `json:"smtp_from"`
	FromName string `json:"smtp_from_name"`
	UseTLS   bool   `json:"smtp_use_tls"`
}

// Service sends composed digests over SMTP. It implements
// interfaces.Deliverer.
type Service struct {
	kvStorage interfaces.KeyValueStorage
	fallback  *common.SMTPConfig
	logger    arbor.ILogger
}

// NewService creates a new mailer service. KV values (dashboard-editable)
// take precedence; the config file provides fallbacks for headless runs.
func NewService(kvStorage interfaces.KeyValueStorage, fallback *common.SMTPConfig, logger arbor.ILogger) *Service {
	return &Service{
		kvStorage: kvStorage,
		fallback:  fallback,
		logger:    logger,
	}
}

// GetConfig resolves SMTP configuration: KV storage over config file
// over built-in defaults.
func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	config := &Config{
		Port:     587,
		UseTLS:   true,
		FromName: "StockBrief Research",
	}

	if s.fallback != nil {
		if s.fallback.Host != "" {
			config.Host = s.fallback.Host
		}
		if s.fallback.Port > 0 {
			config.Port = s.fallback.Port
		}
		config.Username = s.fallback.Username
		config.Password = s.fallback.Password
		if s.fallback.From != "" {
			config.From = s.fallback.From
		}
	}

	if s.kvStorage != nil {
		if host, err := s.kvStorage.Get(ctx, "smtp_host"); err == nil && host != "" {
			config.Host = host
		}
		if portStr, err := s.kvStorage.Get(ctx, "smtp_port"); err == nil && portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil {
				config.Port = port
			}
		}
		if username, err := s.kvStorage.Get(ctx, "smtp_username"); err == nil && username != "" {
			config.Username = username
		}
		if password, err := s.kvStorage.Get(ctx, "smtp_password"); err == nil && password != "" {
			config.Password = password
		}
		if from, err := s.kvStorage.Get(ctx, "smtp_from"); err == nil && from != "" {
			config.From = from
		}
		if fromName, err := s.kvStorage.Get(ctx, "smtp_from_name"); err == nil && fromName != "" {
			config.FromName = fromName
		}
		if tlsStr, err := s.kvStorage.Get(ctx, "smtp_use_tls"); err == nil && tlsStr != "" {
			config.UseTLS = strings.ToLower(tlsStr) == "true" || tlsStr == "1"
		}
	}

	// Gmail app passwords are often pasted with spaces
	config.Password = strings.ReplaceAll(config.Password, " ", "")

	if config.From == "" {
		config.From = config.Username
	}

	return config, nil
}

// SetConfig saves SMTP configuration to KeyValue storage
func (s *Service) SetConfig(ctx context.Context, config *Config) error {
	if err := s.kvStorage.Set(ctx, "smtp_host", config.Host, "SMTP server hostname"); err != nil {
		return fmt.Errorf("failed to set smtp_host: %w", err)
	}
	if err := s.kvStorage.Set(ctx, "smtp_port", strconv.Itoa(config.Port), "SMTP server port"); err != nil {
		return fmt.Errorf("failed to set smtp_port: %w", err)
	}
	if err := s.kvStorage.Set(ctx, "smtp_username", config.Username, "SMTP username (email address)"); err != nil {
		return fmt.Errorf("failed to set smtp_username: %w", err)
	}
	if err := s.kvStorage.Set(ctx, "smtp_password", config.Password, "SMTP password or app password"); err != nil {
		return fmt.Errorf("failed to set smtp_password: %w", err)
	}
	if err := s.kvStorage.Set(ctx, "smtp_from", config.From, "From email address"); err != nil {
		return fmt.Errorf("failed to set smtp_from: %w", err)
	}
	if err := s.kvStorage.Set(ctx, "smtp_from_name", config.FromName, "From display name"); err != nil {
		return fmt.Errorf("failed to set smtp_from_name: %w", err)
	}
	tlsStr := "false"
	if config.UseTLS {
		tlsStr = "true"
	}
	if err := s.kvStorage.Set(ctx, "smtp_use_tls", tlsStr, "Use TLS encryption"); err != nil {
		return fmt.Errorf("failed to set smtp_use_tls: %w", err)
	}

	s.logger.Info().
		Str("host", config.Host).
		Int("port", config.Port).
		Str("from", config.From).
		Msg("Mail configuration saved")

	return nil
}

// Verify checks that delivery is configured well enough to attempt a send
func (s *Service) Verify(ctx context.Context) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if config.Username == "" || config.Password == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if config.From == "" {
		return fmt.Errorf("from email not configured")
	}
	return nil
}

// Deliver sends one composed digest
func (s *Service) Deliver(ctx context.Context, digest *models.Digest) error {
	if err := s.SendHTMLEmail(ctx, digest.To, digest.Subject, digest.HTMLBody, digest.TextBody); err != nil {
		s.logger.Error().
			Err(err).
			Str("to", digest.To).
			Str("kind", string(KindOf(err))).
			Msg("❌ Digest delivery failed")
		return err
	}

	s.logger.Info().
		Str("to", digest.To).
		Int("cards", digest.CardCount).
		Msg("✅ Digest delivered")
	return nil
}

// SendHTMLEmail sends an email with HTML and plain text alternatives
func (s *Service) SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get mail config: %w", err)
	}

	if config.Host == "" {
		return classify(TransportError, "SMTP host not configured")
	}
	if config.Username == "" || config.Password == "" {
		return classify(AuthFailure, "SMTP credentials not configured")
	}

	// Build email message
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", config.FromName, config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))

	if htmlBody != "" {
		// Multipart message with HTML and text alternatives.
		// Base64 with 76-char lines keeps RFC 5322 line limits intact
		// regardless of how long the rendered HTML lines get.
		boundary := generateBoundary()
		msg.WriteString("MIME-Version: 1.0\r\n")
		msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
		msg.WriteString("\r\n")

		if textBody != "" {
			msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
			msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
			msg.WriteString("Content-Transfer-Encoding: base64\r\n")
			msg.WriteString("\r\n")
			msg.WriteString(encodeBase64WithLineBreaks(textBody))
			msg.WriteString("\r\n")
		}

		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(htmlBody))
		msg.WriteString("\r\n")

		msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	} else {
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(textBody)
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	if config.UseTLS {
		return s.sendWithTLS(addr, auth, config.From, to, msg.String())
	}

	if err := smtp.SendMail(addr, auth, config.From, []string{to}, []byte(msg.String())); err != nil {
		return classify(TransportError, "smtp send failed: %w", err)
	}
	return nil
}

// sendWithTLS sends over a direct TLS connection, falling back to
// STARTTLS when the server does not accept implicit TLS on that port.
func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName: host,
	})
	if err != nil {
		return s.sendWithSTARTTLS(addr, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return classify(NetworkError, "failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return s.converse(client, auth, from, to, msg)
}

// sendWithSTARTTLS sends email using STARTTLS upgrade
func (s *Service) sendWithSTARTTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	client, err := smtp.Dial(addr)
	if err != nil {
		return classify(NetworkError, "failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: host,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return classify(TransportError, "failed to start TLS: %w", err)
	}

	return s.converse(client, auth, from, to, msg)
}

// converse runs the authenticated SMTP exchange, classifying each
// stage's failure so callers can log the actual cause.
func (s *Service) converse(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if err := client.Auth(auth); err != nil {
		return classify(AuthFailure, "SMTP authentication failed: %w", err)
	}

	if err := client.Mail(from); err != nil {
		return classify(SenderRejected, "server refused sender %s: %w", from, err)
	}

	if err := client.Rcpt(to); err != nil {
		return classify(RecipientRejected, "server refused recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return classify(TransportError, "failed to start data: %w", err)
	}

	if _, err := w.Write([]byte(msg)); err != nil {
		return classify(TransportError, "failed to write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return classify(TransportError, "failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return classify(TransportError, "failed to quit: %w", err)
	}
	return nil
}

// SendTestEmail sends a test email to verify configuration
func (s *Service) SendTestEmail(ctx context.Context, to string) error {
	subject := "StockBrief Test Email"
	body := "This is a test email from StockBrief to verify your SMTP configuration is working correctly."

	if err := s.SendHTMLEmail(ctx, to, subject, "", body); err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("Failed to send test email")
		return err
	}

	s.logger.Info().Str("to", to).Msg("Test email sent successfully")
	return nil
}

// generateBoundary creates a unique MIME boundary string
func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "stockbrief_boundary_fallback"
	}
	return fmt.Sprintf("stockbrief_%x", b)
}

// encodeBase64WithLineBreaks encodes content as base64 with 76-char
// line breaks per RFC 2045 for MIME content.
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	var result strings.Builder
	const lineLen = 76

	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}

	return result.String()
}
