package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/services/mailer"
)

// ConfigHandler handles delivery configuration HTTP requests
type ConfigHandler struct {
	mailer *mailer.Service
	logger arbor.ILogger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(mailerService *mailer.Service, logger arbor.ILogger) *ConfigHandler {
	return &ConfigHandler{
		mailer: mailerService,
		logger: logger,
	}
}

// GetMailConfigHandler handles GET /api/config/mail - returns SMTP
// settings with the password masked
func (h *ConfigHandler) GetMailConfigHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	config, err := h.mailer.GetConfig(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load mail config")
		WriteError(w, http.StatusInternalServerError, "Failed to load mail config")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"smtp_host":      config.Host,
		"smtp_port":      config.Port,
		"smtp_username":  config.Username,
		"smtp_password":  maskValue(config.Password),
		"smtp_from":      config.From,
		"smtp_from_name": config.FromName,
		"smtp_use_tls":   config.UseTLS,
	})
}

// SaveMailConfigHandler handles POST /api/config/mail
func (h *ConfigHandler) SaveMailConfigHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var config mailer.Config
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.mailer.SetConfig(r.Context(), &config); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save mail config")
		WriteError(w, http.StatusInternalServerError, "Failed to save mail config")
		return
	}

	WriteSuccess(w, "Mail configuration saved")
}

// TestEmailHandler handles POST /api/config/test-email - sends a test
// email to the given recipient to verify SMTP settings
func (h *ConfigHandler) TestEmailHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.To) == "" {
		WriteError(w, http.StatusBadRequest, "Recipient address required")
		return
	}

	if err := h.mailer.SendTestEmail(r.Context(), strings.TrimSpace(req.To)); err != nil {
		WriteError(w, http.StatusBadGateway, "Test email failed: "+err.Error())
		return
	}

	WriteSuccess(w, "Test email sent")
}

// maskValue hides all but the last 4 characters of a secret
func maskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
