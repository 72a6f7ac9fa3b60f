package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// SubscriberHandler handles subscriber management HTTP requests
type SubscriberHandler struct {
	storage   interfaces.SubscriberStorage
	submitter interfaces.TaskSubmitter
	onChange  func()
	logger    arbor.ILogger
}

// NewSubscriberHandler creates a new subscriber handler. onChange is
// invoked after any mutation (may be nil).
func NewSubscriberHandler(storage interfaces.SubscriberStorage, submitter interfaces.TaskSubmitter, onChange func(), logger arbor.ILogger) *SubscriberHandler {
	return &SubscriberHandler{
		storage:   storage,
		submitter: submitter,
		onChange:  onChange,
		logger:    logger,
	}
}

func (h *SubscriberHandler) notifyChange() {
	if h.onChange != nil {
		h.onChange()
	}
}

// ListHandler handles GET /api/subscribers - lists all subscribers
func (h *SubscriberHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	subs, err := h.storage.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list subscribers")
		WriteError(w, http.StatusInternalServerError, "Failed to list subscribers")
		return
	}

	WriteJSON(w, http.StatusOK, subs)
}

// registerRequest is the payload for subscriber registration
type registerRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Assets     []string `json:"assets"`
	Industries []string `json:"industries"`
	SendHour   *int     `json:"send_hour"`
	SendMinute *int     `json:"send_minute"`
}

// RegisterHandler handles POST /api/subscribers - creates or updates a
// subscriber by name. Re-registering an existing name replaces the
// watchlist and delivery slot but keeps the ID and history.
func (h *SubscriberHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		WriteError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	sub, err := h.storage.GetByName(r.Context(), req.Name)
	if err != nil {
		if !errors.Is(err, interfaces.ErrSubscriberNotFound) {
			h.logger.Error().Err(err).Msg("Failed to look up subscriber")
			WriteError(w, http.StatusInternalServerError, "Failed to look up subscriber")
			return
		}
		sub = &models.Subscriber{
			Active:     true,
			SendHour:   9,
			SendMinute: 0,
		}
	}

	sub.Name = req.Name
	sub.Email = req.Email
	sub.Assets = normalizeNames(req.Assets)
	sub.Industries = normalizeNames(req.Industries)
	if req.SendHour != nil {
		sub.SendHour = *req.SendHour
	}
	if req.SendMinute != nil {
		sub.SendMinute = *req.SendMinute
	}

	if err := h.storage.Save(r.Context(), sub); err != nil {
		h.logger.Error().Err(err).Str("name", sub.Name).Msg("Failed to save subscriber")
		WriteError(w, http.StatusBadRequest, "Failed to save subscriber: "+err.Error())
		return
	}

	h.notifyChange()
	h.logger.Info().Str("name", sub.Name).Str("id", sub.ID).Msg("Subscriber registered")
	WriteJSON(w, http.StatusOK, sub)
}

// GetByNameHandler handles GET /api/subscribers/by-name/{name}
func (h *SubscriberHandler) GetByNameHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	encodedName := strings.TrimPrefix(r.URL.Path, "/api/subscribers/by-name/")
	name, err := url.QueryUnescape(encodedName)
	if err != nil || strings.TrimSpace(name) == "" {
		WriteError(w, http.StatusBadRequest, "Missing name parameter")
		return
	}

	sub, err := h.storage.GetByName(r.Context(), strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, interfaces.ErrSubscriberNotFound) {
			WriteError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to look up subscriber")
		return
	}

	WriteJSON(w, http.StatusOK, sub)
}

// ToggleHandler handles POST /api/subscribers/{id}/toggle
func (h *SubscriberHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/subscribers/"), "/toggle")
	sub, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrSubscriberNotFound) {
			WriteError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load subscriber")
		return
	}

	if err := h.storage.SetActive(r.Context(), id, !sub.Active); err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("Failed to toggle subscriber")
		WriteError(w, http.StatusInternalServerError, "Failed to toggle subscriber")
		return
	}

	h.notifyChange()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"active": !sub.Active,
	})
}

// DeleteHandler handles DELETE /api/subscribers/{id}
func (h *SubscriberHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/subscribers/")
	if err := h.storage.Delete(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrSubscriberNotFound) {
			WriteError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Failed to delete subscriber")
		WriteError(w, http.StatusInternalServerError, "Failed to delete subscriber")
		return
	}

	h.notifyChange()
	WriteSuccess(w, "Subscriber deleted")
}

// SendNowHandler handles POST /api/subscribers/{id}/send - launches a
// detached digest run for one subscriber and returns immediately.
func (h *SubscriberHandler) SendNowHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/subscribers/"), "/send")
	sub, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrSubscriberNotFound) {
			WriteError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load subscriber")
		return
	}

	if err := h.submitter.SubmitSendNow(sub.ID); err != nil {
		h.logger.Error().Err(err).Str("id", sub.ID).Msg("Failed to dispatch send-now run")
		WriteError(w, http.StatusInternalServerError, "Failed to start digest run")
		return
	}

	WriteStarted(w, "Digest run started for "+sub.Name+". Check email in a few minutes 📬")
}

// normalizeNames trims entries and drops empties, preserving order
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
