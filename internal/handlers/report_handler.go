package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ReportHandler serves the persisted research report files
type ReportHandler struct {
	reportsDir string
	markdown   goldmark.Markdown
	logger     arbor.ILogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportsDir string, logger arbor.ILogger) *ReportHandler {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &ReportHandler{
		reportsDir: reportsDir,
		markdown:   md,
		logger:     logger,
	}
}

// ListHandler handles GET /api/reports - lists report filenames, newest first
func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	entries, err := os.ReadDir(h.reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			WriteJSON(w, http.StatusOK, []string{})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to read reports directory")
		WriteError(w, http.StatusInternalServerError, "Failed to read reports directory")
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			names = append(names, entry.Name())
		}
	}
	// Timestamped filenames sort chronologically; newest first
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	WriteJSON(w, http.StatusOK, names)
}

// GetHandler handles GET /api/reports/{filename} - returns the raw
// markup and a rendered HTML preview of one report
func (h *ReportHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	encodedName := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	filename, err := url.QueryUnescape(encodedName)
	if err != nil || filename == "" {
		WriteError(w, http.StatusBadRequest, "Missing filename parameter")
		return
	}

	// Reject traversal: serve only direct children of the reports dir
	if filepath.Base(filename) != filename {
		WriteError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	content, err := os.ReadFile(filepath.Join(h.reportsDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			WriteError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.Error().Err(err).Str("filename", filename).Msg("Failed to read report")
		WriteError(w, http.StatusInternalServerError, "Failed to read report")
		return
	}

	var preview bytes.Buffer
	if err := h.markdown.Convert(content, &preview); err != nil {
		h.logger.Warn().Err(err).Str("filename", filename).Msg("Failed to render report preview")
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"filename": filename,
		"content":  string(content),
		"preview":  preview.String(),
	})
}
