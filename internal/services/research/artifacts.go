package research

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stockbrief/stockbrief/internal/models"
)

// ArtifactWriter persists each generated research report as a
// timestamped markdown file so runs leave an auditable trail.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates a writer rooted at dir, creating it if needed
func NewArtifactWriter(dir string) (*ArtifactWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &ArtifactWriter{dir: dir}, nil
}

// Dir returns the root reports directory
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// Write saves one report. Filename: <timestamp>_<kind>_<name>.md with
// a heading and generation time prepended.
func (w *ArtifactWriter) Write(unit models.ResearchUnit, content string, at time.Time) (string, error) {
	filename := fmt.Sprintf("%s_%s_%s.md",
		at.Format("20060102_150405"),
		unit.Kind.Label(),
		sanitizeName(unit.Name),
	)
	path := filepath.Join(w.dir, filename)

	header := fmt.Sprintf("# 📈 %s research: %s\n> %s\n\n---\n\n",
		unit.Kind.Label(), unit.Name, at.Format("January 2, 2006 15:04"))

	if err := os.WriteFile(path, []byte(header+content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// sanitizeName strips characters that are unsafe in filenames
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	return replacer.Replace(strings.TrimSpace(name))
}
