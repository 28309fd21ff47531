// Package report writes a cited persona as a plain-text file.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/profiler/internal/persona"
)

const (
	headerRule   = 80
	categoryRule = 40
	timeLayout   = "2006-01-02 15:04:05"
)

// Filename is the default report name for a user.
func Filename(username string) string {
	return username + "_persona.txt"
}

// Render writes the report body to w.
func Render(w io.Writer, username string, cited persona.CitedPersona, now time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "USER PERSONA: %s\n", username)
	fmt.Fprintf(bw, "Generated on: %s\n", now.Format(timeLayout))
	bw.WriteString(strings.Repeat("=", headerRule) + "\n\n")

	for _, t := range cited.Traits {
		fmt.Fprintf(bw, "%s:\n", strings.ToUpper(t.Category))
		bw.WriteString(strings.Repeat("-", categoryRule) + "\n")
		fmt.Fprintf(bw, "%s\n\n", t.Description.Render())

		if len(t.Citations) > 0 {
			bw.WriteString("Citations:\n")
			for _, c := range t.Citations {
				fmt.Fprintf(bw, "  - %s: %s\n", c.SourceKind, c.Excerpt)
				fmt.Fprintf(bw, "    URL: %s\n", c.URL)
			}
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// Writer saves reports under a directory.
type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Write saves the report to <dir>/<username>_persona.txt and returns the
// path. The directory is created when missing.
func (w *Writer) Write(username string, cited persona.CitedPersona) (string, error) {
	return w.WriteTo(filepath.Join(w.dir, Filename(username)), username, cited)
}

// WriteTo saves the report to an explicit path.
func (w *Writer) WriteTo(path, username string, cited persona.CitedPersona) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := Render(f, username, cited, w.now()); err != nil {
		f.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return path, nil
}
