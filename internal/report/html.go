// Package report renders run results to HTML, CSV, XLSX and terminal output.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

const (
	FundamentalsFile = "report.html"
	PortfolioFile    = "results.html"
	StyleFile        = "style.css"
)

//go:embed templates
var templateFS embed.FS

type table struct {
	Headers []string
	Rows    [][]string
}

func parse(name string) (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/"+name)
}

// render executes the named template and writes the result to dir/file with
// the stylesheet next to it.
func render(dir, file, tmpl string, data interface{}) (string, error) {
	t, err := parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", tmpl, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", tmpl, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if err := writeStyle(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func writeStyle(dir string) error {
	css, err := templateFS.ReadFile("templates/" + StyleFile)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, StyleFile), css, 0o644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}

// relative returns path relative to dir with forward slashes, for use in
// HTML attributes. An empty path stays empty.
func relative(dir, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02 15:04")
}
