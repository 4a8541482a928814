// ABOUTME: Markdown frontmatter helpers for report files.
// ABOUTME: Renders and splits YAML frontmatter, formats timestamps, and writes files atomically.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// renderFrontmatter marshals fm as YAML between --- delimiters followed by body.
func renderFrontmatter(fm any, body string) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(fmDelim + "\n")
	sb.Write(data)
	sb.WriteString(fmDelim + "\n")
	sb.WriteString(body)
	return sb.String(), nil
}

// parseFrontmatter splits content into its YAML frontmatter and body.
// The YAML is empty when the content does not start with a delimiter line.
func parseFrontmatter(content string) (string, string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fmDelim+"\n") {
		return "", content
	}
	rest := content[len(fmDelim)+1:]
	end := strings.Index(rest, "\n"+fmDelim+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+fmDelim) {
			return rest[:len(rest)-len(fmDelim)], ""
		}
		return "", content
	}
	return rest[:end+1], rest[end+len(fmDelim)+2:]
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// atomicWrite writes data to a temp file beside path and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
