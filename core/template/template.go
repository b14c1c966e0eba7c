// Package template renders prompt templates: plain UTF-8 text with
// placeholders of the literal form {{identifier}} resolved against a
// variable mapping.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrTemplateNotFound is returned by Load when the template file
	// does not exist.
	ErrTemplateNotFound = errors.New("template: file not found")

	// ErrTemplateRead is returned by Load for any I/O failure other than
	// a missing file.
	ErrTemplateRead = errors.New("template: read failed")
)

// Render substitutes every {{key}} occurrence with vars[key]. Placeholders
// without a matching variable are left verbatim; rendering never fails. The
// result is a pure function of (template, vars).
func Render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}

	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// Load reads a UTF-8 template file and trims surrounding whitespace. A
// missing file yields ErrTemplateNotFound, any other I/O failure
// ErrTemplateRead; both are returned, never process-terminating, so CLI
// callers decide whether they are fatal.
func Load(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRead, path, err)
	}

	return strings.TrimSpace(string(raw)), nil
}
