// Package export writes checklists as downloadable files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/climavet/climavet/internal/model"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSealed Format = "sealed"
)

// ParseFormat accepts json, csv or sealed in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatSealed:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType is the MIME type a download in f is served with.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatSealed:
		return "application/octet-stream"
	default:
		return "application/json"
	}
}

// FileName is the download name for c in f.
func FileName(c model.Checklist, f Format) string {
	base := SanitizeFileName(c.Name)
	switch f {
	case FormatCSV:
		return base + "_items.csv"
	case FormatSealed:
		return base + ".json.enc"
	default:
		return base + ".json"
	}
}

// SanitizeFileName replaces path separators and control characters so name
// is safe as a single path element.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, ".")
	if name == "" {
		return "checklist"
	}
	return name
}

// JSON writes the checklist exactly as it is held in memory.
func JSON(w io.Writer, c model.Checklist) error {
	if err := json.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	return nil
}

// Write writes c in a plain format. Sealed exports go through WriteSealed.
func Write(w io.Writer, c model.Checklist, f Format) error {
	switch f {
	case FormatJSON:
		return JSON(w, c)
	case FormatCSV:
		return CSV(w, c)
	default:
		return fmt.Errorf("format %q needs a passphrase", f)
	}
}
