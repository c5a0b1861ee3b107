package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hejijunhao/qrsheet/internal/model"
)

// Format selects how a scan is rendered.
type Format string

const (
	FormatJSON Format = "json" // the canonical value as JSON
	FormatCSV  Format = "csv"  // the two-line CSV block
)

// ErrUnknownFormat is returned for a format other than json or csv.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat converts a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Render returns the rendered scan without a trailing newline.
// JSON output is the canonical value only; pretty indents it by two spaces.
func Render(scan model.Scan, format Format, pretty bool) ([]byte, error) {
	switch format {
	case FormatCSV:
		return []byte(scan.CSV), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(scan.Data); err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}
