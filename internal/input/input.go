// Package input reads raw QR payload text from files, stdin or request
// bodies. Scanner apps and clipboard exports do not agree on encoding, so
// payloads are decoded to UTF-8 before normalization. The decoded text is
// otherwise left exactly as scanned.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrTooLarge is returned when a payload exceeds the byte limit.
var ErrTooLarge = errors.New("input: payload too large")

// Read reads all of r and decodes it. A UTF-8 or UTF-16 byte order mark
// selects the encoding; without one the bytes are taken as UTF-8 and
// invalid sequences become U+FFFD. limit caps the raw byte count; zero or
// negative means no limit.
func Read(r io.Reader, limit int64) (string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("input: read: %w", err)
	}
	if limit > 0 && int64(len(b)) > limit {
		return "", ErrTooLarge
	}
	return Decode(b)
}

// ReadFile reads and decodes the file at path.
func ReadFile(path string, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("input: %w", err)
	}
	defer f.Close()
	return Read(f, limit)
}

// Decode converts b to UTF-8, honoring a leading BOM. Unicode composition is
// not changed.
func Decode(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", fmt.Errorf("input: decode: %w", err)
	}
	return string(out), nil
}
