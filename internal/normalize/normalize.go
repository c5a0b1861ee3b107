// Package normalize infers the shape of a decoded QR payload and converts it
// into either deferred JSON text or an ordered Record.
//
// Shapes are tried in a fixed order and the first rule that produces a
// result wins: JSON-looking text, http(s) URL, a=1&b=2 query pairs,
// a:1, b=2 pairs, and finally plain text wrapped as {value: ...}.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/hejijunhao/qrsheet/internal/model"
)

var urlPattern = regexp.MustCompile(`(?i)^https?://`)

// rule converts a trimmed, non-empty payload. ok is false when the rule does
// not apply or produced nothing, and the next rule is tried.
type rule struct {
	shape model.Shape
	apply func(s string) (n model.Normalized, ok bool)
}

var rules = []rule{
	{model.ShapeJSON, jsonText},
	{model.ShapeURL, urlQuery},
	{model.ShapeQuery, queryPairs},
	{model.ShapePairs, separatedPairs},
}

// Trim strips leading and trailing whitespace, including a byte order mark.
// NEL (U+0085) is not whitespace here and is kept.
func Trim(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

// LooksLikeJSON reports whether the trimmed text is delimited by {} or [].
// It checks shape only; malformed JSON still reports true.
func LooksLikeJSON(s string) bool {
	s = Trim(s)
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

// Content normalizes raw into deferred JSON text or a Record.
func Content(raw string) model.Normalized {
	n, _ := Classify(raw)
	return n
}

// Classify is Content that also reports which shape matched.
func Classify(raw string) (model.Normalized, model.Shape) {
	s := Trim(raw)
	if s == "" {
		return model.NormalizedRecord(model.NewRecord()), model.ShapeEmpty
	}
	for _, r := range rules {
		if n, ok := r.apply(s); ok {
			return n, r.shape
		}
	}
	return model.NormalizedRecord(model.RecordOf("value", s)), model.ShapeText
}

func jsonText(s string) (model.Normalized, bool) {
	if !LooksLikeJSON(s) {
		return model.Normalized{}, false
	}
	return model.NormalizedText(s), true
}

// urlQuery turns an absolute http(s) URL into its query parameters, or
// {url: s} when it has none.
func urlQuery(s string) (model.Normalized, bool) {
	if !urlPattern.MatchString(s) {
		return model.Normalized{}, false
	}
	query, ok := rawQuery(s)
	if !ok {
		return model.Normalized{}, false
	}
	params := queryParams(query)
	if params.Len() == 0 {
		return model.NormalizedRecord(model.RecordOf("url", s)), true
	}
	return model.NormalizedRecord(params), true
}

// rawQuery returns the query of an absolute URL, or false when it has no
// valid host. Only scheme and authority are validated; stray '%' in the
// path, query or fragment does not reject the URL.
func rawQuery(s string) (string, bool) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s, query, _ := strings.Cut(s, "?")
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return "", false
	}
	authority := rest
	if i := strings.IndexAny(rest, "/\\"); i >= 0 {
		authority = rest[:i]
	}
	u, err := url.Parse(scheme + "://" + authority)
	if err != nil || u.Host == "" {
		return "", false
	}
	return query, true
}

// queryParams parses a raw query the way browsers do for form data: pairs
// split on '&', empty pairs ignored, '+' read as a space, and malformed
// escapes kept literally. Parameter order follows the query string.
func queryParams(raw string) *model.Record {
	rec := model.NewRecord()
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		rec.Set(formDecode(k), formDecode(v))
	}
	return rec
}

// queryPairs handles a=1&b=2 payloads. A malformed percent escape abandons
// the rule so the payload falls through to the next one.
func queryPairs(s string) (model.Normalized, bool) {
	if !strings.Contains(s, "=") || !strings.Contains(s, "&") {
		return model.Normalized{}, false
	}
	rec := model.NewRecord()
	for _, pair := range strings.Split(s, "&") {
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.PathUnescape(Trim(k))
		if err != nil {
			return model.Normalized{}, false
		}
		value, err := url.PathUnescape(Trim(v))
		if err != nil {
			return model.Normalized{}, false
		}
		key = Trim(key)
		if key == "" {
			continue
		}
		rec.Set(key, Trim(value))
	}
	if rec.Len() == 0 {
		return model.Normalized{}, false
	}
	return model.NormalizedRecord(rec), true
}

// separatedPairs handles "a:1, b=2" payloads. Each comma-separated part is
// cut at every ':' or '='; only the first two pieces are kept, so "a:b=c"
// yields {a: "b"}.
func separatedPairs(s string) (model.Normalized, bool) {
	if !strings.ContainsAny(s, ":=") {
		return model.Normalized{}, false
	}
	rec := model.NewRecord()
	for _, part := range strings.Split(s, ",") {
		i := strings.IndexAny(part, ":=")
		if i <= 0 {
			continue
		}
		key, value := part[:i], part[i+1:]
		if j := strings.IndexAny(value, ":="); j >= 0 {
			value = value[:j]
		}
		rec.Set(Trim(key), Trim(value))
	}
	if rec.Len() == 0 {
		return model.Normalized{}, false
	}
	return model.NormalizedRecord(rec), true
}

func formDecode(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if v, err := url.PathUnescape(s); err == nil {
		return strings.ToValidUTF8(v, "\uFFFD")
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
