// Package csvline renders a canonical value as a two-line CSV block: a
// header row of keys and a row of values, every field double-quoted.
package csvline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hejijunhao/qrsheet/internal/model"
)

// Format renders v as "header\nvalues". Records keep insertion order,
// arrays use their indices as headers, and plain maps are sorted by key.
// Any other value, nil included, renders as a single "value" column.
// An empty record renders as a single newline.
func Format(v any) string {
	switch t := v.(type) {
	case *model.Record:
		if t == nil {
			break
		}
		fields := t.Fields()
		keys := make([]string, len(fields))
		values := make([]string, len(fields))
		for i, f := range fields {
			keys[i] = f.Key
			values[i] = Stringify(f.Value)
		}
		return lines(keys, values)
	case []any:
		keys := make([]string, len(t))
		values := make([]string, len(t))
		for i, item := range t {
			keys[i] = strconv.Itoa(i)
			values[i] = Stringify(item)
		}
		return lines(keys, values)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = Stringify(t[k])
		}
		return lines(keys, values)
	}
	return lines([]string{"value"}, []string{Stringify(v)})
}

// Quote wraps s in double quotes, doubling any quote inside it.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Stringify converts a field value to its CSV text. nil becomes the empty
// string; nested records and arrays become compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case *model.Record:
		if t == nil {
			return ""
		}
		return t.String()
	case []any, map[string]any:
		var b strings.Builder
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSuffix(b.String(), "\n")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func lines(keys, values []string) string {
	var b strings.Builder
	writeRow(&b, keys)
	b.WriteByte('\n')
	writeRow(&b, values)
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Quote(f))
	}
}
