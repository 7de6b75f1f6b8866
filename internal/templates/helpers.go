package templates

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aymerick/raymond"
)

// builtinHelpers returns the helper set every store starts with. renderItem
// closes over the store so collection layouts can delegate to item layouts.
func builtinHelpers(s *Store) map[string]interface{} {
	return map[string]interface{}{
		"formatDate": formatDateHelper,
		"eq":         equalHelper,
		"lowercase":  lowercaseHelper,
		"uppercase":  uppercaseHelper,
		"join":       joinHelper,
		"limit":      limitHelper,
		"image":      imageHelper,
		"renderItem": renderItemHelper(s),
	}
}

const defaultDateFormat = "January 2, 2006"

// dateTokens maps the date tokens themes use to Go reference layouts. Longer
// tokens come first so MMMM never matches as two MMs. Single-letter tokens
// are not supported, they would rewrite ordinary letters in literal text.
var dateTokens = []string{
	"YYYY", "2006",
	"YY", "06",
	"MMMM", "January",
	"MMM", "Jan",
	"MM", "01",
	"DD", "02",
	"dddd", "Monday",
	"ddd", "Mon",
	"HH", "15",
	"hh", "03",
	"mm", "04",
	"ss", "05",
}

var dateTokenReplacer = strings.NewReplacer(dateTokens...)

var helperDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func formatDateHelper(format string, value interface{}) string {
	var parsed time.Time
	switch v := value.(type) {
	case time.Time:
		parsed = v
	case *time.Time:
		if v == nil {
			return ""
		}
		parsed = *v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return ""
		}
		var err error
		parsed, err = parseHelperDate(trimmed)
		if err != nil {
			return v
		}
	default:
		return ""
	}

	layout := strings.TrimSpace(format)
	if layout == "" {
		layout = defaultDateFormat
	} else {
		layout = dateTokenReplacer.Replace(layout)
	}
	return parsed.Format(layout)
}

func parseHelperDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range helperDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func equalHelper(a, b interface{}, options *raymond.Options) interface{} {
	if equalValues(a, b) {
		return options.Fn()
	}
	return options.Inverse()
}

// equalValues compares loosely the way template data mixes types. Numbers
// coming out of JSON are float64 while frontmatter often carries ints.
func equalValues(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func lowercaseHelper(value interface{}) string {
	return strings.ToLower(raymond.Str(value))
}

func uppercaseHelper(value interface{}) string {
	return strings.ToUpper(raymond.Str(value))
}

func joinHelper(items interface{}, separator string) string {
	values := sliceValues(items)
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, raymond.Str(value))
	}
	return strings.Join(parts, separator)
}

func limitHelper(items interface{}, count int) interface{} {
	values := sliceValues(items)
	if count < 0 {
		count = 0
	}
	if count > len(values) {
		count = len(values)
	}
	return values[:count]
}

func sliceValues(items interface{}) []interface{} {
	if items == nil {
		return nil
	}
	value := reflect.ValueOf(items)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return nil
	}
	out := make([]interface{}, value.Len())
	for i := 0; i < value.Len(); i++ {
		out[i] = value.Index(i).Interface()
	}
	return out
}

// imageHelper resolves a preset name against the resolved image map the
// renderer places in the template context under "images".
func imageHelper(name string, options *raymond.Options) raymond.SafeString {
	switch images := options.Value("images").(type) {
	case map[string]string:
		return raymond.SafeString(images[name])
	case map[string]interface{}:
		return raymond.SafeString(raymond.Str(images[name]))
	}
	return ""
}

// renderItemHelper executes a collection item against its own layout
// template. Items carry their layout name under "layout"; a missing or
// broken layout renders to nothing rather than failing the page.
func renderItemHelper(s *Store) interface{} {
	return func(item interface{}) raymond.SafeString {
		data, ok := item.(map[string]interface{})
		if !ok {
			return ""
		}
		layout, _ := data["layout"].(string)
		if layout == "" {
			return ""
		}
		out, err := s.Render(LayoutTemplateName(layout), data)
		if err != nil {
			s.log.Warn("item layout failed, skipping item", "layout", layout, "error", err)
			return ""
		}
		return raymond.SafeString(out)
	}
}
