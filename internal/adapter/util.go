package adapter

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// userAgent identifies this tool to provider APIs and the webhook endpoint.
const userAgent = "jobwatch/1.0 (+local)"

// extractText converts an HTML or HTML-encoded fragment to plain text.
// Entities are unescaped first (Greenhouse double-encodes its content field),
// then the markup is parsed and reduced to its text with whitespace collapsed.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return strings.Join(strings.Fields(unescaped), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime tries the timestamp formats the provider APIs actually emit.
// Returns nil when the value matches none of them.
func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// str returns v if it is a JSON string, else "".
func str(v any) string {
	s, _ := v.(string)
	return s
}

// stringify flattens the location shapes Workday tenants emit: a plain
// string, a list of location strings, or an object with a name-like key.
// Anything else becomes "".
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, key := range []string{"name", "descriptor", "displayName", "city"} {
			if s := str(t[key]); s != "" {
				return s
			}
		}
	}
	return ""
}
