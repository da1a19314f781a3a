// Package htmlsanitize cleans user-supplied text before it is stored.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "th", "td")
	return p
}

// Sanitize keeps a safe subset of HTML (formatting, lists, links, tables)
// and drops scripts, event handlers and javascript: URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richPolicy.Sanitize(s)
}

// SanitizeToHTML is Sanitize for direct use in html/template.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// PlainText strips all markup and trims the result. Used for short
// free-text fields such as special requests and feedback. Entities are
// decoded so "&" round-trips as typed; callers rendering HTML must escape.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}
