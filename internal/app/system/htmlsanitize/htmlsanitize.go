// Package htmlsanitize cleans user-supplied group descriptions and operation
// plans before they are rendered.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richOnce   sync.Once
	richPolicy *bluemonday.Policy

	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func rich() *bluemonday.Policy {
	richOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "mark")
		p.AllowURLSchemes("http", "https", "mailto")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		richPolicy = p
	})
	return richPolicy
}

func strict() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Sanitize keeps basic formatting, lists, links and images and drops
// scripts, handlers, forms and unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return rich().Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// PlainText strips every tag and decodes entities.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(s)))
}

// IsPlainText reports whether s looks tag-free.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and wraps it in one paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders s as safe HTML whether it was written as plain
// text or as markup.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}

// Excerpt returns the first n runes of the plain text of s, with an ellipsis
// when truncated.
func Excerpt(s string, n int) string {
	t := strings.Join(strings.Fields(PlainText(s)), " ")
	if n <= 0 || utf8.RuneCountInString(t) <= n {
		return t
	}
	r := []rune(t)
	return strings.TrimSpace(string(r[:n])) + "…"
}
