// Package htmlsanitize cleans author-supplied HTML (forum intros,
// discussion names) before it reaches a template.
package htmlsanitize

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func introPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "mark", "sub", "sup")
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).OnElements("table", "tr", "td", "th", "p", "span", "div")
		p.AllowStyles("width", "text-align", "vertical-align").OnElements("table", "tr", "td", "th")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// Sanitize strips anything outside the intro policy.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return introPolicy().Sanitize(s)
}

// IsPlainText reports whether s carries no markup at all.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and turns newlines into <br> inside one paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// Intro prepares a forum intro for display. Older forums store plain text
// intros, so those are wrapped rather than sanitized.
func Intro(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return template.HTML(Sanitize(s))
}
