// Package htmlutils provides text and HTML helpers for rendering backend output.
//
// The package handles:
//   - UTF-16 length calculation (the unit browsers report for text length)
//   - Whitespace trimming with the browser's notion of whitespace
//   - Sanitization of backend-provided markup before it reaches a template
//   - Plain-text extraction for terminal output
package htmlutils

import (
	"html"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/microcosm-cc/bluemonday"
)

// UTF16Len returns the number of UTF-16 code units needed to encode the string.
// Characters outside the BMP (emoji, etc.) require surrogate pairs (2 code units).
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// TrimBrowserSpace trims leading and trailing whitespace the way a browser's
// String.prototype.trim does. Unlike strings.TrimSpace it strips U+FEFF and
// keeps U+0085.
func TrimBrowserSpace(s string) string {
	return strings.TrimFunc(s, isBrowserSpace)
}

func isBrowserSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\ufeff', '\u2028', '\u2029':
		return true
	}

	return unicode.Is(unicode.Zs, r)
}

var (
	richPolicy   = newRichPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AllowElements("p", "br", "strong", "em", "b", "i", "code", "pre", "blockquote")
	p.AllowElements("ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnLinks(true)

	return p
}

// SanitizeHTML keeps basic formatting tags and safe links from backend text
// and returns it as template-safe HTML.
func SanitizeHTML(text string) template.HTML {
	//nolint:gosec // output of the sanitizer policy above
	return template.HTML(richPolicy.Sanitize(text))
}

// PlainText strips all markup and decodes entities.
func PlainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(text)))
}
