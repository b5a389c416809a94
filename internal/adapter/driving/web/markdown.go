package web

import (
	"bytes"
	"html"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// maxDescriptionBytes caps how much issuer-supplied markdown is rendered.
const maxDescriptionBytes = 16 << 10

// Credential descriptions come from issuers, so raw HTML is dropped by the
// renderer and the output is sanitized again before display.
var (
	descriptionRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
	)
	descriptionPolicy = newDescriptionPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderMarkdown converts a credential description to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	src = truncateUTF8(src, maxDescriptionBytes)

	var buf bytes.Buffer
	if err := descriptionRenderer.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}

	return descriptionPolicy.Sanitize(buf.String())
}

// truncateUTF8 shortens s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
