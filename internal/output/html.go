package output

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/chris-regnier/nglint/internal/lint"
)

// HTMLFormatter renders failures as an HTML list with linkified messages.
type HTMLFormatter struct{}

// NoWarnings is rendered for a pass without failures.
const NoWarnings = "No warnings"

// Format renders one <li> per failure. An empty list renders NoWarnings.
func (f *HTMLFormatter) Format(failures []lint.Failure) (string, error) {
	if len(failures) == 0 {
		return `<p class="nglint-clean">` + NoWarnings + "</p>", nil
	}
	var b strings.Builder
	b.WriteString(`<ul class="nglint-failures">` + "\n")
	for _, fl := range failures {
		fmt.Fprintf(&b, `<li class="nglint-failure" data-rule="%s"`, html.EscapeString(fl.RuleName))
		if fl.ID != "" {
			fmt.Fprintf(&b, ` data-id="%s"`, html.EscapeString(fl.ID))
		}
		fmt.Fprintf(&b, `><span class="nglint-location">%s:%s</span> <strong>%s</strong>: %s</li>`+"\n",
			html.EscapeString(fl.FileName), fl.Span.Start, html.EscapeString(fl.RuleName), Linkify(html.EscapeString(fl.Message)))
	}
	b.WriteString("</ul>")
	return b.String(), nil
}

var (
	absoluteURL = regexp.MustCompile(`\b(?:https?|ftp)://(?:[^\s<>&"']|&amp;)+`)
	bareWWW     = regexp.MustCompile(`\bwww\.[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+(?:/(?:[^\s<>&"']|&amp;)*)?`)
)

// trailing punctuation is not part of a link
const linkTrim = ".,;:!?)"

// Linkify wraps URLs in already escaped HTML text as anchors. Absolute
// URLs are linked first; bare www. domains are then linked in the text
// between those anchors, skipping matches that continue a longer token.
func Linkify(escaped string) string {
	var b strings.Builder
	last := 0
	for _, m := range absoluteURL.FindAllStringIndex(escaped, -1) {
		b.WriteString(linkBareWWW(escaped, last, m[0]))
		link, rest := trimLink(escaped[m[0]:m[1]])
		fmt.Fprintf(&b, `<a href="%s">%s</a>%s`, link, link, rest)
		last = m[1]
	}
	b.WriteString(linkBareWWW(escaped, last, len(escaped)))
	return b.String()
}

func trimLink(u string) (string, string) {
	link := strings.TrimRight(u, linkTrim)
	return link, u[len(link):]
}

// linkBareWWW links the bare domains in s[from:to]. The byte before a
// match is read from s so a domain glued to a preceding link stays text.
func linkBareWWW(s string, from, to int) string {
	seg := s[from:to]
	var b strings.Builder
	last := 0
	for _, m := range bareWWW.FindAllStringIndex(seg, -1) {
		start, end := m[0], m[1]
		if abs := from + start; abs > 0 && !boundary(s[abs-1]) {
			continue
		}
		link, rest := trimLink(seg[start:end])
		b.WriteString(seg[last:start])
		fmt.Fprintf(&b, `<a href="http://%s">%s</a>%s`, link, link, rest)
		last = end
	}
	b.WriteString(seg[last:])
	return b.String()
}

// boundary reports whether c may precede a bare domain.
func boundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', '[', ',', ';':
		return true
	}
	return false
}
