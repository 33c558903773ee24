// Package sanitize cleans user-supplied article HTML before it is stored.
package sanitize

import "github.com/microcosm-cc/bluemonday"

var contentPolicy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("a", "b", "i", "em", "strong", "p", "br", "ul", "ol", "li", "h1", "h2", "h3", "h4")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML keeps basic formatting tags and safe links and drops everything else.
func HTML(s string) string {
	if s == "" {
		return s
	}
	return contentPolicy.Sanitize(s)
}
