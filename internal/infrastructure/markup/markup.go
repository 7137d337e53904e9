// Package markup turns HTML fragments found in feeds and API payloads into plain text.
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips tags and collapses whitespace. Input without markup is
// returned with whitespace collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
