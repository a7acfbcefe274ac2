package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTML lazy-loads images and hides the referrer on them, and flattens
// headings into bold paragraphs.
func EnhanceHTML(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		inner, _ := s.Html()
		s.ReplaceWithHtml("<p><strong>" + inner + "</strong></p>")
	})

	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return strings.TrimSpace(out)
}
