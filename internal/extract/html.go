package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLText returns the visible body text of an HTML page, one block per line.
func HTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	lines := make([]string, 0, 64)
	doc.Find("body").Find("h1, h2, h3, h4, p, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, td").Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
	}
	return strings.Join(lines, "\n"), nil
}
