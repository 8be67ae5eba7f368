package fetch

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxHintLen = 256

// bodyHint summarises a body that failed to decode, for logs only. HTML error
// pages are reduced to their <title>.
func bodyHint(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "<empty>"
	}
	if trimmed[0] == '<' {
		if title := htmlTitle(trimmed); title != "" {
			return "html: " + title
		}
	}
	return snippet(string(trimmed))
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func snippet(s string) string {
	if len(s) > maxHintLen {
		return s[:maxHintLen] + "..."
	}
	return s
}
