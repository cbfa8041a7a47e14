package eventbrite

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxDescriptionLen = 1000

// ParseDescription extracts the long-form description from an event detail
// page. An empty string means the expected content region is absent, which is
// a valid state: events are stored without a description in that case.
func ParseDescription(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	selectors := []string{
		"#event-description",
		"div.event-description",
		"div.summary",
	}

	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return truncate(text, maxDescriptionLen)
		}
	}

	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
