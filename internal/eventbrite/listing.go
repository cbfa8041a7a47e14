package eventbrite

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is one event extracted from a listing page, prior to
// normalization. Fields hold raw markup text and may be empty.
type Candidate struct {
	Title    string
	URL      string
	DateText string // e.g. "Fri, Nov 28"
	TimeText string // e.g. "11:00 PM"
	Venue    string
	Category string
}

// ListingPage is the parsed result of one listing page.
type ListingPage struct {
	Candidates    []Candidate
	ParseFailures int
	NextPageURL   string
}

// ParseListing extracts event candidates from a listing page body. A card
// whose markup cannot be understood is counted and skipped; it never aborts
// the remaining cards.
func ParseListing(body string) (*ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	page := &ListingPage{}

	doc.Find("div.event-card").Each(func(_ int, card *goquery.Selection) {
		candidate, ok := parseEventCard(card)
		if !ok {
			page.ParseFailures++
			return
		}
		page.Candidates = append(page.Candidates, candidate)
	})

	// Pagination: rel=next wins, fall back to an explicit next button.
	if href, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok && href != "" {
		page.NextPageURL = href
	} else if href, ok := doc.Find(`a[data-testid="page-next"]`).First().Attr("href"); ok && href != "" {
		page.NextPageURL = href
	}

	return page, nil
}

// parseEventCard pulls the summary fields out of one card. A card with no
// detail link is unusable: without a URL the event can never be stored.
func parseEventCard(card *goquery.Selection) (Candidate, bool) {
	link := card.Find("a.event-card-link").First()
	if link.Length() == 0 {
		return Candidate{}, false
	}

	href, _ := link.Attr("href")
	if href == "" {
		return Candidate{}, false
	}

	candidate := Candidate{URL: href}

	if category, ok := link.Attr("data-event-category"); ok {
		candidate.Category = titleCase(category)
	}

	candidate.Title = strings.TrimSpace(card.Find("h2, h3, h4").First().Text())

	// The card's p tags follow a fixed order: a bolded "Fri, Nov 28 • 11:00 PM"
	// line, then the venue line (clamped), then pricing.
	card.Find(`p[class*="Typography_root"]`).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		class, _ := p.Attr("class")

		if strings.Contains(text, "•") && (strings.Contains(text, "AM") || strings.Contains(text, "PM")) {
			parts := strings.SplitN(text, "•", 2)
			if len(parts) == 2 {
				candidate.DateText = strings.TrimSpace(parts[0])
				candidate.TimeText = strings.TrimSpace(parts[1])
			}
			return true
		}

		if strings.Contains(class, "clamp-line") {
			candidate.Venue = text
			return false // venue is the last field we need from the card
		}

		return true
	})

	return candidate, true
}

// titleCase capitalizes the first letter of each word, matching how the site
// reports categories ("music-festivals" and "Music Festivals" are the same tag).
func titleCase(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
