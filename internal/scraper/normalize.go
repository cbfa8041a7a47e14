package scraper

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"event-finder/internal/eventbrite"
	"event-finder/internal/models"
)

const sourceName = "Eventbrite"

var (
	ErrMissingTitle = errors.New("candidate has no title")
	ErrMissingURL   = errors.New("candidate has no usable url")
)

// Normalize converts a raw candidate into a storable Event, or rejects it.
// It is pure: no I/O, and the reference time for year inference is passed in.
func Normalize(c eventbrite.Candidate, description, location string, now time.Time) (*models.Event, error) {
	title := collapseSpace(c.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	canonical := CanonicalURL(c.URL)
	if canonical == "" {
		return nil, ErrMissingURL
	}

	event := &models.Event{
		Title:       title,
		URL:         canonical,
		Source:      sourceName,
		Description: optional(description),
		Location:    optional(location),
		Venue:       optional(c.Venue),
		Category:    optional(c.Category),
	}

	event.StartTime, event.HasTime = parseStartTime(c.DateText, c.TimeText, now)

	return event, nil
}

// collapseSpace trims a string and collapses runs of internal whitespace.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// optional maps empty-after-trim strings to absent rather than "".
func optional(s string) *string {
	v := collapseSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

// parseStartTime parses listing text like "Fri, Nov 28" / "11:00 PM" into a
// timestamp. The listing omits the year, so the nearest future occurrence of
// the date is assumed. When only the date is known the returned flag is false
// so a midnight timestamp is never mistaken for an actual start time.
func parseStartTime(dateText, timeText string, now time.Time) (*time.Time, bool) {
	d, err := time.Parse("Mon, Jan 2", collapseSpace(dateText))
	if err != nil {
		return nil, false
	}

	year := now.Year()
	start := time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	// Listings are upcoming events: a date that already passed this year by
	// more than a day belongs to next year.
	if start.Before(now.AddDate(0, 0, -1)) {
		start = start.AddDate(1, 0, 0)
	}

	t, err := time.Parse("3:04 PM", collapseSpace(timeText))
	if err != nil {
		return &start, false
	}

	start = time.Date(start.Year(), start.Month(), start.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return &start, true
}

// trackedParams are query parameters that vary per visitor but never change
// which event a URL points at. They are stripped so two shares of the same
// event collapse to one dedup key.
var trackedParams = map[string]bool{
	"aff":    true,
	"ref":    true,
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
	"_gl":    true,
}

// CanonicalURL normalizes a source URL into the dedup key: relative paths are
// resolved against the site base, scheme and host are lower-cased, tracking
// parameters and fragments are dropped. The same function runs at load time
// and at cleanup time; returns "" for unusable input.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "/") {
		raw = eventbrite.BaseURL + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if trackedParams[param] || strings.HasPrefix(param, "utm_") {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}
