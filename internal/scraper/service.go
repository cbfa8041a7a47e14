package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"event-finder/internal/eventbrite"
	"event-finder/internal/models"

	"github.com/google/uuid"
)

// Fetcher retrieves raw page bodies. Satisfied by eventbrite.Client.
type Fetcher interface {
	SearchURL(location string, page int) string
	FetchPage(ctx context.Context, url string) (string, error)
	ResolveURL(href string) string
}

// Loader persists normalized events with the at-most-one-per-URL guarantee.
// Satisfied by repository.EventRepository.
type Loader interface {
	InsertIfNew(ctx context.Context, event *models.Event) (bool, error)
}

// Options configures one pipeline run.
type Options struct {
	Location          string
	MaxResults        int
	MaxPages          int
	FetchDescriptions bool
}

// Summary is the result of one pipeline run. A run that completes always
// returns a summary; partial failures are counted here, never raised.
type Summary struct {
	RunID          string    `json:"run_id"`
	Location       string    `json:"location"`
	StartedAt      time.Time `json:"started_at"`
	Pages          int       `json:"pages"`
	Fetched        int       `json:"fetched"`         // candidates seen on listing pages
	ParseFailures  int       `json:"parse_failures"`  // unreadable listing cards
	Normalized     int       `json:"normalized"`      // candidates that passed normalization
	Inserted       int       `json:"inserted"`        // new records stored
	Skipped        int       `json:"skipped"`         // duplicates (in batch or in store)
	Rejected       int       `json:"rejected"`        // missing title/url
	Failed         int       `json:"failed"`          // store failures
	DetailFailures int       `json:"detail_failures"` // description fetches that gave up
}

// Service drives the fetch -> parse -> normalize -> load pipeline.
type Service struct {
	fetcher Fetcher
	loader  Loader
	now     func() time.Time
}

func NewService(fetcher Fetcher, loader Loader) *Service {
	return &Service{
		fetcher: fetcher,
		loader:  loader,
		now:     time.Now,
	}
}

// Run executes one scrape of the configured location. Item-scoped failures
// are counted in the summary and never abort the run; the only fatal case is
// the first listing page being unreachable.
func (s *Service) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 50
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Location:  opts.Location,
		StartedAt: s.now().UTC(),
	}

	log.Printf("[run %s] scraping events for %s", summary.RunID, opts.Location)

	seen := make(map[string]bool) // canonical URLs handled this run
	pageURL := s.fetcher.SearchURL(opts.Location, 1)

	for page := 1; page <= opts.MaxPages && pageURL != ""; page++ {
		body, err := s.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("first listing page unreachable: %w", err)
			}
			log.Printf("[run %s] listing page %d failed, stopping pagination: %v", summary.RunID, page, err)
			break
		}

		listing, err := eventbrite.ParseListing(body)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("first listing page unreadable: %w", err)
			}
			log.Printf("[run %s] listing page %d unreadable, stopping pagination: %v", summary.RunID, page, err)
			break
		}

		summary.Pages++
		summary.Fetched += len(listing.Candidates)
		summary.ParseFailures += listing.ParseFailures

		done, err := s.processCandidates(ctx, listing.Candidates, opts, seen, summary)
		if err != nil {
			return summary, err
		}
		if done {
			break
		}

		pageURL = s.fetcher.ResolveURL(listing.NextPageURL)
	}

	log.Printf("[run %s] done: %d fetched, %d inserted, %d duplicates skipped, %d rejected, %d failed",
		summary.RunID, summary.Fetched, summary.Inserted, summary.Skipped, summary.Rejected, summary.Failed)

	return summary, nil
}

// processCandidates walks one page's candidates. It returns done=true once
// the run's max result count is reached.
func (s *Service) processCandidates(ctx context.Context, candidates []eventbrite.Candidate, opts Options, seen map[string]bool, summary *Summary) (bool, error) {
	for _, candidate := range candidates {
		// A run can be stopped between candidates; in-flight work finishes
		// so no partial record is ever written.
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		default:
		}

		if summary.Inserted+summary.Skipped >= opts.MaxResults {
			return true, nil
		}

		canonical := CanonicalURL(candidate.URL)
		if canonical == "" {
			summary.Rejected++
			continue
		}
		if seen[canonical] {
			summary.Skipped++
			continue
		}
		seen[canonical] = true

		description := ""
		if opts.FetchDescriptions {
			detailBody, err := s.fetcher.FetchPage(ctx, s.fetcher.ResolveURL(candidate.URL))
			if err != nil {
				// Description is optional: store the event without one.
				log.Printf("description fetch failed for %s: %v", canonical, err)
				summary.DetailFailures++
			} else {
				description = eventbrite.ParseDescription(detailBody)
			}
		}

		event, err := Normalize(candidate, description, opts.Location, s.now())
		if err != nil {
			log.Printf("rejected candidate %q: %v", candidate.Title, err)
			summary.Rejected++
			continue
		}
		summary.Normalized++

		inserted, err := s.loader.InsertIfNew(ctx, event)
		if err != nil {
			log.Printf("failed to store %q: %v", event.Title, err)
			summary.Failed++
			continue
		}
		if inserted {
			summary.Inserted++
			log.Printf("stored: %s", event.Title)
		} else {
			summary.Skipped++
		}
	}

	return false, nil
}
