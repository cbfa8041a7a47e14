package scraper

import (
	"context"
	"fmt"
	"log"

	"event-finder/internal/models"
)

// Store is the cleaner's view of the record store.
type Store interface {
	ListAll(ctx context.Context) ([]models.Event, error)
	Delete(ctx context.Context, id uint) error
}

// CleanDuplicates scans all stored events, groups them by canonical URL using
// the same canonicalization the loader applies, and for every group keeps the
// record with the earliest scraped_at (ties broken by smallest id), deleting
// the rest. Returns the number of records removed. Running it again with no
// intervening writes removes nothing.
func CleanDuplicates(ctx context.Context, store Store) (int, error) {
	events, err := store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	// ListAll orders by scraped_at then id, so the first event seen per
	// canonical URL is the keeper.
	keeper := make(map[string]uint, len(events))
	removed := 0

	for _, event := range events {
		key := CanonicalURL(event.URL)
		if key == "" {
			key = event.URL
		}

		if _, ok := keeper[key]; !ok {
			keeper[key] = event.ID
			continue
		}

		if err := store.Delete(ctx, event.ID); err != nil {
			return removed, fmt.Errorf("failed to delete duplicate event %d: %w", event.ID, err)
		}
		log.Printf("deleted duplicate: %s (id %d)", event.Title, event.ID)
		removed++
	}

	return removed, nil
}
