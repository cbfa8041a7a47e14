package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-finder/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByURL retrieves an event by canonical URL, or nil when none exists
func (r *EventRepository) FindByURL(ctx context.Context, url string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("url = ?", url).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Insert stores a new event, assigning its id and scraped_at.
// The unique index on url is the authoritative duplicate guard; callers use
// InsertIfNew to get the decision instead of an error.
func (r *EventRepository) Insert(ctx context.Context, event *models.Event) error {
	if event.ScrapedAt.IsZero() {
		event.ScrapedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// InsertIfNew inserts the event unless a record with the same canonical URL
// already exists. Exactly one of the outcomes holds: the event was inserted,
// or it was recognized as a duplicate and skipped. The pre-check is only an
// optimization; a concurrent insert losing the race to the unique index is
// still reported as skipped, not as an error.
func (r *EventRepository) InsertIfNew(ctx context.Context, event *models.Event) (bool, error) {
	existing, err := r.FindByURL(ctx, event.URL)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing event: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	if err := r.Insert(ctx, event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert event: %w", err)
	}
	return true, nil
}

// ListAll retrieves every stored event, oldest scrape first (ties by id)
func (r *EventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Order("scraped_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes an event by id
func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, id).Error
}

// Count returns the number of stored events
func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error
	return count, err
}
