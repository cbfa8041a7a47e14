package models

import (
	"time"
)

// Event represents a scraped event listing
type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:500;not null;index" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Location    *string    `gorm:"size:255;index" json:"location,omitempty"` // location slug the search ran against
	Venue       *string    `gorm:"size:255" json:"venue,omitempty"`          // free-text venue/address from the listing
	StartTime   *time.Time `json:"start_time,omitempty"`
	// HasTime distinguishes "starts at midnight" from "source gave a date only".
	HasTime   bool      `json:"has_time"`
	URL       string    `gorm:"size:500;not null;uniqueIndex" json:"url"`
	Source    string    `gorm:"size:100;not null" json:"source"`
	Category  *string   `gorm:"size:100;index" json:"category,omitempty"`
	ScrapedAt time.Time `gorm:"not null" json:"scraped_at"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "events"
}
