package jobs

import (
	"context"
	"log"
	"time"

	"event-finder/internal/scraper"
)

type ScraperJob struct {
	service *scraper.Service
	opts    scraper.Options
}

func NewScraperJob(service *scraper.Service, opts scraper.Options) *ScraperJob {
	return &ScraperJob{
		service: service,
		opts:    opts,
	}
}

// Start begins the periodic scrape job
func (j *ScraperJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		ctx := context.Background()
		if _, err := j.service.Run(ctx, j.opts); err != nil {
			log.Printf("Initial scrape error: %v", err)
		}

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if _, err := j.service.Run(ctx, j.opts); err != nil {
				log.Printf("Scrape error: %v", err)
			}
		}
	}()
}
