package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"event-finder/internal/config"
	"event-finder/internal/database"
	"event-finder/internal/eventbrite"
	"event-finder/internal/repository"
	"event-finder/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	location := flag.String("location", cfg.Scraper.Location, "Location slug (e.g. 'portugal--lisbon', 'united-states--san-francisco')")
	maxResults := flag.Int("max-results", cfg.Scraper.MaxResults, "Maximum number of events to fetch")
	maxPages := flag.Int("max-pages", cfg.Scraper.MaxPages, "Maximum number of listing pages to walk")
	noDescriptions := flag.Bool("no-descriptions", false, "Skip fetching event descriptions (faster but less detailed)")
	delay := flag.Duration("delay", cfg.Scraper.RequestDelay, "Minimum delay between requests")
	flag.Parse()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewEventRepository(database.GetDB())
	client := eventbrite.NewClient(*delay, cfg.Scraper.MaxRetries)
	service := scraper.NewService(client, repo)

	fmt.Printf("🚀 Starting ETL pipeline for %s...\n", *location)
	fmt.Printf("📊 Max results: %d, max pages: %d\n", *maxResults, *maxPages)
	if *noDescriptions {
		fmt.Println("📝 Fetch descriptions: No (faster)")
	} else {
		fmt.Println("📝 Fetch descriptions: Yes")
	}

	start := time.Now()
	summary, err := service.Run(context.Background(), scraper.Options{
		Location:          *location,
		MaxResults:        *maxResults,
		MaxPages:          *maxPages,
		FetchDescriptions: !*noDescriptions,
	})
	if err != nil {
		log.Fatalf("ETL run failed: %v", err)
	}

	fmt.Printf("\n🎉 Run %s finished in %s\n", summary.RunID, time.Since(start).Round(time.Millisecond))
	fmt.Printf("   pages:           %d\n", summary.Pages)
	fmt.Printf("   fetched:         %d\n", summary.Fetched)
	fmt.Printf("   parse failures:  %d\n", summary.ParseFailures)
	fmt.Printf("   normalized:      %d\n", summary.Normalized)
	fmt.Printf("   inserted:        %d\n", summary.Inserted)
	fmt.Printf("   duplicates:      %d\n", summary.Skipped)
	fmt.Printf("   rejected:        %d\n", summary.Rejected)
	fmt.Printf("   failed:          %d\n", summary.Failed)
	if summary.DetailFailures > 0 {
		fmt.Printf("   no description:  %d\n", summary.DetailFailures)
	}
}
