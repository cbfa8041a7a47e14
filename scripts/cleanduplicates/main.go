package main

import (
	"context"
	"fmt"
	"log"

	"event-finder/internal/config"
	"event-finder/internal/database"
	"event-finder/internal/repository"
	"event-finder/internal/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	repo := repository.NewEventRepository(database.GetDB())

	fmt.Println("🔍 Finding duplicates by canonical URL...")

	removed, err := scraper.CleanDuplicates(context.Background(), repo)
	if err != nil {
		log.Fatal("❌ Error cleaning duplicates:", err)
	}

	fmt.Printf("\n✅ Removed %d duplicate events!\n", removed)

	total, err := repo.Count(context.Background())
	if err != nil {
		log.Fatal("Failed to count events:", err)
	}
	fmt.Printf("📊 Total events remaining: %d\n", total)
}
