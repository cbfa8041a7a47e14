package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"event-finder/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var db *sql.DB
	switch cfg.Database.Driver {
	case "postgres":
		db, err = sql.Open("postgres", cfg.GetDSN())
	default:
		if _, statErr := os.Stat(cfg.Database.Path); statErr != nil {
			fmt.Println("❌ Database file not found at:", cfg.Database.Path)
			fmt.Println("💡 Run the ETL pipeline to create a new database.")
			return
		}
		db, err = sql.Open("sqlite3", cfg.Database.Path)
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		log.Fatal("Failed to count events:", err)
	}

	if count == 0 {
		fmt.Println("✅ Database is already empty.")
		return
	}

	force := len(os.Args) > 1 && os.Args[1] == "--force"
	if !force {
		fmt.Println("⚠️  WARNING: This will permanently delete all records from the database!")
		fmt.Printf("📝 Number of records: %d\n", count)
		fmt.Print("\n❓ Are you sure you want to clear all records? (yes/no): ")

		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "yes" && answer != "y" {
			fmt.Println("\n❌ Operation cancelled.")
			return
		}
	}

	result, err := db.Exec("DELETE FROM events")
	if err != nil {
		log.Fatal("❌ Error clearing records:", err)
	}

	rows, _ := result.RowsAffected()
	fmt.Printf("\n✅ All records cleared successfully!\n")
	fmt.Printf("🗑️  Deleted %d record(s)\n", rows)
	fmt.Println("💡 Run the ETL pipeline to populate the database with fresh data.")
}
