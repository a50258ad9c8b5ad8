// Drops cache entries so the next request refetches fresh data: the catalog
// freshness stamp by default, plus a postal-cache row when --postal is given.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var postal = flag.String("postal", "", "Also delete the cached coordinates for this postal code")

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	result := db.Exec(`DELETE FROM catalog.stamps WHERE name = 'schools'`)
	if result.Error != nil {
		log.Fatalf("Error deleting catalog stamp: %v", result.Error)
	}
	fmt.Printf("Deleted catalog freshness stamp (affected rows: %d)\n", result.RowsAffected)

	if *postal != "" {
		result = db.Exec(`DELETE FROM geo.postal_caches WHERE postal = ?`, *postal)
		if result.Error != nil {
			log.Fatalf("Error deleting postal cache: %v", result.Error)
		}
		fmt.Printf("Deleted postal cache for %s (affected rows: %d)\n", *postal, result.RowsAffected)
	}

	fmt.Println("Next catalog request will refetch from Data.gov.sg.")
}
