package geo

import (
	"log"

	"github.com/Solairith/SC2006-app-creation/internal/db"
)

// Resolver is the shared postal-code resolver. Initialized in Init().
var Resolver *PostalResolver

func Init() {
	if err := db.EnsureSchema(db.DB, "geo"); err != nil {
		log.Fatal("Failed to ensure schema geo: ", err)
	}

	if err := db.DB.AutoMigrate(&PostalCache{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	Resolver = NewPostalResolver(NewClient(), db.DB)
}
