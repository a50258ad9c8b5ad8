package catalog

import (
	"log"
	"os"
	"time"

	"github.com/Solairith/SC2006-app-creation/internal/catalog/datagov"
	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/recommend"
)

// engineWeights is the scoring weight vector loaded at startup. Requests may
// override it per call via the POST body.
var engineWeights = recommend.DefaultWeights()

func Init() {
	if err := db.EnsureSchema(db.DB, "catalog"); err != nil {
		log.Fatal("Failed to ensure schema catalog: ", err)
	}

	if err := db.DB.AutoMigrate(&School{}, &CutoffPoint{}, &CatalogStamp{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	path := os.Getenv("WEIGHTS_FILE")
	if path == "" {
		path = "weights.yaml"
	}
	w, err := recommend.LoadWeights(path)
	if err != nil {
		log.Fatal("Failed to load scoring weights: ", err)
	}
	engineWeights = w
	log.Printf("[catalog] scoring weights: level=%.2f subjects=%.2f ccas=%.2f distance=%.2f",
		w.Level, w.Subjects, w.CCAs, w.Distance)

	// CATALOG_OFFLINE=1 skips upstream fetches; the catalog then serves
	// only seeded data (cmd/seed).
	if os.Getenv("CATALOG_OFFLINE") == "1" {
		log.Println("[catalog] offline mode, upstream refresh disabled")
		return
	}
	upstream = datagov.NewClient()

	if ttl := os.Getenv("CATALOG_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			log.Fatal("Invalid CATALOG_TTL: ", ttl)
		}
		catalogTTL = d
	}
}
