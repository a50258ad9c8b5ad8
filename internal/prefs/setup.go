package prefs

import (
	"log"

	"github.com/Solairith/SC2006-app-creation/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "prefs"); err != nil {
		log.Fatal("Failed to ensure schema prefs: ", err)
	}

	if err := db.DB.AutoMigrate(&UserPreferences{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
