package prefs

import (
	"time"

	"github.com/lib/pq"
)

// UserPreferences is the signed-in user's declared search profile. Created on
// first save, mutated via PUT, never auto-deleted.
type UserPreferences struct {
	UserID        string         `gorm:"primaryKey" json:"-"`
	Level         string         `json:"level,omitempty"`
	Subjects      pq.StringArray `gorm:"type:text[]" json:"subjects"`
	CCAs          pq.StringArray `gorm:"type:text[]" json:"ccas"`
	MaxDistanceKm *float64       `json:"max_distance_km,omitempty"`
	HomePostal    string         `json:"home_postal,omitempty"`
	UpdatedAt     time.Time      `json:"-"`
}

func (UserPreferences) TableName() string { return "prefs.user_preferences" }
