package prefs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/geo"
	"github.com/Solairith/SC2006-app-creation/internal/recommend"
	"github.com/Solairith/SC2006-app-creation/internal/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ReadPreferences loads the user's saved preferences. A user who never saved
// gets the zero value, not an error.
func ReadPreferences(userID string) (UserPreferences, error) {
	var p UserPreferences
	err := db.DB.First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserPreferences{UserID: userID, Subjects: pq.StringArray{}, CCAs: pq.StringArray{}}, nil
	}
	if err != nil {
		return UserPreferences{}, err
	}
	if p.Subjects == nil {
		p.Subjects = pq.StringArray{}
	}
	if p.CCAs == nil {
		p.CCAs = pq.StringArray{}
	}
	return p, nil
}

type prefsInput struct {
	Level         string   `json:"level"`
	Subjects      []string `json:"subjects"`
	CCAs          []string `json:"ccas"`
	MaxDistanceKm *float64 `json:"max_distance_km"`
	HomePostal    string   `json:"home_postal"`
}

// validate normalizes the level and checks the postal/distance constraints.
// Returns the normalized input or a caller-facing error code.
func (in *prefsInput) validate() (string, bool) {
	in.Level = recommend.NormalizeLevel(in.Level)
	if in.Level != "" && !recommend.KnownLevel(in.Level) {
		return "VALIDATION_ERROR", false
	}
	if in.HomePostal != "" && !geo.ValidPostal(in.HomePostal) {
		return "VALIDATION_ERROR", false
	}
	if in.MaxDistanceKm != nil && *in.MaxDistanceKm <= 0 {
		return "VALIDATION_ERROR", false
	}
	return "", true
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED")
		return
	}

	p, err := ReadPreferences(userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	// Preference fields are flattened into the envelope; the client reads
	// them off the top level.
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"level":           p.Level,
		"subjects":        p.Subjects,
		"ccas":            p.CCAs,
		"max_distance_km": p.MaxDistanceKm,
		"home_postal":     p.HomePostal,
	})
}

func PutHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED")
		return
	}

	var input prefsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}
	if code, ok := input.validate(); !ok {
		utils.WriteError(w, http.StatusBadRequest, code)
		return
	}

	if input.Subjects == nil {
		input.Subjects = []string{}
	}
	if input.CCAs == nil {
		input.CCAs = []string{}
	}

	p := UserPreferences{
		UserID:        userID,
		Level:         input.Level,
		Subjects:      pq.StringArray(input.Subjects),
		CCAs:          pq.StringArray(input.CCAs),
		MaxDistanceKm: input.MaxDistanceKm,
		HomePostal:    input.HomePostal,
	}
	if err := db.DB.Save(&p).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
