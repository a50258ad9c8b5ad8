package recommend

import "strings"

// Main level codes as published in the school directory dataset.
const (
	LevelPrimary       = "PRIMARY"
	LevelSecondary     = "SECONDARY"
	LevelJuniorCollege = "JUNIOR_COLLEGE"
	LevelPolytechnic   = "POLYTECHNIC"
	LevelUniversity    = "UNIVERSITY"
	LevelMixed         = "MIXED"
)

var levelAliases = map[string]string{
	"primary":        LevelPrimary,
	"pri":            LevelPrimary,
	"p":              LevelPrimary,
	"ps":             LevelPrimary,
	"secondary":      LevelSecondary,
	"sec":            LevelSecondary,
	"s":              LevelSecondary,
	"jc":             LevelJuniorCollege,
	"junior college": LevelJuniorCollege,
	"poly":           LevelPolytechnic,
	"uni":            LevelUniversity,
}

// NormalizeLevel maps user-facing level spellings onto the dataset enum.
// Unrecognized values are uppercased and passed through.
func NormalizeLevel(lv string) string {
	lv = strings.TrimSpace(lv)
	if lv == "" {
		return ""
	}
	if canon, ok := levelAliases[strings.ToLower(lv)]; ok {
		return canon
	}
	return strings.ToUpper(lv)
}

// KnownLevel reports whether lv (already normalized) is one of the dataset's
// main level codes.
func KnownLevel(lv string) bool {
	switch lv {
	case LevelPrimary, LevelSecondary, LevelJuniorCollege, LevelPolytechnic, LevelUniversity, LevelMixed:
		return true
	}
	return false
}
