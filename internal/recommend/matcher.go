package recommend

import (
	"sort"

	"golang.org/x/text/cases"
)

// Prefs is the slice of user preferences the matcher consumes.
type Prefs struct {
	Level    string
	Subjects []string
	CCAs     []string
}

// SchoolFacts is the slice of catalog data the matcher consumes.
type SchoolFacts struct {
	Name     string
	Level    string
	Subjects []string
	CCAs     []string
}

// Reasons is the explainable breakdown attached to every recommendation item.
type Reasons struct {
	CCAMatches     []string `json:"cca_matches"`
	SubjectMatches []string `json:"subject_matches"`
	LevelMatch     bool     `json:"level_match"`
}

var fold = cases.Fold()

// LevelScore is 1.0 when no level preference is set or it equals the school's
// main level code, else 0.0.
func LevelScore(pref, schoolLevel string) float64 {
	if pref == "" || pref == schoolLevel {
		return 1.0
	}
	return 0.0
}

// OverlapScore computes |prefs ∩ offered| / |prefs| with exact case-folded
// matching, returning the matched names in the school's original casing,
// sorted ascending. Empty preferences are neutral: score 1.0, no matches.
func OverlapScore(prefs, offered []string) (float64, []string) {
	matches := []string{}
	if len(prefs) == 0 {
		return 1.0, matches
	}

	want := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		if p == "" {
			continue
		}
		want[fold.String(p)] = struct{}{}
	}
	if len(want) == 0 {
		return 1.0, matches
	}

	hit := make(map[string]struct{}, len(want))
	for _, o := range offered {
		key := fold.String(o)
		if _, ok := want[key]; !ok {
			continue
		}
		if _, seen := hit[key]; seen {
			continue
		}
		hit[key] = struct{}{}
		matches = append(matches, o)
	}

	sort.Strings(matches)
	return float64(len(hit)) / float64(len(want)), matches
}
