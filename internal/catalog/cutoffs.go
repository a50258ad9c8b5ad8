package catalog

import (
	"strings"

	"github.com/Solairith/SC2006-app-creation/internal/recommend"
)

// The six posting-group keys, in display order.
var CutoffKeys = []string{
	"POSTING GROUP 3 (EXPRESS)",
	"POSTING GROUP 3 AFFILIATED",
	"POSTING GROUP 2 (NORMAL ACAD)",
	"POSTING GROUP 2 AFFILIATED",
	"POSTING GROUP 1 (NORMAL TECH)",
	"POSTING GROUP 1 AFFILIATED",
}

var cutoffLabels = map[string]string{
	"POSTING GROUP 3 (EXPRESS)":     "PG3 (Express)",
	"POSTING GROUP 3 AFFILIATED":    "PG3 Affiliated",
	"POSTING GROUP 2 (NORMAL ACAD)": "PG2 (Normal Acad)",
	"POSTING GROUP 2 AFFILIATED":    "PG2 Affiliated",
	"POSTING GROUP 1 (NORMAL TECH)": "PG1 (Normal Tech)",
	"POSTING GROUP 1 AFFILIATED":    "PG1 Affiliated",
}

// isNA treats "N/A", "NA", "-" and blanks as absent.
func isNA(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "N/A", "NA", "-":
		return true
	}
	return false
}

// SummarizeCutoffs renders the one-line cutoff summary, e.g.
// "PG3 (Express): 8 | PG2 (Normal Acad): 14". Nil when the school is a
// primary school (cutoffs don't apply) or every value is N/A.
func SummarizeCutoffs(cutoffs map[string]string, level string) *string {
	if len(cutoffs) == 0 || level == recommend.LevelPrimary {
		return nil
	}

	var parts []string
	for _, k := range CutoffKeys {
		if v, ok := cutoffs[k]; ok && !isNA(v) {
			parts = append(parts, cutoffLabels[k]+": "+v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	line := strings.Join(parts, " | ")
	return &line
}

// PrimaryCutoff picks the single headline cutoff (PG3 Express) used by the
// client's saved-schools card. Nil under the same suppression rules as the
// summary.
func PrimaryCutoff(cutoffs map[string]string, level string) *string {
	if len(cutoffs) == 0 || level == recommend.LevelPrimary {
		return nil
	}
	v, ok := cutoffs["POSTING GROUP 3 (EXPRESS)"]
	if !ok || isNA(v) {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}
