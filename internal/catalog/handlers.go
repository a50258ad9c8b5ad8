package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/recommend"
	"github.com/Solairith/SC2006-app-creation/internal/utils"
)

const defaultLimit = 20

// totalPages is ceil(total/limit) for a positive limit.
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func parsePositiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// SearchHandler implements GET /api/schools: filterable, paginated catalog
// query, stably ordered by school name so concurrent paging never skips or
// duplicates rows.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	EnsureFresh(r.Context())

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	level := recommend.NormalizeLevel(r.URL.Query().Get("level"))
	zone := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("zone")))
	typeCode := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type")))
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultLimit)
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	query := db.DB.Model(&School{})
	if q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(school_name) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}
	if level != "" {
		query = query.Where("mainlevel_code = ?", level)
	}
	if zone != "" {
		query = query.Where("zone_code = ?", zone)
	}
	if typeCode != "" {
		query = query.Where("type_code = ?", typeCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	items := []School{}
	if err := query.Order("school_name ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"items":       items,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
		"total_pages": totalPages(total, limit),
	})
}

type schoolDetails struct {
	School
	CutoffPoints  map[string]string `json:"cutoff_points,omitempty"`
	CutoffSummary *string           `json:"cutoff_summary,omitempty"`
	CutoffPrimary *string           `json:"cutoff_primary,omitempty"`
}

// DetailsHandler implements GET /api/schools/details?name=.
func DetailsHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	EnsureFresh(r.Context())

	var school School
	if err := db.DB.First(&school, "school_name = ?", name).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND")
		return
	}

	var cutoffRows []CutoffPoint
	if err := db.DB.Find(&cutoffRows, "school_name = ?", name).Error; err == nil && len(cutoffRows) > 0 {
		cutoffs := make(map[string]string, len(cutoffRows))
		for _, row := range cutoffRows {
			cutoffs[row.GroupKey] = row.Value
		}
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"ok": true,
			"item": schoolDetails{
				School:        school,
				CutoffPoints:  cutoffs,
				CutoffSummary: SummarizeCutoffs(cutoffs, school.MainlevelCode),
				CutoffPrimary: PrimaryCutoff(cutoffs, school.MainlevelCode),
			},
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"item": schoolDetails{School: school},
	})
}

// OptionsHandler implements GET /api/schools/options: the recognized picker
// values, derived from the catalog rather than free text.
func OptionsHandler(w http.ResponseWriter, r *http.Request) {
	EnsureFresh(r.Context())

	distinct := func(column string) []string {
		out := []string{}
		err := db.DB.Model(&School{}).
			Where(column+" <> ''").
			Distinct(column).
			Order(column + " ASC").
			Pluck(column, &out).Error
		if err != nil {
			return []string{}
		}
		return out
	}

	unnested := func(column string) []string {
		out := []string{}
		err := db.DB.Raw(
			`SELECT DISTINCT unnest(` + column + `) AS v FROM catalog.schools WHERE ` + column + ` IS NOT NULL ORDER BY v ASC`,
		).Pluck("v", &out).Error
		if err != nil {
			return []string{}
		}
		return out
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"levels":   distinct("mainlevel_code"),
		"zones":    distinct("zone_code"),
		"types":    distinct("type_code"),
		"subjects": unnested("subjects"),
		"ccas":     unnested("ccas"),
	})
}
