package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/Solairith/SC2006-app-creation/internal/auth"
	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/geo"
	"github.com/Solairith/SC2006-app-creation/internal/prefs"
	"github.com/Solairith/SC2006-app-creation/internal/recommend"
	"github.com/Solairith/SC2006-app-creation/internal/utils"
	"golang.org/x/sync/errgroup"
)

// scoreConcurrency bounds the per-request scoring fan-out.
const scoreConcurrency = 8

// RecommendationItem is one ranked school. Derived per request, never
// persisted. DistanceKm is null when either endpoint lacks coordinates.
type RecommendationItem struct {
	SchoolName    string            `json:"school_name"`
	Address       string            `json:"address"`
	PostalCode    string            `json:"postal_code"`
	MainlevelCode string            `json:"mainlevel_code"`
	ZoneCode      string            `json:"zone_code"`
	TypeCode      string            `json:"type_code"`
	Score         float64           `json:"score"`
	ScorePercent  int               `json:"score_percent"`
	DistanceKm    *float64          `json:"distance_km"`
	Reasons       recommend.Reasons `json:"reasons"`
}

type recommendInput struct {
	Level      string
	Subjects   []string
	CCAs       []string
	TravelKm   *float64
	HomePostal string
	Lat        *float64
	Lon        *float64
	Limit      int
	Weights    *recommend.Weights
}

// explicit reports whether the request carried its own preferences, in which
// case no session is needed.
func (in recommendInput) explicit() bool {
	return in.Level != "" || len(in.Subjects) > 0 || len(in.CCAs) > 0 ||
		in.TravelKm != nil || in.HomePostal != ""
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseRecommendInput(r *http.Request) (recommendInput, string) {
	var in recommendInput

	if r.Method == http.MethodPost {
		var body struct {
			Level      string             `json:"level"`
			Subjects   []string           `json:"subjects"`
			CCAs       []string           `json:"ccas"`
			TravelKm   *float64           `json:"travel_km"`
			HomePostal string             `json:"home_postal"`
			Lat        *float64           `json:"lat"`
			Lon        *float64           `json:"lon"`
			Limit      int                `json:"limit"`
			Weights    *recommend.Weights `json:"weights"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return in, "VALIDATION_ERROR"
		}
		in = recommendInput{
			Level:      body.Level,
			Subjects:   body.Subjects,
			CCAs:       body.CCAs,
			TravelKm:   body.TravelKm,
			HomePostal: body.HomePostal,
			Lat:        body.Lat,
			Lon:        body.Lon,
			Limit:      body.Limit,
			Weights:    body.Weights,
		}
	}

	q := r.URL.Query()
	if in.Level == "" {
		in.Level = q.Get("level")
	}
	if len(in.Subjects) == 0 {
		in.Subjects = splitCSV(q.Get("subjects"))
	}
	if len(in.CCAs) == 0 {
		in.CCAs = splitCSV(q.Get("ccas"))
	}
	if in.HomePostal == "" {
		in.HomePostal = strings.TrimSpace(q.Get("home_postal"))
	}
	if in.TravelKm == nil {
		if s := q.Get("travel_km"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v <= 0 {
				return in, "VALIDATION_ERROR"
			}
			in.TravelKm = &v
		}
	}
	if in.Limit == 0 {
		if s := q.Get("limit"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 0 {
				return in, "VALIDATION_ERROR"
			}
			in.Limit = v
		}
	}

	return in, ""
}

// RecommendHandler implements GET|POST /api/schools/recommend. Every school
// is scored and returned; distance and preference mismatches only rank,
// never exclude.
func RecommendHandler(w http.ResponseWriter, r *http.Request) {
	in, code := parseRecommendInput(r)
	if code != "" {
		utils.WriteError(w, http.StatusBadRequest, code)
		return
	}

	// Without explicit preferences the saved profile is used, which needs
	// a session.
	p := recommend.Prefs{Level: in.Level, Subjects: in.Subjects, CCAs: in.CCAs}
	maxKm := 0.0
	if in.TravelKm != nil {
		maxKm = *in.TravelKm
	}
	homePostal := in.HomePostal

	if !in.explicit() {
		user, ok := auth.CurrentUser(r)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED")
			return
		}
		saved, err := prefs.ReadPreferences(user.UserID)
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
			return
		}
		p = recommend.Prefs{Level: saved.Level, Subjects: saved.Subjects, CCAs: saved.CCAs}
		if saved.MaxDistanceKm != nil {
			maxKm = *saved.MaxDistanceKm
		}
		homePostal = saved.HomePostal
	}

	weights := engineWeights
	if in.Weights != nil {
		normalized, err := in.Weights.Normalized()
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR")
			return
		}
		weights = normalized
	}

	EnsureFresh(r.Context())

	// Resolve the home location. Failure is not fatal: scoring proceeds
	// with null distances.
	var userPt *geo.Point
	if in.Lat != nil && in.Lon != nil {
		userPt = &geo.Point{Lat: *in.Lat, Lng: *in.Lon}
	} else if homePostal != "" && geo.Resolver != nil {
		if pt, err := geo.Resolver.Resolve(r.Context(), homePostal); err != nil {
			log.Printf("[recommend] could not resolve home postal %s: %v", homePostal, err)
		} else {
			userPt = &pt
		}
	}

	var schools []School
	if err := db.DB.Find(&schools).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	items := make([]RecommendationItem, len(schools))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(scoreConcurrency)
	for i, s := range schools {
		i, s := i, s
		g.Go(func() error {
			var distance *float64
			if userPt != nil {
				if pt := schoolPoint(ctx, s); pt != nil {
					d := geo.Haversine(userPt.Lat, userPt.Lng, pt.Lat, pt.Lng)
					d = math.Round(d*100) / 100
					distance = &d
				}
			}

			result := recommend.Score(p, recommend.SchoolFacts{
				Name:     s.SchoolName,
				Level:    s.MainlevelCode,
				Subjects: s.Subjects,
				CCAs:     s.CCAs,
			}, distance, maxKm, weights)

			items[i] = RecommendationItem{
				SchoolName:    s.SchoolName,
				Address:       s.Address,
				PostalCode:    s.PostalCode,
				MainlevelCode: s.MainlevelCode,
				ZoneCode:      s.ZoneCode,
				TypeCode:      s.TypeCode,
				Score:         result.Score,
				ScorePercent:  result.ScorePercent,
				DistanceKm:    distance,
				Reasons:       result.Reasons,
			}
			return nil
		})
	}
	_ = g.Wait()

	// Score descending, tie-break alphabetically A→Z
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return strings.ToLower(items[i].SchoolName) < strings.ToLower(items[j].SchoolName)
	})

	if in.Limit > 0 && len(items) > in.Limit {
		items = items[:in.Limit]
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"count": len(items),
		"items": items,
		"preferences_used": map[string]any{
			"level":           p.Level,
			"subjects":        p.Subjects,
			"ccas":            p.CCAs,
			"max_distance_km": maxKm,
			"home_postal":     homePostal,
		},
		"home_postal_used": homePostal,
		"user_coords":      userPt,
	})
}

// schoolPoint returns the school's coordinates, falling back to geocoding its
// postal code on demand. Unresolvable schools contribute no distance signal.
func schoolPoint(ctx context.Context, s School) *geo.Point {
	if s.Latitude != nil && s.Longitude != nil {
		return &geo.Point{Lat: *s.Latitude, Lng: *s.Longitude}
	}
	if geo.Resolver == nil || !geo.ValidPostal(s.PostalCode) {
		return nil
	}
	pt, err := geo.Resolver.Resolve(ctx, s.PostalCode)
	if err != nil {
		return nil
	}
	return &pt
}
