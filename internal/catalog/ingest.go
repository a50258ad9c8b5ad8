package catalog

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Solairith/SC2006-app-creation/internal/catalog/datagov"
	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stampName = "schools"

// upstream is the Data.gov.sg client; nil when CATALOG_OFFLINE=1, in which
// case the catalog serves whatever is already in the database (e.g. seeded
// by cmd/seed).
var upstream *datagov.Client

var catalogTTL = 12 * time.Hour

var refreshMu sync.Mutex

// EnsureFresh refreshes the catalog from upstream when the freshness stamp is
// missing or stale. Upstream failures are logged and the stale catalog keeps
// serving; an empty catalog plus a failed fetch is the only fatal case for
// the caller, surfaced as an empty result set.
func EnsureFresh(ctx context.Context) {
	if upstream == nil {
		return
	}

	refreshMu.Lock()
	defer refreshMu.Unlock()

	var stamp CatalogStamp
	err := db.DB.First(&stamp, "name = ?", stampName).Error
	if err == nil && time.Since(stamp.LastFetched) < catalogTTL {
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[catalog] stamp lookup failed: %v", err)
		return
	}

	if err := refresh(ctx); err != nil {
		log.Printf("[catalog] refresh failed, serving stale data: %v", err)
		return
	}

	if err := db.DB.Save(&CatalogStamp{Name: stampName, LastFetched: time.Now()}).Error; err != nil {
		log.Printf("[catalog] failed to update stamp: %v", err)
	}
}

// cutoffKeySet lets the directory dataset carry cutoff columns inline.
var cutoffKeySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(CutoffKeys))
	for _, k := range CutoffKeys {
		m[k] = struct{}{}
	}
	return m
}()

func refresh(ctx context.Context) error {
	rows, err := upstream.ListRows(ctx, datagov.DatasetSchoolInfo)
	if err != nil {
		return err
	}

	for _, row := range rows {
		name := strings.TrimSpace(datagov.Str(row, "school_name", "name"))
		if name == "" {
			continue
		}

		school := School{
			SchoolName:    name,
			Address:       datagov.Str(row, "address", "address1"),
			PostalCode:    datagov.Str(row, "postal_code", "postal"),
			MainlevelCode: strings.ToUpper(datagov.Str(row, "mainlevel_code", "level")),
			ZoneCode:      strings.ToUpper(datagov.Str(row, "zone_code", "zone")),
			TypeCode:      strings.ToUpper(datagov.Str(row, "type_code", "type")),
			Latitude:      parseCoord(datagov.Str(row, "latitude", "lat")),
			Longitude:     parseCoord(datagov.Str(row, "longitude", "lon", "lng")),
			LastSynced:    time.Now(),
		}

		if err := db.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "school_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"address", "postal_code", "mainlevel_code", "zone_code",
				"type_code", "latitude", "longitude", "last_synced",
			}),
		}).Create(&school).Error; err != nil {
			return err
		}

		// Some directory snapshots carry cutoff columns inline
		for key := range cutoffKeySet {
			if v := datagov.Str(row, key); v != "" {
				if err := db.DB.Save(&CutoffPoint{SchoolName: name, GroupKey: key, Value: v}).Error; err != nil {
					return err
				}
			}
		}
	}

	if err := refreshOfferings(ctx, datagov.DatasetSubjects, "subjects", "subject_desc"); err != nil {
		log.Printf("[catalog] subjects dataset: %v", err)
	}
	if err := refreshOfferings(ctx, datagov.DatasetCCAs, "ccas", "cca_generic_name"); err != nil {
		log.Printf("[catalog] ccas dataset: %v", err)
	}

	return nil
}

// refreshOfferings aggregates a per-school offering dataset (subjects or
// CCAs) into the matching text[] column. A failed offerings fetch leaves the
// previous values in place; it never aborts the school refresh.
func refreshOfferings(ctx context.Context, datasetID, column, field string) error {
	rows, err := upstream.ListRows(ctx, datasetID)
	if err != nil {
		return err
	}

	bySchool := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for _, row := range rows {
		name := strings.TrimSpace(datagov.Str(row, "school_name", "name"))
		value := strings.TrimSpace(datagov.Str(row, field, "description"))
		if name == "" || value == "" {
			continue
		}
		if seen[name] == nil {
			seen[name] = make(map[string]struct{})
		}
		key := strings.ToLower(value)
		if _, dup := seen[name][key]; dup {
			continue
		}
		seen[name][key] = struct{}{}
		bySchool[name] = append(bySchool[name], value)
	}

	for name, values := range bySchool {
		if err := db.DB.Model(&School{}).
			Where("school_name = ?", name).
			Update(column, pq.StringArray(values)).Error; err != nil {
			return err
		}
	}
	return nil
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
