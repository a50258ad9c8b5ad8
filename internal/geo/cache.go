package geo

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// PostalCache is a resolved postal code. Postal codes are stable, so rows
// never expire; cmd/rewarm deletes them when a re-resolve is wanted.
type PostalCache struct {
	Postal     string    `gorm:"primaryKey;size:6" json:"postal"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func (PostalCache) TableName() string { return "geo.postal_caches" }

// Geocoder is the upstream lookup the resolver consults on cache miss.
type Geocoder interface {
	Geocode(ctx context.Context, postal string) (Point, error)
}

// PostalResolver is a read-through cache in front of a Geocoder: an
// in-process map first, then the postal_caches table, then the upstream.
// Concurrent first-time lookups of the same postal collapse into one
// upstream call.
type PostalResolver struct {
	client Geocoder
	db     *gorm.DB

	group singleflight.Group

	mu  sync.RWMutex
	mem map[string]Point
}

// NewPostalResolver builds a resolver. db may be nil, in which case results
// are cached in memory only.
func NewPostalResolver(client Geocoder, db *gorm.DB) *PostalResolver {
	return &PostalResolver{
		client: client,
		db:     db,
		mem:    make(map[string]Point),
	}
}

// Resolve returns coordinates for a postal code. Errors mean "no distance
// signal for this request", never a fatal condition for the caller.
func (r *PostalResolver) Resolve(ctx context.Context, postal string) (Point, error) {
	if !ValidPostal(postal) {
		return Point{}, &InvalidPostalError{Postal: postal}
	}

	r.mu.RLock()
	p, ok := r.mem[postal]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	v, err, _ := r.group.Do(postal, func() (any, error) {
		// Re-check under the flight: another goroutine may have filled it
		r.mu.RLock()
		p, ok := r.mem[postal]
		r.mu.RUnlock()
		if ok {
			return p, nil
		}

		if r.db != nil {
			var row PostalCache
			if err := r.db.First(&row, "postal = ?", postal).Error; err == nil {
				p := Point{Lat: row.Lat, Lng: row.Lng}
				r.remember(postal, p)
				return p, nil
			}
		}

		lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		p, err := r.client.Geocode(lookupCtx, postal)
		if err != nil {
			return Point{}, err
		}

		if r.db != nil {
			if err := r.db.Save(&PostalCache{
				Postal:     postal,
				Lat:        p.Lat,
				Lng:        p.Lng,
				ResolvedAt: time.Now(),
			}).Error; err != nil {
				log.Printf("[geo] failed to cache postal %s: %v", postal, err)
			}
		}
		r.remember(postal, p)
		return p, nil
	})
	if err != nil {
		return Point{}, err
	}
	return v.(Point), nil
}

func (r *PostalResolver) remember(postal string, p Point) {
	r.mu.Lock()
	r.mem[postal] = p
	r.mu.Unlock()
}

// InvalidPostalError marks a malformed postal code, as opposed to an upstream
// failure.
type InvalidPostalError struct {
	Postal string
}

func (e *InvalidPostalError) Error() string {
	return "invalid postal code " + e.Postal
}
