package catalog

import (
	"time"

	"github.com/lib/pq"
)

// School is immutable reference data owned by the upstream directory.
// school_name is the dataset's unique key.
type School struct {
	SchoolName    string         `gorm:"primaryKey" json:"school_name"`
	Address       string         `json:"address"`
	PostalCode    string         `json:"postal_code"`
	MainlevelCode string         `gorm:"index" json:"mainlevel_code"`
	ZoneCode      string         `gorm:"index" json:"zone_code"`
	TypeCode      string         `json:"type_code"`
	Latitude      *float64       `json:"latitude,omitempty"`
	Longitude     *float64       `json:"longitude,omitempty"`
	Subjects      pq.StringArray `gorm:"type:text[]" json:"subjects,omitempty"`
	CCAs          pq.StringArray `gorm:"type:text[]" json:"ccas,omitempty"`
	LastSynced    time.Time      `json:"-"`
}

// CutoffPoint is one posting-group cutoff band for a secondary school.
// GroupKey is one of the six fixed posting-group keys; Value is a numeric or
// range string, or "N/A".
type CutoffPoint struct {
	SchoolName string `gorm:"primaryKey" json:"school_name"`
	GroupKey   string `gorm:"primaryKey" json:"group_key"`
	Value      string `json:"value"`
}

// CatalogStamp records when the catalog was last refreshed from upstream.
type CatalogStamp struct {
	Name        string    `gorm:"primaryKey" json:"name"`
	LastFetched time.Time `json:"last_fetched"`
}

func (School) TableName() string       { return "catalog.schools" }
func (CutoffPoint) TableName() string  { return "catalog.cutoff_points" }
func (CatalogStamp) TableName() string { return "catalog.stamps" }
