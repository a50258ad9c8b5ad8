package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.onemap.gov.sg"

var postalRe = regexp.MustCompile(`^\d{6}$`)

// ValidPostal reports whether s looks like a Singapore postal code.
func ValidPostal(s string) bool {
	return postalRe.MatchString(s)
}

// Point is a resolved coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client wraps the OneMap search API, which resolves Singapore postal codes
// to coordinates without an API key.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds an OneMap client. ONEMAP_BASE_URL overrides the endpoint
// (used by tests and by deployments behind a proxy).
func NewClient() *Client {
	base := os.Getenv("ONEMAP_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		// OneMap allows 250 calls/min; stay under it
		limiter: rate.NewLimiter(rate.Limit(250.0/60.0), 5),
	}
}

type searchResponse struct {
	Found   int `json:"found"`
	Results []struct {
		SearchVal string `json:"SEARCHVAL"`
		Latitude  string `json:"LATITUDE"`
		Longitude string `json:"LONGITUDE"`
	} `json:"results"`
}

// Geocode resolves a 6-digit postal code to coordinates.
func (c *Client) Geocode(ctx context.Context, postal string) (Point, error) {
	if !ValidPostal(postal) {
		return Point{}, fmt.Errorf("invalid postal code %q", postal)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Point{}, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/api/common/elastic/search?searchVal=%s&returnGeom=Y&getAddrDetails=N&pageNum=1",
		c.baseURL, url.QueryEscape(postal))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Point{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Point{}, fmt.Errorf("decoding response: %w", err)
	}
	if sr.Found == 0 || len(sr.Results) == 0 {
		return Point{}, fmt.Errorf("no results for postal code %s", postal)
	}

	// OneMap returns coordinates as strings
	lat, err := strconv.ParseFloat(sr.Results[0].Latitude, 64)
	if err != nil {
		return Point{}, fmt.Errorf("bad latitude %q: %w", sr.Results[0].Latitude, err)
	}
	lng, err := strconv.ParseFloat(sr.Results[0].Longitude, 64)
	if err != nil {
		return Point{}, fmt.Errorf("bad longitude %q: %w", sr.Results[0].Longitude, err)
	}

	return Point{Lat: lat, Lng: lng}, nil
}
