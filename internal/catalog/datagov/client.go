// Package datagov fetches the School Directory & Information datasets from
// Data.gov.sg.
package datagov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Dataset ids from the School Directory & Information collection. These
// rarely change.
const (
	DatasetSchoolInfo = "d_688b934f82c1059ed0a6993d2a829089"
	DatasetSubjects   = "d_f1d144e423570c9d84dbc5102c2e664d"
	DatasetCCAs       = "d_9aba12b5527843afb0b2e8e4ed6ac6bd"
)

const defaultBaseURL = "https://api-production.data.gov.sg"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Data.gov.sg client. DATAGOV_BASE_URL overrides the
// endpoint (tests point it at a local server).
func NewClient() *Client {
	base := os.Getenv("DATAGOV_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 25 * time.Second,
		},
	}
}

type listRowsResponse struct {
	Data struct {
		Rows  []map[string]any `json:"rows"`
		Items []map[string]any `json:"items"`
	} `json:"data"`
}

// ListRows fetches every row of a dataset.
func (c *Client) ListRows(ctx context.Context, datasetID string) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/v2/public/api/datasets/%s/list-rows", c.baseURL, datasetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset %s returned HTTP %d", datasetID, resp.StatusCode)
	}

	var lr listRowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", datasetID, err)
	}

	rows := lr.Data.Rows
	if len(rows) == 0 {
		rows = lr.Data.Items
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no rows", datasetID)
	}
	return rows, nil
}

// Str pulls a string field out of a dataset row, coercing non-string scalars.
func Str(row map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}
