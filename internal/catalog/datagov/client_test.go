package datagov

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("DATAGOV_BASE_URL", srv.URL)
	return NewClient()
}

func TestListRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, DatasetSchoolInfo) {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"rows":[{"school_name":"ANGLO-CHINESE SCHOOL","zone_code":"CENTRAL"}]}}`))
	})

	rows, err := c.ListRows(context.Background(), DatasetSchoolInfo)
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := Str(rows[0], "school_name"); got != "ANGLO-CHINESE SCHOOL" {
		t.Errorf("unexpected school_name: %q", got)
	}
}

func TestListRows_ItemsFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"items":[{"school_name":"X"}]}}`))
	})

	rows, err := c.ListRows(context.Background(), DatasetSubjects)
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row from items fallback, got %d", len(rows))
	}
}

func TestListRows_EmptyDataset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"rows":[]}}`))
	})

	if _, err := c.ListRows(context.Background(), DatasetCCAs); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestListRows_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := c.ListRows(context.Background(), DatasetSchoolInfo); err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}

func TestStr(t *testing.T) {
	row := map[string]any{
		"a": "hello",
		"b": "",
		"c": float64(659578),
		"d": nil,
	}
	if got := Str(row, "a"); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := Str(row, "b", "a"); got != "hello" {
		t.Errorf("empty first key should fall through, got %q", got)
	}
	if got := Str(row, "c"); got != "659578" {
		t.Errorf("numeric coercion failed, got %q", got)
	}
	if got := Str(row, "d", "missing"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
