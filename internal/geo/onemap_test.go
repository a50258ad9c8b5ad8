package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("ONEMAP_BASE_URL", srv.URL)
	return NewClient()
}

func TestGeocode_MalformedLatitude(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("searchVal"); got != "238801" {
			t.Errorf("expected searchVal=238801, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"found":1,"results":[{"SEARCHVAL":"NGEE ANN CITY","LATITUDE":"1.30294ump","LONGITUDE":"103.83341"}]}`))
	})

	_, err := c.Geocode(context.Background(), "238801")
	if err == nil {
		t.Fatal("expected error for malformed latitude")
	}
}

func TestGeocode_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"found":1,"results":[{"SEARCHVAL":"NGEE ANN CITY","LATITUDE":"1.30294","LONGITUDE":"103.83341"}]}`))
	})

	pt, err := c.Geocode(context.Background(), "238801")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if pt.Lat != 1.30294 || pt.Lng != 103.83341 {
		t.Errorf("unexpected point: %+v", pt)
	}
}

func TestGeocode_NoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"found":0,"results":[]}`))
	})

	if _, err := c.Geocode(context.Background(), "999999"); err == nil {
		t.Fatal("expected error for unresolvable postal code")
	}
}

func TestGeocode_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := c.Geocode(context.Background(), "238801"); err == nil {
		t.Fatal("expected error for HTTP 502")
	}
}

func TestGeocode_RejectsInvalidPostal(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.Geocode(context.Background(), "not-a-postal"); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("invalid postal must not hit the network")
	}
}
