package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Solairith/SC2006-app-creation/internal/auth"
	"github.com/Solairith/SC2006-app-creation/internal/db"
	"github.com/Solairith/SC2006-app-creation/internal/middleware"
	"github.com/Solairith/SC2006-app-creation/internal/prefs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

// testServer is the shared httptest server for all integration tests.
var testServer *httptest.Server

func TestMain(m *testing.M) {
	// Load .env.local relative to the repo root (two directories up).
	_ = godotenv.Load("../../.env.local")

	if os.Getenv("DATABASE_URL") == "" {
		// No database available — skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	db.Connect()
	dbAvailable = true

	auth.Init()
	prefs.Init()

	// Mount routes the way main.go does.
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", auth.SetupRoutes())
		api.Post("/logout", auth.LogoutHandler)
		api.Get("/me", auth.MeHandler)
		api.Mount("/preferences", prefs.SetupRoutes(auth.SessionInfo{}))
	})

	testServer = httptest.NewServer(r)
	code := m.Run()
	testServer.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
}

// newClientWithJar returns an http.Client with a fresh cookie jar that
// automatically carries cookies between requests.
func newClientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, path string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := client.Post(testServer.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// signupTestUser creates a fresh account through the API and registers a
// cleanup for its rows. Returns the email and password.
func signupTestUser(t *testing.T, client *http.Client) (email, password string) {
	t.Helper()
	requireDB(t)

	email = fmt.Sprintf("test_%s@example.com", uuid.New().String()[:8])
	password = "TestPass123!"

	resp := postJSON(t, client, "/api/auth/signup", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", resp.StatusCode)
	}

	t.Cleanup(func() {
		var user auth.User
		if err := db.DB.First(&user, "email = ?", email).Error; err == nil {
			db.DB.Where("user_id = ?", user.UserID).Delete(&auth.Session{})
			db.DB.Where("user_id = ?", user.UserID).Delete(&prefs.UserPreferences{})
			db.DB.Delete(&user)
		}
	})

	return email, password
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	client := newClientWithJar(t)
	email, password := signupTestUser(t, client)

	// Signup already set a session cookie; /api/me should know us.
	resp, err := client.Get(testServer.URL + "/api/me")
	if err != nil {
		t.Fatalf("GET /api/me: %v", err)
	}
	var me struct {
		User *struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	json.NewDecoder(resp.Body).Decode(&me)
	resp.Body.Close()
	if me.User == nil || me.User.Email != email {
		t.Fatalf("expected signed-in user %s, got %+v", email, me.User)
	}

	// Logout, then /api/me reports anonymous.
	resp = postJSON(t, client, "/api/logout", nil)
	resp.Body.Close()

	resp, err = client.Get(testServer.URL + "/api/me")
	if err != nil {
		t.Fatalf("GET /api/me: %v", err)
	}
	me.User = nil
	json.NewDecoder(resp.Body).Decode(&me)
	resp.Body.Close()
	if me.User != nil {
		t.Fatalf("expected anonymous after logout, got %+v", me.User)
	}

	// Fresh login works.
	resp = postJSON(t, client, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogin_WrongPassword(t *testing.T) {
	client := newClientWithJar(t)
	email, _ := signupTestUser(t, client)

	resp := postJSON(t, newClientWithJar(t), "/api/auth/login", map[string]string{
		"email":    email,
		"password": "not-the-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestEmailExists(t *testing.T) {
	client := newClientWithJar(t)
	email, _ := signupTestUser(t, client)

	resp, err := http.Get(testServer.URL + "/api/auth/email-exists?email=" + email)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Exists bool `json:"exists"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if !out.Exists {
		t.Error("expected exists=true for a registered email")
	}

	resp2, err := http.Get(testServer.URL + "/api/auth/email-exists?email=nobody@example.com")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp2.Body.Close()
	json.NewDecoder(resp2.Body).Decode(&out)
	if out.Exists {
		t.Error("expected exists=false for an unknown email")
	}
}

func TestPasswordResetLite(t *testing.T) {
	client := newClientWithJar(t)
	email, _ := signupTestUser(t, client)

	resp := postJSON(t, newClientWithJar(t), "/api/auth/password/reset-lite", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "NewPass456!",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset-lite: expected 200, got %d", resp.StatusCode)
	}

	// Old password no longer works; new one does.
	resp = postJSON(t, newClientWithJar(t), "/api/auth/login", map[string]string{
		"email": email, "password": "TestPass123!",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password: expected 401, got %d", resp.StatusCode)
	}

	resp = postJSON(t, newClientWithJar(t), "/api/auth/login", map[string]string{
		"email": email, "password": "NewPass456!",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new password: expected 200, got %d", resp.StatusCode)
	}
}

func TestPreferencesRoundtrip(t *testing.T) {
	client := newClientWithJar(t)
	signupTestUser(t, client)

	// Unauthenticated request is rejected with an explicit code.
	resp, err := http.Get(testServer.URL + "/api/preferences")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous preferences: expected 401, got %d", resp.StatusCode)
	}

	// Save preferences on the signed-in client.
	body, _ := json.Marshal(map[string]any{
		"level":           "sec",
		"subjects":        []string{"Biology"},
		"ccas":            []string{"Choir", "Band"},
		"max_distance_km": 5.0,
		"home_postal":     "238801",
	})
	req, _ := http.NewRequest(http.MethodPut, testServer.URL+"/api/preferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT preferences: expected 200, got %d", resp.StatusCode)
	}

	// Read them back; level must come back normalized.
	resp, err = client.Get(testServer.URL + "/api/preferences")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		OK            bool     `json:"ok"`
		Level         string   `json:"level"`
		Subjects      []string `json:"subjects"`
		CCAs          []string `json:"ccas"`
		MaxDistanceKm *float64 `json:"max_distance_km"`
		HomePostal    string   `json:"home_postal"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if !out.OK || out.Level != "SECONDARY" || len(out.CCAs) != 2 || out.HomePostal != "238801" {
		t.Fatalf("unexpected preferences: %+v", out)
	}
}

func TestPreferencesValidation(t *testing.T) {
	client := newClientWithJar(t)
	signupTestUser(t, client)

	bad := []map[string]any{
		{"home_postal": "12345"},        // not 6 digits
		{"max_distance_km": -2.0},       // non-positive
		{"level": "KINDERGARTEN-RANDO"}, // unknown level
	}
	for _, b := range bad {
		body, _ := json.Marshal(b)
		req, _ := http.NewRequest(http.MethodPut, testServer.URL+"/api/preferences", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %v: expected 400, got %d", b, resp.StatusCode)
		}
	}
}
