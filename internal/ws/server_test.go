package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scribeflow/backend/internal/gamification"
)

func newTestServer(t *testing.T, authToken string) *Server {
	t.Helper()
	engine := newTestEngine(t)
	return NewServer(engine, NewBroadcaster(engine), "", false, nil, nil, authToken)
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	securityHeaders(inner).ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Content-Security-Policy": "default-src 'self'",
	}

	for header, expected := range want {
		if got := rec.Header().Get(header); got != expected {
			t.Errorf("header %s = %q, want %q", header, got, expected)
		}
	}
}

func TestAuthorize(t *testing.T) {
	s := newTestServer(t, "secret")

	tests := []struct {
		name    string
		mutate  func(r *http.Request)
		allowed bool
	}{
		{"NoCredentials", func(*http.Request) {}, false},
		{"QueryToken", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", "secret")
			r.URL.RawQuery = q.Encode()
		}, true},
		{"HeaderToken", func(r *http.Request) {
			r.Header.Set("X-ScribeFlow-Token", "secret")
		}, true},
		{"BearerToken", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer secret")
		}, true},
		{"WrongToken", func(r *http.Request) {
			r.Header.Set("X-ScribeFlow-Token", "nope")
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/gamification", nil)
			tt.mutate(req)
			if got := s.authorize(req); got != tt.allowed {
				t.Errorf("authorize = %v, want %v", got, tt.allowed)
			}
		})
	}
}

func TestAuthorize_NoTokenConfigured(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/gamification", nil)
	if !s.authorize(req) {
		t.Error("requests should be allowed when no token is configured")
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		host           string
		allowed        bool
	}{
		{"NoOriginHeader", nil, "", "127.0.0.1:8573", true},
		{"LocalhostDefault", nil, "http://localhost:3000", "127.0.0.1:8573", true},
		{"LoopbackDefault", nil, "http://127.0.0.1:8573", "127.0.0.1:8573", true},
		{"SameHost", nil, "http://myhost:8573", "myhost:8573", true},
		{"RemoteRejected", nil, "http://evil.example.com", "127.0.0.1:8573", false},
		{"AllowlistMatch", []string{"http://overlay.local:9000"}, "http://overlay.local:9000", "127.0.0.1:8573", true},
		{"AllowlistMiss", []string{"http://overlay.local:9000"}, "http://localhost:3000", "127.0.0.1:8573", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			s := NewServer(engine, NewBroadcaster(engine), "", false, nil, tt.allowedOrigins, "")

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			if got := s.checkOrigin(req); got != tt.allowed {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
			}
		})
	}
}

func TestHandleSession(t *testing.T) {
	s := newTestServer(t, "")

	body := strings.NewReader(`{"words":100,"durationMs":60000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session", body)
	rec := httptest.NewRecorder()
	s.handleSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result gamification.SessionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.XPGained != 185 {
		t.Errorf("XPGained = %d, want 185", result.XPGained)
	}
	if len(result.NewAchievements) != 1 || result.NewAchievements[0] != "first-steps" {
		t.Errorf("NewAchievements = %v, want [first-steps]", result.NewAchievements)
	}
	if !result.LeveledUp || result.NewLevel != 2 {
		t.Errorf("LeveledUp = %v NewLevel = %d, want true 2", result.LeveledUp, result.NewLevel)
	}
}

func TestHandleSession_NoUnlocksSerializesEmptyArray(t *testing.T) {
	s := newTestServer(t, "")

	post := func() *httptest.ResponseRecorder {
		body := strings.NewReader(`{"words":1,"durationMs":0}`)
		req := httptest.NewRequest(http.MethodPost, "/api/session", body)
		rec := httptest.NewRecorder()
		s.handleSession(rec, req)
		return rec
	}

	post() // first session unlocks first-steps
	rec := post()

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"newAchievements":null`) {
		t.Errorf("newAchievements serialized as null: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"newAchievements":[]`) {
		t.Errorf("newAchievements not an empty array: %s", rec.Body.String())
	}
}

func TestHandleSession_RejectsGet(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	s.handleSession(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleSession_BadBody(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handleSession(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSession_Unauthorized(t *testing.T) {
	s := newTestServer(t, "secret")

	body := strings.NewReader(`{"words":10,"durationMs":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session", body)
	rec := httptest.NewRecorder()
	s.handleSession(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleGamification(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/gamification", nil)
	rec := httptest.NewRecorder()
	s.handleGamification(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data gamification.GamificationData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if data.Level.Level != 1 {
		t.Errorf("fresh aggregate level = %d, want 1", data.Level.Level)
	}
}

func TestHandleAchievements_ReturnsCatalog(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/achievements", nil)
	rec := httptest.NewRecorder()
	s.handleAchievements(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var catalog []gamification.Achievement
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(catalog) != len(gamification.Catalog()) {
		t.Errorf("catalog length = %d, want %d", len(catalog), len(gamification.Catalog()))
	}
}

func TestHandleFeature(t *testing.T) {
	s := newTestServer(t, "")

	body := strings.NewReader(`{"event":"formatting","meta":{"model":"gpt-4o-mini"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/feature", body)
	rec := httptest.NewRecorder()
	s.handleFeature(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !containsID(resp["newAchievements"], "first-polish") {
		t.Errorf("newAchievements = %v, want first-polish", resp["newAchievements"])
	}
}

// failRepo simulates an unavailable state file.
type failRepo struct{ err error }

func (f *failRepo) Load() (*gamification.GamificationData, error) { return nil, f.err }
func (f *failRepo) Save(*gamification.GamificationData) error     { return f.err }

func TestHandleFeature_StoreFailure(t *testing.T) {
	engine := gamification.NewEngine(&failRepo{err: errors.New("disk gone")})
	s := NewServer(engine, NewBroadcaster(engine), "", false, nil, nil, "")

	body := strings.NewReader(`{"event":"formatting"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/feature", body)
	rec := httptest.NewRecorder()
	s.handleFeature(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 for persistence failure", rec.Code)
	}
}

func TestHandleFeature_UnknownEvent(t *testing.T) {
	s := newTestServer(t, "")

	body := strings.NewReader(`{"event":"telepathy"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/feature", body)
	rec := httptest.NewRecorder()
	s.handleFeature(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleBonus_OncePerDay(t *testing.T) {
	s := newTestServer(t, "")

	call := func() gamification.DailyBonusResult {
		req := httptest.NewRequest(http.MethodPost, "/api/bonus", nil)
		rec := httptest.NewRecorder()
		s.handleBonus(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var result gamification.DailyBonusResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return result
	}

	first := call()
	if !first.BonusAwarded || first.XPGained != gamification.XPDailyBonus {
		t.Errorf("first call: awarded=%v xp=%d, want true %d", first.BonusAwarded, first.XPGained, gamification.XPDailyBonus)
	}

	second := call()
	if second.BonusAwarded {
		t.Error("second call on the same day should not award the bonus")
	}
}

func TestHandleReset(t *testing.T) {
	s := newTestServer(t, "")

	// Seed some progress first.
	seed := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{"words":100,"durationMs":60000}`))
	s.handleSession(httptest.NewRecorder(), seed)

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	rec := httptest.NewRecorder()
	s.handleReset(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	data, err := s.engine.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if data.Stats.TotalSessions != 0 || data.Level.CurrentXP != 0 {
		t.Errorf("aggregate not reset: sessions=%d xp=%d", data.Stats.TotalSessions, data.Level.CurrentXP)
	}
}

func containsID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
