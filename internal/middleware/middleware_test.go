package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rdrlink/shortener/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-IP": "198.51.100.2"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.2 "}, "198.51.100.2"},
		{"blank forwarded", map[string]string{"X-Forwarded-For": " ,10.0.0.1", "X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"peer", nil, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/abc", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(c))
		})
	}
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), CORS(DefaultCORSConfig()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestCORSAllowList(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for origin, want := range map[string]string{"https://app.example": "https://app.example", "https://evil.example": ""} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", origin)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestMemoryCounter(t *testing.T) {
	m := NewMemoryCounter(0)
	defer m.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		n, err := m.IncrementRateLimit(context.Background(), "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	now = now.Add(time.Minute)
	n, _ := m.IncrementRateLimit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(1), n)

	now = now.Add(2 * time.Minute)
	m.sweep()
	assert.Empty(t, m.windows)
}

type failingCounter struct{}

func (failingCounter) IncrementRateLimit(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimiter(t *testing.T) {
	counter := NewMemoryCounter(0)
	defer counter.Close()

	r := gin.New()
	r.GET("/:code", NewRateLimiter(counter, 2, zaptest.NewLogger(t)).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusFound)
	})

	do := func(ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.Header.Set("X-Forwarded-For", ip)
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusFound, do("203.0.113.1").Code)
	w := do("203.0.113.1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do("203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), models.ErrCodeRateLimited)

	assert.Equal(t, http.StatusFound, do("203.0.113.2").Code)
}

func TestScopedRateLimiterCountsSeparately(t *testing.T) {
	counter := NewMemoryCounter(0)
	defer counter.Close()

	api := NewRateLimiter(counter, 1, zaptest.NewLogger(t))
	r := gin.New()
	r.GET("/api", api.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/go", api.Scoped("redirect").Middleware(), func(c *gin.Context) { c.Status(http.StatusFound) })

	do := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.5")
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/api"))
	assert.Equal(t, http.StatusFound, do("/go"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api"))
	assert.Equal(t, http.StatusTooManyRequests, do("/go"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/:code", NewRateLimiter(failingCounter{}, 1, zaptest.NewLogger(t)).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusFound)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc", nil))
		assert.Equal(t, http.StatusFound, w.Code)
	}
}

type fakeKeys map[string]*models.APIKey

func (f fakeKeys) ValidateKey(_ context.Context, raw string) (*models.APIKey, error) {
	if raw == "sk_live_broken" {
		return nil, errors.New("db down")
	}
	return f[raw], nil
}

func TestAPIKeyAuth(t *testing.T) {
	active := &models.APIKey{ID: uuid.New(), IsActive: true}
	revoked := &models.APIKey{ID: uuid.New(), IsActive: false}
	auth := NewAPIKeyAuth(fakeKeys{"sk_live_good": active, "sk_live_revoked": revoked}, zaptest.NewLogger(t))

	r := gin.New()
	owner := func(c *gin.Context) {
		if id := OwnerID(c); id != nil {
			c.String(http.StatusOK, id.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	r.GET("/required", auth.RequireKey(), owner)
	r.GET("/optional", auth.OptionalKey(), owner)

	tests := []struct {
		path   string
		header string
		value  string
		status int
		body   string
	}{
		{"/required", "X-API-Key", "sk_live_good", http.StatusOK, active.ID.String()},
		{"/required", "Authorization", "Bearer sk_live_good", http.StatusOK, active.ID.String()},
		{"/required", "", "", http.StatusUnauthorized, ""},
		{"/required", "X-API-Key", "sk_live_unknown", http.StatusUnauthorized, ""},
		{"/required", "X-API-Key", "sk_live_revoked", http.StatusUnauthorized, ""},
		{"/required", "X-API-Key", "sk_live_broken", http.StatusUnauthorized, ""},
		{"/optional", "", "", http.StatusOK, "anonymous"},
		{"/optional", "X-API-Key", "sk_live_good", http.StatusOK, active.ID.String()},
		{"/optional", "X-API-Key", "sk_live_unknown", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.header != "" {
			req.Header.Set(tt.header, tt.value)
		}
		r.ServeHTTP(w, req)

		assert.Equal(t, tt.status, w.Code, "%s %s", tt.path, tt.value)
		if tt.body != "" {
			assert.Equal(t, tt.body, w.Body.String())
		}
	}
}
