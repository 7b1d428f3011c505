package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesmama/internal/auth"
	"moviesmama/internal/testutil"
)

func TestRequireAuth(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := auth.NewTokenIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	valid, err := issuer.Issue("u1")
	require.NoError(t, err)
	foreign, err := other.Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: msgNoToken},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized, wantMsg: msgTokenFailed},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized, wantMsg: msgTokenFailed},
		{name: "blank token", header: "Bearer    ", wantStatus: http.StatusUnauthorized, wantMsg: msgTokenFailed},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized, wantMsg: msgTokenFailed},
		{name: "foreign signature", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized, wantMsg: msgTokenFailed},
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, issuer, testutil.MakeNoopLogger(), Options{})

			router := gin.New()
			var seenGin, seenCtx string
			router.GET("/private", h.requireAuth(), func(c *gin.Context) {
				seenGin = c.GetString(contextUserIDKey)
				seenCtx, _ = auth.UserIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, rec.Body.String())
				assert.Empty(t, seenGin)
				return
			}
			assert.Equal(t, "u1", seenGin)
			assert.Equal(t, "u1", seenCtx)
		})
	}
}

func TestRateLimiter_PerClientAndSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"), "buckets are per client")

	now = now.Add(2 * time.Minute)
	assert.True(t, l.allow("10.0.0.1"))
	assert.Len(t, l.visitors, 1, "idle visitors are swept")
}
