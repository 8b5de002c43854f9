package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)

	token, err := a.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	other, err := NewAuthenticator("other-secret")
	require.NoError(t, err)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired token must be rejected")
}

func TestNewAuthenticatorRequiresSecret(t *testing.T) {
	_, err := NewAuthenticator("")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	a, err := NewAuthenticator("test-secret")
	require.NoError(t, err)
	token, err := a.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", ""},
		{"valid bearer", "Bearer " + token, "user-1"},
		{"lowercase scheme", "bearer " + token, "user-1"},
		{"wrong scheme", "Basic " + token, ""},
		{"garbage token", "Bearer not-a-jwt", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = CallerFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}
