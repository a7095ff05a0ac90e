package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

func init() {
	hashCost = bcrypt.MinCost
}

type memHashes struct {
	hash string
	sets int
}

func (m *memHashes) AdminPasswordHash(context.Context) (string, error) {
	if m.hash == "" {
		return "", store.ErrNotFound
	}
	return m.hash, nil
}

func (m *memHashes) SetAdminPasswordHash(_ context.Context, hash string) error {
	m.hash = hash
	m.sets++
	return nil
}

func newTestAuth(t *testing.T) (*Authenticator, *memHashes) {
	t.Helper()
	hashes := &memHashes{}
	a := New(hashes, "test-secret", time.Hour)
	seeded, err := a.Seed(context.Background(), "admin123")
	require.NoError(t, err)
	require.True(t, seeded)
	return a, hashes
}

func TestSeed_OnlyOnce(t *testing.T) {
	a, hashes := newTestAuth(t)

	seeded, err := a.Seed(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 1, hashes.sets)
	assert.NotEqual(t, "admin123", hashes.hash)
}

func TestLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	token, err := a.Login(ctx, "admin123")
	require.NoError(t, err)

	claims, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	_, err = a.Login(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = a.Login(ctx, "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestLogin_NoStoredHash(t *testing.T) {
	a := New(&memHashes{}, "s", time.Hour)
	_, err := a.Login(context.Background(), "admin123")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSetPassword(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, a.SetPassword(ctx, "new-password"))
	_, err := a.Login(ctx, "admin123")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = a.Login(ctx, "new-password")
	assert.NoError(t, err)

	assert.ErrorIs(t, a.SetPassword(ctx, ""), ErrPasswordRequired)
}

func TestVerify_Rejects(t *testing.T) {
	a, _ := newTestAuth(t)

	other := New(&memHashes{}, "another-secret", time.Hour)
	foreign, err := other.Issue(RoleAdmin)
	require.NoError(t, err)

	expired := New(&memHashes{}, "test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue(RoleAdmin)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), "header %q", tt.header)
	}
}

func TestCheck(t *testing.T) {
	a, _ := newTestAuth(t)
	token, err := a.Issue(RoleAdmin)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/auth/check", nil)
	ok, role := a.Check(r)
	assert.False(t, ok)
	assert.Equal(t, RoleGuest, role)

	r.Header.Set("Authorization", "Bearer "+token)
	ok, role = a.Check(r)
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	r.Header.Set("Authorization", "Bearer broken")
	ok, role = a.Check(r)
	assert.False(t, ok)
	assert.Equal(t, RoleGuest, role)
}

func TestRequireAdmin(t *testing.T) {
	a, _ := newTestAuth(t)
	admin, err := a.Issue(RoleAdmin)
	require.NoError(t, err)
	viewer, err := a.Issue("viewer")
	require.NoError(t, err)

	var seen *Claims
	h := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		header  string
		code    int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "認証が必要です"},
		{"invalid", "Bearer nope", http.StatusUnauthorized, "無効なトークンです"},
		{"not admin", "Bearer " + viewer, http.StatusForbidden, "管理者権限が必要です"},
		{"admin", "Bearer " + admin, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("DELETE", "/api/faqs/1", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, RoleAdmin, seen.Role)
}
