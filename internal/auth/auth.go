// Package auth guards the admin endpoints: a single bcrypt-hashed admin
// password, exchanged at login for a signed HS256 token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

var (
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidToken     = errors.New("invalid token")
)

var hashCost = bcrypt.DefaultCost

// HashStore persists the admin password hash.
type HashStore interface {
	AdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	hashes HashStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(hashes HashStore, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		hashes: hashes,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Seed stores a hash of password unless one is already stored. It reports
// whether it wrote one.
func (a *Authenticator) Seed(ctx context.Context, password string) (bool, error) {
	_, err := a.hashes.AdminPasswordHash(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("read admin password: %w", err)
	}
	if err := a.SetPassword(ctx, password); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Authenticator) SetPassword(ctx context.Context, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := a.hashes.SetAdminPasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("store admin password: %w", err)
	}
	return nil
}

// Login checks password against the stored hash and returns an admin token.
func (a *Authenticator) Login(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	hash, err := a.hashes.AdminPasswordHash(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidPassword
	}
	if err != nil {
		return "", fmt.Errorf("read admin password: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return a.Issue(RoleAdmin)
}

func (a *Authenticator) Issue(role string) (string, error) {
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Check reports whether r carries a valid token and the role it grants.
func (a *Authenticator) Check(r *http.Request) (bool, string) {
	token := BearerToken(r)
	if token == "" {
		return false, RoleGuest
	}
	claims, err := a.Verify(token)
	if err != nil {
		return false, RoleGuest
	}
	return true, claims.Role
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

type claimsKey struct{}

// ClaimsFromContext returns the claims RequireAdmin attached to ctx.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// RequireAdmin rejects requests without a valid admin token.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "認証が必要です")
			return
		}
		claims, err := a.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "無効なトークンです")
			return
		}
		if claims.Role != RoleAdmin {
			writeError(w, http.StatusForbidden, "管理者権限が必要です")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
