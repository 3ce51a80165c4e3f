// Package auth issues and verifies the HMAC JWTs used by the API and carries
// the authenticated identity through the request context.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mathia-edu/mathia/internal/rbac"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{hmac: []byte(secret), ttl: ttl}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueJWT signs a token for the given user id and role.
func (a *AuthService) IssueJWT(userID string, role rbac.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "mathia",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

var errInvalidToken = errors.New("invalid token")

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errInvalidToken
	}
	return c, nil
}

// identityFromBearer parses the Authorization header; nil when the request
// carries no usable credential.
func (a *AuthService) identityFromBearer(r *http.Request) *Identity {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil
	}
	claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return nil
	}
	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		return nil
	}
	return &Identity{UserID: claims.Subject, Role: role}
}

// respondUnauthorized writes the API's error envelope; middleware rejections
// look the same on the wire as handler rejections.
func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "unauthorized"})
}

// RequireAuth rejects with 401 unless a valid bearer token is presented. The
// generic message never reveals which part of the credential was wrong.
func RequireAuth(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := a.identityFromBearer(r)
			if id == nil {
				respondUnauthorized(w)
				return
			}
			ctx := WithIdentity(r.Context(), id)
			ctx = rbac.WithRole(ctx, id.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid token is present and lets
// the request through anonymously otherwise. Handlers behind it receive an
// explicit nil identity rather than a half-populated one.
func OptionalAuth(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := a.identityFromBearer(r); id != nil {
				ctx := WithIdentity(r.Context(), id)
				ctx = rbac.WithRole(ctx, id.Role)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}
