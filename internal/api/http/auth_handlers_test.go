package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mathia-edu/mathia/internal/auth/middleware"
	"github.com/mathia-edu/mathia/internal/user"
	"github.com/mathia-edu/mathia/internal/validate"
)

type memUserStore struct {
	byID    map[string]user.User
	byEmail map[string]user.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byID: map[string]user.User{}, byEmail: map[string]user.User{}}
}

func (s *memUserStore) Insert(_ context.Context, u user.User) error {
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	return out, nil
}

func newAuthRouter() (*chi.Mux, *authmw.AuthService) {
	users := user.NewService(newMemUserStore())
	authSvc := authmw.NewAuthService("test-secret", time.Hour)
	v := validate.New()

	r := chi.NewRouter()
	r.Post("/auth/signup", SignupHandler(users, authSvc, v))
	r.Post("/auth/login", LoginHandler(users, authSvc, v))
	return r, authSvc
}

func TestSignupAndLoginFlow(t *testing.T) {
	r, authSvc := newAuthRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","password":"secret1"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: status %d body %s", rec.Code, rec.Body.String())
	}
	d := dataOf(t, decodeEnvelope(t, rec))
	u := d["user"].(map[string]any)
	if u["role"] != "student" {
		t.Fatalf("signup role: %v", u["role"])
	}
	if _, ok := u["password_hash"]; ok {
		t.Fatal("password hash serialized")
	}
	tok, _ := d["token"].(string)
	claims, err := authSvc.Parse(tok)
	if err != nil || claims.Subject != u["id"] {
		t.Fatalf("signup token: %v %v", claims, err)
	}

	// duplicate email
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"name":"Ada2","email":"ada@example.com","password":"secret2"}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d", rec.Code)
	}

	// login with the right password
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	if tok := dataOf(t, decodeEnvelope(t, rec))["token"].(string); tok == "" {
		t.Fatal("login returned no token")
	}

	// wrong password and unknown email both return the same 401
	for _, body := range []string{
		`{"email":"ada@example.com","password":"wrong1"}`,
		`{"email":"nobody@example.com","password":"secret1"}`,
	} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("login failure: status %d", rec.Code)
		}
		if msg := decodeEnvelope(t, rec)["message"]; msg != "invalid email or password" {
			t.Fatalf("login failure message: %v", msg)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	r, _ := newAuthRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"name":"A","email":"nope","password":"x"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	errs := decodeEnvelope(t, rec)["errors"].([]any)
	if len(errs) != 3 {
		t.Fatalf("want 3 field errors, got %v", errs)
	}
}
