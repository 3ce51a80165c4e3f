package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/rbac"
)

const bcryptCost = 12

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Signup creates a student account. Duplicate email is a conflict, checked
// up front for a clean message; the unique index still backstops races.
func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	if _, err := s.store.GetByEmail(ctx, in.Email); err == nil {
		return User{}, apperr.Conflict("email already in use")
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, apperr.Internal("signup failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return User{}, apperr.Internal("signup failed", err)
	}
	now := s.now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         rbac.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return User{}, apperr.Internal("signup failed", err)
	}
	return u, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates by email and password. The failure message is the same
// whether the email is unknown or the password wrong.
func (s *Service) Login(ctx context.Context, in LoginInput) (User, error) {
	u, err := s.store.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return User{}, apperr.Internal("login failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return User{}, apperr.Unauthorized("invalid email or password")
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return User{}, apperr.Internal("user lookup failed", err)
	}
	return u, nil
}

// List returns all users, admin surface.
func (s *Service) List(ctx context.Context) ([]User, error) {
	us, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("user list failed", err)
	}
	return us, nil
}
