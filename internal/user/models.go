package user

import (
	"time"

	"github.com/mathia-edu/mathia/internal/rbac"
)

// User is an account. PasswordHash never leaves the package in JSON form.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         rbac.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
