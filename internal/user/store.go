package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mathia-edu/mathia/internal/rbac"
)

// ErrNotFound reports a lookup miss; callers translate it to their own
// error taxonomy.
var ErrNotFound = errors.New("user not found")

type Store interface {
	Insert(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Insert(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role.String(),
		u.CreatedAt.Unix(), u.UpdatedAt.Unix())
	return err
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (User, error) {
	return s.get(ctx, `SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE id=$1`, id)
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.get(ctx, `SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE email=$1`, email)
}

func (s *SQLStore) get(ctx context.Context, query, arg string) (User, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,email,password_hash,role,created_at,updated_at FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(scan func(dest ...any) error) (User, error) {
	var (
		u                  User
		role               string
		createdAt, updated int64
	)
	if err := scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &createdAt, &updated); err != nil {
		return User{}, err
	}
	r, err := rbac.ParseRole(role)
	if err != nil {
		return User{}, err
	}
	u.Role = r
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()
	return u, nil
}
