package course

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("course not found")

type Store interface {
	Insert(ctx context.Context, c Course) error
	Update(ctx context.Context, c Course) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Course, error)
	List(ctx context.Context) ([]Course, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Insert(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, grade, chapter, description, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Title, c.Grade, c.Chapter, nullable(c.Description),
		c.CreatedAt.Unix(), c.UpdatedAt.Unix())
	return err
}

func (s *SQLStore) Update(ctx context.Context, c Course) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE courses SET title=$1, grade=$2, chapter=$3, description=$4, updated_at=$5 WHERE id=$6`,
		c.Title, c.Grade, c.Chapter, nullable(c.Description), c.UpdatedAt.Unix(), c.ID)
	if err != nil {
		return err
	}
	return errIfNoRows(res)
}

// Delete removes the course; exercises and their attempts go with it via
// ON DELETE CASCADE.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return errIfNoRows(res)
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.title, c.grade, c.chapter, c.description, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM exercises e WHERE e.course_id = c.id)
		  FROM courses c WHERE c.id=$1`, id)
	var (
		c                  Course
		desc               sql.NullString
		createdAt, updated int64
	)
	err := row.Scan(&c.ID, &c.Title, &c.Grade, &c.Chapter, &desc, &createdAt, &updated, &c.ExerciseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	if err != nil {
		return Course{}, err
	}
	c.Description = desc.String
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updated, 0).UTC()
	return c, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, grade, chapter, description, created_at, updated_at
		   FROM courses ORDER BY grade, chapter, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var (
			c                  Course
			desc               sql.NullString
			createdAt, updated int64
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Grade, &c.Chapter, &desc, &createdAt, &updated); err != nil {
			return nil, err
		}
		c.Description = desc.String
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		c.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func errIfNoRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
