package exercise

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("exercise not found")

// ListOpts filters exercise listings.
type ListOpts struct {
	CourseID   string
	Difficulty string
}

type Store interface {
	Insert(ctx context.Context, e Exercise) error
	Update(ctx context.Context, e Exercise) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Exercise, error)
	List(ctx context.Context, opts ListOpts) ([]Exercise, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Insert(ctx context.Context, e Exercise) error {
	opts, tags, err := marshalExtras(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exercises (id, course_id, type, body, options_json, answer, explanation, difficulty, tags_json, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ID, e.CourseID, string(e.Type), e.Body, opts, e.Answer,
		nullable(e.Explanation), nullable(e.Difficulty), tags,
		e.CreatedAt.Unix(), e.UpdatedAt.Unix())
	return err
}

func (s *SQLStore) Update(ctx context.Context, e Exercise) error {
	opts, tags, err := marshalExtras(e)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE exercises SET course_id=$1, type=$2, body=$3, options_json=$4, answer=$5,
		        explanation=$6, difficulty=$7, tags_json=$8, updated_at=$9
		  WHERE id=$10`,
		e.CourseID, string(e.Type), e.Body, opts, e.Answer,
		nullable(e.Explanation), nullable(e.Difficulty), tags,
		e.UpdatedAt.Unix(), e.ID)
	if err != nil {
		return err
	}
	return errIfNoRows(res)
}

// Delete removes the exercise and, via cascade, its attempts.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exercises WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return errIfNoRows(res)
}

const exerciseCols = `id, course_id, type, body, options_json, answer, explanation, difficulty, tags_json, created_at, updated_at`

func (s *SQLStore) GetByID(ctx context.Context, id string) (Exercise, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exerciseCols+` FROM exercises WHERE id=$1`, id)
	e, err := scanExercise(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	return e, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Exercise, error) {
	query := `SELECT ` + exerciseCols + ` FROM exercises WHERE 1=1`
	args := []any{}
	if opts.CourseID != "" {
		args = append(args, opts.CourseID)
		query += ` AND course_id=$` + strconv.Itoa(len(args))
	}
	if opts.Difficulty != "" {
		args = append(args, opts.Difficulty)
		query += ` AND difficulty=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func marshalExtras(e Exercise) (opts, tags any, err error) {
	opts, tags = nil, nil
	if len(e.Options) > 0 {
		b, err := json.Marshal(e.Options)
		if err != nil {
			return nil, nil, err
		}
		opts = string(b)
	}
	if len(e.Tags) > 0 {
		b, err := json.Marshal(e.Tags)
		if err != nil {
			return nil, nil, err
		}
		tags = string(b)
	}
	return opts, tags, nil
}

func scanExercise(scan func(dest ...any) error) (Exercise, error) {
	var (
		e                        Exercise
		typ                      string
		optsJSON, expl, diff, tg sql.NullString
		createdAt, updated       int64
	)
	if err := scan(&e.ID, &e.CourseID, &typ, &e.Body, &optsJSON, &e.Answer,
		&expl, &diff, &tg, &createdAt, &updated); err != nil {
		return Exercise{}, err
	}
	t, err := ParseType(typ)
	if err != nil {
		return Exercise{}, err
	}
	e.Type = t
	e.Explanation = expl.String
	e.Difficulty = diff.String
	if optsJSON.Valid && optsJSON.String != "" {
		if err := json.Unmarshal([]byte(optsJSON.String), &e.Options); err != nil {
			return Exercise{}, err
		}
	}
	if tg.Valid && tg.String != "" {
		if err := json.Unmarshal([]byte(tg.String), &e.Tags); err != nil {
			return Exercise{}, err
		}
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
	return e, nil
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
