package attempt

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Ledger is the append-only attempt history. Record always inserts; there is
// deliberately no update or upsert path, resubmissions accumulate. Read-
// after-write visibility of a committed Record to HasSucceeded is delegated
// to the backing store's transactional guarantees; the ledger itself holds
// no locks.
type Ledger interface {
	Record(ctx context.Context, userID, exerciseID, userAnswer string, isCorrect bool) (Attempt, error)
	HasSucceeded(ctx context.Context, userID, exerciseID string) (bool, error)
	ListByUserAndExercise(ctx context.Context, userID, exerciseID string, limit int) ([]Attempt, error)
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Attempt, int, error)
	ListAll(ctx context.Context, opts AdminListOpts) ([]Attempt, int, error)
	Stats(ctx context.Context, userID string) (Stats, error)
}

type SQLLedger struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLLedger(db *sql.DB) *SQLLedger {
	return &SQLLedger{db: db, now: time.Now}
}

// Record persists created_at as nanoseconds: listings order newest-first by
// created_at, and second-granularity timestamps would make the order of
// back-to-back submissions depend on the uuid tiebreak.
func (l *SQLLedger) Record(ctx context.Context, userID, exerciseID, userAnswer string, isCorrect bool) (Attempt, error) {
	a := Attempt{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExerciseID: exerciseID,
		UserAnswer: userAnswer,
		IsCorrect:  isCorrect,
		CreatedAt:  l.now().UTC(),
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO attempts (id, user_id, exercise_id, user_answer, is_correct, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.UserID, a.ExerciseID, a.UserAnswer, a.IsCorrect, a.CreatedAt.UnixNano())
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (l *SQLLedger) HasSucceeded(ctx context.Context, userID, exerciseID string) (bool, error) {
	var ok bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM attempts WHERE user_id=$1 AND exercise_id=$2 AND is_correct=$3)`,
		userID, exerciseID, true).Scan(&ok)
	return ok, err
}

func (l *SQLLedger) ListByUserAndExercise(ctx context.Context, userID, exerciseID string, limit int) ([]Attempt, error) {
	if limit < 1 {
		limit = 5
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, exercise_id, user_answer, is_correct, created_at
		   FROM attempts WHERE user_id=$1 AND exercise_id=$2
		  ORDER BY created_at DESC, id LIMIT $3`,
		userID, exerciseID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (l *SQLLedger) ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Attempt, int, error) {
	opts = opts.normalized()

	countQ := `SELECT COUNT(*) FROM attempts WHERE user_id=$1`
	listQ := `SELECT id, user_id, exercise_id, user_answer, is_correct, created_at
	            FROM attempts WHERE user_id=$1`
	args := []any{userID}
	if opts.ExerciseID != "" {
		countQ += ` AND exercise_id=$2`
		listQ += ` AND exercise_id=$2`
		args = append(args, opts.ExerciseID)
	}

	var total int
	if err := l.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	listQ += ` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := l.db.QueryContext(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	as, err := collect(rows)
	return as, total, err
}

func (l *SQLLedger) ListAll(ctx context.Context, opts AdminListOpts) ([]Attempt, int, error) {
	opts = opts.normalized()

	where := ` WHERE 1=1`
	args := []any{}
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		where += ` AND user_id=$` + strconv.Itoa(len(args))
	}
	if opts.ExerciseID != "" {
		args = append(args, opts.ExerciseID)
		where += ` AND exercise_id=$` + strconv.Itoa(len(args))
	}

	var total int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQ := `SELECT id, user_id, exercise_id, user_answer, is_correct, created_at FROM attempts` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := l.db.QueryContext(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	as, err := collect(rows)
	return as, total, err
}

func (l *SQLLedger) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT CASE WHEN is_correct THEN exercise_id END)
		  FROM attempts WHERE user_id=$1`, userID).
		Scan(&st.TotalAttempts, &st.SuccessfulAttempts, &st.UniqueExercisesSolved)
	if err != nil {
		return Stats{}, err
	}
	if st.TotalAttempts > 0 {
		st.SuccessRate = int(float64(st.SuccessfulAttempts)/float64(st.TotalAttempts)*100 + 0.5)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, exercise_id, user_answer, is_correct, created_at
		  FROM attempts WHERE user_id=$1
		 ORDER BY created_at DESC, id LIMIT $2`, userID, recentStatsLimit)
	if err != nil {
		return Stats{}, err
	}
	if st.RecentAttempts, err = collect(rows); err != nil {
		return Stats{}, err
	}

	drows, err := l.db.QueryContext(ctx, `
		SELECT COALESCE(e.difficulty, ''),
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0)
		  FROM attempts a
		  JOIN exercises e ON e.id = a.exercise_id
		 WHERE a.user_id=$1
		 GROUP BY e.difficulty
		 ORDER BY e.difficulty`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer drows.Close()
	st.ByDifficulty = []DifficultyStats{}
	for drows.Next() {
		var d DifficultyStats
		if err := drows.Scan(&d.Difficulty, &d.Total, &d.Correct); err != nil {
			return Stats{}, err
		}
		st.ByDifficulty = append(st.ByDifficulty, d)
	}
	if err := drows.Err(); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func collect(rows *sql.Rows) ([]Attempt, error) {
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var (
			a         Attempt
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ExerciseID, &a.UserAnswer, &a.IsCorrect, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
