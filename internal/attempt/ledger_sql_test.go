package attempt

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mathia-edu/mathia/internal/db"
)

func openLedgerDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.DriverSQLite,
		"file:"+t.Name()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	// Parent rows so attempt inserts pass the foreign keys.
	mustExec(t, dbh, `INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ('u-1','Ada','ada@example.com','x','student',0,0)`)
	mustExec(t, dbh, `INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ('u-2','Blaise','blaise@example.com','x','student',0,0)`)
	mustExec(t, dbh, `INSERT INTO courses (id, title, grade, chapter, created_at, updated_at)
		VALUES ('c-1','Fractions','6e','Chapitre 1',0,0)`)
	mustExec(t, dbh, `INSERT INTO exercises (id, course_id, type, body, answer, difficulty, created_at, updated_at)
		VALUES ('ex-1','c-1','computation','10/2 ?','5','easy',0,0)`)
	mustExec(t, dbh, `INSERT INTO exercises (id, course_id, type, body, answer, difficulty, created_at, updated_at)
		VALUES ('ex-2','c-1','computation','10/5 ?','2','hard',0,0)`)
	return dbh
}

func mustExec(t *testing.T, dbh *sql.DB, q string) {
	t.Helper()
	if _, err := dbh.Exec(q); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

func TestSQLLedgerRecordAndHasSucceeded(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	if ok, err := l.HasSucceeded(ctx, "u-1", "ex-1"); err != nil || ok {
		t.Fatalf("HasSucceeded on empty ledger = %v, %v", ok, err)
	}

	if _, err := l.Record(ctx, "u-1", "ex-1", "6", false); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ok, _ := l.HasSucceeded(ctx, "u-1", "ex-1"); ok {
		t.Fatal("HasSucceeded true with only incorrect rows")
	}

	if _, err := l.Record(ctx, "u-1", "ex-1", "5", true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ok, _ := l.HasSucceeded(ctx, "u-1", "ex-1"); !ok {
		t.Fatal("HasSucceeded false after a correct row")
	}
	// scoped to the user and the exercise
	if ok, _ := l.HasSucceeded(ctx, "u-2", "ex-1"); ok {
		t.Fatal("success leaked to another user")
	}
	if ok, _ := l.HasSucceeded(ctx, "u-1", "ex-2"); ok {
		t.Fatal("success leaked to another exercise")
	}
}

// Back-to-back submissions land well inside one wall-clock second; the
// history must still come back in submission order, newest first.
func TestSQLLedgerOrdersSameSecondSubmissions(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	answers := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, ans := range answers {
		if _, err := l.Record(ctx, "u-1", "ex-1", ans, false); err != nil {
			t.Fatalf("Record(%q): %v", ans, err)
		}
	}

	rows, err := l.ListByUserAndExercise(ctx, "u-1", "ex-1", len(answers))
	if err != nil {
		t.Fatalf("ListByUserAndExercise: %v", err)
	}
	if len(rows) != len(answers) {
		t.Fatalf("want %d rows, got %d", len(answers), len(rows))
	}
	for i, a := range rows {
		if want := answers[len(answers)-1-i]; a.UserAnswer != want {
			t.Fatalf("row %d: got %q, want %q", i, a.UserAnswer, want)
		}
	}

	paged, _, err := l.ListByUser(ctx, "u-1", ListOpts{Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if paged[0].UserAnswer != "h" || paged[2].UserAnswer != "f" {
		t.Fatalf("paged order: %q, %q, %q", paged[0].UserAnswer, paged[1].UserAnswer, paged[2].UserAnswer)
	}
}

func TestSQLLedgerRecentHistoryLimit(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	answers := []string{"1", "2", "3", "4", "5", "6", "7"}
	for _, ans := range answers {
		if _, err := l.Record(ctx, "u-1", "ex-1", ans, false); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := l.ListByUserAndExercise(ctx, "u-1", "ex-1", 5)
	if err != nil {
		t.Fatalf("ListByUserAndExercise: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("want 5 recent rows, got %d", len(recent))
	}
	if recent[0].UserAnswer != "7" || recent[4].UserAnswer != "3" {
		t.Fatalf("wrong window: first=%q last=%q", recent[0].UserAnswer, recent[4].UserAnswer)
	}
}

func TestSQLLedgerListByUserPagination(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	for i := 0; i < 3; i++ {
		if _, err := l.Record(ctx, "u-1", "ex-1", "a", false); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := l.Record(ctx, "u-1", "ex-2", "2", true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := l.Record(ctx, "u-2", "ex-1", "5", true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	rows, total, err := l.ListByUser(ctx, "u-1", ListOpts{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 4 || len(rows) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(rows))
	}
	if rows[0].ExerciseID != "ex-2" {
		t.Fatalf("newest row should be the ex-2 attempt, got %s", rows[0].ExerciseID)
	}

	rows, total, err = l.ListByUser(ctx, "u-1", ListOpts{Page: 2, Limit: 2})
	if err != nil || total != 4 || len(rows) != 2 {
		t.Fatalf("page 2: total=%d len=%d err=%v", total, len(rows), err)
	}

	rows, total, err = l.ListByUser(ctx, "u-1", ListOpts{ExerciseID: "ex-2"})
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("filtered: total=%d len=%d err=%v", total, len(rows), err)
	}
}

func TestSQLLedgerListAllFilters(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	_, _ = l.Record(ctx, "u-1", "ex-1", "5", true)
	_, _ = l.Record(ctx, "u-1", "ex-2", "2", true)
	_, _ = l.Record(ctx, "u-2", "ex-1", "6", false)

	_, total, err := l.ListAll(ctx, AdminListOpts{})
	if err != nil || total != 3 {
		t.Fatalf("unfiltered: total=%d err=%v", total, err)
	}
	rows, total, err := l.ListAll(ctx, AdminListOpts{UserID: "u-2"})
	if err != nil || total != 1 || rows[0].UserID != "u-2" {
		t.Fatalf("user filter: total=%d err=%v", total, err)
	}
	_, total, err = l.ListAll(ctx, AdminListOpts{UserID: "u-1", ExerciseID: "ex-2"})
	if err != nil || total != 1 {
		t.Fatalf("combined filter: total=%d err=%v", total, err)
	}
}

func TestSQLLedgerStats(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	st, err := l.Stats(ctx, "u-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalAttempts != 0 || st.SuccessRate != 0 {
		t.Fatalf("empty stats: %+v", st)
	}
	if len(st.RecentAttempts) != 0 || len(st.ByDifficulty) != 0 {
		t.Fatalf("empty stats carried rows: %+v", st)
	}

	_, _ = l.Record(ctx, "u-1", "ex-1", "6", false)
	_, _ = l.Record(ctx, "u-1", "ex-1", "5", true)
	_, _ = l.Record(ctx, "u-1", "ex-2", "2", true)
	_, _ = l.Record(ctx, "u-2", "ex-1", "5", true)

	st, err = l.Stats(ctx, "u-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalAttempts != 3 || st.SuccessfulAttempts != 2 ||
		st.SuccessRate != 67 || st.UniqueExercisesSolved != 2 {
		t.Fatalf("totals: %+v", st)
	}

	if len(st.RecentAttempts) != 3 {
		t.Fatalf("want 3 recent attempts, got %d", len(st.RecentAttempts))
	}
	if st.RecentAttempts[0].ExerciseID != "ex-2" || st.RecentAttempts[2].UserAnswer != "6" {
		t.Fatalf("recent order: %+v", st.RecentAttempts)
	}

	// ex-1 is easy, ex-2 is hard
	if len(st.ByDifficulty) != 2 {
		t.Fatalf("want 2 difficulty buckets, got %+v", st.ByDifficulty)
	}
	easy, hard := st.ByDifficulty[0], st.ByDifficulty[1]
	if easy.Difficulty != "easy" || easy.Total != 2 || easy.Correct != 1 {
		t.Fatalf("easy bucket: %+v", easy)
	}
	if hard.Difficulty != "hard" || hard.Total != 1 || hard.Correct != 1 {
		t.Fatalf("hard bucket: %+v", hard)
	}
}

func TestSQLLedgerStatsRecentCap(t *testing.T) {
	ctx := context.Background()
	l := NewSQLLedger(openLedgerDB(t))

	for i := 0; i < recentStatsLimit+3; i++ {
		if _, err := l.Record(ctx, "u-1", "ex-1", "6", false); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	st, err := l.Stats(ctx, "u-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalAttempts != recentStatsLimit+3 || len(st.RecentAttempts) != recentStatsLimit {
		t.Fatalf("recent cap: total=%d recent=%d", st.TotalAttempts, len(st.RecentAttempts))
	}
}
