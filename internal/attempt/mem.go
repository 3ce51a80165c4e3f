package attempt

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemLedger is an in-memory Ledger for tests and local experiments. It keeps
// the same append-only semantics as SQLLedger.
type MemLedger struct {
	mu           sync.RWMutex
	attempts     []Attempt
	difficulties map[string]string
	now          func() time.Time
}

func NewMemLedger() *MemLedger {
	return &MemLedger{difficulties: map[string]string{}, now: time.Now}
}

// SetDifficulty registers an exercise's difficulty for the Stats breakdown,
// standing in for the join SQLLedger does against the exercises table.
func (m *MemLedger) SetDifficulty(exerciseID, difficulty string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.difficulties[exerciseID] = difficulty
}

func (m *MemLedger) Record(_ context.Context, userID, exerciseID, userAnswer string, isCorrect bool) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := Attempt{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExerciseID: exerciseID,
		UserAnswer: userAnswer,
		IsCorrect:  isCorrect,
		CreatedAt:  m.now().UTC(),
	}
	m.attempts = append(m.attempts, a)
	return a, nil
}

func (m *MemLedger) HasSucceeded(_ context.Context, userID, exerciseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.UserID == userID && a.ExerciseID == exerciseID && a.IsCorrect {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemLedger) ListByUserAndExercise(_ context.Context, userID, exerciseID string, limit int) ([]Attempt, error) {
	if limit < 1 {
		limit = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for i := len(m.attempts) - 1; i >= 0; i-- {
		if a := m.attempts[i]; a.UserID == userID && a.ExerciseID == exerciseID {
			out = append(out, a)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemLedger) ListByUser(_ context.Context, userID string, opts ListOpts) ([]Attempt, int, error) {
	opts = opts.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Attempt{}
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		if a.UserID != userID {
			continue
		}
		if opts.ExerciseID != "" && a.ExerciseID != opts.ExerciseID {
			continue
		}
		all = append(all, a)
	}
	sortNewestFirst(all)
	total := len(all)
	start := (opts.Page - 1) * opts.Limit
	if start >= total {
		return []Attempt{}, total, nil
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *MemLedger) ListAll(_ context.Context, opts AdminListOpts) ([]Attempt, int, error) {
	opts = opts.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Attempt{}
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.ExerciseID != "" && a.ExerciseID != opts.ExerciseID {
			continue
		}
		all = append(all, a)
	}
	sortNewestFirst(all)
	total := len(all)
	start := (opts.Page - 1) * opts.Limit
	if start >= total {
		return []Attempt{}, total, nil
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *MemLedger) Stats(_ context.Context, userID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st Stats
	solved := map[string]struct{}{}
	byDiff := map[string]*DifficultyStats{}
	recent := []Attempt{}
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		if a.UserID != userID {
			continue
		}
		st.TotalAttempts++
		if a.IsCorrect {
			st.SuccessfulAttempts++
			solved[a.ExerciseID] = struct{}{}
		}
		diff := m.difficulties[a.ExerciseID]
		d, ok := byDiff[diff]
		if !ok {
			d = &DifficultyStats{Difficulty: diff}
			byDiff[diff] = d
		}
		d.Total++
		if a.IsCorrect {
			d.Correct++
		}
		recent = append(recent, a)
	}
	st.UniqueExercisesSolved = len(solved)
	if st.TotalAttempts > 0 {
		st.SuccessRate = int(float64(st.SuccessfulAttempts)/float64(st.TotalAttempts)*100 + 0.5)
	}

	sortNewestFirst(recent)
	if len(recent) > recentStatsLimit {
		recent = recent[:recentStatsLimit]
	}
	st.RecentAttempts = recent

	st.ByDifficulty = make([]DifficultyStats, 0, len(byDiff))
	for _, d := range byDiff {
		st.ByDifficulty = append(st.ByDifficulty, *d)
	}
	sort.Slice(st.ByDifficulty, func(i, j int) bool {
		return st.ByDifficulty[i].Difficulty < st.ByDifficulty[j].Difficulty
	})
	return st, nil
}

func sortNewestFirst(as []Attempt) {
	sort.SliceStable(as, func(i, j int) bool {
		return as[i].CreatedAt.After(as[j].CreatedAt)
	})
}
