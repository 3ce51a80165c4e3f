package attempt

import "time"

// Attempt is one immutable record of a submitted answer and its grade. Rows
// are historical facts: created exactly once, never updated, removed only by
// cascade when the owning user or exercise is deleted.
type Attempt struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ExerciseID string    `json:"exercise_id"`
	UserAnswer string    `json:"user_answer"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats summarizes one user's attempt history.
type Stats struct {
	TotalAttempts         int               `json:"total_attempts"`
	SuccessfulAttempts    int               `json:"successful_attempts"`
	SuccessRate           int               `json:"success_rate"` // percent, 0 when no attempts
	UniqueExercisesSolved int               `json:"unique_exercises_solved"`
	RecentAttempts        []Attempt         `json:"recent_attempts"` // newest first, capped
	ByDifficulty          []DifficultyStats `json:"stats_by_difficulty"`
}

// DifficultyStats counts a user's attempts against exercises of one
// difficulty. Sorted by difficulty for a stable response.
type DifficultyStats struct {
	Difficulty string `json:"difficulty"`
	Total      int    `json:"total"`
	Correct    int    `json:"correct"`
}

// recentStatsLimit caps Stats.RecentAttempts.
const recentStatsLimit = 10

// ListOpts paginates a user's attempt history, newest first.
type ListOpts struct {
	ExerciseID string
	Page       int // 1-based; defaults to 1
	Limit      int // defaults to 20
}

// AdminListOpts filters the cross-user admin listing.
type AdminListOpts struct {
	UserID     string
	ExerciseID string
	Page       int
	Limit      int
}

func (o ListOpts) normalized() ListOpts {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	return o
}

func (o AdminListOpts) normalized() AdminListOpts {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 50
	}
	return o
}
