package course

import "time"

// Course groups exercises for one grade level and chapter.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Grade       string    `json:"grade"`
	Chapter     string    `json:"chapter"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ExerciseCount is filled on detail reads only.
	ExerciseCount int `json:"exercise_count,omitempty"`
}
