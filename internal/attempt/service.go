package attempt

import (
	"context"
	"errors"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/exercise"
	"github.com/mathia-edu/mathia/internal/grading"
)

// ExerciseFinder is the slice of the exercise store the submission flow
// needs.
type ExerciseFinder interface {
	GetByID(ctx context.Context, id string) (exercise.Exercise, error)
}

// Service orchestrates one submission: load exercise, grade, append to the
// ledger, shape the result. Each call is a single atomic operation; there is
// no multi-step state to resume.
type Service struct {
	exercises ExerciseFinder
	ledger    Ledger
	grader    grading.Evaluator
}

func NewService(exercises ExerciseFinder, ledger Ledger, grader grading.Evaluator) *Service {
	if grader == nil {
		grader = grading.ExactMatch{}
	}
	return &Service{exercises: exercises, ledger: ledger, grader: grader}
}

type SubmitInput struct {
	ExerciseID string `json:"exerciseId" validate:"required"`
	UserAnswer string `json:"userAnswer" validate:"required"`
}

// SubmitResult mirrors the non-disclosure rule of the read gate, but keyed on
// THIS submission's correctness: explanation and the stored answer are
// present iff IsCorrect, so a first success reveals them immediately while a
// later wrong answer does not.
type SubmitResult struct {
	Attempt       Attempt `json:"attempt"`
	IsCorrect     bool    `json:"isCorrect"`
	Explanation   string  `json:"explanation,omitempty"`
	CorrectAnswer string  `json:"correctAnswer,omitempty"`
}

// Submit grades and records one answer.
//
// The ledger write is the durability point: if it fails, the caller gets an
// error and no result, never a graded-but-unrecorded partial success.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (SubmitResult, error) {
	ex, err := s.exercises.GetByID(ctx, in.ExerciseID)
	if errors.Is(err, exercise.ErrNotFound) {
		return SubmitResult{}, apperr.NotFound("exercise not found")
	}
	if err != nil {
		return SubmitResult{}, apperr.Internal("exercise lookup failed", err)
	}

	isCorrect := s.grader.Correct(ex.Answer, in.UserAnswer)

	a, err := s.ledger.Record(ctx, userID, ex.ID, in.UserAnswer, isCorrect)
	if err != nil {
		return SubmitResult{}, apperr.Internal("attempt could not be recorded", err)
	}

	res := SubmitResult{Attempt: a, IsCorrect: isCorrect}
	if isCorrect {
		res.Explanation = ex.Explanation
		res.CorrectAnswer = ex.Answer
	}
	return res, nil
}

// ListMine returns a page of the caller's history, newest first.
func (s *Service) ListMine(ctx context.Context, userID string, opts ListOpts) ([]Attempt, int, error) {
	as, total, err := s.ledger.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, 0, apperr.Internal("attempt list failed", err)
	}
	return as, total, nil
}

// StatsFor aggregates the caller's history.
func (s *Service) StatsFor(ctx context.Context, userID string) (Stats, error) {
	st, err := s.ledger.Stats(ctx, userID)
	if err != nil {
		return Stats{}, apperr.Internal("attempt stats failed", err)
	}
	return st, nil
}
