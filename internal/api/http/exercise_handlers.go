package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/attempt"
	authmw "github.com/mathia-edu/mathia/internal/auth/middleware"
	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/exercise"
	"github.com/mathia-edu/mathia/internal/validate"
)

const recentAttemptLimit = 5

type exerciseInput struct {
	CourseID    string            `json:"courseId" validate:"required"`
	Type        string            `json:"type" validate:"required"`
	Body        string            `json:"body" validate:"required"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer" validate:"required"`
	Explanation string            `json:"explanation"`
	Difficulty  string            `json:"difficulty" validate:"omitempty,max=20"`
	Tags        []string          `json:"tags"`
}

// GET /exercises?course_id=&difficulty=
//
// Listing is never a disclosure path: every row is redacted regardless of the
// caller's history.
func ListExercisesHandler(store exercise.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := exercise.ListOpts{
			CourseID:   r.URL.Query().Get("course_id"),
			Difficulty: r.URL.Query().Get("difficulty"),
		}
		es, err := store.List(r.Context(), opts)
		if err != nil {
			respondErr(w, apperr.Internal("exercise list failed", err))
			return
		}
		out := make([]exercise.Exercise, 0, len(es))
		for _, e := range es {
			out = append(out, e.Redacted())
		}
		respond(w, http.StatusOK, map[string]any{"exercises": out})
	}
}

type attemptSummary struct {
	ID        string    `json:"id"`
	IsCorrect bool      `json:"is_correct"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /exercises/{exerciseID}. Optional auth; the gate decides whether the
// answer field survives.
func GetExerciseHandler(store exercise.Store, gate *exercise.Gate, ledger attempt.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetByID(r.Context(), chi.URLParam(r, "exerciseID"))
		if errors.Is(err, exercise.ErrNotFound) {
			respondErr(w, apperr.NotFound("exercise not found"))
			return
		}
		if err != nil {
			respondErr(w, apperr.Internal("exercise lookup failed", err))
			return
		}

		viewer := authmw.IdentityFromContext(r.Context())
		shaped, err := gate.Present(r.Context(), e, viewer)
		if err != nil {
			respondErr(w, apperr.Internal("exercise read failed", err))
			return
		}

		recent := []attemptSummary{}
		if viewer != nil {
			as, err := ledger.ListByUserAndExercise(r.Context(), viewer.UserID, e.ID, recentAttemptLimit)
			if err != nil {
				respondErr(w, apperr.Internal("attempt history failed", err))
				return
			}
			for _, a := range as {
				recent = append(recent, attemptSummary{ID: a.ID, IsCorrect: a.IsCorrect, CreatedAt: a.CreatedAt})
			}
		}
		respond(w, http.StatusOK, map[string]any{"exercise": shaped, "userAttempts": recent})
	}
}

// POST /exercises
func CreateExerciseHandler(store exercise.Store, courses course.Store, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exerciseInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		typ, err := exercise.ParseType(in.Type)
		if err != nil {
			respondErr(w, apperr.Invalid("validation failed",
				apperr.FieldError{Field: "type", Message: err.Error()}))
			return
		}
		if _, err := courses.GetByID(r.Context(), in.CourseID); errors.Is(err, course.ErrNotFound) {
			respondErr(w, apperr.NotFound("course not found"))
			return
		} else if err != nil {
			respondErr(w, apperr.Internal("course lookup failed", err))
			return
		}
		now := time.Now().UTC()
		e := exercise.Exercise{
			ID:          uuid.NewString(),
			CourseID:    in.CourseID,
			Type:        typ,
			Body:        in.Body,
			Options:     in.Options,
			Answer:      in.Answer,
			Explanation: in.Explanation,
			Difficulty:  in.Difficulty,
			Tags:        in.Tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.Insert(r.Context(), e); err != nil {
			respondErr(w, apperr.Internal("exercise create failed", err))
			return
		}
		respond(w, http.StatusCreated, map[string]any{"exercise": e})
	}
}

// PUT /exercises/{exerciseID}
func UpdateExerciseHandler(store exercise.Store, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exerciseInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		typ, err := exercise.ParseType(in.Type)
		if err != nil {
			respondErr(w, apperr.Invalid("validation failed",
				apperr.FieldError{Field: "type", Message: err.Error()}))
			return
		}
		id := chi.URLParam(r, "exerciseID")
		existing, err := store.GetByID(r.Context(), id)
		if errors.Is(err, exercise.ErrNotFound) {
			respondErr(w, apperr.NotFound("exercise not found"))
			return
		}
		if err != nil {
			respondErr(w, apperr.Internal("exercise lookup failed", err))
			return
		}
		existing.CourseID = in.CourseID
		existing.Type = typ
		existing.Body = in.Body
		existing.Options = in.Options
		existing.Answer = in.Answer
		existing.Explanation = in.Explanation
		existing.Difficulty = in.Difficulty
		existing.Tags = in.Tags
		existing.UpdatedAt = time.Now().UTC()
		if err := store.Update(r.Context(), existing); err != nil {
			respondErr(w, apperr.Internal("exercise update failed", err))
			return
		}
		respond(w, http.StatusOK, map[string]any{"exercise": existing})
	}
}

// DELETE /exercises/{exerciseID}. Cascades to attempts.
func DeleteExerciseHandler(store exercise.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.Delete(r.Context(), chi.URLParam(r, "exerciseID"))
		if errors.Is(err, exercise.ErrNotFound) {
			respondErr(w, apperr.NotFound("exercise not found"))
			return
		}
		if err != nil {
			respondErr(w, apperr.Internal("exercise delete failed", err))
			return
		}
		respond(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
