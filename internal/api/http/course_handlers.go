package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/validate"
)

type courseInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Grade       string `json:"grade" validate:"required,max=10"`
	Chapter     string `json:"chapter" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// GET /courses
func ListCoursesHandler(store course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := store.List(r.Context())
		if err != nil {
			respondErr(w, apperr.Internal("course list failed", err))
			return
		}
		respond(w, http.StatusOK, map[string]any{"courses": cs})
	}
}

// GET /courses/{courseID}
func GetCourseHandler(store course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetByID(r.Context(), chi.URLParam(r, "courseID"))
		if errors.Is(err, course.ErrNotFound) {
			respondErr(w, apperr.NotFound("course not found"))
			return
		}
		if err != nil {
			respondErr(w, apperr.Internal("course lookup failed", err))
			return
		}
		respond(w, http.StatusOK, map[string]any{"course": c})
	}
}

// POST /courses
func CreateCourseHandler(store course.Store, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in courseInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		now := time.Now().UTC()
		c := course.Course{
			ID:          uuid.NewString(),
			Title:       in.Title,
			Grade:       in.Grade,
			Chapter:     in.Chapter,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.Insert(r.Context(), c); err != nil {
			respondErr(w, apperr.Internal("course create failed", err))
			return
		}
		respond(w, http.StatusCreated, map[string]any{"course": c})
	}
}

// PUT /courses/{courseID}
func UpdateCourseHandler(store course.Store, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in courseInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		id := chi.URLParam(r, "courseID")
		existing, err := store.GetByID(r.Context(), id)
		if errors.Is(err, course.ErrNotFound) {
			respondErr(w, apperr.NotFound("course not found"))
			return
		}
		if err != nil {
			respondErr(w, apperr.Internal("course lookup failed", err))
			return
		}
		existing.Title = in.Title
		existing.Grade = in.Grade
		existing.Chapter = in.Chapter
		existing.Description = in.Description
		existing.UpdatedAt = time.Now().UTC()
		if err := store.Update(r.Context(), existing); err != nil {
			respondErr(w, apperr.Internal("course update failed", err))
			return
		}
		existing.ExerciseCount = 0 // detail-only field, not recomputed here
		respond(w, http.StatusOK, map[string]any{"course": existing})
	}
}

// DELETE /courses/{courseID}. Cascades to exercises and their attempts.
func DeleteCourseHandler(store course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.Delete(r.Context(), chi.URLParam(r, "courseID"))
		if errors.Is(err, course.ErrNotFound) {
			respondErr(w, apperr.NotFound("course not found"))
			return
		}
		if err != nil {
			respondErr(w, apperr.Internal("course delete failed", err))
			return
		}
		respond(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
