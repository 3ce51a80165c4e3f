package http

import (
	"net/http"
	"strconv"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/attempt"
	authmw "github.com/mathia-edu/mathia/internal/auth/middleware"
	"github.com/mathia-edu/mathia/internal/validate"
)

// POST /attempts is the grading flow. 201 carries the grade; explanation and
// correctAnswer appear only when this submission is correct.
func SubmitAttemptHandler(svc *attempt.Service, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := authmw.IdentityFromContext(r.Context())
		if viewer == nil {
			respondErr(w, apperr.Unauthorized("unauthorized"))
			return
		}
		var in attempt.SubmitInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		res, err := svc.Submit(r.Context(), viewer.UserID, in)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusCreated, res)
	}
}

// GET /attempts?exercise_id=&page=&limit=, the caller's own history.
func ListMyAttemptsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := authmw.IdentityFromContext(r.Context())
		if viewer == nil {
			respondErr(w, apperr.Unauthorized("unauthorized"))
			return
		}
		opts := attempt.ListOpts{
			ExerciseID: r.URL.Query().Get("exercise_id"),
			Page:       parseIntDefault(r.URL.Query().Get("page"), 1),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 20),
		}
		as, total, err := svc.ListMine(r.Context(), viewer.UserID, opts)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{
			"attempts":   as,
			"pagination": newPagination(total, opts.Page, opts.Limit),
		})
	}
}

// GET /attempts/stats
func MyStatsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := authmw.IdentityFromContext(r.Context())
		if viewer == nil {
			respondErr(w, apperr.Unauthorized("unauthorized"))
			return
		}
		st, err := svc.StatsFor(r.Context(), viewer.UserID)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, st)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
