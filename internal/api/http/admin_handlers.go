package http

import (
	"net/http"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/attempt"
	"github.com/mathia-edu/mathia/internal/user"
)

// GET /admin/attempts?user_id=&exercise_id=&page=&limit=
func ListAllAttemptsHandler(ledger attempt.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := attempt.AdminListOpts{
			UserID:     r.URL.Query().Get("user_id"),
			ExerciseID: r.URL.Query().Get("exercise_id"),
			Page:       parseIntDefault(r.URL.Query().Get("page"), 1),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
		}
		as, total, err := ledger.ListAll(r.Context(), opts)
		if err != nil {
			respondErr(w, apperr.Internal("attempt list failed", err))
			return
		}
		respond(w, http.StatusOK, map[string]any{
			"attempts":   as,
			"pagination": newPagination(total, opts.Page, opts.Limit),
		})
	}
}

// GET /admin/users. Password hashes never serialize (json:"-" on the model).
func ListUsersHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		us, err := users.List(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"users": us})
	}
}
