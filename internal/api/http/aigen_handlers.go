package http

import (
	"net/http"

	"github.com/mathia-edu/mathia/internal/aigen"
	"github.com/mathia-edu/mathia/internal/validate"
)

// POST /generate-exercises, mounted by the aiproxy binary.
func GenerateExercisesHandler(svc *aigen.Service, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in aigen.GenerateInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		es, err := svc.Generate(r.Context(), in)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusCreated, map[string]any{"exercises": es})
	}
}
