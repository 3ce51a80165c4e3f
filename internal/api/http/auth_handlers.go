package http

import (
	"net/http"

	authmw "github.com/mathia-edu/mathia/internal/auth/middleware"
	"github.com/mathia-edu/mathia/internal/user"
	"github.com/mathia-edu/mathia/internal/validate"
)

// POST /auth/signup
func SignupHandler(users *user.Service, authSvc *authmw.AuthService, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in user.SignupInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		u, err := users.Signup(r.Context(), in)
		if err != nil {
			respondErr(w, err)
			return
		}
		token, err := authSvc.IssueJWT(u.ID, u.Role)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusCreated, map[string]any{"user": u, "token": token})
	}
}

// POST /auth/login
func LoginHandler(users *user.Service, authSvc *authmw.AuthService, v *validate.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in user.LoginInput
		if err := decodeJSON(r, &in); err != nil {
			respondErr(w, err)
			return
		}
		if err := v.Check(in); err != nil {
			respondErr(w, err)
			return
		}
		u, err := users.Login(r.Context(), in)
		if err != nil {
			respondErr(w, err)
			return
		}
		token, err := authSvc.IssueJWT(u.ID, u.Role)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"user": u, "token": token})
	}
}
