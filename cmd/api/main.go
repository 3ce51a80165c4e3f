package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mathia-edu/mathia/internal/api/http"
	"github.com/mathia-edu/mathia/internal/attempt"
	authmw "github.com/mathia-edu/mathia/internal/auth/middleware"
	"github.com/mathia-edu/mathia/internal/config"
	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/db"
	"github.com/mathia-edu/mathia/internal/exercise"
	"github.com/mathia-edu/mathia/internal/grading"
	"github.com/mathia-edu/mathia/internal/rbac"
	"github.com/mathia-edu/mathia/internal/user"
	"github.com/mathia-edu/mathia/internal/validate"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores and services (injected, no singletons) ---
	users := user.NewService(user.NewSQLStore(dbh))
	courses := course.NewSQLStore(dbh)
	exercises := exercise.NewSQLStore(dbh)
	ledger := attempt.NewSQLLedger(dbh)
	gate := exercise.NewGate(ledger)
	attempts := attempt.NewService(exercises, ledger, grading.ExactMatch{})

	authSvc := authmw.NewAuthService(cfg.JWTSecret, cfg.JWTTTL)
	v := validate.New()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/signup", api.SignupHandler(users, authSvc, v))
	r.Post("/auth/login", api.LoginHandler(users, authSvc, v))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// Single-exercise read: optional auth, the gate handles disclosure.
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.OptionalAuth(authSvc))
		pr.Get("/exercises/{exerciseID}", api.GetExerciseHandler(exercises, gate, ledger))
	})

	// Authenticated API
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireAuth(authSvc))

		pr.Get("/courses", api.ListCoursesHandler(courses))
		pr.Get("/courses/{courseID}", api.GetCourseHandler(courses))
		pr.With(rbac.Require(rbac.PermCourseCreate)).
			Post("/courses", api.CreateCourseHandler(courses, v))
		pr.With(rbac.Require(rbac.PermCourseUpdate)).
			Put("/courses/{courseID}", api.UpdateCourseHandler(courses, v))
		pr.With(rbac.Require(rbac.PermCourseDelete)).
			Delete("/courses/{courseID}", api.DeleteCourseHandler(courses))

		pr.Get("/exercises", api.ListExercisesHandler(exercises))
		pr.With(rbac.Require(rbac.PermExerciseCreate)).
			Post("/exercises", api.CreateExerciseHandler(exercises, courses, v))
		pr.With(rbac.Require(rbac.PermExerciseUpdate)).
			Put("/exercises/{exerciseID}", api.UpdateExerciseHandler(exercises, v))
		pr.With(rbac.Require(rbac.PermExerciseDelete)).
			Delete("/exercises/{exerciseID}", api.DeleteExerciseHandler(exercises))

		pr.Post("/attempts", api.SubmitAttemptHandler(attempts, v))
		pr.Get("/attempts", api.ListMyAttemptsHandler(attempts))
		pr.Get("/attempts/stats", api.MyStatsHandler(attempts))

		pr.With(rbac.Require(rbac.PermAttemptViewAll)).
			Get("/admin/attempts", api.ListAllAttemptsHandler(ledger))
		pr.With(rbac.Require(rbac.PermUsersList)).
			Get("/admin/users", api.ListUsersHandler(users))
	})

	log.Printf("api listening on %s (env=%s, db=%s)", cfg.HTTPAddr, cfg.Env, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
