// aiproxy is the minimal generation service: it owns no data model of its
// own, it forwards prompts to the configured chat-completions API and writes
// the resulting exercises through the shared store.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mathia-edu/mathia/internal/aigen"
	api "github.com/mathia-edu/mathia/internal/api/http"
	authmw "github.com/mathia-edu/mathia/internal/auth/middleware"
	"github.com/mathia-edu/mathia/internal/config"
	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/db"
	"github.com/mathia-edu/mathia/internal/exercise"
	"github.com/mathia-edu/mathia/internal/rbac"
	"github.com/mathia-edu/mathia/internal/validate"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	gen := aigen.NewService(
		exercise.NewSQLStore(dbh),
		course.NewSQLStore(dbh),
		&http.Client{Timeout: 60 * time.Second},
		aigen.Config{
			BaseURL:     cfg.OpenAIBase,
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.OpenAITemp,
			MaxTokens:   cfg.OpenAITokens,
		},
	)

	authSvc := authmw.NewAuthService(cfg.JWTSecret, cfg.JWTTTL)
	v := validate.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second)) // generation is slow

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireAuth(authSvc))
		pr.With(rbac.Require(rbac.PermExerciseCreate)).
			Post("/generate-exercises", api.GenerateExercisesHandler(gen, v))
	})

	log.Printf("aiproxy listening on %s (model=%s)", cfg.AIProxyAddr, cfg.OpenAIModel)
	log.Fatal(http.ListenAndServe(cfg.AIProxyAddr, r))
}
