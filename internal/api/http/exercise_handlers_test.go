package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/exercise"
	"github.com/mathia-edu/mathia/internal/validate"
)

func seedContent(t *testing.T) (*exercise.MemStore, *course.MemStore) {
	t.Helper()
	ctx := context.Background()

	courses := course.NewMemStore()
	if err := courses.Insert(ctx, course.Course{ID: "c-1", Title: "Fractions", Grade: "6e", Chapter: "Chapitre 1"}); err != nil {
		t.Fatalf("seed course: %v", err)
	}

	store := exercise.NewMemStore()
	for _, e := range []exercise.Exercise{
		{ID: "ex-1", CourseID: "c-1", Type: exercise.TypeComputation, Body: "10/2 ?", Answer: "5", Difficulty: "easy"},
		{ID: "ex-2", CourseID: "c-1", Type: exercise.TypeMultipleChoice, Body: "Pick one",
			Options: map[string]string{"a": "1", "b": "2"}, Answer: "b", Difficulty: "hard"},
	} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("seed exercise: %v", err)
		}
	}
	return store, courses
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestListExercisesAlwaysRedacts(t *testing.T) {
	store, _ := seedContent(t)
	h := ListExercisesHandler(store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exercises", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	rows := dataOf(t, decodeEnvelope(t, rec))["exercises"].([]any)
	if len(rows) != 2 {
		t.Fatalf("want 2 exercises, got %d", len(rows))
	}
	for _, row := range rows {
		if _, ok := row.(map[string]any)["answer"]; ok {
			t.Fatalf("listing exposed an answer: %v", row)
		}
	}
}

func TestListExercisesFilters(t *testing.T) {
	store, _ := seedContent(t)
	h := ListExercisesHandler(store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exercises?difficulty=hard", nil))
	rows := dataOf(t, decodeEnvelope(t, rec))["exercises"].([]any)
	if len(rows) != 1 || rows[0].(map[string]any)["id"] != "ex-2" {
		t.Fatalf("difficulty filter: %v", rows)
	}
}

func newExerciseRouter(store *exercise.MemStore, courses *course.MemStore) *chi.Mux {
	v := validate.New()
	r := chi.NewRouter()
	r.Post("/exercises", CreateExerciseHandler(store, courses, v))
	r.Put("/exercises/{exerciseID}", UpdateExerciseHandler(store, v))
	r.Delete("/exercises/{exerciseID}", DeleteExerciseHandler(store))
	return r
}

func TestCreateExercise(t *testing.T) {
	store, courses := seedContent(t)
	r := newExerciseRouter(store, courses)

	body := `{"courseId":"c-1","type":"true_false","body":"2 is even","answer":"true","explanation":"even numbers"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exercises", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	ex := dataOf(t, decodeEnvelope(t, rec))["exercise"].(map[string]any)
	id, _ := ex["id"].(string)
	if id == "" || ex["type"] != "true_false" {
		t.Fatalf("created exercise: %v", ex)
	}
	if _, err := store.GetByID(context.Background(), id); err != nil {
		t.Fatalf("exercise not persisted: %v", err)
	}
}

func TestCreateExerciseUnknownCourse(t *testing.T) {
	store, courses := seedContent(t)
	r := newExerciseRouter(store, courses)

	body := `{"courseId":"ghost","type":"computation","body":"q","answer":"a"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exercises", strings.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestCreateExerciseBadType(t *testing.T) {
	store, courses := seedContent(t)
	r := newExerciseRouter(store, courses)

	body := `{"courseId":"c-1","type":"essay","body":"q","answer":"a"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exercises", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	errs := env["errors"].([]any)
	if errs[0].(map[string]any)["field"] != "type" {
		t.Fatalf("errors: %v", errs)
	}
}

func TestUpdateAndDeleteExercise(t *testing.T) {
	store, courses := seedContent(t)
	r := newExerciseRouter(store, courses)

	body := `{"courseId":"c-1","type":"computation","body":"10/2 ?","answer":"5","difficulty":"medium"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/exercises/ex-1", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	got, err := store.GetByID(context.Background(), "ex-1")
	if err != nil || got.Difficulty != "medium" {
		t.Fatalf("update not persisted: %+v, %v", got, err)
	}
	if got.UpdatedAt.After(time.Now().Add(time.Minute)) {
		t.Fatalf("bad updated_at: %v", got.UpdatedAt)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/exercises/ghost", strings.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/exercises/ex-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/exercises/ex-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d", rec.Code)
	}
}
