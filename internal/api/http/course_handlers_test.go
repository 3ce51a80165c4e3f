package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/validate"
)

func newCourseRouter(store course.Store) *chi.Mux {
	v := validate.New()
	r := chi.NewRouter()
	r.Get("/courses", ListCoursesHandler(store))
	r.Get("/courses/{courseID}", GetCourseHandler(store))
	r.Post("/courses", CreateCourseHandler(store, v))
	r.Put("/courses/{courseID}", UpdateCourseHandler(store, v))
	r.Delete("/courses/{courseID}", DeleteCourseHandler(store))
	return r
}

func TestCourseCRUD(t *testing.T) {
	store := course.NewMemStore()
	r := newCourseRouter(store)

	// create
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/courses",
		strings.NewReader(`{"title":"Fractions","grade":"6e","chapter":"Chapitre 1","description":"Intro"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	created := dataOf(t, decodeEnvelope(t, rec))["course"].(map[string]any)
	id := created["id"].(string)
	if id == "" || created["title"] != "Fractions" {
		t.Fatalf("created course: %v", created)
	}

	// list
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses", nil))
	if rows := dataOf(t, decodeEnvelope(t, rec))["courses"].([]any); len(rows) != 1 {
		t.Fatalf("list: %v", rows)
	}

	// get
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}

	// update
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/courses/"+id,
		strings.NewReader(`{"title":"Fractions II","grade":"6e","chapter":"Chapitre 2"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}
	got, err := store.GetByID(context.Background(), id)
	if err != nil || got.Chapter != "Chapitre 2" {
		t.Fatalf("update not persisted: %+v, %v", got, err)
	}

	// delete, then 404s
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/courses/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/courses/"+id, nil),
		httptest.NewRequest(http.MethodDelete, "/courses/"+id, nil),
	} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s after delete: status %d", req.Method, rec.Code)
		}
	}
}

func TestCreateCourseValidation(t *testing.T) {
	r := newCourseRouter(course.NewMemStore())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(`{"title":"Fractions"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	errs := decodeEnvelope(t, rec)["errors"].([]any)
	if len(errs) != 2 {
		t.Fatalf("want errors for grade and chapter, got %v", errs)
	}
}
