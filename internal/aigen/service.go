// Package aigen is the prompt-proxy: it asks an OpenAI-compatible
// chat-completions endpoint to draft exercises and persists the results
// through the exercise store. Upstream failures surface as bad-gateway
// errors and are never retried here.
package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mathia-edu/mathia/internal/apperr"
	"github.com/mathia-edu/mathia/internal/course"
	"github.com/mathia-edu/mathia/internal/exercise"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type Service struct {
	exercises exercise.Store
	courses   course.Store
	client    HTTPClient
	cfg       Config
	now       func() time.Time
}

func NewService(exercises exercise.Store, courses course.Store, client HTTPClient, cfg Config) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	return &Service{exercises: exercises, courses: courses, client: client, cfg: cfg, now: time.Now}
}

type GenerateInput struct {
	CourseID   string `json:"courseId" validate:"required"`
	Grade      string `json:"grade" validate:"required"`
	Topic      string `json:"topic" validate:"required"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
	Count      int    `json:"count" validate:"omitempty,min=1,max=5"`
}

// generated is the JSON shape we require from the model.
type generated struct {
	Exercises []struct {
		Body        string            `json:"body"`
		Options     map[string]string `json:"options"`
		Answer      string            `json:"answer"`
		Explanation string            `json:"explanation"`
		Tags        []string          `json:"tags"`
	} `json:"exercises"`
}

// Generate drafts Count exercises and stores them on the course.
func (s *Service) Generate(ctx context.Context, in GenerateInput) ([]exercise.Exercise, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, apperr.Invalid("generation is not configured: missing API key")
	}
	if in.Count < 1 {
		in.Count = 1
	}
	if in.Difficulty == "" {
		in.Difficulty = "medium"
	}
	typ := exercise.TypeMultipleChoice
	if in.Type != "" {
		t, err := exercise.ParseType(in.Type)
		if err != nil {
			return nil, apperr.Invalid("validation failed",
				apperr.FieldError{Field: "type", Message: err.Error()})
		}
		typ = t
	}

	if _, err := s.courses.GetByID(ctx, in.CourseID); errors.Is(err, course.ErrNotFound) {
		return nil, apperr.NotFound("course not found")
	} else if err != nil {
		return nil, apperr.Internal("course lookup failed", err)
	}

	gen, err := s.complete(ctx, buildPrompt(in, typ))
	if err != nil {
		return nil, err
	}
	if len(gen.Exercises) == 0 {
		return nil, apperr.BadGateway("model returned no exercises")
	}

	now := s.now().UTC()
	out := make([]exercise.Exercise, 0, len(gen.Exercises))
	for _, g := range gen.Exercises {
		if strings.TrimSpace(g.Body) == "" || strings.TrimSpace(g.Answer) == "" {
			return nil, apperr.BadGateway("model returned an exercise without body or answer")
		}
		e := exercise.Exercise{
			ID:          uuid.NewString(),
			CourseID:    in.CourseID,
			Type:        typ,
			Body:        g.Body,
			Options:     g.Options,
			Answer:      g.Answer,
			Explanation: g.Explanation,
			Difficulty:  in.Difficulty,
			Tags:        g.Tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.exercises.Insert(ctx, e); err != nil {
			return nil, apperr.Internal("generated exercise could not be stored", err)
		}
		out = append(out, e)
	}
	return out, nil
}

const systemPrompt = "You are a mathematics teacher creating exercises for middle-school students. Respond only with valid JSON."

func buildPrompt(in GenerateInput, typ exercise.Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d mathematics exercise(s) with these characteristics:\n", in.Count)
	fmt.Fprintf(&b, "- Grade level: %s\n- Topic: %s\n- Difficulty: %s\n- Type: %s\n\n", in.Grade, in.Topic, in.Difficulty, typ)
	b.WriteString("For each exercise provide the question body, the correct answer and a detailed explanation of the solution.\n")
	if typ == exercise.TypeMultipleChoice {
		b.WriteString("Also provide 4 answer options keyed A-D, exactly one of them correct; the answer field must be the correct key.\n")
	}
	b.WriteString(`Respond with JSON of this shape: {"exercises":[{"body":"string","answer":"string","explanation":"string","tags":["string"]`)
	if typ == exercise.TypeMultipleChoice {
		b.WriteString(`,"options":{"A":"string","B":"string","C":"string","D":"string"}`)
	}
	b.WriteString(`}]}`)
	return b.String()
}

func (s *Service) complete(ctx context.Context, prompt string) (generated, error) {
	payload := map[string]any{
		"model":       s.cfg.Model,
		"temperature": s.cfg.Temperature,
		"max_tokens":  s.cfg.MaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return generated{}, apperr.Internal("prompt encoding failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(s.cfg.BaseURL), bytes.NewReader(body))
	if err != nil {
		return generated{}, apperr.Internal("request build failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return generated{}, apperr.BadGateway(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return generated{}, apperr.BadGateway(fmt.Sprintf("upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		return generated{}, apperr.BadGateway("unreadable upstream response")
	}
	if len(cc.Choices) == 0 {
		return generated{}, apperr.BadGateway("no choices in upstream response")
	}
	var gen generated
	if err := json.Unmarshal([]byte(cc.Choices[0].Message.Content), &gen); err != nil {
		return generated{}, apperr.BadGateway("model did not return valid JSON")
	}
	return gen, nil
}

func endpoint(base string) string {
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/v1/chat/completions"
}
