package exercise

import (
	"context"

	auth "github.com/mathia-edu/mathia/internal/auth/middleware"
)

// SuccessChecker is the slice of the attempt ledger the gate needs.
type SuccessChecker interface {
	HasSucceeded(ctx context.Context, userID, exerciseID string) (bool, error)
}

// Gate decides whether a read response may include the correct answer.
//
// The rule is history-based and has no role override: anonymous viewers and
// viewers who have never submitted a correct answer for the exercise get the
// redacted representation. Explanation and every other field stay visible.
type Gate struct {
	ledger SuccessChecker
}

func NewGate(ledger SuccessChecker) *Gate { return &Gate{ledger: ledger} }

// Present shapes the exercise for a detail read. viewer is nil for
// anonymous requests.
func (g *Gate) Present(ctx context.Context, e Exercise, viewer *auth.Identity) (Exercise, error) {
	if viewer == nil {
		return e.Redacted(), nil
	}
	ok, err := g.ledger.HasSucceeded(ctx, viewer.UserID, e.ID)
	if err != nil {
		return Exercise{}, err
	}
	if !ok {
		return e.Redacted(), nil
	}
	return e, nil
}
