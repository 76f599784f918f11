// ABOUTME: Scorer capability interface implemented by each risk-scoring strategy.
// ABOUTME: Scorers are registered explicitly at startup; there is no dynamic discovery.

package scorers

import (
	"context"

	"github.com/jfeddern/RiskRelay/internal/types"
)

// Scorer is one independent risk-scoring strategy. Score must not fail
// for predictable conditions such as an unreachable collaborator; it
// reports degradation inside the result instead.
type Scorer interface {
	// Name is the stable identifier used as the aggregation and weighting key
	Name() string

	// Enabled reports whether the scorer should be invoked at all.
	// Disabled scorers are skipped entirely, not invoked and discarded.
	Enabled() bool

	// Score evaluates one risk context
	Score(ctx context.Context, riskContext *types.RiskContext) types.ScorerResult
}
