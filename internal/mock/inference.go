// ABOUTME: Mock inference client for local testing and development.
// ABOUTME: Scores deterministically from request features so verdicts are reproducible.

package mock

import (
	"context"

	"github.com/jfeddern/RiskRelay/internal/inference"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// InferenceClient implements the inference.Client interface with a simple
// deterministic rule, mirroring the real service's rule-based fallback
type InferenceClient struct {
	logger *logrus.Logger
}

// NewInferenceClient creates a mock inference client
func NewInferenceClient(logger *logrus.Logger) *InferenceClient {
	return &InferenceClient{logger: logger}
}

// Predict scores from commit count and churn, capped at 1.0
func (m *InferenceClient) Predict(ctx context.Context, request inference.PredictRequest) (*inference.PredictResponse, error) {
	commitImpact := min(float64(request.CommitCount)/50.0, 1.0) * 0.25
	sizeImpact := min(float64(request.LinesChanged)/2000.0, 1.0) * 0.30

	timeImpact := 0.0
	if request.DayOfWeek == 5 || request.DayOfWeek == 6 {
		timeImpact += 0.10
	}
	if request.HourOfDay < 8 || request.HourOfDay > 18 {
		timeImpact += 0.10
	}

	score := min(commitImpact+sizeImpact+timeImpact, 1.0)

	m.logger.WithFields(logrus.Fields{
		"commit_count":  request.CommitCount,
		"lines_changed": request.LinesChanged,
		"score":         score,
	}).Debug("Mock inference prediction")

	return &inference.PredictResponse{
		RiskScore: score,
		RiskLevel: string(types.LevelForScore(score)),
		Details: map[string]any{
			"source":       "mock",
			"commitImpact": commitImpact,
			"sizeImpact":   sizeImpact,
			"timeImpact":   timeImpact,
		},
	}, nil
}
