// ABOUTME: External-model scorer delegating to the ML inference collaborator.
// ABOUTME: Degrades to a neutral result when the service is unreachable instead of failing.

package scorers

import (
	"context"
	"time"

	"github.com/jfeddern/RiskRelay/internal/inference"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// MLModelScorerName is the aggregation key for the ML-model scorer
const MLModelScorerName = "ml_model"

// MLModelScorer builds a prediction request from the risk context and maps
// the inference response into a scorer result.
type MLModelScorer struct {
	client  inference.Client
	enabled bool
	logger  *logrus.Logger
}

// NewMLModelScorer creates the ML-model scorer over the given client
func NewMLModelScorer(client inference.Client, enabled bool, logger *logrus.Logger) *MLModelScorer {
	return &MLModelScorer{
		client:  client,
		enabled: enabled,
		logger:  logger,
	}
}

func (s *MLModelScorer) Name() string {
	return MLModelScorerName
}

func (s *MLModelScorer) Enabled() bool {
	return s.enabled
}

// Score delegates to the inference service. An unreachable or failing
// service yields the neutral 0.0/LOW fallback with the degradation noted
// in the result, never an error to the caller.
func (s *MLModelScorer) Score(ctx context.Context, riskContext *types.RiskContext) types.ScorerResult {
	request := inference.PredictRequest{
		CommitCount:  riskContext.CommitCount,
		LinesChanged: riskContext.LinesChanged(),
		TestPassRate: 1.0, // no CI signal in scope
		HourOfDay:    riskContext.Timestamp.Hour(),
		DayOfWeek:    pythonWeekday(riskContext.Timestamp),
		Files:        riskContext.Files,
	}

	prediction, err := s.client.Predict(ctx, request)
	if err != nil {
		s.logger.WithError(err).WithField("scorer", MLModelScorerName).Warn("Inference call failed, using neutral fallback")
		return types.ScorerResult{
			Score: 0.0,
			Level: types.RiskLevelLow,
			Details: map[string]any{
				"degraded": true,
				"error":    err.Error(),
			},
			RiskFactors: []string{"ML risk model unavailable, assuming neutral score"},
		}
	}

	details := prediction.Details
	if details == nil {
		details = make(map[string]any)
	}

	var riskFactors []string
	if prediction.RiskScore >= 0.5 {
		riskFactors = append(riskFactors, "ML model flagged this change as risky")
	}

	return types.ScorerResult{
		Score:       prediction.RiskScore,
		Level:       types.RiskLevel(prediction.RiskLevel),
		Details:     details,
		RiskFactors: riskFactors,
		ScanReport:  prediction.ScanReport,
	}
}

// pythonWeekday maps Go's Sunday-based weekday onto the 0=Monday scale the
// inference service was trained with
func pythonWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
