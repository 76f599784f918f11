// ABOUTME: Unit tests for the assessment aggregator.
// ABOUTME: Covers weighted combination, the fail-open sentinel, and scorer failure isolation.

package assess

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jfeddern/RiskRelay/internal/scorers"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

type stubScorer struct {
	name    string
	enabled bool
	score   float64
	panics  bool
	calls   int
}

func (s *stubScorer) Name() string {
	return s.name
}

func (s *stubScorer) Enabled() bool {
	return s.enabled
}

func (s *stubScorer) Score(ctx context.Context, riskContext *types.RiskContext) types.ScorerResult {
	s.calls++
	if s.panics {
		panic("scorer bug")
	}
	return types.ScorerResult{
		Score:       s.score,
		Level:       types.LevelForScore(s.score),
		Details:     map[string]any{"stub": true},
		RiskFactors: []string{s.name + " factor"},
		ScanReport:  []types.Vulnerability{{Type: "Test", File: s.name + ".go", Severity: "LOW"}},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testContext() *types.RiskContext {
	return &types.RiskContext{Owner: "acme", Repo: "backend", Timestamp: time.Now()}
}

func TestAssessWeightedCombination(t *testing.T) {
	registry := []scorers.Scorer{
		&stubScorer{name: "a", enabled: true, score: 0.8},
		&stubScorer{name: "b", enabled: true, score: 0.2},
	}
	weights := map[string]float64{"a": 3.0, "b": 1.0}

	assessor := NewAssessor(registry, weights, nil, testLogger())
	result := assessor.Assess(context.Background(), testContext())

	// (0.8*3 + 0.2*1) / 4 = 0.65
	if math.Abs(result.OverallScore-0.65) > 1e-9 {
		t.Errorf("OverallScore = %v, want 0.65", result.OverallScore)
	}
	if result.OverallLevel != types.RiskLevelHigh {
		t.Errorf("OverallLevel = %v, want HIGH", result.OverallLevel)
	}
	if len(result.ScorerResults) != 2 {
		t.Errorf("ScorerResults = %d entries, want 2", len(result.ScorerResults))
	}
	if len(result.AllRiskFactors) != 2 || len(result.ScanReport) != 2 {
		t.Errorf("factors/reports = %d/%d, want 2/2", len(result.AllRiskFactors), len(result.ScanReport))
	}
}

func TestAssessOrderInvariance(t *testing.T) {
	weights := map[string]float64{"a": 3.0, "b": 1.0}

	forward := NewAssessor([]scorers.Scorer{
		&stubScorer{name: "a", enabled: true, score: 0.8},
		&stubScorer{name: "b", enabled: true, score: 0.2},
	}, weights, nil, testLogger())

	reversed := NewAssessor([]scorers.Scorer{
		&stubScorer{name: "b", enabled: true, score: 0.2},
		&stubScorer{name: "a", enabled: true, score: 0.8},
	}, weights, nil, testLogger())

	s1 := forward.Assess(context.Background(), testContext()).OverallScore
	s2 := reversed.Assess(context.Background(), testContext()).OverallScore

	if math.Abs(s1-s2) > 1e-9 {
		t.Errorf("scores differ by registration order: %v vs %v", s1, s2)
	}
}

func TestAssessSentinelWhenAllDisabled(t *testing.T) {
	disabled := &stubScorer{name: "a", enabled: false, score: 0.9}
	assessor := NewAssessor([]scorers.Scorer{disabled}, nil, nil, testLogger())

	result := assessor.Assess(context.Background(), testContext())

	if result.OverallScore != 0.0 {
		t.Errorf("OverallScore = %v, want 0.0", result.OverallScore)
	}
	if result.OverallLevel != types.RiskLevelLow {
		t.Errorf("OverallLevel = %v, want LOW", result.OverallLevel)
	}
	if len(result.AllRiskFactors) != 1 || result.AllRiskFactors[0] != SentinelRiskFactor {
		t.Errorf("AllRiskFactors = %v, want exactly [%q]", result.AllRiskFactors, SentinelRiskFactor)
	}
	if disabled.calls != 0 {
		t.Error("disabled scorer must not be invoked at all")
	}
}

func TestAssessPanickingScorerExcluded(t *testing.T) {
	registry := []scorers.Scorer{
		&stubScorer{name: "bad", enabled: true, panics: true},
		&stubScorer{name: "good", enabled: true, score: 0.4},
	}
	weights := map[string]float64{"bad": 1.0, "good": 1.0}

	assessor := NewAssessor(registry, weights, nil, testLogger())
	result := assessor.Assess(context.Background(), testContext())

	if _, present := result.ScorerResults["bad"]; present {
		t.Error("panicking scorer must be absent from the result set")
	}
	if math.Abs(result.OverallScore-0.4) > 1e-9 {
		t.Errorf("OverallScore = %v, want 0.4 from the surviving scorer alone", result.OverallScore)
	}
}

func TestAssessSentinelWhenAllPanic(t *testing.T) {
	assessor := NewAssessor([]scorers.Scorer{
		&stubScorer{name: "bad", enabled: true, panics: true},
	}, nil, nil, testLogger())

	result := assessor.Assess(context.Background(), testContext())

	if result.OverallLevel != types.RiskLevelLow || len(result.AllRiskFactors) != 1 {
		t.Errorf("total failure should yield the sentinel, got %+v", result)
	}
}

func TestAssessZeroTotalWeight(t *testing.T) {
	// An enabled scorer with no configured weight contributes nothing;
	// the denominator falls back to 1.0
	assessor := NewAssessor([]scorers.Scorer{
		&stubScorer{name: "unweighted", enabled: true, score: 0.9},
	}, map[string]float64{}, nil, testLogger())

	result := assessor.Assess(context.Background(), testContext())

	if result.OverallScore != 0.0 {
		t.Errorf("OverallScore = %v, want 0.0 with zero total weight", result.OverallScore)
	}
	if _, present := result.ScorerResults["unweighted"]; !present {
		t.Error("the scorer still ran; its result must be present")
	}
}

func TestAssessScoreWithinBounds(t *testing.T) {
	for _, score := range []float64{0.0, 0.299, 0.3, 0.5, 0.799, 0.8, 1.0} {
		assessor := NewAssessor([]scorers.Scorer{
			&stubScorer{name: "s", enabled: true, score: score},
		}, map[string]float64{"s": 1.0}, nil, testLogger())

		result := assessor.Assess(context.Background(), testContext())
		if result.OverallScore < 0.0 || result.OverallScore > 1.0 {
			t.Errorf("OverallScore %v out of bounds", result.OverallScore)
		}
		if result.OverallLevel != types.LevelForScore(score) {
			t.Errorf("OverallLevel for %v = %v, want %v", score, result.OverallLevel, types.LevelForScore(score))
		}
	}
}
