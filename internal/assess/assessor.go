// ABOUTME: Assessment aggregator running enabled scorers and combining their results.
// ABOUTME: Produces one weighted verdict; a total scorer wipeout yields the fail-open sentinel.

package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/jfeddern/RiskRelay/internal/scorers"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// SentinelRiskFactor is the single risk factor of the no-scorers sentinel result
const SentinelRiskFactor = "No risk scorers were executed"

// Recorder receives assessment observations, typically for metrics
type Recorder interface {
	ScorerDuration(scorer string, duration time.Duration)
	AssessmentCompleted(level types.RiskLevel)
}

// NopRecorder discards all observations
type NopRecorder struct{}

func (NopRecorder) ScorerDuration(string, time.Duration) {}
func (NopRecorder) AssessmentCompleted(types.RiskLevel)  {}

// Assessor runs a fixed, explicitly registered scorer list against one
// risk context and combines the results into a weighted verdict. Scorer
// weights come from configuration; a scorer with no configured weight
// contributes nothing to the combination.
type Assessor struct {
	scorers  []scorers.Scorer
	weights  map[string]float64
	recorder Recorder
	logger   *logrus.Logger
}

// NewAssessor creates an assessor over the given scorer registry
func NewAssessor(registry []scorers.Scorer, weights map[string]float64, recorder Recorder, logger *logrus.Logger) *Assessor {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Assessor{
		scorers:  registry,
		weights:  weights,
		recorder: recorder,
		logger:   logger,
	}
}

// Assess invokes every enabled scorer sequentially in registration order.
// A scorer that panics is logged and left out of the result set; it never
// aborts the assessment. If no scorer produces a result, the fail-open
// sentinel (score 0.0, level LOW) is returned.
func (a *Assessor) Assess(ctx context.Context, riskContext *types.RiskContext) *types.RiskAssessmentResult {
	logger := a.logger.WithFields(logrus.Fields{
		"component": "assessor",
		"repo":      riskContext.Owner + "/" + riskContext.Repo,
	})

	results := make(map[string]types.ScorerResult)
	var order []string

	for _, scorer := range a.scorers {
		if !scorer.Enabled() {
			logger.WithField("scorer", scorer.Name()).Debug("Scorer disabled, skipping")
			continue
		}

		result, err := a.runScorer(ctx, scorer, riskContext)
		if err != nil {
			logger.WithError(err).WithField("scorer", scorer.Name()).Error("Scorer failed, excluding from assessment")
			continue
		}

		results[scorer.Name()] = result
		order = append(order, scorer.Name())
	}

	if len(results) == 0 {
		logger.Warn("No scorer produced a result, returning sentinel assessment")
		sentinel := &types.RiskAssessmentResult{
			OverallScore:   0.0,
			OverallLevel:   types.RiskLevelLow,
			ScorerResults:  map[string]types.ScorerResult{},
			AllRiskFactors: []string{SentinelRiskFactor},
		}
		a.recorder.AssessmentCompleted(sentinel.OverallLevel)
		return sentinel
	}

	var weightedSum, totalWeight float64
	var allRiskFactors []string
	var scanReport []types.Vulnerability

	for _, name := range order {
		result := results[name]
		weight := a.weights[name] // unknown scorer names weigh zero
		weightedSum += result.Score * weight
		totalWeight += weight
		allRiskFactors = append(allRiskFactors, result.RiskFactors...)
		scanReport = append(scanReport, result.ScanReport...)
	}

	if totalWeight == 0 {
		totalWeight = 1.0
	}

	overallScore := weightedSum / totalWeight
	overallLevel := types.LevelForScore(overallScore)

	logger.WithFields(logrus.Fields{
		"overall_score": overallScore,
		"overall_level": overallLevel,
		"scorers_run":   len(results),
	}).Info("Risk assessment completed")

	a.recorder.AssessmentCompleted(overallLevel)

	return &types.RiskAssessmentResult{
		OverallScore:   overallScore,
		OverallLevel:   overallLevel,
		ScorerResults:  results,
		AllRiskFactors: allRiskFactors,
		ScanReport:     scanReport,
	}
}

// runScorer invokes one scorer with panic isolation. Scorers are expected
// to degrade internally rather than fail, so an escaped panic is a
// programming error worth logging loudly.
func (a *Assessor) runScorer(ctx context.Context, scorer scorers.Scorer, riskContext *types.RiskContext) (result types.ScorerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panicked: %v", r)
		}
	}()

	startTime := time.Now()
	result = scorer.Score(ctx, riskContext)
	a.recorder.ScorerDuration(scorer.Name(), time.Since(startTime))

	return result, nil
}
