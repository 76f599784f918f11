// ABOUTME: Built-in downstream sinks for completed assessments.
// ABOUTME: The log sink is the default; comment and persistence collaborators plug in behind the same contract.

package engine

import (
	"context"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// LogSink writes each verdict to the structured log
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates the log sink
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Deliver(ctx context.Context, riskContext *types.RiskContext, result *types.RiskAssessmentResult) error {
	entry := s.logger.WithFields(logrus.Fields{
		"repo":          riskContext.Owner + "/" + riskContext.Repo,
		"branch":        riskContext.Branch,
		"sha":           riskContext.SHA,
		"overall_score": result.OverallScore,
		"overall_level": result.OverallLevel,
		"risk_factors":  len(result.AllRiskFactors),
	})
	if riskContext.PRNumber != nil {
		entry = entry.WithField("pr_number", *riskContext.PRNumber)
	}
	entry.Info("Risk assessment delivered")
	return nil
}
