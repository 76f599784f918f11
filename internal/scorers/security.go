// ABOUTME: Security-scan scorer converting aggregated alert counts into a risk score.
// ABOUTME: Scores by severity dominance: the worst present severity decides the score.

package scorers

import (
	"context"
	"fmt"

	"github.com/jfeddern/RiskRelay/internal/alerts"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// SecurityScanScorerName is the aggregation key for the security-scan scorer
const SecurityScanScorerName = "security_scan"

// SecurityScanScorer resolves a ref for the change and scores the alerts
// the aggregator finds for it.
type SecurityScanScorer struct {
	aggregator *alerts.Aggregator
	enabled    bool
	logger     *logrus.Logger
}

// NewSecurityScanScorer creates the security-scan scorer
func NewSecurityScanScorer(aggregator *alerts.Aggregator, enabled bool, logger *logrus.Logger) *SecurityScanScorer {
	return &SecurityScanScorer{
		aggregator: aggregator,
		enabled:    enabled,
		logger:     logger,
	}
}

func (s *SecurityScanScorer) Name() string {
	return SecurityScanScorerName
}

func (s *SecurityScanScorer) Enabled() bool {
	return s.enabled
}

// Score fetches alerts for the change and maps them by severity dominance:
// any CRITICAL alert scores 1.0, else any HIGH 0.8, else any MEDIUM 0.4,
// else any LOW 0.1, no alerts 0.0. Only the dominant severity is reported
// as a risk factor; the full alert list rides along as the scan report.
func (s *SecurityScanScorer) Score(ctx context.Context, riskContext *types.RiskContext) types.ScorerResult {
	ref := riskContext.SHA
	if ref == "" {
		ref = riskContext.Branch
	}

	var scanReport []types.Vulnerability
	if riskContext.IsPush() {
		scanReport = s.aggregator.AlertsForRef(ctx, riskContext.Owner, riskContext.Repo, ref)
	} else {
		scanReport = s.aggregator.AlertsForPR(ctx, riskContext.Owner, riskContext.Repo, ref, riskContext.Files)
	}

	counts := make(map[string]int)
	for _, v := range scanReport {
		counts[v.Severity]++
	}

	var score float64
	var riskFactors []string

	switch {
	case counts["CRITICAL"] > 0:
		score = 1.0
		riskFactors = append(riskFactors, fmt.Sprintf("%d critical security alert(s) found", counts["CRITICAL"]))
	case counts["HIGH"] > 0:
		score = 0.8
		riskFactors = append(riskFactors, fmt.Sprintf("%d high severity security alert(s) found", counts["HIGH"]))
	case counts["MEDIUM"] > 0:
		score = 0.4
		riskFactors = append(riskFactors, fmt.Sprintf("%d medium severity security alert(s) found", counts["MEDIUM"]))
	case counts["LOW"] > 0:
		score = 0.1
		riskFactors = append(riskFactors, fmt.Sprintf("%d low severity security alert(s) found", counts["LOW"]))
	default:
		score = 0.0
	}

	s.logger.WithFields(logrus.Fields{
		"scorer": SecurityScanScorerName,
		"repo":   riskContext.Owner + "/" + riskContext.Repo,
		"ref":    ref,
		"alerts": len(scanReport),
		"score":  score,
	}).Debug("Security scan scoring completed")

	return types.ScorerResult{
		Score: score,
		Level: types.LevelForScore(score),
		Details: map[string]any{
			"ref":         ref,
			"alertCounts": counts,
			"totalAlerts": len(scanReport),
		},
		RiskFactors: riskFactors,
		ScanReport:  scanReport,
	}
}
