// ABOUTME: Security alert aggregator merging two alert sources with fallback ordering.
// ABOUTME: Code-scanning alerts are preferred; Dependabot alerts fill in when scanning yields nothing.

package alerts

import (
	"context"
	"errors"

	"github.com/jfeddern/RiskRelay/internal/scm"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// Aggregator produces a best-effort alert list for a ref, tolerating
// repositories where one or both scanning features are missing. Source
// failures fold into "no findings from this source" and never abort the
// caller's assessment.
type Aggregator struct {
	scm    scm.Client
	logger *logrus.Logger
}

// NewAggregator creates an alert aggregator over the given client
func NewAggregator(scmClient scm.Client, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		scm:    scmClient,
		logger: logger,
	}
}

// AlertsForRef returns code-scanning alerts for ref if there are any,
// otherwise repo-wide dependency alerts, otherwise an empty list.
func (a *Aggregator) AlertsForRef(ctx context.Context, owner, repo, ref string) []types.Vulnerability {
	if alerts := a.staticAnalysisAlerts(ctx, owner, repo, ref); len(alerts) > 0 {
		return alerts
	}
	return a.dependencyAlerts(ctx, owner, repo)
}

// AlertsForPR behaves like AlertsForRef but narrows code-scanning alerts
// to files touched by the PR. An empty filtered set falls through to the
// repo-wide dependency source rather than failing closed.
func (a *Aggregator) AlertsForPR(ctx context.Context, owner, repo, ref string, touchedFiles []types.FileChange) []types.Vulnerability {
	alerts := a.staticAnalysisAlerts(ctx, owner, repo, ref)

	if len(alerts) > 0 {
		touched := make(map[string]bool, len(touchedFiles))
		for _, f := range touchedFiles {
			touched[f.Filename] = true
		}

		var filtered []types.Vulnerability
		for _, alert := range alerts {
			if touched[alert.File] {
				filtered = append(filtered, alert)
			}
		}

		if len(filtered) > 0 {
			return filtered
		}

		a.logger.WithFields(logrus.Fields{
			"repo":         owner + "/" + repo,
			"ref":          ref,
			"total_alerts": len(alerts),
		}).Debug("No code scanning alerts on touched files, falling back to dependency alerts")
	}

	return a.dependencyAlerts(ctx, owner, repo)
}

func (a *Aggregator) staticAnalysisAlerts(ctx context.Context, owner, repo, ref string) []types.Vulnerability {
	alerts, err := a.scm.StaticAnalysisAlerts(ctx, owner, repo, ref)
	if err != nil {
		logger := a.logger.WithFields(logrus.Fields{
			"repo": owner + "/" + repo,
			"ref":  ref,
		})
		if errors.Is(err, scm.ErrNotEnabled) {
			logger.Debug("Code scanning unavailable, trying next source")
		} else {
			logger.WithError(err).Warn("Code scanning lookup failed, trying next source")
		}
		return nil
	}
	return alerts
}

func (a *Aggregator) dependencyAlerts(ctx context.Context, owner, repo string) []types.Vulnerability {
	alerts, err := a.scm.DependencyAlerts(ctx, owner, repo)
	if err != nil {
		logger := a.logger.WithField("repo", owner+"/"+repo)
		if errors.Is(err, scm.ErrNotEnabled) {
			logger.Debug("Dependency alerts unavailable")
		} else {
			logger.WithError(err).Warn("Dependency alert lookup failed")
		}
		return nil
	}
	return alerts
}
