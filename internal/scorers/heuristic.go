// ABOUTME: Deterministic heuristic scorer accumulating additive risk from independent rules.
// ABOUTME: Rules cover changeset size, commit count, timing, sensitive paths, and direct pushes.

package scorers

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// HeuristicScorerName is the aggregation key for the heuristic scorer
const HeuristicScorerName = "heuristic"

var sensitivePathPattern = regexp.MustCompile(`(?i)(migration|database|auth|\.sql$)`)

// HeuristicScorer scores a change with fixed additive rules. Each rule hit
// contributes its weight and one human-readable risk factor; the total is
// capped at 1.0 before bucketing.
type HeuristicScorer struct {
	enabled bool
	logger  *logrus.Logger
}

// NewHeuristicScorer creates the heuristic scorer
func NewHeuristicScorer(enabled bool, logger *logrus.Logger) *HeuristicScorer {
	return &HeuristicScorer{
		enabled: enabled,
		logger:  logger,
	}
}

func (s *HeuristicScorer) Name() string {
	return HeuristicScorerName
}

func (s *HeuristicScorer) Enabled() bool {
	return s.enabled
}

// Score evaluates every rule against the context. All rule evaluations are
// recorded in Details, hits or not, so a verdict can be explained later.
func (s *HeuristicScorer) Score(ctx context.Context, riskContext *types.RiskContext) types.ScorerResult {
	score := 0.0
	details := make(map[string]any)
	var riskFactors []string

	hit := func(rule string, weight float64, factor string) {
		score += weight
		details[rule] = weight
		riskFactors = append(riskFactors, factor)
	}
	miss := func(rule string) {
		details[rule] = 0.0
	}

	linesChanged := riskContext.LinesChanged()
	switch {
	case linesChanged > 1000:
		hit("largeChangeset", 0.30, fmt.Sprintf("Large changeset: %d lines changed", linesChanged))
	case linesChanged >= 500:
		hit("largeChangeset", 0.15, fmt.Sprintf("Sizable changeset: %d lines changed", linesChanged))
	default:
		miss("largeChangeset")
	}

	switch {
	case riskContext.CommitCount > 20:
		hit("manyCommits", 0.20, fmt.Sprintf("High commit count: %d commits", riskContext.CommitCount))
	case riskContext.CommitCount >= 10:
		hit("manyCommits", 0.10, fmt.Sprintf("Elevated commit count: %d commits", riskContext.CommitCount))
	default:
		miss("manyCommits")
	}

	weekday := riskContext.Timestamp.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		hit("weekend", 0.20, fmt.Sprintf("Change made on a weekend (%s)", weekday))
	} else {
		miss("weekend")
	}

	hour := riskContext.Timestamp.Hour()
	if hour < 8 || hour > 18 {
		hit("offHours", 0.15, fmt.Sprintf("Change made outside working hours (%02d:00)", hour))
	} else {
		miss("offHours")
	}

	if sensitive := sensitiveFiles(riskContext.Files); len(sensitive) > 0 {
		hit("sensitiveFiles", 0.25, fmt.Sprintf("Touches sensitive files: %v", sensitive))
	} else {
		miss("sensitiveFiles")
	}

	if riskContext.IsPush() && (riskContext.Branch == "main" || riskContext.Branch == "master") {
		hit("directPush", 0.30, fmt.Sprintf("Direct push to protected branch %q", riskContext.Branch))
	} else {
		miss("directPush")
	}

	if score > 1.0 {
		score = 1.0
	}
	details["finalScore"] = score

	s.logger.WithFields(logrus.Fields{
		"scorer":       HeuristicScorerName,
		"score":        score,
		"rules_hit":    len(riskFactors),
		"repo":         riskContext.Owner + "/" + riskContext.Repo,
		"lines_change": linesChanged,
	}).Debug("Heuristic scoring completed")

	return types.ScorerResult{
		Score:       score,
		Level:       types.LevelForScore(score),
		Details:     details,
		RiskFactors: riskFactors,
	}
}

func sensitiveFiles(files []types.FileChange) []string {
	var matched []string
	for _, f := range files {
		if sensitivePathPattern.MatchString(f.Filename) {
			matched = append(matched, f.Filename)
		}
	}
	return matched
}
