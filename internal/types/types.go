// ABOUTME: Common types shared across the RiskRelay system.
// ABOUTME: Defines data structures for events, risk contexts, vulnerabilities, and assessment results.

package types

import (
	"encoding/json"
	"time"
)

// RiskLevel buckets a [0,1] risk score into a coarse severity band
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// LevelForScore maps a score onto a RiskLevel. Every producer of a level
// must go through this function so the thresholds stay consistent.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return RiskLevelLow
	case score < 0.5:
		return RiskLevelMedium
	case score < 0.8:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// WebhookEvent is one raw change notification as handed to the queue.
// Immutable after creation and consumed exactly once by the consumer loop.
type WebhookEvent struct {
	EventType  string          `json:"event_type"` // "pull_request" or "push"
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

// FileChange describes one changed file within a PR or push
type FileChange struct {
	Filename string `json:"filename"`
	Patch    string `json:"patch,omitempty"`
	Status   string `json:"status"` // added, modified, removed
}

// RiskContext is the canonical, normalized snapshot of one change.
// PRNumber is nil exactly when the event was a push. Filenames are unique;
// a file seen under several statuses keeps the last observed one.
type RiskContext struct {
	InstallationID int64        `json:"installation_id"`
	Owner          string       `json:"owner"`
	Repo           string       `json:"repo"`
	PRNumber       *int         `json:"pr_number,omitempty"`
	SHA            string       `json:"sha"`
	Branch         string       `json:"branch"`
	CommitCount    int          `json:"commit_count"`
	LinesAdded     int          `json:"lines_added"`
	LinesDeleted   int          `json:"lines_deleted"`
	Files          []FileChange `json:"files"`
	Timestamp      time.Time    `json:"timestamp"`
	Author         string       `json:"author"`
}

// IsPush reports whether the context came from a push event
func (c *RiskContext) IsPush() bool {
	return c.PRNumber == nil
}

// LinesChanged is the total churn of the change
func (c *RiskContext) LinesChanged() int {
	return c.LinesAdded + c.LinesDeleted
}

// Vulnerability is a single security finding against a file or dependency.
// Never mutated after creation.
type Vulnerability struct {
	Type        string `json:"type"`
	File        string `json:"file"`
	Severity    string `json:"severity"` // CRITICAL, HIGH, MEDIUM, LOW
	Description string `json:"description"`
	Line        int    `json:"line,omitempty"`
}

// ScorerResult is the output of one scorer for one assessment
type ScorerResult struct {
	Score       float64         `json:"score"`
	Level       RiskLevel       `json:"level"`
	Details     map[string]any  `json:"details"`
	RiskFactors []string        `json:"risk_factors"`
	ScanReport  []Vulnerability `json:"scan_report,omitempty"`
}

// RiskAssessmentResult is the aggregated verdict for one change
type RiskAssessmentResult struct {
	OverallScore   float64                 `json:"overall_score"`
	OverallLevel   RiskLevel               `json:"overall_level"`
	ScorerResults  map[string]ScorerResult `json:"scorer_results"`
	AllRiskFactors []string                `json:"all_risk_factors"`
	ScanReport     []Vulnerability         `json:"scan_report,omitempty"`
}
