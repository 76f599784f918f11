// ABOUTME: HTTP handler for the recent-assessments inspection endpoint.
// ABOUTME: Serves retained verdicts with repo, level, and limit filtering.

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jfeddern/RiskRelay/internal/engine"

	"github.com/sirupsen/logrus"
)

// AssessmentProvider exposes retained assessment records
type AssessmentProvider interface {
	RecentAssessments() ([]engine.AssessmentRecord, time.Time)
}

// AssessmentsHandler serves the recent-assessments endpoint
type AssessmentsHandler struct {
	provider AssessmentProvider
	logger   *logrus.Logger
}

// AssessmentsResponse is the endpoint's JSON shape
type AssessmentsResponse struct {
	Assessments []engine.AssessmentRecord `json:"assessments"`
	Summary     AssessmentSummary         `json:"summary"`
	LastUpdated string                    `json:"last_updated"`
}

// AssessmentSummary aggregates the retained verdicts
type AssessmentSummary struct {
	TotalAssessments int            `json:"total_assessments"`
	LevelBreakdown   map[string]int `json:"level_breakdown"`
}

// NewAssessmentsHandler creates the assessments handler
func NewAssessmentsHandler(provider AssessmentProvider, logger *logrus.Logger) *AssessmentsHandler {
	return &AssessmentsHandler{
		provider: provider,
		logger:   logger,
	}
}

func (h *AssessmentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/assessments")

	records, lastAssessedAt := h.provider.RecentAssessments()

	repoFilter := strings.TrimSpace(r.URL.Query().Get("repo"))
	levelFilter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("level")))
	limitParam := strings.TrimSpace(r.URL.Query().Get("limit"))

	if levelFilter != "" {
		validLevels := map[string]bool{
			"CRITICAL": true,
			"HIGH":     true,
			"MEDIUM":   true,
			"LOW":      true,
		}
		if !validLevels[levelFilter] {
			http.Error(w, "Invalid level filter. Must be one of: CRITICAL, HIGH, MEDIUM, LOW", http.StatusBadRequest)
			return
		}
	}

	var limit int
	if limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit parameter. Must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	levelBreakdown := make(map[string]int)
	var filtered []engine.AssessmentRecord

	for _, record := range records {
		levelBreakdown[string(record.Result.OverallLevel)]++

		if repoFilter != "" && !strings.Contains(record.Context.Owner+"/"+record.Context.Repo, repoFilter) {
			continue
		}
		if levelFilter != "" && string(record.Result.OverallLevel) != levelFilter {
			continue
		}
		filtered = append(filtered, record)
	}

	// Newest records are at the tail; a limit keeps the most recent ones
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}

	response := AssessmentsResponse{
		Assessments: filtered,
		Summary: AssessmentSummary{
			TotalAssessments: len(records),
			LevelBreakdown:   levelBreakdown,
		},
		LastUpdated: lastAssessedAt.Format("2006-01-02T15:04:05Z"),
	}

	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") != "" {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.WithFields(logrus.Fields{
		"returned": len(filtered),
		"total":    len(records),
	}).Debug("Served assessments response")
}

// CreateAssessmentsHandler creates a standard HTTP handler
func CreateAssessmentsHandler(provider AssessmentProvider, logger *logrus.Logger) http.HandlerFunc {
	handler := NewAssessmentsHandler(provider, logger)
	return handler.ServeHTTP
}
