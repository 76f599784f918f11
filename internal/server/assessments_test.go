// ABOUTME: Unit tests for the recent-assessments endpoint.
// ABOUTME: Tests JSON response structure, filtering, and query parameter validation.

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jfeddern/RiskRelay/internal/engine"
	"github.com/jfeddern/RiskRelay/internal/types"
)

type fakeProvider struct {
	records []engine.AssessmentRecord
	updated time.Time
}

func (f *fakeProvider) RecentAssessments() ([]engine.AssessmentRecord, time.Time) {
	return f.records, f.updated
}

func record(owner, repo string, level types.RiskLevel) engine.AssessmentRecord {
	return engine.AssessmentRecord{
		Context: types.RiskContext{Owner: owner, Repo: repo, Branch: "main", Timestamp: time.Now()},
		Result: types.RiskAssessmentResult{
			OverallScore:  0.5,
			OverallLevel:  level,
			ScorerResults: map[string]types.ScorerResult{},
		},
		AssessedAt: time.Now(),
	}
}

func getAssessments(t *testing.T, provider AssessmentProvider, query string) (*httptest.ResponseRecorder, *AssessmentsResponse) {
	t.Helper()

	handler := CreateAssessmentsHandler(provider, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/assessments"+query, nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		return w, nil
	}

	var response AssessmentsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return w, &response
}

func TestAssessmentsHandler(t *testing.T) {
	provider := &fakeProvider{
		records: []engine.AssessmentRecord{
			record("acme", "backend", types.RiskLevelCritical),
			record("acme", "frontend", types.RiskLevelLow),
			record("other", "tool", types.RiskLevelCritical),
		},
		updated: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	w, response := getAssessments(t, provider, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if len(response.Assessments) != 3 {
		t.Errorf("assessments = %d, want 3", len(response.Assessments))
	}
	if response.Summary.TotalAssessments != 3 {
		t.Errorf("total = %d, want 3", response.Summary.TotalAssessments)
	}
	if response.Summary.LevelBreakdown["CRITICAL"] != 2 {
		t.Errorf("CRITICAL breakdown = %d, want 2", response.Summary.LevelBreakdown["CRITICAL"])
	}
	if response.LastUpdated != "2025-03-10T12:00:00Z" {
		t.Errorf("last_updated = %q", response.LastUpdated)
	}
}

func TestAssessmentsHandlerFilters(t *testing.T) {
	provider := &fakeProvider{
		records: []engine.AssessmentRecord{
			record("acme", "backend", types.RiskLevelCritical),
			record("acme", "frontend", types.RiskLevelLow),
			record("other", "tool", types.RiskLevelCritical),
		},
	}

	_, response := getAssessments(t, provider, "?repo=acme")
	if len(response.Assessments) != 2 {
		t.Errorf("repo filter returned %d, want 2", len(response.Assessments))
	}

	_, response = getAssessments(t, provider, "?level=critical")
	if len(response.Assessments) != 2 {
		t.Errorf("level filter returned %d, want 2", len(response.Assessments))
	}

	_, response = getAssessments(t, provider, "?limit=1")
	if len(response.Assessments) != 1 {
		t.Errorf("limit returned %d, want 1", len(response.Assessments))
	}
	// The limit keeps the newest (tail) records
	if response.Assessments[0].Context.Repo != "tool" {
		t.Errorf("limited record repo = %q, want tool", response.Assessments[0].Context.Repo)
	}

	// Summary always reflects the full retained set
	if response.Summary.TotalAssessments != 3 {
		t.Errorf("summary total = %d, want 3", response.Summary.TotalAssessments)
	}
}

func TestAssessmentsHandlerInvalidParams(t *testing.T) {
	provider := &fakeProvider{}

	tests := []struct {
		name  string
		query string
	}{
		{"bad level", "?level=bogus"},
		{"negative limit", "?limit=-1"},
		{"non-numeric limit", "?limit=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := getAssessments(t, provider, tt.query)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
