// ABOUTME: Unit tests for the external-model scorer.
// ABOUTME: Verifies request construction, response mapping, and the neutral fallback.

package scorers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jfeddern/RiskRelay/internal/inference"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInference struct {
	request  inference.PredictRequest
	response *inference.PredictResponse
	err      error
}

func (f *fakeInference) Predict(ctx context.Context, request inference.PredictRequest) (*inference.PredictResponse, error) {
	f.request = request
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func TestMLModelScorerMapsResponse(t *testing.T) {
	client := &fakeInference{
		response: &inference.PredictResponse{
			RiskScore: 0.72,
			RiskLevel: "HIGH",
			Details:   map[string]any{"source": "XGBoost Risk Model"},
			ScanReport: []types.Vulnerability{
				{Type: "Secret", File: "config.py", Severity: "CRITICAL", Description: "Private Key found", Line: 3},
			},
		},
	}
	s := NewMLModelScorer(client, true, testLogger())

	// Saturday 02:00
	riskContext := &types.RiskContext{
		CommitCount:  25,
		LinesAdded:   900,
		LinesDeleted: 300,
		Timestamp:    time.Date(2025, 3, 8, 2, 0, 0, 0, time.UTC),
		Files:        []types.FileChange{{Filename: "config.py", Status: "modified"}},
	}
	result := s.Score(context.Background(), riskContext)

	assert.Equal(t, 0.72, result.Score)
	assert.Equal(t, types.RiskLevelHigh, result.Level)
	assert.Len(t, result.ScanReport, 1)
	assert.NotEmpty(t, result.RiskFactors, "a risky prediction should surface a risk factor")

	// Request features derived from the context
	assert.Equal(t, 25, client.request.CommitCount)
	assert.Equal(t, 1200, client.request.LinesChanged)
	assert.Equal(t, 1.0, client.request.TestPassRate)
	assert.Equal(t, 2, client.request.HourOfDay)
	assert.Equal(t, 5, client.request.DayOfWeek, "Saturday maps to 5 on the Monday-based scale")
	require.Len(t, client.request.Files, 1)
}

func TestMLModelScorerNeutralFallback(t *testing.T) {
	client := &fakeInference{err: errors.New("connection refused")}
	s := NewMLModelScorer(client, true, testLogger())

	result := s.Score(context.Background(), &types.RiskContext{Timestamp: time.Now()})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, types.RiskLevelLow, result.Level)
	assert.Equal(t, true, result.Details["degraded"])
	require.Len(t, result.RiskFactors, 1)
	assert.Contains(t, result.RiskFactors[0], "ML risk model unavailable")
}

func TestPythonWeekday(t *testing.T) {
	tests := []struct {
		day      time.Time
		expected int
	}{
		{time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 0}, // Monday
		{time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 4}, // Friday
		{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 5}, // Saturday
		{time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), 6}, // Sunday
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, pythonWeekday(tt.day), "weekday for %s", tt.day.Weekday())
	}
}
