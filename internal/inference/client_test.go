// ABOUTME: Unit tests for the ML inference HTTP client.
// ABOUTME: Uses a local test server to verify request shape, decoding, and error paths.

package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestHTTPClientPredict(t *testing.T) {
	var received PredictRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(PredictResponse{
			RiskScore: 0.62,
			RiskLevel: "HIGH",
			Details:   map[string]any{"source": "XGBoost Risk Model"},
			ScanReport: []types.Vulnerability{
				{Type: "Secret", File: "app.py", Severity: "CRITICAL", Description: "Private Key found", Line: 12},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, testLogger())

	request := PredictRequest{
		CommitCount:  12,
		LinesChanged: 840,
		TestPassRate: 1.0,
		HourOfDay:    2,
		DayOfWeek:    5,
		Files:        []types.FileChange{{Filename: "app.py", Status: "modified"}},
	}

	prediction, err := client.Predict(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, 0.62, prediction.RiskScore)
	assert.Equal(t, "HIGH", prediction.RiskLevel)
	require.Len(t, prediction.ScanReport, 1)
	assert.Equal(t, "app.py", prediction.ScanReport[0].File)

	// The wire format matches the inference service's schema
	assert.Equal(t, 12, received.CommitCount)
	assert.Equal(t, 840, received.LinesChanged)
	assert.Equal(t, 5, received.DayOfWeek)
}

func TestHTTPClientPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, testLogger())

	_, err := client.Predict(context.Background(), PredictRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPClientPredictUnreachable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", time.Second, testLogger())

	_, err := client.Predict(context.Background(), PredictRequest{})
	require.Error(t, err)
}
