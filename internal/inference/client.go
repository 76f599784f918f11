// ABOUTME: HTTP client for the external ML risk-inference service.
// ABOUTME: Posts change features to /predict and decodes the scored response.

package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// PredictRequest carries the change features the inference service scores
type PredictRequest struct {
	CommitCount  int                `json:"commitCount"`
	LinesChanged int                `json:"linesChanged"`
	TestPassRate float64            `json:"testPassRate"`
	HourOfDay    int                `json:"hourOfDay"`
	DayOfWeek    int                `json:"dayOfWeek"` // 0=Monday .. 6=Sunday
	Files        []types.FileChange `json:"files"`
}

// PredictResponse is the inference service's verdict for one request
type PredictResponse struct {
	RiskScore  float64               `json:"riskScore"`
	RiskLevel  string                `json:"riskLevel"`
	Details    map[string]any        `json:"details"`
	ScanReport []types.Vulnerability `json:"scanReport"`
}

// Client is the inference collaborator contract
type Client interface {
	Predict(ctx context.Context, request PredictRequest) (*PredictResponse, error)
}

// HTTPClient implements Client over the service's REST API
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPClient creates an inference client for the given base URL
func NewHTTPClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Predict posts the request to /predict and decodes the response
func (c *HTTPClient) Predict(ctx context.Context, request PredictRequest) (*PredictResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference service returned %s: %s", resp.Status, respBody)
	}

	var prediction PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"risk_score": prediction.RiskScore,
		"risk_level": prediction.RiskLevel,
	}).Debug("Received inference prediction")

	return &prediction, nil
}
