// ABOUTME: Unit tests for the mock source-control client.
// ABOUTME: Validates canned file and alert data shapes for local development repos.

package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/jfeddern/RiskRelay/internal/scm"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSCMClient_ChangedFiles(t *testing.T) {
	logger := logrus.New()
	client := NewSCMClient(logger)
	ctx := context.Background()

	files, err := client.ChangedFiles(ctx, 0, "acme", "frontend", 7)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	for _, file := range files {
		assert.NotEmpty(t, file.Filename, "Filename should not be empty")
		assert.NotEmpty(t, file.Status, "Status should not be empty")
	}
}

func TestMockSCMClient_ChangedFilesIncludesMigration(t *testing.T) {
	logger := logrus.New()
	client := NewSCMClient(logger)
	ctx := context.Background()

	// Repos that look database-adjacent get a migration file so the
	// sensitive-path heuristic has something to flag locally
	files, err := client.ChangedFiles(ctx, 0, "acme", "backend", 7)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	hasMigration := false
	for _, file := range files {
		if file.Filename == "db/migrations/0042_add_index.sql" {
			hasMigration = true
			assert.Equal(t, "added", file.Status)
		}
	}
	assert.True(t, hasMigration, "Should include a migration file for backend repos")
}

func TestMockSCMClient_StaticAnalysisAlerts(t *testing.T) {
	logger := logrus.New()
	client := NewSCMClient(logger)
	ctx := context.Background()

	tests := []struct {
		name        string
		repo        string
		expectCount int
		expectError error
	}{
		{name: "backend repo has alerts", repo: "backend", expectCount: 2},
		{name: "api repo has alerts", repo: "api-gateway", expectCount: 2},
		{name: "legacy repo reports scanning disabled", repo: "legacy-billing", expectError: scm.ErrNotEnabled},
		{name: "other repos are clean", repo: "frontend", expectCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := client.StaticAnalysisAlerts(ctx, "acme", tt.repo, "abc123")
			if tt.expectError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectError))
				return
			}
			require.NoError(t, err)
			assert.Len(t, alerts, tt.expectCount)
			for _, alert := range alerts {
				assert.Equal(t, "Static Analysis", alert.Type)
				assert.NotEmpty(t, alert.Severity)
				assert.NotEmpty(t, alert.File)
			}
		})
	}
}

func TestMockSCMClient_DependencyAlerts(t *testing.T) {
	logger := logrus.New()
	client := NewSCMClient(logger)
	ctx := context.Background()

	alerts, err := client.DependencyAlerts(ctx, "acme", "anything")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Dependency", alerts[0].Type)
	assert.Equal(t, "MEDIUM", alerts[0].Severity)
	assert.Equal(t, "go.mod", alerts[0].File)
}
