// ABOUTME: Mock source-control client for local testing and development.
// ABOUTME: Provides realistic alert and file data without network access or credentials.

package mock

import (
	"context"
	"strings"

	"github.com/jfeddern/RiskRelay/internal/scm"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// SCMClient implements the scm.Client interface with canned data
type SCMClient struct {
	logger *logrus.Logger
}

// NewSCMClient creates a mock source-control client
func NewSCMClient(logger *logrus.Logger) *SCMClient {
	return &SCMClient{logger: logger}
}

// ChangedFiles returns a small changed-file set shaped by the repo name
func (m *SCMClient) ChangedFiles(ctx context.Context, installationID int64, owner, repo string, prNumber int) ([]types.FileChange, error) {
	m.logger.WithFields(logrus.Fields{
		"repo":      owner + "/" + repo,
		"pr_number": prNumber,
	}).Debug("Returning mock PR files")

	files := []types.FileChange{
		{Filename: "internal/service/handler.go", Patch: "@@ -10,4 +10,8 @@", Status: "modified"},
		{Filename: "README.md", Status: "modified"},
	}

	if strings.Contains(repo, "db") || strings.Contains(repo, "backend") {
		files = append(files, types.FileChange{
			Filename: "db/migrations/0042_add_index.sql",
			Patch:    "@@ -0,0 +1,12 @@",
			Status:   "added",
		})
	}

	return files, nil
}

// StaticAnalysisAlerts returns code-scanning style alerts for repos that
// look like they have scanning enabled; others report the feature missing
func (m *SCMClient) StaticAnalysisAlerts(ctx context.Context, owner, repo, ref string) ([]types.Vulnerability, error) {
	if strings.Contains(repo, "legacy") {
		return nil, scm.ErrNotEnabled
	}

	if strings.Contains(repo, "backend") || strings.Contains(repo, "api") {
		return []types.Vulnerability{
			{
				Type:        "Static Analysis",
				File:        "internal/service/handler.go",
				Severity:    "HIGH",
				Description: "SQL query built from user-controlled sources",
				Line:        42,
			},
			{
				Type:        "Static Analysis",
				File:        "internal/auth/token.go",
				Severity:    "MEDIUM",
				Description: "Use of a broken or weak cryptographic hashing algorithm",
				Line:        17,
			},
		}, nil
	}

	return nil, nil
}

// DependencyAlerts returns Dependabot-style alerts for every mock repo
func (m *SCMClient) DependencyAlerts(ctx context.Context, owner, repo string) ([]types.Vulnerability, error) {
	return []types.Vulnerability{
		{
			Type:        "Dependency",
			File:        "go.mod",
			Severity:    "MEDIUM",
			Description: "Denial of service in HTTP/2 priority frame handling",
		},
	}, nil
}
