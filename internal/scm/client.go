// ABOUTME: Source-control client contract consumed by the normalizer and alert aggregator.
// ABOUTME: Defines the narrow surface RiskRelay needs from a source-control platform.

package scm

import (
	"context"
	"errors"

	"github.com/jfeddern/RiskRelay/internal/types"
)

// ErrNotEnabled marks a resource or scanning feature that is not available
// on the repository (not configured, missing, or the token lacks access).
// Callers treat it as "no data from this source", never as a fatal condition.
var ErrNotEnabled = errors.New("scanning feature not enabled on repository")

// Client is the source-control surface used by the core pipeline
type Client interface {
	// ChangedFiles lists the files touched by a pull request
	ChangedFiles(ctx context.Context, installationID int64, owner, repo string, prNumber int) ([]types.FileChange, error)

	// StaticAnalysisAlerts lists open code-scanning alerts for a ref
	StaticAnalysisAlerts(ctx context.Context, owner, repo, ref string) ([]types.Vulnerability, error)

	// DependencyAlerts lists open dependency-vulnerability alerts repo-wide
	DependencyAlerts(ctx context.Context, owner, repo string) ([]types.Vulnerability, error)
}
