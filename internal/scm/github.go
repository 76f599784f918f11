// ABOUTME: GitHub implementation of the source-control client contract.
// ABOUTME: Wraps go-github for PR files, code-scanning alerts, and Dependabot alerts.

package scm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/google/go-github/v72/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// GitHubClient implements Client against the GitHub REST API
type GitHubClient struct {
	client *github.Client
	cache  *AlertCache
	logger *logrus.Logger
}

// NewGitHubClient creates a token-authenticated GitHub client with an
// alert cache using the given TTL
func NewGitHubClient(ctx context.Context, token string, cacheTTL time.Duration, logger *logrus.Logger) *GitHubClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &GitHubClient{
		client: github.NewClient(tc),
		cache:  NewAlertCache(cacheTTL, logger),
		logger: logger,
	}
}

// ChangedFiles lists the files touched by a pull request
func (g *GitHubClient) ChangedFiles(ctx context.Context, installationID int64, owner, repo string, prNumber int) ([]types.FileChange, error) {
	logger := g.logger.WithFields(logrus.Fields{
		"installation_id": installationID,
		"repo":            owner + "/" + repo,
		"pr_number":       prNumber,
	})

	var files []types.FileChange
	opts := &github.ListOptions{PerPage: 100}

	for {
		commitFiles, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, prNumber, opts)
		if err != nil {
			if isNotEnabled(err) {
				logger.Debug("PR files not accessible")
				return nil, ErrNotEnabled
			}
			return nil, fmt.Errorf("failed to list PR files: %w", err)
		}

		for _, f := range commitFiles {
			files = append(files, types.FileChange{
				Filename: f.GetFilename(),
				Patch:    f.GetPatch(),
				Status:   f.GetStatus(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.WithField("file_count", len(files)).Debug("Fetched PR files")
	return files, nil
}

// StaticAnalysisAlerts lists open code-scanning alerts for a ref
func (g *GitHubClient) StaticAnalysisAlerts(ctx context.Context, owner, repo, ref string) ([]types.Vulnerability, error) {
	key := fmt.Sprintf("code-scanning:%s/%s@%s", owner, repo, ref)
	if alerts, ok := g.cache.Get(key); ok {
		return alerts, nil
	}

	opts := &github.AlertListOptions{
		State:       "open",
		Ref:         ref,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var vulns []types.Vulnerability
	for {
		alerts, resp, err := g.client.CodeScanning.ListAlertsForRepo(ctx, owner, repo, opts)
		if err != nil {
			if isNotEnabled(err) {
				g.logger.WithField("repo", owner+"/"+repo).Debug("Code scanning not enabled")
				return nil, ErrNotEnabled
			}
			return nil, fmt.Errorf("failed to list code scanning alerts: %w", err)
		}

		for _, alert := range alerts {
			vulns = append(vulns, codeScanningVulnerability(alert))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	g.cache.Set(key, vulns)
	return vulns, nil
}

// DependencyAlerts lists open Dependabot alerts repo-wide
func (g *GitHubClient) DependencyAlerts(ctx context.Context, owner, repo string) ([]types.Vulnerability, error) {
	key := fmt.Sprintf("dependabot:%s/%s", owner, repo)
	if alerts, ok := g.cache.Get(key); ok {
		return alerts, nil
	}

	opts := &github.ListAlertsOptions{
		State:             github.Ptr("open"),
		ListCursorOptions: github.ListCursorOptions{PerPage: 100},
	}

	var vulns []types.Vulnerability
	for {
		alerts, resp, err := g.client.Dependabot.ListRepoAlerts(ctx, owner, repo, opts)
		if err != nil {
			if isNotEnabled(err) {
				g.logger.WithField("repo", owner+"/"+repo).Debug("Dependabot alerts not enabled")
				return nil, ErrNotEnabled
			}
			return nil, fmt.Errorf("failed to list dependabot alerts: %w", err)
		}

		for _, alert := range alerts {
			vulns = append(vulns, dependabotVulnerability(alert))
		}

		if resp.After == "" {
			break
		}
		opts.ListCursorOptions.After = resp.After
	}

	g.cache.Set(key, vulns)
	return vulns, nil
}

// isNotEnabled reports whether err means the scanning feature is missing
// or inaccessible rather than a transient failure
func isNotEnabled(err error) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		return code == http.StatusNotFound || code == http.StatusForbidden
	}
	return false
}

func codeScanningVulnerability(alert *github.Alert) types.Vulnerability {
	rule := alert.GetRule()
	instance := alert.GetMostRecentInstance()

	description := instance.GetMessage().GetText()
	if description == "" {
		description = rule.GetDescription()
	}

	return types.Vulnerability{
		Type:        "Static Analysis",
		File:        instance.GetLocation().GetPath(),
		Severity:    normalizeSeverity(rule.GetSecuritySeverityLevel(), rule.GetSeverity()),
		Description: description,
		Line:        instance.GetLocation().GetStartLine(),
	}
}

func dependabotVulnerability(alert *github.DependabotAlert) types.Vulnerability {
	advisory := alert.GetSecurityAdvisory()

	return types.Vulnerability{
		Type:        "Dependency",
		File:        alert.GetDependency().GetManifestPath(),
		Severity:    normalizeSeverity(advisory.GetSeverity(), ""),
		Description: advisory.GetSummary(),
	}
}

// normalizeSeverity maps GitHub severity vocabularies onto the shared
// LOW/MEDIUM/HIGH/CRITICAL scale. securitySeverity is the advisory-style
// scale; ruleSeverity is the SARIF none/note/warning/error scale used as
// a fallback when the former is absent.
func normalizeSeverity(securitySeverity, ruleSeverity string) string {
	switch strings.ToLower(securitySeverity) {
	case "critical":
		return "CRITICAL"
	case "high":
		return "HIGH"
	case "medium", "moderate":
		return "MEDIUM"
	case "low":
		return "LOW"
	}

	switch strings.ToLower(ruleSeverity) {
	case "error":
		return "HIGH"
	case "warning":
		return "MEDIUM"
	default:
		return "LOW"
	}
}
