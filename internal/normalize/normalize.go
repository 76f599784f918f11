// ABOUTME: Context normalizer converting raw webhook payloads into canonical risk contexts.
// ABOUTME: Handles the pull-request and push payload shapes; anything else is a processing failure.

package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jfeddern/RiskRelay/internal/scm"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/google/go-github/v72/github"
	"github.com/sirupsen/logrus"
)

// ErrMalformedPayload marks a payload that failed to parse into a known shape
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Normalizer builds RiskContext values from webhook events
type Normalizer struct {
	scm    scm.Client
	logger *logrus.Logger
}

// NewNormalizer creates a normalizer backed by the given source-control client
func NewNormalizer(scmClient scm.Client, logger *logrus.Logger) *Normalizer {
	return &Normalizer{
		scm:    scmClient,
		logger: logger,
	}
}

// Normalize converts one webhook event into a RiskContext. A payload that
// parses into neither known shape fails normalization; the consumer loop
// treats that as a per-event failure, not a crash.
func (n *Normalizer) Normalize(ctx context.Context, event types.WebhookEvent) (*types.RiskContext, error) {
	switch event.EventType {
	case "pull_request":
		return n.normalizePullRequest(ctx, event)
	case "push":
		return n.normalizePush(event)
	default:
		return nil, fmt.Errorf("%w: unsupported event type %q", ErrMalformedPayload, event.EventType)
	}
}

func (n *Normalizer) normalizePullRequest(ctx context.Context, event types.WebhookEvent) (*types.RiskContext, error) {
	var payload github.PullRequestEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	pr := payload.GetPullRequest()
	repo := payload.GetRepo()
	if pr == nil || repo == nil {
		return nil, fmt.Errorf("%w: pull_request event missing pull_request or repository", ErrMalformedPayload)
	}

	owner := repo.GetOwner().GetLogin()
	name := repo.GetName()
	installationID := payload.GetInstallation().GetID()
	prNumber := pr.GetNumber()

	// A failing file lookup degrades to an empty file list so the event
	// still gets assessed on its summary counts
	files, err := n.scm.ChangedFiles(ctx, installationID, owner, name, prNumber)
	if err != nil {
		logger := n.logger.WithFields(logrus.Fields{
			"repo":      owner + "/" + name,
			"pr_number": prNumber,
		})
		if errors.Is(err, scm.ErrNotEnabled) {
			logger.Debug("Changed files unavailable, continuing without file data")
		} else {
			logger.WithError(err).Warn("Failed to fetch changed files, continuing without file data")
		}
		files = nil
	}

	timestamp := event.ReceivedAt
	if t := pr.GetUpdatedAt(); !t.IsZero() {
		timestamp = t.Time
	}

	riskContext := &types.RiskContext{
		InstallationID: installationID,
		Owner:          owner,
		Repo:           name,
		PRNumber:       &prNumber,
		SHA:            pr.GetHead().GetSHA(),
		Branch:         pr.GetBase().GetRef(),
		CommitCount:    pr.GetCommits(),
		LinesAdded:     pr.GetAdditions(),
		LinesDeleted:   pr.GetDeletions(),
		Files:          files,
		Timestamp:      timestamp,
		Author:         pr.GetUser().GetLogin(),
	}

	n.logger.WithFields(logrus.Fields{
		"repo":      owner + "/" + name,
		"pr_number": prNumber,
		"files":     len(files),
	}).Debug("Normalized pull request event")

	return riskContext, nil
}

func (n *Normalizer) normalizePush(event types.WebhookEvent) (*types.RiskContext, error) {
	var payload github.PushEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	repo := payload.GetRepo()
	if repo == nil || payload.GetRef() == "" {
		return nil, fmt.Errorf("%w: push event missing repository or ref", ErrMalformedPayload)
	}

	timestamp := event.ReceivedAt
	if head := payload.GetHeadCommit(); head != nil && !head.GetTimestamp().IsZero() {
		timestamp = head.GetTimestamp().Time
	}

	// Line counts are not available from push metadata, so they stay zero
	riskContext := &types.RiskContext{
		InstallationID: payload.GetInstallation().GetID(),
		Owner:          repo.GetOwner().GetLogin(),
		Repo:           repo.GetName(),
		PRNumber:       nil,
		SHA:            payload.GetAfter(),
		Branch:         strings.TrimPrefix(payload.GetRef(), "refs/heads/"),
		CommitCount:    len(payload.Commits),
		Files:          pushFiles(payload.Commits),
		Timestamp:      timestamp,
		Author:         payload.GetPusher().GetName(),
	}

	n.logger.WithFields(logrus.Fields{
		"repo":    riskContext.Owner + "/" + riskContext.Repo,
		"branch":  riskContext.Branch,
		"commits": riskContext.CommitCount,
		"files":   len(riskContext.Files),
	}).Debug("Normalized push event")

	return riskContext, nil
}

// pushFiles unions the added/modified/removed paths of every commit in the
// push. A file appearing in several commits keeps the last observed status.
func pushFiles(commits []*github.HeadCommit) []types.FileChange {
	statuses := make(map[string]string)
	var order []string

	record := func(filename, status string) {
		if _, seen := statuses[filename]; !seen {
			order = append(order, filename)
		}
		statuses[filename] = status
	}

	for _, commit := range commits {
		for _, f := range commit.Added {
			record(f, "added")
		}
		for _, f := range commit.Modified {
			record(f, "modified")
		}
		for _, f := range commit.Removed {
			record(f, "removed")
		}
	}

	files := make([]types.FileChange, 0, len(order))
	for _, filename := range order {
		files = append(files, types.FileChange{
			Filename: filename,
			Status:   statuses[filename],
		})
	}

	return files
}
