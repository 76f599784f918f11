// ABOUTME: Main risk-assessment engine wiring the normalizer, assessor, and downstream sinks.
// ABOUTME: Processes one event end to end and retains recent verdicts for the HTTP surface.

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jfeddern/RiskRelay/internal/assess"
	"github.com/jfeddern/RiskRelay/internal/normalize"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// Config holds configuration for the risk assessment engine
type Config struct {
	Port          int
	QueueCapacity int // 0 = unbounded
	GitHubToken   string
	InferenceURL  string
	CacheTTL      time.Duration
	MockMode      bool // Use mock collaborators for local testing

	EnableHeuristic    bool
	EnableMLModel      bool
	EnableSecurityScan bool

	WeightHeuristic    float64
	WeightMLModel      float64
	WeightSecurityScan float64
}

// Weights returns the per-scorer weight map derived from configuration
func (c *Config) Weights() map[string]float64 {
	return map[string]float64{
		"heuristic":     c.WeightHeuristic,
		"ml_model":      c.WeightMLModel,
		"security_scan": c.WeightSecurityScan,
	}
}

// Sink receives each completed assessment together with its context.
// Sink failures are logged and ignored; the pipeline does not depend on
// downstream success.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, riskContext *types.RiskContext, result *types.RiskAssessmentResult) error
}

// AssessmentRecord pairs one context with its verdict for later inspection
type AssessmentRecord struct {
	Context    types.RiskContext          `json:"context"`
	Result     types.RiskAssessmentResult `json:"result"`
	AssessedAt time.Time                  `json:"assessed_at"`
}

const recentAssessmentLimit = 100

// Engine runs the per-event pipeline: normalize, assess, deliver
type Engine struct {
	normalizer *normalize.Normalizer
	assessor   *assess.Assessor
	sinks      []Sink
	logger     *logrus.Logger

	mutex          sync.RWMutex
	recent         []AssessmentRecord
	lastAssessedAt time.Time
}

// NewEngine creates an engine over the given pipeline stages
func NewEngine(normalizer *normalize.Normalizer, assessor *assess.Assessor, sinks []Sink, logger *logrus.Logger) *Engine {
	return &Engine{
		normalizer: normalizer,
		assessor:   assessor,
		sinks:      sinks,
		logger:     logger,
	}
}

// ProcessEvent runs the full pipeline for one queued event. A returned
// error means the event is dropped; the consumer loop logs it and moves on.
func (e *Engine) ProcessEvent(ctx context.Context, event types.WebhookEvent) error {
	riskContext, err := e.normalizer.Normalize(ctx, event)
	if err != nil {
		return fmt.Errorf("normalization failed: %w", err)
	}

	result := e.Assess(ctx, riskContext)

	for _, sink := range e.sinks {
		if err := sink.Deliver(ctx, riskContext, result); err != nil {
			e.logger.WithError(err).WithField("sink", sink.Name()).Warn("Sink delivery failed")
		}
	}

	return nil
}

// Assess scores an already-normalized context and records the verdict.
// Exposed for synchronous callers that bypass the queue.
func (e *Engine) Assess(ctx context.Context, riskContext *types.RiskContext) *types.RiskAssessmentResult {
	result := e.assessor.Assess(ctx, riskContext)
	e.record(riskContext, result)
	return result
}

func (e *Engine) record(riskContext *types.RiskContext, result *types.RiskAssessmentResult) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.recent = append(e.recent, AssessmentRecord{
		Context:    *riskContext,
		Result:     *result,
		AssessedAt: time.Now(),
	})
	if len(e.recent) > recentAssessmentLimit {
		e.recent = e.recent[len(e.recent)-recentAssessmentLimit:]
	}
	e.lastAssessedAt = time.Now()
}

// RecentAssessments returns a copy of the retained verdicts, newest last,
// and the time of the most recent assessment
func (e *Engine) RecentAssessments() ([]AssessmentRecord, time.Time) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	records := make([]AssessmentRecord, len(e.recent))
	copy(records, e.recent)

	return records, e.lastAssessedAt
}
