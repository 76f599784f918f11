// ABOUTME: HTTP handler for the webhook ingestion endpoint.
// ABOUTME: Accepts change events and enqueues them without waiting for processing.

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jfeddern/RiskRelay/internal/queue"
	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

const maxPayloadBytes = 5 << 20 // 5 MB

var supportedEventTypes = map[string]bool{
	"pull_request": true,
	"push":         true,
}

// Enqueuer hands events to the processing queue
type Enqueuer interface {
	Enqueue(event types.WebhookEvent) error
}

// WebhookHandler ingests change events from the platform's webhook
// delivery. Transport-level signature verification happens upstream; the
// handler trusts its caller.
type WebhookHandler struct {
	enqueuer Enqueuer
	logger   *logrus.Logger
}

// NewWebhookHandler creates the webhook ingestion handler
func NewWebhookHandler(enqueuer Enqueuer, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		enqueuer: enqueuer,
		logger:   logger,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/webhook")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if !supportedEventTypes[eventType] {
		logger.WithField("event_type", eventType).Debug("Ignoring unsupported event type")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil || len(payload) == 0 {
		http.Error(w, "Missing or unreadable payload", http.StatusBadRequest)
		return
	}

	event := types.WebhookEvent{
		EventType:  eventType,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}

	if err := h.enqueuer.Enqueue(event); err != nil {
		switch {
		case errors.Is(err, queue.ErrQueueClosed):
			http.Error(w, "Service shutting down", http.StatusServiceUnavailable)
		case errors.Is(err, queue.ErrQueueFull):
			http.Error(w, "Event queue full", http.StatusTooManyRequests)
		default:
			logger.WithError(err).Error("Failed to enqueue event")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	logger.WithFields(logrus.Fields{
		"event_type":    eventType,
		"payload_bytes": len(payload),
	}).Debug("Event accepted")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}

// CreateWebhookHandler creates a standard HTTP handler
func CreateWebhookHandler(enqueuer Enqueuer, logger *logrus.Logger) http.HandlerFunc {
	handler := NewWebhookHandler(enqueuer, logger)
	return handler.ServeHTTP
}
