package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/observability"
)

const defaultAuditRetention = 200

// AuditService records committed domain events. It writes one structured log
// line per event, counts events by type and keeps the most recent ones for
// the admin dashboard.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics

	mu        sync.Mutex
	recent    []events.Event
	retention int
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		retention:  defaultAuditRetention,
	}
}

// RegisterHandlers subscribes to every domain event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("lot_id", event.LotID),
		zap.String("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	a.metrics.RecordEvent(string(event.Type))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if over := len(a.recent) - a.retention; over > 0 {
		a.recent = append([]events.Event(nil), a.recent[over:]...)
	}
	return nil
}

// Recent returns up to limit of the latest events, newest first.
func (a *AuditService) Recent(limit int) []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 || limit > len(a.recent) {
		limit = len(a.recent)
	}
	out := make([]events.Event, 0, limit)
	for i := len(a.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.recent[i])
	}
	return out
}
