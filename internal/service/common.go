package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// eventPublisher emits domain events after a transaction has committed.
type eventPublisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

func (p eventPublisher) publish(ctx context.Context, eventType events.EventType, lotID string, actor domain.Actor, payload any) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		LotID:     lotID,
		Actor:     events.ActorFrom(actor),
		Timestamp: p.now(),
		Payload:   payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("administrator role required")
	}
	return nil
}

// translate maps repository failures onto domain errors. Errors that are
// already domain errors pass through.
func translate(err error, resource string, id string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	case errors.Is(err, repository.ErrStaleState),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("concurrent update, retry the request", err)
	case errors.Is(err, repository.ErrValueTooLong):
		return apperrors.NewValidationError("value exceeds maximum length", map[string]any{"resource": resource})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewRequestCancelled(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

// Dependencies bundles what the parking services need.
type Dependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      Clock
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = systemClock
	}
	return d
}

func (d Dependencies) publisher() eventPublisher {
	return eventPublisher{dispatcher: d.Dispatcher, logger: d.Logger, now: d.Clock}
}
