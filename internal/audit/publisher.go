package audit

import (
	"context"
	"log/slog"
	"time"
)

// Emitter is what domain services depend on to record audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store is the append-only persistence behind the trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// Publisher writes events synchronously to its store. Used directly in tests
// and small deployments.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// ChannelEmitter hands events to a background worker through a bounded inbox.
// A full inbox drops the event with a log line: the audit trail is
// best-effort and must never block or fail a domain operation.
type ChannelEmitter struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewChannelEmitter(inbox chan<- Event, logger *slog.Logger) *ChannelEmitter {
	return &ChannelEmitter{inbox: inbox, logger: logger}
}

func (e *ChannelEmitter) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case e.inbox <- event:
	default:
		e.logger.WarnContext(ctx, "audit inbox full, dropping event", "action", event.Action, "subject", event.Subject)
	}
	return nil
}
