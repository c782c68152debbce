package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"udyam/pkg/domain"
)

// Store persists entries. Append-only: implementations expose no update or
// delete.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByRegistration(ctx context.Context, id domain.RegistrationID) ([]Entry, error)
}

// Sink receives a copy of every persisted entry for downstream consumers
// (compliance pipelines, SIEM). Delivery is best-effort; the store is the
// source of truth.
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Publisher captures validation outcomes. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger

	inbox chan Entry
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue entries to a background writer instead
// of blocking on the store. Close drains the buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Entry, size)
	}
}

// WithSink fans persisted entries out to an external sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// NewPublisher builds a synchronous publisher by default.
func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one entry, stamping the event id and timestamp when unset.
func (p *Publisher) Emit(ctx context.Context, entry Entry) error {
	if entry.EventID == uuid.Nil {
		entry.EventID = uuid.New()
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	if p.inbox != nil {
		p.inbox <- entry
		return nil
	}
	return p.write(ctx, entry)
}

// List returns the trail for one registration in append order.
func (p *Publisher) List(ctx context.Context, id domain.RegistrationID) ([]Entry, error) {
	return p.store.ListByRegistration(ctx, id)
}

// Close stops the background writer, draining any buffered entries first.
// No-op in synchronous mode.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.once.Do(func() {
		close(p.inbox)
		p.wg.Wait()
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for entry := range p.inbox {
		if err := p.write(context.Background(), entry); err != nil {
			p.logger.Error("failed to persist audit entry",
				"event_id", entry.EventID.String(),
				"error", err,
			)
		}
	}
}

func (p *Publisher) write(ctx context.Context, entry Entry) error {
	if err := p.store.Append(ctx, entry); err != nil {
		return err
	}
	if p.sink != nil {
		payload, err := json.Marshal(sinkPayload(entry))
		if err == nil {
			err = p.sink.Publish(ctx, []byte(entry.RegistrationID.String()), payload)
		}
		if err != nil {
			// The store already holds the entry; fan-out loss is tolerable.
			p.logger.Warn("audit sink publish failed",
				"event_id", entry.EventID.String(),
				"error", err,
			)
		}
	}
	return nil
}

type sinkEntry struct {
	EventID        string `json:"event_id"`
	RegistrationID int64  `json:"registration_id"`
	FieldName      string `json:"field_name"`
	CheckType      string `json:"check_type"`
	Valid          bool   `json:"is_valid"`
	Message        string `json:"message,omitempty"`
	At             string `json:"validated_at"`
}

func sinkPayload(entry Entry) sinkEntry {
	return sinkEntry{
		EventID:        entry.EventID.String(),
		RegistrationID: int64(entry.RegistrationID),
		FieldName:      entry.FieldName,
		CheckType:      entry.CheckType,
		Valid:          entry.Valid,
		Message:        entry.Message,
		At:             entry.At.Format(time.RFC3339Nano),
	}
}
