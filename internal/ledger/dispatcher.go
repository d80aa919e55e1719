package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/buildcode/rideservice/internal/domain"
	"github.com/buildcode/rideservice/internal/observability"
)

// Deduper collapses redelivered events. MarkEventSeen returns true on the
// first observation of an idempotency key.
type Deduper interface {
	MarkEventSeen(ctx context.Context, id, kind, payloadHash string) (bool, error)
}

// Publisher forwards decoded event payloads to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// RideUpdateHandler applies a decoded ride event to the local record.
type RideUpdateHandler interface {
	ApplyRideEvent(ctx context.Context, payload *domain.RideEventPayload) error
}

// Dispatcher consumes event streams for submitted transactions and routes
// decoded payloads downstream. Each submitted transaction gets bounded
// background watches tracked by a WaitGroup so shutdown can drain them.
// Per-event failures are logged and dropped; they never reach the caller
// that triggered the submission.
type Dispatcher struct {
	sub                *Subscriber
	dedupe             Deduper
	producer           Publisher
	rideCreatedTopic   string
	notificationsTopic string
	updates            RideUpdateHandler
	logger             *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(sub *Subscriber, dedupe Deduper, producer Publisher, rideCreatedTopic, notificationsTopic string, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sub:                sub,
		dedupe:             dedupe,
		producer:           producer,
		rideCreatedTopic:   rideCreatedTopic,
		notificationsTopic: notificationsTopic,
		logger:             logger,
		ctx:                ctx,
		cancel:             cancel,
	}
}

// SetRideUpdateHandler wires the handler after construction; the ride
// coordinator both spawns watches and consumes their updates.
func (d *Dispatcher) SetRideUpdateHandler(h RideUpdateHandler) {
	d.updates = h
}

// WatchCreation opens the RideCreated stream for the block the creation
// transaction was mined in.
func (d *Dispatcher) WatchCreation(receipt *Receipt) {
	d.watch(EventRideCreated, receipt.BlockNumber)
}

// WatchAcceptance opens the RideUpdated and SendNotification streams for
// the block the acceptance transaction was mined in.
func (d *Dispatcher) WatchAcceptance(receipt *Receipt) {
	d.watch(EventRideUpdated, receipt.BlockNumber)
	d.watch(EventNotification, receipt.BlockNumber)
}

func (d *Dispatcher) watch(kind EventKind, block uint64) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for raw := range d.sub.Events(d.ctx, kind, block, block) {
			if err := d.handle(d.ctx, kind, raw); err != nil {
				observability.EventsDroppedTotal.WithLabelValues(string(kind)).Inc()
				d.logger.Error("event dropped",
					slog.String("kind", string(kind)),
					slog.Uint64("block", block),
					slog.String("error", err.Error()),
				)
			}
		}
	}()
}

// Close cancels all watches and blocks until they drain.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) handle(ctx context.Context, kind EventKind, raw RawEvent) error {
	hash := payloadHash(raw.Fields)

	switch kind {
	case EventRideCreated, EventRideUpdated:
		payload, err := DecodeRideEvent(raw)
		if err != nil {
			return err
		}
		fresh, err := d.seen(ctx, payload.RideID, kind, hash)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}
		if kind == EventRideCreated {
			if err := d.producer.Publish(ctx, d.rideCreatedTopic, payload.RideID, payload); err != nil {
				return fmt.Errorf("publish ride created: %w", err)
			}
		} else if d.updates != nil {
			if err := d.updates.ApplyRideEvent(ctx, payload); err != nil {
				return fmt.Errorf("apply ride update: %w", err)
			}
		}

	case EventNotification:
		payload, err := DecodeNotificationEvent(raw)
		if err != nil {
			return err
		}
		fresh, err := d.seen(ctx, payload.RiderID, kind, hash)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}
		if err := d.producer.Publish(ctx, d.notificationsTopic, payload.RiderID, payload); err != nil {
			return fmt.Errorf("publish notification: %w", err)
		}

	default:
		return fmt.Errorf("%w: unknown event kind %q", domain.ErrEventDecoding, kind)
	}

	observability.EventsDispatchedTotal.WithLabelValues(string(kind)).Inc()
	return nil
}

// seen runs the idempotency check. When the dedup store is unavailable the
// event is treated as fresh: at-least-once delivery stands and downstream
// consumers still deduplicate on their side.
func (d *Dispatcher) seen(ctx context.Context, id string, kind EventKind, hash string) (bool, error) {
	if d.dedupe == nil {
		return true, nil
	}
	fresh, err := d.dedupe.MarkEventSeen(ctx, id, string(kind), hash)
	if err != nil {
		d.logger.Warn("dedup check failed, treating event as fresh",
			slog.String("kind", string(kind)),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return true, nil
	}
	if !fresh {
		observability.EventsDuplicateTotal.WithLabelValues(string(kind)).Inc()
	}
	return fresh, nil
}

func payloadHash(fields []byte) string {
	sum := sha256.Sum256(fields)
	return hex.EncodeToString(sum[:])
}
