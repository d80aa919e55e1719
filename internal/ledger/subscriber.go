package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/buildcode/rideservice/config"
)

// EventKind names a contract event signature.
type EventKind string

const (
	EventRideCreated  EventKind = "RideCreated"
	EventRideUpdated  EventKind = "RideUpdated"
	EventNotification EventKind = "SendNotification"
)

// RawEvent is an undecoded contract event as returned by the ledger node.
type RawEvent struct {
	Name        string          `json:"name"`
	BlockNumber uint64          `json:"block_number"`
	TxHash      string          `json:"tx_hash"`
	Fields      json.RawMessage `json:"fields"`
}

// Subscriber opens block-range-scoped event streams against the ledger
// node. A stream polls the node a bounded number of times and forwards
// every event it sees; the same event may be forwarded more than once
// across attempts, so consumers must deduplicate.
type Subscriber struct {
	endpoint string
	address  string
	http     *http.Client
	attempts int
	interval time.Duration
	logger   *slog.Logger
}

func NewSubscriber(cfg config.LedgerConfig, logger *slog.Logger) *Subscriber {
	attempts := cfg.EventPollAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return &Subscriber{
		endpoint: cfg.Endpoint,
		address:  cfg.ContractAddress,
		http:     &http.Client{Timeout: cfg.SubmitTimeout()},
		attempts: attempts,
		interval: cfg.EventPollInterval(),
		logger:   logger,
	}
}

// Events returns a channel of raw events for kind within
// [fromBlock, toBlock]. The channel is closed once polling finishes or the
// context is cancelled.
func (s *Subscriber) Events(ctx context.Context, kind EventKind, fromBlock, toBlock uint64) <-chan RawEvent {
	out := make(chan RawEvent)

	go func() {
		defer close(out)
		for attempt := 0; attempt < s.attempts; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.interval):
				}
			}

			events, err := s.fetch(ctx, kind, fromBlock, toBlock)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("event fetch failed",
					slog.String("kind", string(kind)),
					slog.Uint64("from_block", fromBlock),
					slog.Uint64("to_block", toBlock),
					slog.String("error", err.Error()),
				)
				continue
			}

			for _, ev := range events {
				select {
				case <-ctx.Done():
					return
				case out <- ev:
				}
			}
		}
	}()

	return out
}

func (s *Subscriber) fetch(ctx context.Context, kind EventKind, fromBlock, toBlock uint64) ([]RawEvent, error) {
	url := fmt.Sprintf("%s/contracts/%s/events?name=%s&from_block=%d&to_block=%d",
		s.endpoint, s.address, kind, fromBlock, toBlock)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("event query returned status %d", resp.StatusCode)
	}

	var out struct {
		Events []RawEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Events, nil
}
