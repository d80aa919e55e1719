package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/buildcode/rideservice/config"
	"github.com/buildcode/rideservice/internal/domain"
	"github.com/buildcode/rideservice/internal/observability"
)

// Receipt confirms that a submitted transaction was mined. BlockNumber
// scopes the event streams opened for that transaction.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	Status      string `json:"status"`
}

// Client submits contract invocations to the ledger node over HTTP. It is
// constructed once at process start with its signing key and passed by
// reference; there is no package-level instance.
type Client struct {
	endpoint string
	address  string
	key      string
	http     *http.Client
}

func NewClient(cfg config.LedgerConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		address:  cfg.ContractAddress,
		key:      cfg.Key,
		http:     &http.Client{Timeout: cfg.SubmitTimeout()},
	}
}

type invokeRequest struct {
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
	Key    string        `json:"key"`
}

// SubmitRideCreation sends the createRide transaction and blocks until it is
// mined or the client timeout elapses.
func (c *Client) SubmitRideCreation(ctx context.Context, ride *domain.Ride) (*Receipt, error) {
	return c.invoke(ctx, "createRide", []interface{}{
		ride.ID, ride.OwnerID, ride.Source, ride.Destination, ride.Fare, ride.Seats, ride.VehicleNumber,
	})
}

// SubmitRideAcceptance sends the acceptRideByOwner transaction.
func (c *Client) SubmitRideAcceptance(ctx context.Context, rideID, ownerID, riderID string) (*Receipt, error) {
	return c.invoke(ctx, "acceptRideByOwner", []interface{}{rideID, ownerID, riderID})
}

func (c *Client) invoke(ctx context.Context, method string, args []interface{}) (*Receipt, error) {
	start := time.Now()
	receipt, err := c.doInvoke(ctx, method, args)
	observability.LedgerSubmitLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.LedgerSubmissionsTotal.WithLabelValues(method, "error").Inc()
		return nil, err
	}
	observability.LedgerSubmissionsTotal.WithLabelValues(method, "ok").Inc()
	return receipt, nil
}

func (c *Client) doInvoke(ctx context.Context, method string, args []interface{}) (*Receipt, error) {
	body, err := json.Marshal(invokeRequest{Method: method, Args: args, Key: c.key})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s request: %v", domain.ErrLedgerSubmission, method, err)
	}

	url := fmt.Sprintf("%s/contracts/%s/invoke", c.endpoint, c.address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", domain.ErrLedgerSubmission, method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send %s: %v", domain.ErrLedgerSubmission, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrLedgerSubmission, method, resp.StatusCode)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("%w: decode %s receipt: %v", domain.ErrLedgerSubmission, method, err)
	}
	if receipt.TxHash == "" {
		return nil, fmt.Errorf("%w: %s receipt missing transaction hash", domain.ErrLedgerSubmission, method)
	}
	if receipt.Status != "" && receipt.Status != "mined" {
		return nil, fmt.Errorf("%w: %s transaction status %q", domain.ErrLedgerSubmission, method, receipt.Status)
	}
	return &receipt, nil
}
