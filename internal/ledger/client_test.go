package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildcode/rideservice/config"
	"github.com/buildcode/rideservice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedgerConfig(endpoint string) config.LedgerConfig {
	return config.LedgerConfig{
		Endpoint:            endpoint,
		ContractAddress:     "0xc0ffee",
		Key:                 "test-key",
		SubmitTimeoutSecs:   2,
		EventPollAttempts:   1,
		EventPollIntervalMS: 1,
	}
}

func TestClient_SubmitRideCreation_Success(t *testing.T) {
	var gotReq invokeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/contracts/0xc0ffee/invoke", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(Receipt{TxHash: "0xabc", BlockNumber: 42, Status: "mined"})
	}))
	defer srv.Close()

	client := NewClient(testLedgerConfig(srv.URL))
	ride := &domain.Ride{ID: "r1", OwnerID: "o1", Source: "A", Destination: "B", Fare: 100, Seats: 3, VehicleNumber: "KA-01"}

	receipt, err := client.SubmitRideCreation(context.Background(), ride)

	require.NoError(t, err)
	assert.Equal(t, "0xabc", receipt.TxHash)
	assert.Equal(t, uint64(42), receipt.BlockNumber)
	assert.Equal(t, "createRide", gotReq.Method)
	assert.Equal(t, "test-key", gotReq.Key)
	assert.Len(t, gotReq.Args, 7)
}

func TestClient_SubmitRideAcceptance_Success(t *testing.T) {
	var gotReq invokeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(Receipt{TxHash: "0xdef", BlockNumber: 7, Status: "mined"})
	}))
	defer srv.Close()

	client := NewClient(testLedgerConfig(srv.URL))

	receipt, err := client.SubmitRideAcceptance(context.Background(), "r1", "o1", "u1")

	require.NoError(t, err)
	assert.Equal(t, uint64(7), receipt.BlockNumber)
	assert.Equal(t, "acceptRideByOwner", gotReq.Method)
	assert.Equal(t, []interface{}{"r1", "o1", "u1"}, gotReq.Args)
}

func TestClient_Submit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testLedgerConfig(srv.URL))

	receipt, err := client.SubmitRideAcceptance(context.Background(), "r1", "o1", "u1")

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrLedgerSubmission)
}

func TestClient_Submit_MalformedReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(testLedgerConfig(srv.URL))

	receipt, err := client.SubmitRideCreation(context.Background(), &domain.Ride{ID: "r1"})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrLedgerSubmission)
}

func TestClient_Submit_RevertedTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Receipt{TxHash: "0xbad", BlockNumber: 1, Status: "reverted"})
	}))
	defer srv.Close()

	client := NewClient(testLedgerConfig(srv.URL))

	receipt, err := client.SubmitRideCreation(context.Background(), &domain.Ride{ID: "r1"})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrLedgerSubmission)
}

func TestClient_Submit_ConnectionRefused(t *testing.T) {
	client := NewClient(testLedgerConfig("http://127.0.0.1:1"))

	receipt, err := client.SubmitRideCreation(context.Background(), &domain.Ride{ID: "r1"})

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, domain.ErrLedgerSubmission)
}
