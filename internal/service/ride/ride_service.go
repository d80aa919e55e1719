package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/buildcode/rideservice/internal/domain"
	"github.com/buildcode/rideservice/internal/ledger"
	"github.com/buildcode/rideservice/internal/repository"
	"github.com/buildcode/rideservice/internal/service/booking"
	"github.com/google/uuid"
)

// RideUseCase is the top-level lifecycle coordinator. Callers see results
// as soon as local persistence and ledger submission settle; event
// propagation runs out of band.
type RideUseCase interface {
	Create(ctx context.Context, input CreateRideInput) (*CreateRideResult, error)
	Get(ctx context.Context, id string) (*domain.Ride, error)
	Request(ctx context.Context, rideID, userID string) (*domain.BookingRequest, error)
	Accept(ctx context.Context, bookingRequestID, ownerID string) (bool, error)
	Reject(ctx context.Context, bookingRequestID, ownerID string) (bool, error)
	Cancel(ctx context.Context, bookingRequestID, userID string) (bool, error)
	Delete(ctx context.Context, rideID, ownerID string) (bool, error)
	Update(ctx context.Context, id string, input CreateRideInput) (*domain.Ride, error)
	Reconcile(ctx context.Context) (int, error)
}

// LedgerClient submits transactions and returns mined receipts.
type LedgerClient interface {
	SubmitRideCreation(ctx context.Context, ride *domain.Ride) (*ledger.Receipt, error)
	SubmitRideAcceptance(ctx context.Context, rideID, ownerID, riderID string) (*ledger.Receipt, error)
}

// EventWatcher spawns the background event streams for a mined transaction.
type EventWatcher interface {
	WatchCreation(receipt *ledger.Receipt)
	WatchAcceptance(receipt *ledger.Receipt)
}

type RideService struct {
	rides    repository.RideRepository
	bookings booking.BookingUseCase
	chain    LedgerClient
	watcher  EventWatcher
	logger   *slog.Logger
}

type CreateRideInput struct {
	OwnerID       string `json:"owner_id"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	Fare          int64  `json:"fare"`
	Seats         int32  `json:"seats"`
	VehicleNumber string `json:"vehicle_number"`
}

// CreateRideResult carries the persisted ride and, when the ledger
// submission succeeded, the mined transaction reference. A ride left in
// PENDING_CHAIN has no receipt yet.
type CreateRideResult struct {
	Ride        *domain.Ride `json:"ride"`
	TxHash      string       `json:"tx_hash,omitempty"`
	BlockNumber uint64       `json:"block_number,omitempty"`
}

func NewRideService(rides repository.RideRepository, bookings booking.BookingUseCase, chain LedgerClient, watcher EventWatcher, logger *slog.Logger) *RideService {
	return &RideService{rides: rides, bookings: bookings, chain: chain, watcher: watcher, logger: logger}
}

// Create persists the ride first so it is discoverable immediately, then
// submits it to the ledger. A failed submission demotes the record to
// PENDING_CHAIN for the reconciliation sweep instead of failing the call.
func (s *RideService) Create(ctx context.Context, input CreateRideInput) (*CreateRideResult, error) {
	if input.OwnerID == "" {
		return nil, errors.New("owner id is required")
	}
	if input.Source == "" || input.Destination == "" {
		return nil, errors.New("source and destination are required")
	}
	if input.Seats <= 0 {
		return nil, errors.New("seats must be positive")
	}

	r := &domain.Ride{
		ID:            uuid.NewString(),
		OwnerID:       input.OwnerID,
		Source:        input.Source,
		Destination:   input.Destination,
		Fare:          input.Fare,
		Seats:         input.Seats,
		VehicleNumber: input.VehicleNumber,
		Status:        domain.RideStatusCreated,
	}
	if err := s.rides.Create(ctx, r); err != nil {
		return nil, err
	}

	receipt, err := s.chain.SubmitRideCreation(ctx, r)
	if err != nil {
		s.logger.Error("ride creation not yet on chain",
			slog.String("ride_id", r.ID),
			slog.String("error", err.Error()),
		)
		if err := s.rides.UpdateStatusFrom(ctx, r.ID, domain.RideStatusCreated, domain.RideStatusPendingChain); err != nil {
			return nil, err
		}
		r.Status = domain.RideStatusPendingChain
		return &CreateRideResult{Ride: r}, nil
	}

	s.watcher.WatchCreation(receipt)
	return &CreateRideResult{Ride: r, TxHash: receipt.TxHash, BlockNumber: receipt.BlockNumber}, nil
}

func (s *RideService) Get(ctx context.Context, id string) (*domain.Ride, error) {
	return s.rides.GetByID(ctx, id)
}

// Request creates a PENDING booking request against an existing ride.
func (s *RideService) Request(ctx context.Context, rideID, userID string) (*domain.BookingRequest, error) {
	if _, err := s.rides.GetByID(ctx, rideID); err != nil {
		return nil, err
	}
	return s.bookings.Create(ctx, booking.CreateBookingInput{RideID: rideID, UserID: userID})
}

// Accept confirms a booking request on behalf of the ride owner. The
// acceptance transaction is submitted first; the response returns once the
// transaction is mined and the local transition lands, never waiting for
// event propagation.
func (s *RideService) Accept(ctx context.Context, bookingRequestID, ownerID string) (bool, error) {
	request, r, err := s.authorize(ctx, bookingRequestID, ownerID)
	if err != nil {
		return false, err
	}
	if request.Status.IsTerminal() {
		return false, fmt.Errorf("%w: booking request is already %s", domain.ErrConflict, request.Status)
	}

	receipt, err := s.chain.SubmitRideAcceptance(ctx, r.ID, r.OwnerID, request.UserID)
	if err != nil {
		return false, err
	}

	ok, err := s.bookings.Accept(ctx, request.ID)
	if err != nil {
		// The acceptance is already mined; the local record lost a race.
		// The event stream below still reconciles ride state.
		s.watcher.WatchAcceptance(receipt)
		return false, err
	}

	s.watcher.WatchAcceptance(receipt)
	return ok, nil
}

// Reject declines a booking request. Rejection has no on-chain
// counterpart.
func (s *RideService) Reject(ctx context.Context, bookingRequestID, ownerID string) (bool, error) {
	request, _, err := s.authorize(ctx, bookingRequestID, ownerID)
	if err != nil {
		return false, err
	}
	return s.bookings.Reject(ctx, request.ID)
}

// Cancel retracts the rider's own pending request. It only marks local
// state; a mined transaction is never revoked.
func (s *RideService) Cancel(ctx context.Context, bookingRequestID, userID string) (bool, error) {
	request, err := s.bookings.Get(ctx, bookingRequestID)
	if err != nil {
		return false, err
	}
	if request.UserID != userID {
		return false, domain.ErrUnauthorized
	}
	return s.bookings.Cancel(ctx, request.ID)
}

func (s *RideService) Delete(ctx context.Context, rideID, ownerID string) (bool, error) {
	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return false, err
	}
	if r.OwnerID != ownerID {
		return false, domain.ErrUnauthorized
	}
	if err := s.rides.Delete(ctx, rideID); err != nil {
		return false, err
	}
	return true, nil
}

// Update is not supported.
func (s *RideService) Update(ctx context.Context, id string, input CreateRideInput) (*domain.Ride, error) {
	return nil, domain.ErrNotImplemented
}

// ApplyRideEvent folds a decoded ledger event into the local record. Stale
// or duplicate events are ignored: the update only lands when it keeps the
// lifecycle monotonic, and the conditional write closes the race against a
// concurrent transition.
func (s *RideService) ApplyRideEvent(ctx context.Context, payload *domain.RideEventPayload) error {
	r, err := s.rides.GetByID(ctx, payload.RideID)
	if err != nil {
		return err
	}

	if r.Status != payload.Status {
		if !r.Status.Advances(payload.Status) {
			s.logger.Debug("ignoring stale ride event",
				slog.String("ride_id", r.ID),
				slog.String("current", string(r.Status)),
				slog.String("event", string(payload.Status)),
			)
			return nil
		}
		if err := s.rides.UpdateStatusFrom(ctx, r.ID, r.Status, payload.Status); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Another event or request advanced the ride first.
				return nil
			}
			return err
		}
	}

	if payload.AvailableSeats >= 0 && payload.AvailableSeats != r.Seats {
		if err := s.rides.UpdateSeats(ctx, r.ID, payload.AvailableSeats); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile resubmits rides stranded in PENDING_CHAIN and promotes them to
// CREATED once the ledger accepts them. It returns the number of rides
// recovered.
func (s *RideService) Reconcile(ctx context.Context) (int, error) {
	pending, err := s.rides.ListByStatus(ctx, domain.RideStatusPendingChain)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for i := range pending {
		r := pending[i]
		receipt, err := s.chain.SubmitRideCreation(ctx, &r)
		if err != nil {
			s.logger.Warn("reconcile submission failed",
				slog.String("ride_id", r.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := s.rides.UpdateStatusFrom(ctx, r.ID, domain.RideStatusPendingChain, domain.RideStatusCreated); err != nil {
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return recovered, err
		}
		s.watcher.WatchCreation(receipt)
		recovered++
	}
	return recovered, nil
}

func (s *RideService) authorize(ctx context.Context, bookingRequestID, ownerID string) (*domain.BookingRequest, *domain.Ride, error) {
	request, err := s.bookings.Get(ctx, bookingRequestID)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.rides.GetByID(ctx, request.RideID)
	if err != nil {
		return nil, nil, err
	}
	if r.OwnerID != ownerID {
		return nil, nil, domain.ErrUnauthorized
	}
	return request, r, nil
}

var _ RideUseCase = (*RideService)(nil)
