package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/buildcode/rideservice/internal/domain"
	"github.com/buildcode/rideservice/internal/repository"
	"github.com/google/uuid"
)

// BookingUseCase owns the booking-request lifecycle:
// PENDING -> CONFIRMED or PENDING -> REJECTED, both terminal.
type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput) (*domain.BookingRequest, error)
	Get(ctx context.Context, id string) (*domain.BookingRequest, error)
	Accept(ctx context.Context, id string) (bool, error)
	Reject(ctx context.Context, id string) (bool, error)
	Cancel(ctx context.Context, id string) (bool, error)
}

type Notifier interface {
	Send(ctx context.Context, userID, title, body string) error
}

type BookingService struct {
	requests repository.BookingRequestRepository
	notifier Notifier
	logger   *slog.Logger
}

type CreateBookingInput struct {
	RideID string `json:"ride_id"`
	UserID string `json:"user_id"`
}

func NewBookingService(requests repository.BookingRequestRepository, notifier Notifier, logger *slog.Logger) *BookingService {
	return &BookingService{requests: requests, notifier: notifier, logger: logger}
}

func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*domain.BookingRequest, error) {
	if input.RideID == "" {
		return nil, errors.New("ride id is required")
	}
	if input.UserID == "" {
		return nil, errors.New("user id is required")
	}

	request := &domain.BookingRequest{
		ID:     uuid.NewString(),
		RideID: input.RideID,
		UserID: input.UserID,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.BookingRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// Accept confirms a pending request. Both terminal states block the
// transition; a lost race against a concurrent accept/reject surfaces as
// domain.ErrConflict from the conditional update.
func (s *BookingService) Accept(ctx context.Context, id string) (bool, error) {
	updated, err := s.transition(ctx, id, domain.BookingStatusConfirmed)
	if err != nil {
		return false, err
	}

	s.logger.Info("booking request accepted", slog.String("booking_request_id", updated.ID))
	s.sendNotification(ctx, updated.UserID, "Ride Accepted", "Your ride has been accepted!")
	return true, nil
}

// Reject is symmetric to Accept, producing the REJECTED terminal state.
func (s *BookingService) Reject(ctx context.Context, id string) (bool, error) {
	updated, err := s.transition(ctx, id, domain.BookingStatusRejected)
	if err != nil {
		return false, err
	}

	s.logger.Info("booking request rejected", slog.String("booking_request_id", updated.ID))
	s.sendNotification(ctx, updated.UserID, "Ride Rejected", "Your ride has been rejected.")
	return true, nil
}

// Cancel retracts a pending request on behalf of the rider. It reuses the
// REJECTED terminal state and sends no notification; there is nothing to
// tell the rider that they did not initiate themselves.
func (s *BookingService) Cancel(ctx context.Context, id string) (bool, error) {
	updated, err := s.transition(ctx, id, domain.BookingStatusRejected)
	if err != nil {
		return false, err
	}

	s.logger.Info("booking request cancelled", slog.String("booking_request_id", updated.ID))
	return true, nil
}

func (s *BookingService) transition(ctx context.Context, id string, next domain.BookingStatus) (*domain.BookingRequest, error) {
	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking request is already %s", domain.ErrConflict, current.Status)
	}

	updated, err := s.requests.UpdateStatusFrom(ctx, id, domain.BookingStatusPending, next)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) sendNotification(ctx context.Context, userID, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, userID, title, body); err != nil {
		s.logger.Warn("notification delivery failed",
			slog.String("user_id", userID),
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
