package repository

import (
	"context"
	"errors"

	"github.com/buildcode/rideservice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRequestRepository interface {
	Create(ctx context.Context, request *domain.BookingRequest) error
	GetByID(ctx context.Context, id string) (*domain.BookingRequest, error)
	// UpdateStatusFrom is the optimistic-concurrency primitive for booking
	// transitions: the write succeeds only while the stored status still
	// equals expected, so a losing concurrent accept/reject observes
	// domain.ErrConflict instead of silently overwriting.
	UpdateStatusFrom(ctx context.Context, id string, expected, next domain.BookingStatus) (*domain.BookingRequest, error)
}

type PGBookingRequestRepository struct {
	db *pgxpool.Pool
}

func NewBookingRequestRepository(db *pgxpool.Pool) BookingRequestRepository {
	return &PGBookingRequestRepository{db: db}
}

func (r *PGBookingRequestRepository) Create(ctx context.Context, request *domain.BookingRequest) error {
	request.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO booking_requests (id, ride_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		request.ID, request.RideID, request.UserID, request.Status).
		Scan(&request.CreatedAt, &request.UpdatedAt)
}

func (r *PGBookingRequestRepository) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT id, ride_id, user_id, status, created_at, updated_at FROM booking_requests WHERE id=$1`, id)
	var b domain.BookingRequest
	if err := row.Scan(&b.ID, &b.RideID, &b.UserID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRequestRepository) UpdateStatusFrom(ctx context.Context, id string, expected, next domain.BookingStatus) (*domain.BookingRequest, error) {
	row := r.db.QueryRow(ctx, `UPDATE booking_requests SET status=$1, updated_at=now() WHERE id=$2 AND status=$3
		RETURNING id, ride_id, user_id, status, created_at, updated_at`, next, id, expected)
	var b domain.BookingRequest
	if err := row.Scan(&b.ID, &b.RideID, &b.UserID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM booking_requests WHERE id=$1)`, id).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingRequestRepository = (*PGBookingRequestRepository)(nil)
