package repository

import (
	"context"
	"errors"

	"github.com/buildcode/rideservice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	// UpdateStatusFrom performs a conditional write: the update only lands
	// when the stored status still equals expected. It returns
	// domain.ErrConflict when the row exists but the status moved, and
	// domain.ErrNotFound when the row is absent.
	UpdateStatusFrom(ctx context.Context, id string, expected, next domain.RideStatus) error
	UpdateSeats(ctx context.Context, id string, seats int32) error
	ListByStatus(ctx context.Context, status domain.RideStatus) ([]domain.Ride, error)
	Delete(ctx context.Context, id string) error
}

type PGRideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &PGRideRepository{db: db}
}

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	return r.db.QueryRow(ctx, `INSERT INTO rides (id, owner_id, source, destination, fare, seats, vehicle_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		ride.ID, ride.OwnerID, ride.Source, ride.Destination, ride.Fare, ride.Seats, ride.VehicleNumber, ride.Status).
		Scan(&ride.CreatedAt, &ride.UpdatedAt)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, source, destination, fare, seats, vehicle_number, status, created_at, updated_at FROM rides WHERE id=$1`, id)
	var ride domain.Ride
	if err := row.Scan(&ride.ID, &ride.OwnerID, &ride.Source, &ride.Destination, &ride.Fare, &ride.Seats, &ride.VehicleNumber, &ride.Status, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (r *PGRideRepository) UpdateStatusFrom(ctx context.Context, id string, expected, next domain.RideStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE rides SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`, next, id, expected)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *PGRideRepository) UpdateSeats(ctx context.Context, id string, seats int32) error {
	res, err := r.db.Exec(ctx, `UPDATE rides SET seats=$1, updated_at=now() WHERE id=$2`, seats, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGRideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, source, destination, fare, seats, vehicle_number, status, created_at, updated_at FROM rides WHERE status=$1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := make([]domain.Ride, 0)
	for rows.Next() {
		var ride domain.Ride
		if err := rows.Scan(&ride.ID, &ride.OwnerID, &ride.Source, &ride.Destination, &ride.Fare, &ride.Seats, &ride.VehicleNumber, &ride.Status, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func (r *PGRideRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM rides WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ RideRepository = (*PGRideRepository)(nil)
