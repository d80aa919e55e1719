package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRequestRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRequestRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewRideRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewRideRepository(pool)
	assert.NotNil(t, repo)
}
