package domain

import "time"

type RideStatus string

const (
	RideStatusCreated      RideStatus = "CREATED"
	RideStatusPendingChain RideStatus = "PENDING_CHAIN"
	RideStatusAccepted     RideStatus = "ACCEPTED"
	RideStatusRejected     RideStatus = "REJECTED"
	RideStatusCancelled    RideStatus = "CANCELLED"
)

// rideStatusRank orders the lifecycle so that duplicate or out-of-order
// ledger events can never move a ride backwards. Equal ranks (ACCEPTED,
// REJECTED) are both reachable from CREATED but not from each other.
var rideStatusRank = map[RideStatus]int{
	RideStatusPendingChain: 0,
	RideStatusCreated:      1,
	RideStatusAccepted:     2,
	RideStatusRejected:     2,
	RideStatusCancelled:    3,
}

// Advances reports whether moving from current to next keeps the lifecycle
// monotonic. A transition to the same status is allowed so redelivered
// events stay idempotent.
func (s RideStatus) Advances(next RideStatus) bool {
	cur, ok := rideStatusRank[s]
	if !ok {
		return false
	}
	nxt, ok := rideStatusRank[next]
	if !ok {
		return false
	}
	if cur == nxt && s != next {
		// ACCEPTED and REJECTED share a rank but are mutually terminal.
		return false
	}
	return nxt >= cur
}

type Ride struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Source        string     `json:"source"`
	Destination   string     `json:"destination"`
	Fare          int64      `json:"fare"`
	Seats         int32      `json:"seats"`
	VehicleNumber string     `json:"vehicle_number"`
	Status        RideStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
