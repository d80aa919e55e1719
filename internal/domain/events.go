package domain

import (
	"fmt"
	"time"
)

// RideEventPayload mirrors a decoded ledger event. It is never persisted;
// it only exists on the dispatch path between the subscriber and the
// downstream topic or handler.
type RideEventPayload struct {
	RideID         string     `json:"ride_id"`
	OwnerID        string     `json:"owner_id"`
	Source         string     `json:"source"`
	Destination    string     `json:"destination"`
	Fare           int64      `json:"fare"`
	AvailableSeats int32      `json:"available_seats"`
	VehicleNumber  string     `json:"vehicle_number"`
	Status         RideStatus `json:"status"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RideNotificationPayload is decoded from the contract's notification event
// and handed to the notification sender.
type RideNotificationPayload struct {
	RiderID       string `json:"rider_id"`
	OwnerID       string `json:"owner_id"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	Fare          int64  `json:"fare"`
	VehicleNumber string `json:"vehicle_number"`
	RiderStatus   string `json:"rider_status"`
}

// RideStatusFromCode maps the contract's numeric status codes onto the
// lifecycle enum.
func RideStatusFromCode(code int) (RideStatus, error) {
	switch code {
	case 0:
		return RideStatusCreated, nil
	case 1:
		return RideStatusAccepted, nil
	case 2:
		return RideStatusRejected, nil
	case 3:
		return RideStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: unknown ride status code %d", ErrEventDecoding, code)
	}
}
