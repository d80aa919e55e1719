package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/buildcode/rideservice/internal/domain"
)

type rideEventFields struct {
	RideID         string `json:"ride_id"`
	OwnerID        string `json:"owner_id"`
	Source         string `json:"source"`
	Destination    string `json:"destination"`
	Fare           int64  `json:"fare"`
	AvailableSeats int32  `json:"available_seats"`
	VehicleNumber  string `json:"vehicle_number"`
	Status         int    `json:"status"`
	UpdatedAt      int64  `json:"updated_at"`
}

type notificationEventFields struct {
	RiderID       string `json:"rider_id"`
	OwnerID       string `json:"owner_id"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	Fare          int64  `json:"fare"`
	VehicleNumber string `json:"vehicle_number"`
	Status        string `json:"status"`
}

// DecodeRideEvent maps a RideCreated or RideUpdated event into the
// canonical payload, translating the contract's numeric status code.
func DecodeRideEvent(raw RawEvent) (*domain.RideEventPayload, error) {
	var fields rideEventFields
	if err := json.Unmarshal(raw.Fields, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s fields: %v", domain.ErrEventDecoding, raw.Name, err)
	}
	if fields.RideID == "" {
		return nil, fmt.Errorf("%w: %s event missing ride id", domain.ErrEventDecoding, raw.Name)
	}

	status, err := domain.RideStatusFromCode(fields.Status)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if fields.UpdatedAt > 0 {
		updatedAt = time.Unix(fields.UpdatedAt, 0).UTC()
	}

	return &domain.RideEventPayload{
		RideID:         fields.RideID,
		OwnerID:        fields.OwnerID,
		Source:         fields.Source,
		Destination:    fields.Destination,
		Fare:           fields.Fare,
		AvailableSeats: fields.AvailableSeats,
		VehicleNumber:  fields.VehicleNumber,
		Status:         status,
		UpdatedAt:      updatedAt,
	}, nil
}

// DecodeNotificationEvent maps a SendNotification event into the
// notification payload delivered to the rider.
func DecodeNotificationEvent(raw RawEvent) (*domain.RideNotificationPayload, error) {
	var fields notificationEventFields
	if err := json.Unmarshal(raw.Fields, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s fields: %v", domain.ErrEventDecoding, raw.Name, err)
	}
	if fields.RiderID == "" {
		return nil, fmt.Errorf("%w: notification event missing rider id", domain.ErrEventDecoding)
	}

	return &domain.RideNotificationPayload{
		RiderID:       fields.RiderID,
		OwnerID:       fields.OwnerID,
		Source:        fields.Source,
		Destination:   fields.Destination,
		Fare:          fields.Fare,
		VehicleNumber: fields.VehicleNumber,
		RiderStatus:   fields.Status,
	}, nil
}
