package dto

import (
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

// ReserveRequest payload for reserving a spot.
type ReserveRequest struct {
	VehicleNumber string `json:"vehicle_number"`
}

// ReservationResponse describes a reservation. BilledHours and AmountDue are
// derived from the locked-in hourly rate at response time.
type ReservationResponse struct {
	ID            string     `json:"id"`
	LotID         string     `json:"lot_id"`
	SpotID        string     `json:"spot_id"`
	SpotNumber    int        `json:"spot_number"`
	UserID        string     `json:"user_id"`
	VehicleNumber string     `json:"vehicle_number"`
	ParkingCost   float64    `json:"parking_cost"`
	ParkedAt      time.Time  `json:"parking_timestamp"`
	LeftAt        *time.Time `json:"leaving_timestamp"`
	Active        bool       `json:"active"`
	BilledHours   int        `json:"billed_hours"`
	AmountDue     float64    `json:"amount_due"`
}

// NewReservationResponse converts a reservation.
func NewReservationResponse(res domain.Reservation, now time.Time) ReservationResponse {
	return ReservationResponse{
		ID:            res.ID,
		LotID:         res.LotID,
		SpotID:        res.SpotID,
		SpotNumber:    res.SpotNumber,
		UserID:        res.UserID,
		VehicleNumber: res.VehicleNumber,
		ParkingCost:   res.ParkingCost,
		ParkedAt:      res.ParkedAt,
		LeftAt:        res.LeftAt,
		Active:        res.Active(),
		BilledHours:   res.BilledHours(now),
		AmountDue:     res.AmountDue(now),
	}
}

// NewReservationResponses converts a list of reservations.
func NewReservationResponses(list []domain.Reservation, now time.Time) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for _, res := range list {
		out = append(out, NewReservationResponse(res, now))
	}
	return out
}
