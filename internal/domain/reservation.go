package domain

import (
	"math"
	"time"
)

// Reservation is a billable occupancy session of one user on one spot.
// ParkingCost is the lot's hourly price captured when the spot was taken.
type Reservation struct {
	ID            string
	SpotID        string
	UserID        string
	VehicleNumber string
	ParkingCost   float64
	ParkedAt      time.Time
	LeftAt        *time.Time

	// populated by read models only
	LotID      string
	SpotNumber int
}

// Active reports whether the reservation still holds its spot.
func (r *Reservation) Active() bool {
	return r.LeftAt == nil
}

// BilledHours returns the number of started hours between parking and
// leaving (or now for active reservations), never less than one.
func (r *Reservation) BilledHours(now time.Time) int {
	end := now
	if r.LeftAt != nil {
		end = *r.LeftAt
	}
	elapsed := end.Sub(r.ParkedAt)
	hours := int(math.Ceil(elapsed.Hours()))
	if hours < 1 {
		return 1
	}
	return hours
}

// AmountDue derives the total owed from the locked-in hourly rate.
func (r *Reservation) AmountDue(now time.Time) float64 {
	return r.ParkingCost * float64(r.BilledHours(now))
}
