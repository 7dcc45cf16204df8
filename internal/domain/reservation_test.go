package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservation_BilledHours(t *testing.T) {
	parked := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	left := func(d time.Duration) *time.Time {
		ts := parked.Add(d)
		return &ts
	}

	tests := []struct {
		name string
		res  Reservation
		now  time.Time
		want int
	}{
		{"minimum one hour", Reservation{ParkedAt: parked, LeftAt: left(5 * time.Minute)}, parked, 1},
		{"exact hours", Reservation{ParkedAt: parked, LeftAt: left(2 * time.Hour)}, parked, 2},
		{"started hour counts", Reservation{ParkedAt: parked, LeftAt: left(2*time.Hour + time.Second)}, parked, 3},
		{"active uses now", Reservation{ParkedAt: parked}, parked.Add(90 * time.Minute), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.BilledHours(tt.now))
		})
	}
}

func TestReservation_AmountDue(t *testing.T) {
	parked := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	left := parked.Add(3 * time.Hour)
	res := Reservation{ParkingCost: 10, ParkedAt: parked, LeftAt: &left}

	assert.InDelta(t, 30.0, res.AmountDue(time.Now()), 0.0001)
	assert.False(t, res.Active())
}

func TestOccupancy_Available(t *testing.T) {
	assert.Equal(t, 3, Occupancy{Total: 5, Occupied: 2}.Available())
}
