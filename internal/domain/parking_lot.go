package domain

import "time"

// MaxLotCapacity bounds the number of spots a single lot may declare.
const MaxLotCapacity = 10000

// ParkingLot is a named location holding a fixed pool of spots.
type ParkingLot struct {
	ID        string
	Name      string
	Price     float64
	Address   string
	PinCode   string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time

	// populated by read models only
	Occupancy *Occupancy
}

// Occupancy summarizes spot usage for a lot or for the whole system.
type Occupancy struct {
	Total    int
	Occupied int
}

// Available returns the number of spots not currently occupied.
func (o Occupancy) Available() int {
	return o.Total - o.Occupied
}
