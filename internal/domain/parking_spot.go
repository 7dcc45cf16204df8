package domain

// SpotStatus is the binary occupancy state of a spot.
type SpotStatus string

const (
	SpotAvailable SpotStatus = "AVAILABLE"
	SpotOccupied  SpotStatus = "OCCUPIED"
)

// ParkingSpot is one occupiable unit within a lot. Number is unique per lot
// and orders allocation: the lowest available number is handed out first.
type ParkingSpot struct {
	ID     string
	LotID  string
	Number int
	Status SpotStatus
}
