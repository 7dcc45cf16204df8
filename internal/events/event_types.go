package events

import (
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSpotReserved EventType = "spot_reserved"
	EventSpotReleased EventType = "spot_released"
	EventLotCreated   EventType = "lot_created"
	EventLotUpdated   EventType = "lot_updated"
	EventLotResized   EventType = "lot_resized"
	EventLotDeleted   EventType = "lot_deleted"
)

// AllEventTypes lists every event type services publish.
var AllEventTypes = []EventType{
	EventSpotReserved,
	EventSpotReleased,
	EventLotCreated,
	EventLotUpdated,
	EventLotResized,
	EventLotDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// ActorFrom converts the caller of an operation into event metadata.
func ActorFrom(a domain.Actor) Actor {
	return Actor{UserID: a.UserID, Role: a.Role}
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	LotID     string    `json:"lot_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// SpotReservedPayload payload.
type SpotReservedPayload struct {
	ReservationID string  `json:"reservation_id"`
	SpotID        string  `json:"spot_id"`
	SpotNumber    int     `json:"spot_number"`
	VehicleNumber string  `json:"vehicle_number"`
	ParkingCost   float64 `json:"parking_cost"`
}

// SpotReleasedPayload payload.
type SpotReleasedPayload struct {
	ReservationID string  `json:"reservation_id"`
	SpotID        string  `json:"spot_id"`
	BilledHours   int     `json:"billed_hours"`
	AmountDue     float64 `json:"amount_due"`
}

// LotCreatedPayload payload.
type LotCreatedPayload struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Capacity int     `json:"capacity"`
}

// LotResizedPayload payload. SpotsRemoved counts deleted spots whose
// closed reservation history was discarded with them.
type LotResizedPayload struct {
	OldCapacity  int `json:"old_capacity"`
	NewCapacity  int `json:"new_capacity"`
	SpotsAdded   int `json:"spots_added"`
	SpotsRemoved int `json:"spots_removed"`
}

// LotUpdatedPayload payload.
type LotUpdatedPayload struct {
	Name     string  `json:"name"`
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price"`
}

// LotDeletedPayload payload.
type LotDeletedPayload struct {
	Name         string `json:"name"`
	SpotsRemoved int    `json:"spots_removed"`
}
