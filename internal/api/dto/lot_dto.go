package dto

import (
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

// LotRequest payload for creating or editing a lot.
type LotRequest struct {
	Name     string   `json:"prime_location_name"`
	Price    *float64 `json:"price"`
	Address  string   `json:"address"`
	PinCode  string   `json:"pin_code"`
	Capacity *int     `json:"maximum_number_of_spots"`
}

// CapacityRequest payload for resizing a lot.
type CapacityRequest struct {
	Capacity *int `json:"maximum_number_of_spots"`
}

// OccupancyResponse summarizes spot usage.
type OccupancyResponse struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

// NewOccupancyResponse converts occupancy counters.
func NewOccupancyResponse(o domain.Occupancy) OccupancyResponse {
	return OccupancyResponse{Total: o.Total, Occupied: o.Occupied, Available: o.Available()}
}

// LotResponse is the public view of a lot.
type LotResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"prime_location_name"`
	Price     float64            `json:"price"`
	Address   string             `json:"address"`
	PinCode   string             `json:"pin_code"`
	Capacity  int                `json:"maximum_number_of_spots"`
	Occupancy *OccupancyResponse `json:"occupancy,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewLotResponse converts a lot.
func NewLotResponse(lot domain.ParkingLot) LotResponse {
	resp := LotResponse{
		ID:        lot.ID,
		Name:      lot.Name,
		Price:     lot.Price,
		Address:   lot.Address,
		PinCode:   lot.PinCode,
		Capacity:  lot.Capacity,
		CreatedAt: lot.CreatedAt,
		UpdatedAt: lot.UpdatedAt,
	}
	if lot.Occupancy != nil {
		occ := NewOccupancyResponse(*lot.Occupancy)
		resp.Occupancy = &occ
	}
	return resp
}

// NewLotResponses converts a list of lots.
func NewLotResponses(lots []domain.ParkingLot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, NewLotResponse(lot))
	}
	return out
}

// SpotResponse is one spot of a lot detail view.
type SpotResponse struct {
	ID          string               `json:"id"`
	Number      int                  `json:"number"`
	Status      domain.SpotStatus    `json:"status"`
	Reservation *ReservationResponse `json:"reservation,omitempty"`
}

// LotDetailsResponse is the administrator view of one lot.
type LotDetailsResponse struct {
	Lot   LotResponse    `json:"lot"`
	Spots []SpotResponse `json:"spots"`
}
