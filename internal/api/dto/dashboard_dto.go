package dto

import "github.com/spec-kit/parking-service/internal/events"

// AdminDashboardResponse is the administrator overview.
type AdminDashboardResponse struct {
	TotalLots    int               `json:"total_lots"`
	TotalUsers   int               `json:"total_users"`
	Occupancy    OccupancyResponse `json:"occupancy"`
	Lots         []LotResponse     `json:"lots"`
	Users        []UserResponse    `json:"users"`
	RecentEvents []events.Event    `json:"recent_events"`
}

// UserDashboardResponse is the parking user overview.
type UserDashboardResponse struct {
	Lots         []LotResponse         `json:"lots"`
	Reservations []ReservationResponse `json:"reservations"`
}
