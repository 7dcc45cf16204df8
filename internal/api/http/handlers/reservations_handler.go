package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/service"
)

// ReservationsHandler serves a user's own reservations and dashboard.
type ReservationsHandler struct {
	reservations *service.ReservationService
	dashboards   *service.DashboardService
	now          func() time.Time
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(reservations *service.ReservationService, dashboards *service.DashboardService) *ReservationsHandler {
	return &ReservationsHandler{reservations: reservations, dashboards: dashboards, now: time.Now}
}

// Release handles POST /reservations/:id/release.
func (h *ReservationsHandler) Release(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	res, err := h.reservations.ReleaseReservation(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewReservationResponse(*res, h.now()))
}

// Mine handles GET /me/reservations.
func (h *ReservationsHandler) Mine(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	list, err := h.reservations.ListUserReservations(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewReservationResponses(list, h.now()))
}

// Dashboard handles GET /me/dashboard.
func (h *ReservationsHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	dashboard, err := h.dashboards.UserDashboard(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.UserDashboardResponse{
		Lots:         dto.NewLotResponses(dashboard.Lots),
		Reservations: dto.NewReservationResponses(dashboard.Reservations, h.now()),
	})
}
