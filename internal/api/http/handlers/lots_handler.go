package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/service"
)

// LotsHandler serves the lot browsing and reservation endpoints of users.
type LotsHandler struct {
	lots         *service.LotService
	reservations *service.ReservationService
	now          func() time.Time
}

// NewLotsHandler constructs handler.
func NewLotsHandler(lots *service.LotService, reservations *service.ReservationService) *LotsHandler {
	return &LotsHandler{lots: lots, reservations: reservations, now: time.Now}
}

// List handles GET /lots.
func (h *LotsHandler) List(c *fiber.Ctx) error {
	lots, err := h.lots.ListLots(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLotResponses(lots))
}

// Get handles GET /lots/:id.
func (h *LotsHandler) Get(c *fiber.Ctx) error {
	lot, err := h.lots.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLotResponse(*lot))
}

// Reserve handles POST /lots/:id/reservations.
func (h *LotsHandler) Reserve(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ReserveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.reservations.ReserveSpot(c.UserContext(), actor, c.Params("id"), req.VehicleNumber)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewReservationResponse(*res, h.now()))
}
