package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/service"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

const recentEventsOnDashboard = 20

// AdminHandler serves the administrator endpoints.
type AdminHandler struct {
	lots       *service.LotService
	dashboards *service.DashboardService
	audit      *service.AuditService
	now        func() time.Time
}

// NewAdminHandler constructs handler. audit may be nil.
func NewAdminHandler(lots *service.LotService, dashboards *service.DashboardService, audit *service.AuditService) *AdminHandler {
	return &AdminHandler{lots: lots, dashboards: dashboards, audit: audit, now: time.Now}
}

// CreateLot handles POST /admin/lots.
func (h *AdminHandler) CreateLot(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	input, err := lotInput(c)
	if err != nil {
		return err
	}
	lot, err := h.lots.CreateLot(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewLotResponse(*lot))
}

// UpdateLot handles PUT /admin/lots/:id.
func (h *AdminHandler) UpdateLot(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	input, err := lotInput(c)
	if err != nil {
		return err
	}
	lot, err := h.lots.UpdateLot(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLotResponse(*lot))
}

// ResizeLot handles PATCH /admin/lots/:id/capacity.
func (h *AdminHandler) ResizeLot(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CapacityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Capacity == nil {
		return apperrors.NewValidationError("maximum_number_of_spots required", map[string]any{"field": "maximum_number_of_spots"})
	}
	lot, err := h.lots.ResizeLot(c.UserContext(), actor, c.Params("id"), *req.Capacity)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewLotResponse(*lot))
}

// DeleteLot handles DELETE /admin/lots/:id.
func (h *AdminHandler) DeleteLot(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.lots.DeleteLot(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// LotDetails handles GET /admin/lots/:id/details.
func (h *AdminHandler) LotDetails(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	details, err := h.lots.LotDetails(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	now := h.now()
	resp := dto.LotDetailsResponse{
		Lot:   dto.NewLotResponse(details.Lot),
		Spots: make([]dto.SpotResponse, 0, len(details.Spots)),
	}
	for _, spot := range details.Spots {
		item := dto.SpotResponse{ID: spot.Spot.ID, Number: spot.Spot.Number, Status: spot.Spot.Status}
		if spot.Reservation != nil {
			res := dto.NewReservationResponse(*spot.Reservation, now)
			item.Reservation = &res
		}
		resp.Spots = append(resp.Spots, item)
	}
	return data(c, http.StatusOK, resp)
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	summary, err := h.dashboards.AdminSummary(c.UserContext(), actor)
	if err != nil {
		return err
	}

	resp := dto.AdminDashboardResponse{
		TotalLots:  summary.TotalLots,
		TotalUsers: summary.TotalUsers,
		Occupancy:  dto.NewOccupancyResponse(summary.Occupancy),
		Lots:       dto.NewLotResponses(summary.Lots),
		Users:      make([]dto.UserResponse, 0, len(summary.Users)),
	}
	for _, u := range summary.Users {
		resp.Users = append(resp.Users, dto.NewUserResponse(u))
	}
	if h.audit != nil {
		resp.RecentEvents = h.audit.Recent(recentEventsOnDashboard)
	}
	return data(c, http.StatusOK, resp)
}

func lotInput(c *fiber.Ctx) (service.LotInput, error) {
	var req dto.LotRequest
	if err := parseBody(c, &req); err != nil {
		return service.LotInput{}, err
	}
	missing := []string{}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if req.Capacity == nil {
		missing = append(missing, "maximum_number_of_spots")
	}
	if len(missing) > 0 {
		return service.LotInput{}, apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	return service.LotInput{
		Name:     req.Name,
		Price:    *req.Price,
		Address:  req.Address,
		PinCode:  req.PinCode,
		Capacity: *req.Capacity,
	}, nil
}
