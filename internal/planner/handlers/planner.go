package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/openings"
	"floorplan-core/internal/planner/repository"
	"floorplan-core/internal/planner/rooms"
	"floorplan-core/internal/planner/service"
	"floorplan-core/internal/planner/topology"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Planner Handler
// ============================================================

type PlannerHandler struct {
	planner *service.Planner
}

func NewPlannerHandler(planner *service.Planner) *PlannerHandler {
	return &PlannerHandler{planner: planner}
}

type topologyRequest struct {
	Walls []models.Wall `json:"walls"`
	Split *bool         `json:"split,omitempty"`
}

type wallsRequest struct {
	Walls []models.Wall `json:"walls"`
}

type snapRequest struct {
	service.SnapQuery
	Walls []models.Wall `json:"walls"`
}

type validateRequest struct {
	service.OpeningQuery
	Walls    []models.Wall    `json:"walls"`
	Openings []models.Opening `json:"openings"`
}

type geometryRequest struct {
	Opening models.Opening `json:"opening"`
	Wall    models.Wall    `json:"wall"`
}

type createPlanRequest struct {
	Name string `json:"name"`
}

type previewRequest struct {
	Point models.Point `json:"point"`
}

// ============================================================
// Stateless geometry
// ============================================================

// Topology разрешает узлы и разрезы для переданного набора стен.
func (h *PlannerHandler) Topology(c fiber.Ctx) error {
	var req topologyRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}

	if req.Split != nil && !*req.Split {
		opts := h.planner.TopologyOptions()
		opts.Split = false
		return c.JSON(topology.NewResolver(opts).Resolve(req.Walls))
	}
	return c.JSON(h.planner.Topology(req.Walls))
}

func (h *PlannerHandler) Rooms(c fiber.Ctx) error {
	var req wallsRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"rooms": h.planner.Rooms(req.Walls)})
}

// RoomsGeoJSON отдает комнаты как FeatureCollection для рендера.
func (h *PlannerHandler) RoomsGeoJSON(c fiber.Ctx) error {
	var req wallsRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}
	return sendGeoJSON(c, h.planner.Rooms(req.Walls))
}

func (h *PlannerHandler) Snap(c fiber.Ctx) error {
	var req snapRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.planner.Snap(req.Walls, req.SnapQuery))
}

func (h *PlannerHandler) ValidateOpening(c fiber.Ctx) error {
	var req validateRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}

	v, err := h.planner.ValidateOpening(models.Snapshot{Walls: req.Walls, Openings: req.Openings}, req.OpeningQuery)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(v)
}

func (h *PlannerHandler) OpeningGeometry(c fiber.Ctx) error {
	var req geometryRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(openings.ComputeGeometry(req.Opening, req.Wall))
}

// ============================================================
// Plans
// ============================================================

func (h *PlannerHandler) CreatePlan(c fiber.Ctx) error {
	var req createPlanRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	plan, err := h.planner.CreatePlan(c.Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(plan)
}

func (h *PlannerHandler) GetPlan(c fiber.Ctx) error {
	view, err := h.planner.Plan(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *PlannerHandler) ReplaceWalls(c fiber.Ctx) error {
	var req wallsRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}

	topo, err := h.planner.ReplaceWalls(c.Context(), c.Params("id"), req.Walls)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(topo)
}

func (h *PlannerHandler) DeleteWall(c fiber.Ctx) error {
	if err := h.planner.DeleteWall(c.Context(), c.Params("id"), c.Params("wallId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *PlannerHandler) PlanTopology(c fiber.Ctx) error {
	topo, err := h.planner.PlanTopology(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(topo)
}

func (h *PlannerHandler) PlanRooms(c fiber.Ctx) error {
	list, err := h.planner.PlanRooms(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if c.Query("format") == "geojson" {
		return sendGeoJSON(c, list)
	}
	return c.JSON(fiber.Map{"rooms": list})
}

func (h *PlannerHandler) PlanSnap(c fiber.Ctx) error {
	var q service.SnapQuery
	if err := decode(c, &q); err != nil {
		return writeError(c, err)
	}

	res, err := h.planner.PlanSnap(c.Context(), c.Params("id"), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ============================================================
// Placement sessions
// ============================================================

func (h *PlannerHandler) BeginPlacement(c fiber.Ctx) error {
	var req service.PlacementRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}

	ticket, err := h.planner.BeginPlacement(c.Context(), c.Params("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(ticket)
}

func (h *PlannerHandler) PreviewPlacement(c fiber.Ctx) error {
	var req previewRequest
	if err := decode(c, &req); err != nil {
		return writeError(c, err)
	}

	v, err := h.planner.PreviewPlacement(c.Context(), c.Params("id"), c.Params("sid"), req.Point)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(v)
}

func (h *PlannerHandler) CommitPlacement(c fiber.Ctx) error {
	op, err := h.planner.CommitPlacement(c.Context(), c.Params("id"), c.Params("sid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(op)
}

func (h *PlannerHandler) CancelPlacement(c fiber.Ctx) error {
	if err := h.planner.CancelPlacement(c.Params("id"), c.Params("sid")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Door animation
// ============================================================

func (h *PlannerHandler) ToggleOpening(c fiber.Ctx) error {
	state, err := h.planner.ToggleOpening(c.Context(), c.Params("id"), c.Params("openingId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *PlannerHandler) Animations(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"animations": h.planner.AnimationStates(c.Params("id"))})
}

func (h *PlannerHandler) ResetAnimations(c fiber.Ctx) error {
	h.planner.ResetAnimations(c.Params("id"))
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Helpers
// ============================================================

// decode разбирает JSON-тело запроса.
func decode(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return fmt.Errorf("%w: empty body", service.ErrInvalidInput)
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return fmt.Errorf("%w: invalid json", service.ErrInvalidInput)
	}
	return nil
}

func sendGeoJSON(c fiber.Ctx, list []models.Room) error {
	data, err := rooms.GeoJSON(list).MarshalJSON()
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}

func writeError(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrUnknownSession):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, openings.ErrPlacementInvalid), errors.Is(err, openings.ErrSessionClosed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotADoor):
		status = http.StatusUnprocessableEntity
	default:
		log.Printf("[PLANNER] Internal error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
