package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

// Register подключает health-пробы и API планировщика к приложению.
func Register(app *fiber.App, planner *PlannerHandler, health *HealthHandler) {
	app.Get("/health/live", health.LivenessProbe)
	app.Get("/health/ready", health.ReadinessProbe)
	app.Get("/health/startup", health.StartupProbe)

	app.Get("/docs", SwaggerUI)
	app.Get("/docs/openapi.yaml", OpenAPISpec)

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Floor Plan Core v1",
			"status":  "ok",
		})
	})

	// Stateless geometry
	geometry := api.Group("/geometry")
	geometry.Post("/topology", planner.Topology)
	geometry.Post("/rooms", planner.Rooms)
	geometry.Post("/rooms.geojson", planner.RoomsGeoJSON)
	geometry.Post("/snap", planner.Snap)
	geometry.Post("/openings/validate", planner.ValidateOpening)
	geometry.Post("/openings/geometry", planner.OpeningGeometry)

	// Plans
	plans := api.Group("/plans")
	plans.Post("/", planner.CreatePlan)
	plans.Get("/:id", planner.GetPlan)
	plans.Put("/:id/walls", planner.ReplaceWalls)
	plans.Delete("/:id/walls/:wallId", planner.DeleteWall)
	plans.Get("/:id/topology", planner.PlanTopology)
	plans.Get("/:id/rooms", planner.PlanRooms)
	plans.Post("/:id/snap", planner.PlanSnap)

	// Placement sessions
	plans.Post("/:id/placements", planner.BeginPlacement)
	plans.Post("/:id/placements/:sid/preview", planner.PreviewPlacement)
	plans.Post("/:id/placements/:sid/commit", planner.CommitPlacement)
	plans.Delete("/:id/placements/:sid", planner.CancelPlacement)

	// Door animation
	plans.Post("/:id/openings/:openingId/toggle", planner.ToggleOpening)
	plans.Get("/:id/animations", planner.Animations)
	plans.Delete("/:id/animations", planner.ResetAnimations)
}
