package main

import (
	"fmt"

	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/openings"
	"floorplan-core/internal/planner/rooms"
	"floorplan-core/internal/planner/service"

	"github.com/spf13/cobra"
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Resolve junctions and split segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, planner, err := loadPlan()
		if err != nil {
			return err
		}
		return printJSON(cmd, planner.Topology(snap.Walls))
	},
}

var roomsGeoJSON bool

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Detect closed rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, planner, err := loadPlan()
		if err != nil {
			return err
		}

		list := planner.Rooms(snap.Walls)
		if roomsGeoJSON {
			return printJSON(cmd, rooms.GeoJSON(list))
		}
		return printJSON(cmd, list)
	},
}

var (
	snapX, snapY float64
	snapNoGrid   bool
)

var snapCmd = &cobra.Command{
	Use:   "snap",
	Short: "Snap a cursor position to the plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, planner, err := loadPlan()
		if err != nil {
			return err
		}

		q := service.SnapQuery{Point: models.Point{X: snapX, Y: snapY}}
		if snapNoGrid {
			off := false
			q.GridEnabled = &off
		}
		return printJSON(cmd, planner.Snap(snap.Walls, q))
	},
}

var (
	openingX, openingY float64
	openingWidth       float64
	openingKind        string
	openingPolicy      string
)

var openingCmd = &cobra.Command{
	Use:   "opening",
	Short: "Check where an opening can be placed",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.ElementKind(openingKind)
		if !kind.IsOpening() {
			return fmt.Errorf("unsupported opening kind %q", openingKind)
		}

		snap, planner, err := loadPlan()
		if err != nil {
			return err
		}

		width := openingWidth
		if width <= 0 {
			width = openings.DefaultTemplate(kind).Width
		}
		v, err := planner.ValidateOpening(snap, service.OpeningQuery{
			Point:  models.Point{X: openingX, Y: openingY},
			Width:  width,
			Policy: openingPolicy,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, v)
	},
}

func init() {
	roomsCmd.Flags().BoolVar(&roomsGeoJSON, "geojson", false, "print rooms as a GeoJSON FeatureCollection")

	snapCmd.Flags().Float64Var(&snapX, "x", 0, "cursor x")
	snapCmd.Flags().Float64Var(&snapY, "y", 0, "cursor y")
	snapCmd.Flags().BoolVar(&snapNoGrid, "no-grid", false, "disable grid fallback")

	openingCmd.Flags().Float64Var(&openingX, "x", 0, "pointer x (opening centre)")
	openingCmd.Flags().Float64Var(&openingY, "y", 0, "pointer y (opening centre)")
	openingCmd.Flags().Float64Var(&openingWidth, "width", 0, "opening width (kind default when 0)")
	openingCmd.Flags().StringVar(&openingKind, "kind", string(models.ElementDoor), "door or window")
	openingCmd.Flags().StringVar(&openingPolicy, "policy", "", "auto_clamp or reject (settings when empty)")

	rootCmd.AddCommand(topologyCmd, roomsCmd, snapCmd, openingCmd)
}
