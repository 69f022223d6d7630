package snapping

import (
	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
)

// Candidates собирает цели привязки из стен и разрешенной топологии:
// концы и середины стен, а также узлы-пересечения.
func Candidates(walls []models.Wall, topo models.Topology) []models.SnapCandidate {
	clean, _ := geometry.SanitizeWalls(walls, 0)

	out := make([]models.SnapCandidate, 0, len(clean)*3+len(topo.Junctions))
	for _, w := range clean {
		out = append(out,
			models.SnapCandidate{Point: w.Start, Kind: models.SnapEndpoint, SourceID: w.ID},
			models.SnapCandidate{Point: w.End, Kind: models.SnapEndpoint, SourceID: w.ID},
			models.SnapCandidate{Point: geometry.Midpoint(w.Start, w.End), Kind: models.SnapMidpoint, SourceID: w.ID},
		)
	}
	for _, j := range topo.Junctions {
		out = append(out, models.SnapCandidate{Point: j.Position, Kind: models.SnapJunction, SourceID: j.ID})
	}
	return out
}
