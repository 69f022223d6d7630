package rooms

import (
	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON экспортирует комнаты как FeatureCollection полигонов в координатах плана.
func GeoJSON(rooms []models.Room) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, room := range rooms {
		feature := geojson.NewFeature(orb.Polygon{geometry.Ring(room.Points)})
		feature.ID = room.ID
		feature.Properties["id"] = room.ID
		feature.Properties["area"] = room.Area
		feature.Properties["perimeter"] = room.Perimeter
		feature.Properties["centroid"] = []float64{room.Centroid.X, room.Centroid.Y}
		feature.Properties["wallIds"] = room.WallIDs

		fc.Append(feature)
	}

	return fc
}
