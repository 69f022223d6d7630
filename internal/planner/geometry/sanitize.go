package geometry

import (
	"fmt"
	"math"

	"floorplan-core/internal/planner/models"
)

// ============================================================
// Input sanitizing
// ============================================================

// SanitizeWalls отбрасывает вырожденные стены (нулевая длина, NaN/Inf) и нормализует толщину.
// Отброшенные стены возвращаются как предупреждения и дальше не передаются.
// Стена нулевой толщины остается в графе как линия, но тоже попадает в предупреждения.
func SanitizeWalls(walls []models.Wall, minLength float64) ([]models.Wall, []models.Issue) {
	if minLength <= 0 {
		minLength = Epsilon
	}

	out := make([]models.Wall, 0, len(walls))
	var issues []models.Issue

	for _, w := range walls {
		if !IsFinite(w.Start) || !IsFinite(w.End) {
			issues = append(issues, models.Issue{
				Kind:      models.IssueDegenerateInput,
				Message:   "wall has non-finite coordinates",
				ElementID: w.ID,
			})
			continue
		}
		if math.IsNaN(w.Thickness) || math.IsInf(w.Thickness, 0) {
			issues = append(issues, models.Issue{
				Kind:      models.IssueDegenerateInput,
				Message:   "wall has non-finite thickness",
				ElementID: w.ID,
			})
			continue
		}
		if l := w.Length(); l < minLength {
			issues = append(issues, models.Issue{
				Kind:      models.IssueDegenerateInput,
				Message:   fmt.Sprintf("wall length %.4g is below minimum %.4g", l, minLength),
				ElementID: w.ID,
			})
			continue
		}
		w = w.Normalized()
		if w.Thickness == 0 {
			issues = append(issues, models.Issue{
				Kind:      models.IssueDegenerateInput,
				Message:   "wall has zero thickness",
				ElementID: w.ID,
			})
		}
		out = append(out, w)
	}

	return out, issues
}
