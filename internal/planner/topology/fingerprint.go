package topology

import (
	"sort"
	"strconv"
	"strings"

	"floorplan-core/internal/planner/models"

	"github.com/google/uuid"
)

var fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("floorplan-core/topology"))

// Fingerprint: версия набора стен: одинаковые наборы (в любом порядке) дают одинаковый ключ.
func Fingerprint(walls []models.Wall) string {
	keys := make([]string, 0, len(walls))
	for _, w := range walls {
		keys = append(keys, strings.Join([]string{
			w.ID,
			formatFloat(w.Start.X), formatFloat(w.Start.Y),
			formatFloat(w.End.X), formatFloat(w.End.Y),
			formatFloat(w.Thickness), formatFloat(w.Height),
			string(w.Type),
		}, "|"))
	}
	sort.Strings(keys)

	return uuid.NewSHA1(fingerprintNamespace, []byte(strings.Join(keys, ";"))).String()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'g', -1, 64)
}
