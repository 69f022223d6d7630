package openings

import (
	"fmt"
	"math"
	"sort"

	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
)

// ============================================================
// Opening Constraint Solver
// ============================================================

const defaultSnapTolerance = 10.0   // Насколько указатель может отойти от грани стены
const defaultCornerClearance = 10.0 // Минимальный отступ проема от концов стены
const defaultClearance = 5.0        // Зазор между соседними проемами

// Policy определяет, что делать с пересекающимся кандидатом.
type Policy string

const (
	PolicyAutoClamp Policy = "auto_clamp"
	PolicyReject    Policy = "reject"
)

func (p Policy) Valid() bool {
	switch p {
	case PolicyAutoClamp, PolicyReject:
		return true
	}
	return false
}

type Options struct {
	SnapTolerance   float64
	CornerClearance float64
	Clearance       float64
	MinWallLength   float64
	Policy          Policy
	IgnoreID        string // проем, который сейчас перемещается
}

func DefaultOptions() Options {
	return Options{
		SnapTolerance:   defaultSnapTolerance,
		CornerClearance: defaultCornerClearance,
		Clearance:       defaultClearance,
		Policy:          PolicyAutoClamp,
	}
}

// Validation: результат проверки размещения. Offset-поля отсчитываются от начала стены
// до начала проема. Position: предлагаемое размещение (после auto-clamp или как запрошено),
// Nearest: ближайшее допустимое размещение, если оно существует.
//
// При политике auto_clamp IsValid относится к итоговому (сдвинутому) размещению,
// а не к запрошенному: пересекающийся кандидат возвращается с IsValid=true,
// Clamped=true и предупреждением, исходное начало остается в Requested.
// Проверить сам запрошенный интервал можно политикой reject.
type Validation struct {
	IsValid   bool           `json:"isValid"`
	WallID    string         `json:"wallId,omitempty"`
	Position  *float64       `json:"position,omitempty"`
	Requested float64        `json:"requested"`
	Clamped   bool           `json:"clamped"`
	Nearest   *float64       `json:"nearest,omitempty"`
	Errors    []string       `json:"errors"`
	Warnings  []string       `json:"warnings"`
	Issues    []models.Issue `json:"issues,omitempty"`
}

type interval struct {
	lo, hi float64
}

// Validate проверяет проем шириной width, центр которого указывает point.
// Функция тотальна: любые проблемы возвращаются в Errors/Warnings.
func Validate(point models.Point, width float64, walls []models.Wall, openings []models.Opening, opts Options) Validation {
	opts = withDefaults(opts)
	v := Validation{Errors: []string{}, Warnings: []string{}}

	if !isFinite(width) || width <= 0 {
		return v.fail(models.Issue{Kind: models.IssueInvalidWidth, Message: fmt.Sprintf("invalid opening width %v", width)})
	}
	if !geometry.IsFinite(point) {
		return v.fail(models.Issue{Kind: models.IssueDegenerateInput, Message: "pointer position is not finite"})
	}

	host, proj, ok := findHostWall(point, walls, opts)
	if !ok {
		return v.fail(models.Issue{Kind: models.IssueNoHostWall, Message: "cannot place here: no wall nearby"})
	}
	v.WallID = host.ID

	length := host.Length()
	requested := proj.Along - width/2
	v.Requested = requested

	if width > length-2*opts.CornerClearance {
		return v.fail(models.Issue{
			Kind:      models.IssueOversizedOpening,
			Message:   fmt.Sprintf("opening width %.4g exceeds usable wall length %.4g", width, length-2*opts.CornerClearance),
			ElementID: host.ID,
		})
	}

	occupied, skipped := occupiedIntervals(host.ID, openings, opts)
	for _, issue := range skipped {
		v = v.warn(issue)
	}
	nearest, found := nearestStart(requested, width, length, occupied, opts.CornerClearance)
	if found {
		v.Nearest = &nearest
	}

	if found && math.Abs(nearest-requested) <= geometry.Epsilon {
		pos := nearest
		v.IsValid = true
		v.Position = &pos
		return v
	}

	issue := conflictIssue(requested, width, length, occupied, opts.CornerClearance, host.ID)
	if !found {
		issue.Message += "; no free space left on this wall"
		return v.fail(issue)
	}

	if opts.Policy == PolicyAutoClamp {
		pos := nearest
		v.IsValid = true
		v.Position = &pos
		v.Clamped = true
		return v.warn(issue)
	}

	pos := requested
	v.Position = &pos
	return v.fail(issue)
}

// CanPlace возвращает стену и смещение только для допустимого размещения.
func CanPlace(point models.Point, width float64, walls []models.Wall, openings []models.Opening, opts Options) (string, float64, bool) {
	v := Validate(point, width, walls, openings, opts)
	if !v.IsValid || v.Position == nil {
		return "", 0, false
	}
	return v.WallID, *v.Position, true
}

func (v Validation) fail(issue models.Issue) Validation {
	v.IsValid = false
	v.Issues = append(v.Issues, issue)
	v.Errors = append(v.Errors, issue.String())
	return v
}

func (v Validation) warn(issue models.Issue) Validation {
	v.Issues = append(v.Issues, issue)
	v.Warnings = append(v.Warnings, issue.String())
	return v
}

func withDefaults(opts Options) Options {
	if opts.SnapTolerance < 0 {
		opts.SnapTolerance = 0
	}
	if opts.CornerClearance < 0 {
		opts.CornerClearance = 0
	}
	if opts.Clearance < 0 {
		opts.Clearance = 0
	}
	if !opts.Policy.Valid() {
		opts.Policy = PolicyAutoClamp
	}
	return opts
}

// ============================================================
// Host wall search
// ============================================================

// findHostWall ищет ближайшую стену, в толщину которой (плюс допуск) попадает точка.
func findHostWall(p models.Point, walls []models.Wall, opts Options) (models.Wall, geometry.Projection, bool) {
	clean, _ := geometry.SanitizeWalls(walls, opts.MinWallLength)
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].ID < clean[j].ID })

	var host models.Wall
	var best geometry.Projection
	minDist := math.MaxFloat64
	found := false

	for _, w := range clean {
		proj := geometry.Project(p, w.Start, w.End)
		if proj.Distance > w.Thickness/2+opts.SnapTolerance {
			continue
		}
		if proj.Distance < minDist {
			minDist = proj.Distance
			host = w
			best = proj
			found = true
		}
	}

	return host, best, found
}

// ============================================================
// Intervals
// ============================================================

// occupiedIntervals: занятые соседними проемами участки стены с учетом зазора, слитые и отсортированные.
// Проемы с нечисловым смещением или шириной пропускаются и возвращаются как предупреждения.
func occupiedIntervals(wallID string, openings []models.Opening, opts Options) ([]interval, []models.Issue) {
	var out []interval
	var skipped []models.Issue
	for _, o := range openings {
		if o.HostWallID != wallID || (opts.IgnoreID != "" && o.ID == opts.IgnoreID) {
			continue
		}
		if !o.Kind.IsOpening() {
			continue
		}
		if !isFinite(o.Offset) || !isFinite(o.Width) || o.Width <= 0 {
			skipped = append(skipped, models.Issue{
				Kind:      models.IssueDegenerateInput,
				Message:   fmt.Sprintf("opening %s has invalid span (offset %v, width %v); ignored", o.ID, o.Offset, o.Width),
				ElementID: o.ID,
			})
			continue
		}
		lo, hi := o.Span()
		out = append(out, interval{lo: lo - opts.Clearance, hi: hi + opts.Clearance})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].lo < out[j].lo })

	merged := make([]interval, 0, len(out))
	for _, iv := range out {
		if n := len(merged); n > 0 && iv.lo <= merged[n-1].hi {
			merged[n-1].hi = math.Max(merged[n-1].hi, iv.hi)
			continue
		}
		merged = append(merged, iv)
	}
	return merged, skipped
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// nearestStart ищет допустимое начало проема, ближайшее к requested.
// При равенстве выбирается меньшее смещение.
func nearestStart(requested, width, length float64, occupied []interval, cornerClearance float64) (float64, bool) {
	lo, hi := cornerClearance, length-cornerClearance
	if hi-lo < width {
		return 0, false
	}

	best := 0.0
	bestDist := math.Inf(1)
	found := false

	cursor := lo
	try := func(gapLo, gapHi float64) {
		if gapHi-gapLo < width {
			return
		}
		s := geometry.Clamp(requested, gapLo, gapHi-width)
		d := math.Abs(s - requested)
		if d < bestDist-geometry.Epsilon {
			best, bestDist, found = s, d, true
		}
	}

	for _, iv := range occupied {
		if iv.hi <= lo {
			continue
		}
		if iv.lo >= hi {
			break
		}
		try(cursor, math.Min(iv.lo, hi))
		cursor = math.Max(cursor, iv.hi)
	}
	if cursor < hi {
		try(cursor, hi)
	}

	return best, found
}

func conflictIssue(requested, width, length float64, occupied []interval, cornerClearance float64, wallID string) models.Issue {
	start, end := requested, requested+width
	for _, iv := range occupied {
		if start < iv.hi && end > iv.lo {
			return models.Issue{
				Kind:      models.IssueOpeningOverlap,
				Message:   fmt.Sprintf("opening [%.4g, %.4g] overlaps occupied span [%.4g, %.4g]", start, end, iv.lo, iv.hi),
				ElementID: wallID,
			}
		}
	}
	return models.Issue{
		Kind:      models.IssueCornerClearance,
		Message:   fmt.Sprintf("opening [%.4g, %.4g] is outside [%.4g, %.4g]", start, end, cornerClearance, length-cornerClearance),
		ElementID: wallID,
	}
}
